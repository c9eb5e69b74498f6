package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/handlers"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/config"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/database"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/kvstore"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/records"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/sessions"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/metrics"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v session_backend=%s", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Session.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		} else {
			logger.Infof("connected to Redis: %s", cfg.Redis.Addr())
		}
		defer func() { _ = redisClient.Close() }()
	}

	local, sqliteDB, err := openSessionStore(ctx, cfg, redisClient)
	if err != nil {
		logger.Fatalf("failed to open session store: %v", err)
	}
	if sqliteDB != nil {
		defer func() { _ = sqliteDB.Close() }()
	}

	// last-known-good snapshots live next to the sessions unless Redis is available
	cacheKV := kvstore.WithPrefix(local, "cache:")
	if redisClient != nil {
		cacheKV = kvstore.NewRedisStore(redisClient, "roster:cache:")
	}
	cache := records.NewCache(cacheKV)

	var recordStore records.Store
	var mongoClient *mongo.Client
	mongoClient, err = database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5)
	if err != nil {
		logger.Warnf("could not connect to MongoDB, serving from an in-memory collection: %v", err)
		recordStore = records.NewMemoryStore(cache)
	} else {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
		col := mongoClient.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		recordStore = records.NewMongoStore(col, cache)
		logger.Infof("using MongoDB collection %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, "+middleware.DeviceHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint: 200 only when the record store and session store are reachable
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["mongo"] = mongoClient != nil && mongoClient.Ping(c.Request.Context(), nil) == nil
		if !deps["mongo"] {
			ready = false
		}
		_, _, sErr := local.Get(c.Request.Context(), "ready-probe")
		deps["sessions"] = sErr == nil
		if !deps["sessions"] {
			ready = false
		}
		if redisClient != nil {
			deps["redis"] = redisClient.Ping(c.Request.Context()).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		}

		status, word := http.StatusOK, "ready"
		if !ready {
			status, word = http.StatusServiceUnavailable, "not_ready"
		}
		c.JSON(status, gin.H{"status": word, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	h := handlers.NewAuthHandler(cfg, recordStore, local, sessions.NewBlacklist(redisClient))
	authGroup := r.Group("/")
	if cfg.RateLimit.Enabled {
		// login attempts are limited per device (or per IP without one)
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			authGroup.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
		logger.Infof("rate limiter enabled on /auth (rps=%.2f burst=%d redis=%v)", cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.UseRedis && redisClient != nil)
	}
	h.Register(authGroup)
	h.RegisterStudentRoutes(r.Group("/api/v1"))
	if h.Verifier() == nil {
		logger.Warnf("session tokens disabled; /api/v1/students only checks the device session")
	}

	handlers.RegisterSwagger(r)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting roster service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// openSessionStore returns the engine behind the per-device session records.
// The *sql.DB is non-nil only for the sqlite backend and must be closed by the caller.
func openSessionStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (kvstore.Store, *sql.DB, error) {
	switch cfg.Session.Backend {
	case "redis":
		if redisClient == nil {
			return nil, nil, fmt.Errorf("redis session backend without a redis client")
		}
		logger.Infof("using Redis for session storage")
		return kvstore.NewRedisStore(redisClient, "roster:session:"), nil, nil
	case "sqlite":
		db, err := database.OpenSQLite(cfg.Session.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := kvstore.NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Infof("using SQLite for session storage: %s", cfg.Session.SQLitePath)
		return store, db, nil
	default:
		logger.Warnf("using in-memory session storage; sessions are lost on restart")
		return kvstore.NewMemoryStore(), nil, nil
	}
}
