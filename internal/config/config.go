package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Session   SessionConfig
	Remote    RemoteConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// SessionConfig selects the engine of the local session store.
type SessionConfig struct {
	Backend    string // redis | sqlite | memory
	SQLitePath string
}

// RemoteConfig bounds calls to the record store.
type RemoteConfig struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

type JWTConfig struct {
	Secret     string
	SessionTTL time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("MONGODB_DATABASE", "roster")
	v.SetDefault("MONGODB_COLLECTION", "students")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_SQLITE_PATH", "roster-state.db")
	v.SetDefault("REMOTE_TIMEOUT", 10)
	v.SetDefault("REMOTE_RETRIES", 0)
	v.SetDefault("REMOTE_BACKOFF_MS", 250)
	v.SetDefault("JWT_SESSION_TTL", 10080)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:        os.Getenv("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString("SESSION_BACKEND"))),
			SQLitePath: v.GetString("SESSION_SQLITE_PATH"),
		},
		Remote: RemoteConfig{
			Timeout: time.Duration(v.GetInt("REMOTE_TIMEOUT")) * time.Second,
			Retries: v.GetInt("REMOTE_RETRIES"),
			Backoff: time.Duration(v.GetInt("REMOTE_BACKOFF_MS")) * time.Millisecond,
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			SessionTTL: time.Duration(v.GetInt("JWT_SESSION_TTL")) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	if cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("environment variable MONGODB_URI is required")
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "memory"
		if cfg.Redis.Host != "" {
			cfg.Session.Backend = "redis"
		}
	}
	switch cfg.Session.Backend {
	case "redis", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unsupported SESSION_BACKEND %q", cfg.Session.Backend)
	}
	if cfg.Session.Backend == "redis" && cfg.Redis.Host == "" {
		return nil, fmt.Errorf("SESSION_BACKEND=redis requires REDIS_HOST")
	}
	if cfg.Remote.Retries < 0 {
		cfg.Remote.Retries = 0
	}

	// Basic validation
	if cfg.JWT.Secret == "" {
		logger.Warnf("JWT_SECRET is not set; session tokens are disabled")
	}

	return cfg, nil
}
