package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/auth"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/database"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/kvstore"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/nav"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/records"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/sessions"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
)

// openRecordsFunc connects the remote collection. The returned func releases it.
type openRecordsFunc func(ctx context.Context, v *viper.Viper, cache *records.Cache) (records.Store, func(), error)

// env is everything one command invocation works with.
type env struct {
	out      io.Writer
	kv       kvstore.Store
	sessions *sessions.Store
	records  records.Store
	nav      nav.Navigator
	opts     auth.Options
	closers  []func()
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// printNavigator reports screen changes on the command output.
type printNavigator struct {
	w io.Writer
}

func (p printNavigator) Replace(d nav.Destination) {
	fmt.Fprintf(p.w, "-> %s\n", d)
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "roster-state.db"
	}
	return filepath.Join(home, ".roster", "state.db")
}

func newRootCmd(openRecords openRecordsFunc) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "roster",
		Short:         "Student roster device client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(v.GetString("log-level"))
		},
	}
	pf := root.PersistentFlags()
	pf.String("state", defaultStatePath(), "SQLite file holding the session and record cache")
	pf.String("mongo-uri", "", "MongoDB connection string (env ROSTER_MONGO_URI)")
	pf.String("database", "roster", "MongoDB database")
	pf.String("collection", "students", "MongoDB collection")
	pf.Duration("timeout", 10*time.Second, "per-call timeout for remote operations")
	pf.Int("retries", 0, "extra attempts for the server read before using the cache")
	pf.Duration("backoff", 250*time.Millisecond, "initial backoff between server read attempts")
	pf.String("log-level", "warn", "debug|info|warn|error")
	_ = v.BindPFlags(pf)

	setup := func(cmd *cobra.Command) (*env, error) {
		return newEnv(cmd.Context(), cmd.OutOrStdout(), v, openRecords)
	}

	root.AddCommand(
		newStartCmd(setup),
		newLoginCmd(setup),
		newRegisterCmd(setup),
		newListCmd(setup),
		newLogoutCmd(setup),
	)
	return root
}

func newEnv(ctx context.Context, out io.Writer, v *viper.Viper, openRecords openRecordsFunc) (*env, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if n := v.GetInt("retries"); n < 0 {
		return nil, fmt.Errorf("--retries must be >= 0, got %d", n)
	}
	if d := v.GetDuration("timeout"); d < 0 {
		return nil, fmt.Errorf("--timeout must be >= 0, got %s", d)
	}
	e := &env{
		out: out,
		nav: printNavigator{w: out},
		opts: auth.Options{
			Timeout: v.GetDuration("timeout"),
			Retries: v.GetInt("retries"),
			Backoff: v.GetDuration("backoff"),
		},
	}

	db, err := database.OpenSQLite(v.GetString("state"))
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, func() { _ = db.Close() })
	kv, err := openState(ctx, db)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.kv = kv
	e.sessions = sessions.NewStore(kv)

	rec, release, err := openRecords(ctx, v, records.NewCache(kvstore.WithPrefix(kv, "cache:")))
	if err != nil {
		e.Close()
		return nil, err
	}
	if release != nil {
		e.closers = append(e.closers, release)
	}
	e.records = rec
	return e, nil
}

func openState(ctx context.Context, db *sql.DB) (kvstore.Store, error) {
	store, err := kvstore.NewSQLiteStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	return store, nil
}

// defaultOpenRecords connects to MongoDB once; the connection is lazy so
// commands that only touch local state still work offline.
func defaultOpenRecords(ctx context.Context, v *viper.Viper, cache *records.Cache) (records.Store, func(), error) {
	uri := v.GetString("mongo-uri")
	if uri == "" {
		uri = os.Getenv("MONGODB_URI")
	}
	if uri == "" {
		return nil, nil, fmt.Errorf("no MongoDB URI: set --mongo-uri or ROSTER_MONGO_URI")
	}
	lm := &lazyMongo{uri: uri, v: v, cache: cache}
	return lm, lm.close, nil
}

// lazyMongo dials on first use. A failed dial surfaces as records.ErrUnavailable
// so the flows fall back to the cache.
type lazyMongo struct {
	uri    string
	v      *viper.Viper
	cache  *records.Cache
	client *mongo.Client
	store  *records.MongoStore
	err    error
	done   bool
}

func (l *lazyMongo) close() {
	if l.client != nil {
		_ = l.client.Disconnect(context.Background())
	}
}

func (l *lazyMongo) get(ctx context.Context) (*records.MongoStore, error) {
	if l.done {
		return l.store, l.err
	}
	l.done = true
	client, err := database.ConnectMongo(ctx, l.uri, l.v.GetDuration("timeout"))
	if err != nil {
		logger.Warnf("roster: %v", err)
		l.err = fmt.Errorf("%w: %v", records.ErrUnavailable, err)
		return nil, l.err
	}
	l.client = client
	col := client.Database(l.v.GetString("database")).Collection(l.v.GetString("collection"))
	l.store = records.NewMongoStore(col, l.cache)
	return l.store, nil
}

func (l *lazyMongo) ReadStrong(ctx context.Context, key string) (*models.Identity, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ReadStrong(ctx, key)
}

func (l *lazyMongo) ReadCached(ctx context.Context, key string) (*models.Identity, error) {
	return l.cache.Get(ctx, key)
}

func (l *lazyMongo) Create(ctx context.Context, rec *models.Identity) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.Create(ctx, rec)
}

func (l *lazyMongo) ScanAll(ctx context.Context) ([]*models.Identity, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ScanAll(ctx)
}
