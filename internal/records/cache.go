package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/kvstore"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
)

const cachePrefix = "record:"

// cachedRecord is the JSON envelope stored per key. Missing marks a key the
// server reported as absent.
type cachedRecord struct {
	Missing  bool             `json:"missing,omitempty"`
	Record   *models.Identity `json:"record,omitempty"`
	CachedAt time.Time        `json:"cachedAt"`
}

// Cache keeps last-known-good server answers in a key-value store.
// A nil *Cache behaves as an always-empty cache.
type Cache struct {
	kv kvstore.Store
}

func NewCache(kv kvstore.Store) *Cache {
	if kv == nil {
		return nil
	}
	return &Cache{kv: kv}
}

// Get returns the cached record, (nil, nil) for a cached absence, or
// ErrCacheMiss when the key was never seen.
func (c *Cache) Get(ctx context.Context, key string) (*models.Identity, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}
	raw, ok, err := c.kv.Get(ctx, cachePrefix+key)
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if !ok || raw == "" {
		return nil, ErrCacheMiss
	}
	var e cachedRecord
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	if e.Missing {
		return nil, nil
	}
	return e.Record, nil
}

// Put stores rec under key; a nil rec records that the key is absent.
func (c *Cache) Put(ctx context.Context, key string, rec *models.Identity) error {
	if c == nil {
		return nil
	}
	e := cachedRecord{Missing: rec == nil, Record: rec, CachedAt: time.Now().UTC()}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, cachePrefix+key, string(b))
}

// remember writes through to the cache; failures only cost freshness.
func (c *Cache) remember(ctx context.Context, key string, rec *models.Identity) {
	if err := c.Put(ctx, key, rec); err != nil {
		logger.Warnf("records: cache write for %q failed: %v", key, err)
	}
}
