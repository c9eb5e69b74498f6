package records

import (
	"context"
	"sync"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
)

// MemoryStore is an in-process collection used when no MongoDB is configured
// and in tests. SetOffline simulates a lost connection: server operations fail
// with ErrUnavailable while ReadCached keeps answering from the cache.
type MemoryStore struct {
	mu      sync.RWMutex
	docs    map[string]*models.Identity
	offline bool
	cache   *Cache
}

func NewMemoryStore(cache *Cache) *MemoryStore {
	return &MemoryStore{docs: make(map[string]*models.Identity), cache: cache}
}

func (m *MemoryStore) SetOffline(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = v
}

func (m *MemoryStore) ReadStrong(ctx context.Context, key string) (*models.Identity, error) {
	m.mu.RLock()
	if m.offline {
		m.mu.RUnlock()
		return nil, ErrUnavailable
	}
	d, ok := m.docs[key]
	m.mu.RUnlock()
	if !ok {
		m.cache.remember(ctx, key, nil)
		return nil, nil
	}
	cp := *d
	m.cache.remember(ctx, key, &cp)
	return &cp, nil
}

func (m *MemoryStore) ReadCached(ctx context.Context, key string) (*models.Identity, error) {
	return m.cache.Get(ctx, key)
}

func (m *MemoryStore) Create(ctx context.Context, rec *models.Identity) error {
	m.mu.Lock()
	if m.offline {
		m.mu.Unlock()
		return ErrUnavailable
	}
	key := rec.NormalizedKey
	if _, ok := m.docs[key]; ok {
		m.mu.Unlock()
		return ErrExists
	}
	rec.ID = key
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	cp := *rec
	m.docs[key] = &cp
	m.mu.Unlock()
	m.cache.remember(ctx, key, &cp)
	return nil
}

func (m *MemoryStore) ScanAll(ctx context.Context) ([]*models.Identity, error) {
	m.mu.RLock()
	if m.offline {
		m.mu.RUnlock()
		return nil, ErrUnavailable
	}
	out := make([]*models.Identity, 0, len(m.docs))
	for _, d := range m.docs {
		cp := *d
		out = append(out, &cp)
	}
	m.mu.RUnlock()
	for _, d := range out {
		m.cache.remember(ctx, d.Key(), d)
	}
	return out, nil
}

// Put stores a raw document, bypassing Create's checks. Used to seed
// documents written by other clients.
func (m *MemoryStore) Put(rec *models.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.docs[rec.Key()] = &cp
}

// Len reports the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
