// Package listing implements the read-only roster screen and logout.
package listing

import (
	"context"
	"fmt"
	"sync"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/nav"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/records"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/sessions"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/metrics"
)

// Entry is one row of the roster.
type Entry struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// ToEntry maps a stored record to a row. Missing fields fall back to:
// identifier -> the document key, name -> models.DefaultDisplayName, email -> "".
func ToEntry(rec *models.Identity) Entry {
	e := Entry{Identifier: rec.Identifier, Name: rec.Name, Email: rec.Email}
	if e.Identifier == "" {
		e.Identifier = rec.Key()
	}
	if e.Name == "" {
		e.Name = models.DefaultDisplayName
	}
	return e
}

type Flow struct {
	records  records.Store
	sessions *sessions.Store
	nav      nav.Navigator
}

func NewFlow(r records.Store, s *sessions.Store, n nav.Navigator) *Flow {
	if n == nil {
		n = nav.Discard
	}
	return &Flow{records: r, sessions: s, nav: n}
}

// Load scans the collection once. A failed scan is logged and yields an
// empty list.
func (f *Flow) Load(ctx context.Context) []Entry {
	recs, err := f.records.ScanAll(ctx)
	if err != nil {
		metrics.ListingScans.WithLabelValues("failed").Inc()
		logger.Errorf("listing: scanning records failed: %v", err)
		return []Entry{}
	}
	metrics.ListingScans.WithLabelValues("ok").Inc()
	out := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ToEntry(rec))
	}
	return out
}

// Logout clears the local session, then sends the navigator back to Auth.
// Nothing is written remotely.
func (f *Flow) Logout(ctx context.Context) error {
	if err := f.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	f.nav.Replace(nav.Auth)
	return nil
}

// Screen is one mount of the listing screen. Its entries are loaded once and
// can be taken exactly once.
type Screen struct {
	flow    *Flow
	once    sync.Once
	mu      sync.Mutex
	entries []Entry
	taken   bool
}

func (f *Flow) NewScreen() *Screen {
	return &Screen{flow: f}
}

// Mount performs the scan on first call; later calls do nothing.
func (s *Screen) Mount(ctx context.Context) {
	s.once.Do(func() {
		entries := s.flow.Load(ctx)
		s.mu.Lock()
		s.entries = entries
		s.mu.Unlock()
	})
}

// Entries hands out the loaded rows on the first call and nil afterwards.
func (s *Screen) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken {
		return nil
	}
	s.taken = true
	out := s.entries
	s.entries = nil
	return out
}
