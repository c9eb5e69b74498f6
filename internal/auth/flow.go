// Package auth implements the login/registration screen: local validation,
// the server-then-cache lookup, and persisting the session record.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/nav"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/records"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/sessions"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/logger"
	"github.com/adrianjustdoit/Tugas-10PBP/pkg/metrics"
)

// Options bounds every remote call. Zero values mean no timeout and a
// single strong-read attempt.
type Options struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// Provenance tells where a lookup was answered from.
type Provenance int

const (
	FromServer Provenance = iota
	FromCache
)

func (p Provenance) String() string {
	if p == FromCache {
		return "cache"
	}
	return "server"
}

// Lookup is the resolved read of one identity record.
type Lookup struct {
	Record     *models.Identity
	Provenance Provenance
}

func (l Lookup) Exists() bool { return l.Record != nil }

// Flow is the auth screen's logic, bound to its collaborators.
type Flow struct {
	records  records.Store
	sessions *sessions.Store
	nav      nav.Navigator
	opts     Options
}

func NewFlow(r records.Store, s *sessions.Store, n nav.Navigator, opts Options) *Flow {
	if n == nil {
		n = nav.Discard
	}
	// the server is always asked at least once
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Flow{records: r, sessions: s, nav: n, opts: opts}
}

// Bootstrap runs once when the screen mounts. With an active session it
// moves straight to the listing; otherwise the form should be shown.
func (f *Flow) Bootstrap(ctx context.Context) (nav.Destination, models.Session, error) {
	sess, _, err := f.sessions.Load(ctx)
	if err != nil {
		logger.Warnf("auth: reading local session failed: %v", err)
		return nav.Auth, models.Session{}, err
	}
	if sessions.Active(sess) {
		f.nav.Replace(nav.Listing)
		return nav.Listing, sess, nil
	}
	return nav.Auth, models.Session{}, nil
}

// Submit validates form, resolves the record and runs the login or register
// branch. On success the session is persisted, form is reset and the
// navigator is sent to the listing, in that order.
func (f *Flow) Submit(ctx context.Context, form *Form) (sess models.Session, err error) {
	mode := form.Mode
	if mode != ModeRegister {
		mode = ModeLogin
	}
	defer func() {
		metrics.AuthAttempts.WithLabelValues(string(mode), Outcome(err)).Inc()
	}()

	if err := Validate(form); err != nil {
		return models.Session{}, err
	}
	raw := strings.TrimSpace(form.Identifier)
	key := Normalize(raw)

	lk, err := f.Lookup(ctx, key)
	if err != nil {
		return models.Session{}, err
	}

	if mode == ModeRegister {
		sess, err = f.register(ctx, form, raw, key, lk)
	} else {
		sess, err = f.login(lk, raw, form.Credential)
	}
	if err != nil {
		return models.Session{}, err
	}

	if err := f.sessions.Save(ctx, sess); err != nil {
		return models.Session{}, unexpected(mode, err)
	}
	form.Reset()
	f.nav.Replace(nav.Listing)
	return sess, nil
}

// Lookup reads key from the server and, only if that fails, from the local cache.
func (f *Flow) Lookup(ctx context.Context, key string) (Lookup, error) {
	rec, err := f.readStrong(ctx, key)
	if err == nil {
		metrics.RecordReads.WithLabelValues("server").Inc()
		return Lookup{Record: rec, Provenance: FromServer}, nil
	}
	logger.Warnf("auth: server read of %q failed, trying cache: %v", key, err)

	rec, cerr := bounded(ctx, f.opts.Timeout, func(ctx context.Context) (*models.Identity, error) {
		return f.records.ReadCached(ctx, key)
	})
	if cerr != nil {
		metrics.RecordReads.WithLabelValues("failed").Inc()
		logger.Warnf("auth: cache read of %q failed: %v", key, cerr)
		return Lookup{}, ErrConnectivity
	}
	metrics.RecordReads.WithLabelValues("cache").Inc()
	return Lookup{Record: rec, Provenance: FromCache}, nil
}

func (f *Flow) readStrong(ctx context.Context, key string) (*models.Identity, error) {
	backoff := f.opts.Backoff
	var lastErr error
	for attempt := 0; attempt <= f.opts.Retries; attempt++ {
		if attempt > 0 && backoff > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		rec, err := bounded(ctx, f.opts.Timeout, func(ctx context.Context) (*models.Identity, error) {
			return f.records.ReadStrong(ctx, key)
		})
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (f *Flow) register(ctx context.Context, form *Form, raw, key string, lk Lookup) (models.Session, error) {
	if lk.Provenance == FromCache {
		return models.Session{}, ErrConnectivityRequired
	}
	if lk.Exists() {
		return models.Session{}, ErrDuplicateIdentifier
	}
	rec := &models.Identity{
		Identifier:    raw,
		Name:          strings.TrimSpace(form.Name),
		Email:         strings.TrimSpace(form.Email),
		Credential:    form.Credential,
		NormalizedKey: key,
	}
	_, err := bounded(ctx, f.opts.Timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.records.Create(ctx, rec)
	})
	switch {
	case err == nil:
	case errors.Is(err, records.ErrExists):
		// another device registered the key after our existence check
		return models.Session{}, ErrDuplicateIdentifier
	case errors.Is(err, records.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		logger.Warnf("auth: creating %q failed: %v", key, err)
		return models.Session{}, ErrConnectivity
	default:
		return models.Session{}, unexpected(ModeRegister, err)
	}
	return models.Session{Identifier: rec.Identifier, Name: rec.Name, Email: rec.Email}, nil
}

func (f *Flow) login(lk Lookup, raw, credential string) (models.Session, error) {
	if !lk.Exists() {
		return models.Session{}, ErrNotFound
	}
	rec := lk.Record
	// plaintext comparison; credentials are not hashed in this system
	if rec.Credential != credential {
		return models.Session{}, ErrInvalidCredential
	}
	sess := models.Session{Identifier: rec.Identifier, Name: rec.Name, Email: rec.Email}
	if sess.Identifier == "" {
		sess.Identifier = raw
	}
	if sess.Name == "" {
		sess.Name = models.DefaultDisplayName
	}
	return sess, nil
}

func unexpected(mode Mode, err error) error {
	logger.Errorf("auth: %s failed unexpectedly: %v", mode, err)
	return fmt.Errorf("%w: %v", ErrUnexpected, err)
}

// bounded runs fn under a per-call timeout when d > 0.
func bounded[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}
