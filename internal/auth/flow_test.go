package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/adrianjustdoit/Tugas-10PBP/internal/kvstore"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/models"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/nav"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/records"
	"github.com/adrianjustdoit/Tugas-10PBP/internal/sessions"
	"github.com/stretchr/testify/require"
)

// fakeStore wraps the in-memory collection and counts calls.
type fakeStore struct {
	*records.MemoryStore
	strongErrs  int // fail this many ReadStrong calls
	createErr   error
	strongCalls int
	cacheCalls  int
	createCalls int
}

func (f *fakeStore) ReadStrong(ctx context.Context, key string) (*models.Identity, error) {
	f.strongCalls++
	if f.strongErrs > 0 {
		f.strongErrs--
		return nil, records.ErrUnavailable
	}
	return f.MemoryStore.ReadStrong(ctx, key)
}

func (f *fakeStore) ReadCached(ctx context.Context, key string) (*models.Identity, error) {
	f.cacheCalls++
	return f.MemoryStore.ReadCached(ctx, key)
}

func (f *fakeStore) Create(ctx context.Context, rec *models.Identity) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	return f.MemoryStore.Create(ctx, rec)
}

func (f *fakeStore) remoteCalls() int { return f.strongCalls + f.cacheCalls + f.createCalls }

type fixture struct {
	store *fakeStore
	kv    *kvstore.MemoryStore
	sess  *sessions.Store
	nav   *nav.Recorder
	flow  *Flow
}

func newFixture(opts Options) *fixture {
	fx := &fixture{
		store: &fakeStore{MemoryStore: records.NewMemoryStore(records.NewCache(kvstore.NewMemoryStore()))},
		kv:    kvstore.NewMemoryStore(),
		nav:   &nav.Recorder{},
	}
	fx.sess = sessions.NewStore(fx.kv)
	fx.flow = NewFlow(fx.store, fx.sess, fx.nav, opts)
	return fx
}

func janeRegistration() *Form {
	return &Form{Identifier: "A100", Name: "Jane Doe", Email: "jane@x.edu", Credential: "pw1", Mode: ModeRegister}
}

func (fx *fixture) storedSession(t *testing.T) (models.Session, bool) {
	t.Helper()
	s, found, err := fx.sess.Load(context.Background())
	require.NoError(t, err)
	return s, found
}

func TestRegisterThenLogin(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()

	form := janeRegistration()
	sess, err := fx.flow.Submit(ctx, form)
	require.NoError(t, err)
	want := models.Session{Identifier: "A100", Name: "Jane Doe", Email: "jane@x.edu"}
	require.Equal(t, want, sess)
	require.True(t, form.Empty())
	require.Equal(t, 1, fx.store.Len())
	stored, found := fx.storedSession(t)
	require.True(t, found)
	require.Equal(t, want, stored)
	require.Equal(t, nav.Listing, fx.nav.Current())

	rec, err := fx.store.MemoryStore.ReadStrong(ctx, "a100")
	require.NoError(t, err)
	require.Equal(t, "A100", rec.Identifier)
	require.Equal(t, "a100", rec.NormalizedKey)
	require.Equal(t, "pw1", rec.Credential)

	// case-insensitive login through normalization
	require.NoError(t, fx.sess.Clear(ctx))
	login := &Form{Identifier: "a100", Credential: "pw1", Mode: ModeLogin}
	sess, err = fx.flow.Submit(ctx, login)
	require.NoError(t, err)
	require.Equal(t, want, sess)
	require.True(t, login.Empty())
	stored, _ = fx.storedSession(t)
	require.Equal(t, want, stored)
}

func TestLoginWrongCredential(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()
	_, err := fx.flow.Submit(ctx, janeRegistration())
	require.NoError(t, err)
	require.NoError(t, fx.sess.Clear(ctx))
	hops := fx.nav.Transitions()

	form := &Form{Identifier: "a100", Credential: "wrong", Mode: ModeLogin}
	_, err = fx.flow.Submit(ctx, form)
	require.ErrorIs(t, err, ErrInvalidCredential)
	require.NotErrorIs(t, err, ErrNotFound)
	_, found := fx.storedSession(t)
	require.False(t, found)
	require.Equal(t, "wrong", form.Credential, "form is kept on failure")
	require.Equal(t, hops, fx.nav.Transitions())
}

func TestLoginUnknownIdentifier(t *testing.T) {
	for _, id := range []string{"A100", "zz", "  b-200 "} {
		fx := newFixture(Options{})
		_, err := fx.flow.Submit(context.Background(), &Form{Identifier: id, Credential: "pw", Mode: ModeLogin})
		require.ErrorIs(t, err, ErrNotFound, id)
		_, found := fx.storedSession(t)
		require.False(t, found)
		require.Equal(t, 0, fx.nav.Transitions())
	}
}

func TestRegisterDuplicateAfterNormalization(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()
	form := janeRegistration()
	form.Identifier = " A100 "
	_, err := fx.flow.Submit(ctx, form)
	require.NoError(t, err)

	second := janeRegistration()
	second.Identifier = "a100"
	_, err = fx.flow.Submit(ctx, second)
	require.ErrorIs(t, err, ErrDuplicateIdentifier)
	require.Equal(t, 1, fx.store.Len())
}

func TestRegisterLosesCreateRace(t *testing.T) {
	fx := newFixture(Options{})
	fx.store.createErr = records.ErrExists
	_, err := fx.flow.Submit(context.Background(), janeRegistration())
	require.ErrorIs(t, err, ErrDuplicateIdentifier)
	_, found := fx.storedSession(t)
	require.False(t, found)
}

func TestRegisterInvalidEmailMakesNoRemoteCall(t *testing.T) {
	fx := newFixture(Options{})
	form := janeRegistration()
	form.Email = "not-an-email"
	_, err := fx.flow.Submit(context.Background(), form)
	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, 0, fx.store.remoteCalls())
}

func TestLookupFallsBackToCache(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()
	_, err := fx.flow.Submit(ctx, janeRegistration())
	require.NoError(t, err)
	require.NoError(t, fx.sess.Clear(ctx))

	fx.store.strongErrs = 1
	lk, err := fx.flow.Lookup(ctx, "a100")
	require.NoError(t, err)
	require.Equal(t, FromCache, lk.Provenance)
	require.True(t, lk.Exists())

	// login is allowed against cached data
	fx.store.strongErrs = 1
	sess, err := fx.flow.Submit(ctx, &Form{Identifier: "A100", Credential: "pw1", Mode: ModeLogin})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", sess.Name)
}

func TestLookupServerDoesNotTouchCache(t *testing.T) {
	fx := newFixture(Options{})
	lk, err := fx.flow.Lookup(context.Background(), "a100")
	require.NoError(t, err)
	require.Equal(t, FromServer, lk.Provenance)
	require.False(t, lk.Exists())
	require.Equal(t, 0, fx.store.cacheCalls)
}

func TestRegisterRejectsCachedExistenceCheck(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()
	// a server answer for the key lands in the cache
	_, err := fx.flow.Lookup(ctx, "a100")
	require.NoError(t, err)

	fx.store.strongErrs = 1
	_, err = fx.flow.Submit(ctx, janeRegistration())
	require.ErrorIs(t, err, ErrConnectivityRequired)
	require.Equal(t, 0, fx.store.createCalls)
}

func TestBothReadsFail(t *testing.T) {
	fx := newFixture(Options{})
	fx.store.strongErrs = 1
	_, err := fx.flow.Submit(context.Background(), &Form{Identifier: "never-seen", Credential: "pw", Mode: ModeLogin})
	require.ErrorIs(t, err, ErrConnectivity)
	_, found := fx.storedSession(t)
	require.False(t, found)
}

func TestRetriesStrongReadBeforeCache(t *testing.T) {
	fx := newFixture(Options{Retries: 2})
	fx.store.strongErrs = 2
	lk, err := fx.flow.Lookup(context.Background(), "a100")
	require.NoError(t, err)
	require.Equal(t, FromServer, lk.Provenance)
	require.Equal(t, 3, fx.store.strongCalls)
	require.Equal(t, 0, fx.store.cacheCalls)
}

func TestNegativeRetriesStillReadsServer(t *testing.T) {
	fx := newFixture(Options{Retries: -1})
	ctx := context.Background()
	_, err := fx.flow.Submit(ctx, janeRegistration())
	require.NoError(t, err)
	require.Equal(t, 1, fx.store.strongCalls)
	require.NoError(t, fx.sess.Clear(ctx))

	sess, err := fx.flow.Submit(ctx, &Form{Identifier: "A100", Credential: "pw1", Mode: ModeLogin})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", sess.Name)
	require.Equal(t, 2, fx.store.strongCalls)
}

func TestRegisterWriteUnavailable(t *testing.T) {
	fx := newFixture(Options{})
	fx.store.createErr = records.ErrUnavailable
	_, err := fx.flow.Submit(context.Background(), janeRegistration())
	require.ErrorIs(t, err, ErrConnectivity)
}

func TestRegisterWriteUnexpected(t *testing.T) {
	fx := newFixture(Options{})
	fx.store.createErr = errors.New("schema mismatch")
	_, err := fx.flow.Submit(context.Background(), janeRegistration())
	require.ErrorIs(t, err, ErrUnexpected)
	require.Equal(t, "unexpected", Outcome(err))
}

func TestLoginFallbacksForMissingFields(t *testing.T) {
	fx := newFixture(Options{})
	fx.store.Put(&models.Identity{ID: "c300", Credential: "pw", NormalizedKey: "c300"})
	sess, err := fx.flow.Submit(context.Background(), &Form{Identifier: " C300 ", Credential: "pw", Mode: ModeLogin})
	require.NoError(t, err)
	require.Equal(t, models.Session{Identifier: "C300", Name: models.DefaultDisplayName, Email: ""}, sess)
}

func TestBootstrap(t *testing.T) {
	fx := newFixture(Options{})
	ctx := context.Background()

	dest, _, err := fx.flow.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, nav.Auth, dest)
	require.Equal(t, 0, fx.nav.Transitions())

	require.NoError(t, fx.sess.Save(ctx, models.Session{Identifier: "A100", Name: "Jane Doe", Email: "jane@x.edu"}))
	dest, sess, err := fx.flow.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, nav.Listing, dest)
	require.Equal(t, "Jane Doe", sess.Name)
	require.Equal(t, nav.Listing, fx.nav.Current())

	// identifier without name is not an active session
	require.NoError(t, fx.sess.Save(ctx, models.Session{Identifier: "A100"}))
	dest, _, err = fx.flow.Bootstrap(ctx)
	require.NoError(t, err)
	require.Equal(t, nav.Auth, dest)
}
