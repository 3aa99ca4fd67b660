package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodie/src/db"
	"foodie/src/types"
)

func TestHashPassword(t *testing.T) {
	h1, err := HashPassword("pw1")
	require.NoError(t, err)
	h2, err := HashPassword("pw1")
	require.NoError(t, err)

	assert.NotEqual(t, "pw1", h1)
	assert.NotEqual(t, h1, h2, "hashes must be salted per record")
	assert.True(t, CheckPassword("pw1", h1))
	assert.True(t, CheckPassword("pw1", h2))
	assert.False(t, CheckPassword("wrong", h1))
	assert.False(t, CheckPassword("pw1", "not-a-hash"))
}

func TestAuthenticate(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	id, err := store.CreateAccount(ctx, "a@b.com", hash)
	require.NoError(t, err)

	acc, err := Authenticate(ctx, store, "a@b.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, id, acc.ID)

	_, err = Authenticate(ctx, store, "a@b.com", "wrong")
	assert.ErrorIs(t, err, types.ErrAuthFailed)

	_, errUnknown := Authenticate(ctx, store, "nobody@b.com", "pw1")
	assert.ErrorIs(t, errUnknown, types.ErrAuthFailed)
	assert.Equal(t, err.Error(), errUnknown.Error())
}

func TestAuthenticate_SharedEmail(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	h1, _ := HashPassword("first")
	h2, _ := HashPassword("second")
	_, err := store.CreateAccount(ctx, "a@b.com", h1)
	require.NoError(t, err)
	id2, err := store.CreateAccount(ctx, "a@b.com", h2)
	require.NoError(t, err)

	acc, err := Authenticate(ctx, store, "a@b.com", "second")
	require.NoError(t, err)
	assert.Equal(t, id2, acc.ID)
}

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour)

	value, expires, err := s.Sign("sess-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	got, err := s.Parse(value)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got)
}

func TestSigner_RejectsOtherKey(t *testing.T) {
	value, _, err := NewSigner("secret", time.Hour).Sign("sess-1")
	require.NoError(t, err)

	_, err = NewSigner("other", time.Hour).Parse(value)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestSigner_RejectsExpired(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	value, _, err := s.Sign("sess-1")
	require.NoError(t, err)

	_, err = NewSigner("secret", time.Hour).Parse(value)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestSigner_ParseExpired(t *testing.T) {
	issuer := NewSigner("secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	value, _, err := issuer.Sign("sess-1")
	require.NoError(t, err)

	s := NewSigner("secret", time.Hour)
	_, err = s.Parse(value)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	got, err := s.ParseExpired(value)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got)

	_, err = NewSigner("other", time.Hour).ParseExpired(value)
	assert.ErrorIs(t, err, types.ErrUnauthorized, "expired value from another key")
}

func TestSigner_ParseExpired_ClockAdvanced(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	value, _, err := s.Sign("sess-1")
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Parse(value)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	got, err := s.ParseExpired(value)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got)
}

func TestSigner_RejectsGarbage(t *testing.T) {
	_, err := NewSigner("secret", time.Hour).Parse("not.a.token")
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestCookies(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	exp := time.Now().Add(time.Hour)
	c := s.Cookie("v", exp)
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, exp, c.Expires)

	cleared := ClearCookie()
	assert.Equal(t, CookieName, cleared.Name)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

type fixture struct {
	signer   *Signer
	sessions *db.MemorySessionStore
	accounts *db.MemoryStore
	account  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		signer:   NewSigner("secret", time.Hour),
		sessions: db.NewMemorySessionStore(time.Hour),
		accounts: db.NewMemoryStore(),
	}
	id, err := f.accounts.CreateAccount(context.Background(), "a@b.com", "h")
	require.NoError(t, err)
	f.account = id
	return f
}

func (f *fixture) request(t *testing.T) (*http.Request, string) {
	t.Helper()
	sess, err := f.sessions.CreateSession(context.Background(), f.account)
	require.NoError(t, err)
	value, exp, err := f.signer.Sign(sess.Token)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(f.signer.Cookie(value, exp))
	return req, sess.Token
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	req, _ := f.request(t)

	acc, err := Resolve(req, f.signer, f.sessions, f.accounts)
	require.NoError(t, err)
	assert.Equal(t, f.account, acc.ID)
}

func TestResolve_NoCookie(t *testing.T) {
	f := newFixture(t)
	_, err := Resolve(httptest.NewRequest(http.MethodGet, "/me", nil), f.signer, f.sessions, f.accounts)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestResolve_DestroyedSession(t *testing.T) {
	f := newFixture(t)
	req, sessionToken := f.request(t)
	require.NoError(t, f.sessions.DeleteSession(context.Background(), sessionToken))

	_, err := Resolve(req, f.signer, f.sessions, f.accounts)
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestResolve_MissingAccountFailsClosed(t *testing.T) {
	f := newFixture(t)
	req, sessionToken := f.request(t)
	f.accounts.DeleteAccount(context.Background(), f.account)

	_, err := Resolve(req, f.signer, f.sessions, f.accounts)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = f.sessions.GetSession(context.Background(), sessionToken)
	assert.ErrorIs(t, err, types.ErrNotFound, "orphaned session is dropped")
}

func TestSessionMiddleware(t *testing.T) {
	f := newFixture(t)
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := AccountFrom(r.Context())
		require.True(t, ok)
		seen = acc.ID
		w.WriteHeader(http.StatusNoContent)
	})
	onErr := func(w http.ResponseWriter, err error) {
		http.Error(w, strings.ToUpper(err.Error()), http.StatusUnauthorized)
	}
	h := SessionMiddleware(f.signer, f.sessions, f.accounts, onErr, next)

	req, _ := f.request(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, f.account, seen)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
