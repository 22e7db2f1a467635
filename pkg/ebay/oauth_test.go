package ebay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is a TokenCache with a controllable clock.
type fakeCache struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]fakeEntry
	getErr  error
	setErr  error
	lastTTL time.Duration
}

type fakeEntry struct {
	value   []byte
	expires time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		now:     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		entries: make(map[string]fakeEntry),
	}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.entries[key]
	if !ok || !f.now.Before(e.expires) {
		return nil, nil
	}
	return e.value, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.lastTTL = ttl
	f.entries[key] = fakeEntry{value: value, expires: f.now.Add(ttl)}
	return nil
}

func (f *fakeCache) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func tokenServer(t *testing.T, calls *atomic.Int32, expiresIn int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, DefaultScope, r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			w.Write([]byte(`{"access_token":"tok-1","expires_in":` + strconv.Itoa(expiresIn) + `,"token_type":"Application Access Token"}`))
			return
		}
		w.Write([]byte(`{"access_token":"tok-2","expires_in":` + strconv.Itoa(expiresIn) + `,"token_type":"Application Access Token"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestToken_CachedUntilExpiry(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls, 7200)
	cache := newFakeCache()
	p := NewTokenProvider("client-id", "client-secret", cache, WithTokenURL(srv.URL))

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 7200*time.Second-expiryMargin, cache.lastTTL)

	tok, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, int32(1), calls.Load())

	// Past the margin-adjusted expiry the token is refreshed.
	cache.advance(7200*time.Second - expiryMargin)
	tok, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, int32(2), calls.Load())
}

func TestToken_NoLifetimeNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls, 0)
	cache := newFakeCache()
	p := NewTokenProvider("client-id", "client-secret", cache, WithTokenURL(srv.URL))

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Empty(t, cache.entries)

	tok, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, int32(2), calls.Load())
}

func TestToken_ShortLifetimeClampedToMinimum(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls, 61)
	cache := newFakeCache()
	p := NewTokenProvider("client-id", "client-secret", cache, WithTokenURL(srv.URL))

	_, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, minTokenTTL, cache.lastTTL)
}

func TestToken_CacheReadFailureFallsThrough(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls, 7200)
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	p := NewTokenProvider("client-id", "client-secret", cache, WithTokenURL(srv.URL))

	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestToken_NilCacheAlwaysExchanges(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls, 7200)
	p := NewTokenProvider("client-id", "client-secret", nil, WithTokenURL(srv.URL))

	_, err := p.Token(context.Background())
	require.NoError(t, err)
	_, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestToken_MissingCredentials(t *testing.T) {
	p := NewTokenProvider("", "", newFakeCache())
	_, err := p.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestToken_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	p := NewTokenProvider("client-id", "client-secret", newFakeCache(), WithTokenURL(srv.URL))
	_, err := p.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTokenTTL(t *testing.T) {
	assert.Equal(t, 7140*time.Second, tokenTTL(7200*time.Second))
	assert.Equal(t, 30*time.Second, tokenTTL(61*time.Second))
	assert.Equal(t, 30*time.Second, tokenTTL(90*time.Second))
	assert.Equal(t, 40*time.Second, tokenTTL(100*time.Second))
	assert.Equal(t, 20*time.Second, tokenTTL(20*time.Second))
	assert.Equal(t, time.Duration(0), tokenTTL(0))
	assert.Equal(t, time.Duration(0), tokenTTL(-time.Second))
}
