// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(opts Options) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	l := New(opts)
	l.now = clock.Now

	return l, clock
}

func defaultOptions() Options {
	return Options{Rate: 1, Burst: 3, IPv4Prefix: 24, IPv6Prefix: 48}
}

func serve(l *Limiter, remoteAddr, path string) *httptest.ResponseRecorder {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr

	rr := httptest.NewRecorder()
	l.Evaluate(rr, req, next)

	return rr
}

func TestEvaluate_BurstThenLimited(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(defaultOptions())

	for i := range 3 {
		rr := serve(l, "203.0.113.10:1000", "/api/v1/translate")
		require.Equal(t, http.StatusOK, rr.Code, "request %d", i)
		assert.Equal(t, "3", rr.Header().Get(HeaderRateLimitLimit))
		assert.Equal(t, []string{"2", "1", "0"}[i], rr.Header().Get(HeaderRateLimitRemaining))
	}

	rr := serve(l, "203.0.113.10:1000", "/api/v1/translate")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.Equal(t, "3", rr.Header().Get(HeaderRateLimitReset))

	// Same /24 network shares the bucket.
	rr = serve(l, "203.0.113.99:1000", "/api/v1/translate")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// Other networks are unaffected.
	rr = serve(l, "198.51.100.1:1000", "/api/v1/translate")
	assert.Equal(t, http.StatusOK, rr.Code)

	clock.Advance(time.Second)

	rr = serve(l, "203.0.113.10:1000", "/api/v1/translate")
	assert.Equal(t, http.StatusOK, rr.Code, "a token is refilled after one second")
}

func TestEvaluate_Lists(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.Burst = 1
	opts.PassIPs = []string{"198.51.100.0/24"}
	opts.BlockIPs = []string{"192.0.2.5"}

	l, _ := newTestLimiter(opts)

	for range 5 {
		assert.Equal(t, http.StatusOK, serve(l, "198.51.100.7:1", "/").Code)
	}

	rr := serve(l, "192.0.2.5:1", "/")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
}

func TestEvaluate_Exclusions(t *testing.T) {
	t.Parallel()

	opts := defaultOptions()
	opts.Burst = 1

	l, _ := newTestLimiter(opts)

	for range 3 {
		assert.Equal(t, http.StatusOK, serve(l, "203.0.113.1:1", "/healthz").Code)
	}

	// Loopback clients are not limited unless FilterLocal is set.
	for range 3 {
		assert.Equal(t, http.StatusOK, serve(l, "127.0.0.1:1", "/").Code)
	}

	opts.FilterLocal = true
	l, _ = newTestLimiter(opts)

	assert.Equal(t, http.StatusOK, serve(l, "127.0.0.1:1", "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(l, "127.0.0.1:1", "/").Code)
}

func TestEvaluate_BadRemoteAddr(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(defaultOptions())

	assert.Equal(t, http.StatusBadRequest, serve(l, "", "/").Code)
}

func TestCleanupExpiredLimiters(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(defaultOptions())

	serve(l, "203.0.113.1:1", "/")
	clock.Advance(30 * time.Minute)
	serve(l, "198.51.100.1:1", "/")
	clock.Advance(31 * time.Minute)

	assert.Equal(t, 1, l.cleanupExpiredLimiters())

	_, ok := l.limiters.Load("198.51.100.0/24")
	assert.True(t, ok)

	_, ok = l.limiters.Load("203.0.113.0/24")
	assert.False(t, ok)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(defaultOptions())

	serve(l, "203.0.113.1:1", "/")
	serve(l, "203.0.113.1:1", "/")

	var buf bytes.Buffer
	require.NoError(t, l.Save(&buf))
	assert.Contains(t, buf.String(), `"network": "203.0.113.0/24"`)

	restored, _ := newTestLimiter(defaultOptions())
	require.NoError(t, restored.Load(&buf))

	rr := serve(restored, "203.0.113.1:1", "/")
	assert.Equal(t, "0", rr.Header().Get(HeaderRateLimitRemaining), "spent tokens survive a restart")

	require.NoError(t, restored.Load(strings.NewReader("")), "empty state is accepted")
	assert.Error(t, restored.Load(strings.NewReader("{")))
}

func TestSaveStateFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "limiter.json")

	l, _ := newTestLimiter(defaultOptions())
	serve(l, "2001:db8:1:2::1", "/")
	require.NoError(t, l.SaveState(path))

	restored, _ := newTestLimiter(defaultOptions())
	restored.LoadState(path)

	_, ok := restored.limiters.Load("2001:db8:1::/48")
	assert.True(t, ok)

	// Missing files only log.
	restored.LoadState(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, l.SaveState(""))
}
