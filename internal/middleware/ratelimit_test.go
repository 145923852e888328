package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/garage-api/internal/config"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestMemoryLimiterFixedWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(5, time.Minute)
	l.now = clock.Now
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := l.Allow(ctx, "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "attempt %d", i+1)
		assert.Equal(t, 4-i, d.Remaining)
	}
	clock.Advance(20 * time.Second)
	d, _ := l.Allow(ctx, "login:1.2.3.4")
	assert.False(t, d.Allowed)
	assert.Equal(t, 40*time.Second, d.RetryAfter)

	other, _ := l.Allow(ctx, "login:5.6.7.8")
	assert.True(t, other.Allowed, "keys are independent")

	clock.Advance(40 * time.Second)
	d, _ = l.Allow(ctx, "login:1.2.3.4")
	assert.True(t, d.Allowed, "window expired")
}

func TestMemoryLimiterSweep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	l := NewMemoryLimiter(5, time.Minute)
	l.now = clock.Now
	_, _ = l.Allow(context.Background(), "a")
	clock.Advance(30 * time.Second)
	_, _ = l.Allow(context.Background(), "b")

	clock.Advance(31 * time.Second)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())
}

func TestMemoryLimiterConcurrent(t *testing.T) {
	l := NewMemoryLimiter(5, time.Minute)
	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, _ := l.Allow(context.Background(), "same"); d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 5, allowed.Load())
}

func TestLoginRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	e.POST("/api/auth/login", ok, LoginRateLimit(NewMemoryLimiter(2, time.Minute), nil))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	rec := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestRedisLimiterFallsBackWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := config.LoginLimitConfig{Max: 1, Window: time.Minute, Prefix: "rl"}
	l := NewRedisLimiter(rdb, cfg, NewMemoryLimiter(cfg.Max, cfg.Window), nil)

	d, err := l.Allow(context.Background(), "login:1.1.1.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	d, err = l.Allow(context.Background(), "login:1.1.1.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestClientThrottle(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	th := NewClientThrottle(config.RateLimitConfig{Enabled: true, Capacity: 2, RefillInterval: time.Second, TTL: time.Minute})
	th.now = clock.Now

	okA, _, _ := th.Take("a")
	okB, _, _ := th.Take("a")
	okC, _, wait := th.Take("a")
	assert.True(t, okA)
	assert.True(t, okB)
	assert.False(t, okC)
	assert.Greater(t, wait, time.Duration(0))

	clock.Advance(time.Second)
	okD, _, _ := th.Take("a")
	assert.True(t, okD, "one token refilled")

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, th.Sweep())
}

func TestClientThrottleMiddleware(t *testing.T) {
	th := NewClientThrottle(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillInterval: time.Hour, TTL: time.Hour})
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	e.Use(th.Middleware())
	e.GET("/", ok)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
}
