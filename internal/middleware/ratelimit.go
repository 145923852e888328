package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/logger"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// FixedWindowLimiter counts hits per key in fixed windows.  The first hit
// for a key opens a window; the counter resets when the window expires.
type FixedWindowLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type fixedWindow struct {
	start time.Time
	count int
}

// MemoryLimiter is an in-process FixedWindowLimiter.  It is safe for
// concurrent use.  Expired windows are dropped by Sweep.
type MemoryLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	now     func() time.Time
	windows map[string]*fixedWindow
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{max: max, window: window, now: time.Now, windows: make(map[string]*fixedWindow)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.window)) {
		w = &fixedWindow{start: now}
		l.windows[key] = w
	}
	d := Decision{Limit: l.max}
	if w.count >= l.max {
		d.RetryAfter = w.start.Add(l.window).Sub(now)
		return d, nil
	}
	w.count++
	d.Allowed = true
	d.Remaining = l.max - w.count
	return d, nil
}

// Sweep removes expired windows and returns how many were dropped.
func (l *MemoryLimiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.window)) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// Len reports the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// fixedWindowScript increments the counter and starts the window expiry on
// the first hit.  It returns the count and the remaining window in ms.
var fixedWindowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	if ttl < 0 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
		ttl = tonumber(ARGV[1])
	end
	return { count, ttl }
`)

// RedisLimiter shares login counters between instances through Redis.
// When Redis fails it answers from an in-process fallback.
type RedisLimiter struct {
	rdb      *redis.Client
	cfg      config.LoginLimitConfig
	fallback *MemoryLimiter
	log      *logger.Logger
}

func NewRedisLimiter(rdb *redis.Client, cfg config.LoginLimitConfig, fallback *MemoryLimiter, log *logger.Logger) *RedisLimiter {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLimiter{rdb: rdb, cfg: cfg, fallback: fallback, log: log.WithComponent("ratelimit")}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	vals, err := fixedWindowScript.Run(ctx, l.rdb, []string{l.cfg.Prefix + ":" + key}, l.cfg.Window.Milliseconds()).Result()
	if err == nil {
		arr, ok := vals.([]interface{})
		if ok && len(arr) == 2 {
			count := int(asInt64(arr[0]))
			ttl := time.Duration(asInt64(arr[1])) * time.Millisecond
			d := Decision{Limit: l.cfg.Max, Allowed: count <= l.cfg.Max}
			if d.Allowed {
				d.Remaining = l.cfg.Max - count
			} else {
				d.RetryAfter = ttl
			}
			return d, nil
		}
		err = fmt.Errorf("unexpected script result %#v", vals)
	}
	l.log.Warnw("redis limiter unavailable, using in-process counters", "error", err)
	return l.fallback.Allow(ctx, key)
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// LoginRateLimit bounds attempts per client IP on the login route.  Limiter
// errors let the request through.
func LoginRateLimit(l FixedWindowLimiter, log *logger.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			d, err := l.Allow(c.Request().Context(), "login:"+ip)
			if err != nil {
				log.Errorw("login limiter failed", "error", err)
				return next(c)
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(retrySeconds(d.RetryAfter)))
				log.Warnw("login rate limit exceeded", "ip", ip)
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, please try again later")
			}
			return next(c)
		}
	}
}

func retrySeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
