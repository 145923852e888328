package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/iliyamo/garage-api/internal/config"
)

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// ClientThrottle is a per-client token bucket for the whole API.  Each
// client IP gets its own rate.Limiter; idle limiters are evicted by Sweep.
type ClientThrottle struct {
	mu      sync.Mutex
	cfg     config.RateLimitConfig
	limit   rate.Limit
	now     func() time.Time
	clients map[string]*clientLimiter
}

func NewClientThrottle(cfg config.RateLimitConfig) *ClientThrottle {
	return &ClientThrottle{
		cfg:     cfg,
		limit:   rate.Every(cfg.RefillInterval),
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

func (t *ClientThrottle) limiter(key string, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	cl, ok := t.clients[key]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(t.limit, t.cfg.Capacity)}
		t.clients[key] = cl
	}
	cl.seen = now
	return cl.lim
}

// Take consumes one token for key.  When the bucket is empty it reports
// how long the client should wait.
func (t *ClientThrottle) Take(key string) (ok bool, remaining int, wait time.Duration) {
	now := t.now()
	lim := t.limiter(key, now)
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, 0, t.cfg.RefillInterval
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, 0, d
	}
	return true, int(lim.TokensAt(now)), 0
}

// Sweep drops limiters idle for longer than the configured TTL.
func (t *ClientThrottle) Sweep() int {
	cutoff := t.now().Add(-t.cfg.TTL)
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for k, cl := range t.clients {
		if cl.seen.Before(cutoff) {
			delete(t.clients, k)
			n++
		}
	}
	return n
}

// Middleware applies the throttle keyed by client IP.
func (t *ClientThrottle) Middleware() echo.MiddlewareFunc {
	if !t.cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			ok, remaining, wait := t.Take(ip)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(t.cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(retrySeconds(wait)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
