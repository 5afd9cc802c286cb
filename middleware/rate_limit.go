package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"docs-portal/internal/domain"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// ipLimiter holds a client's rate limiter and the last time it was seen.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-client rate limiting per endpoint group. Clients
// are keyed by IP unless KeyedBy says otherwise.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rate     rate.Limit
	burst    int
	key      func(c echo.Context) string

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new per-IP rate limiter. Its cleanup goroutine
// runs until Stop is called.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		rate:     r,
		burst:    burst,
		key:      func(c echo.Context) string { return c.RealIP() },
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

// KeyedBy replaces the client key. Requests for which key returns ""
// are keyed by IP, so a key that reads per-request state set by earlier
// middleware only takes effect when mounted after that middleware.
func (rl *RateLimiter) KeyedBy(key func(c echo.Context) string) *RateLimiter {
	rl.key = func(c echo.Context) string {
		if k := key(c); k != "" {
			return k
		}
		return c.RealIP()
	}
	return rl
}

// getLimiter returns the rate limiter for key, creating one if needed.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, exists := rl.limiters[key]; exists {
		l.lastSeen = time.Now()
		return l.limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[key] = &ipLimiter{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// cleanupLoop sweeps stale entries every 3 minutes until Stop.
func (rl *RateLimiter) cleanupLoop() {
	defer close(rl.done)

	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.sweep(now)
		case <-rl.stop:
			return
		}
	}
}

// sweep removes entries idle for more than 5 minutes at now.
func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, l := range rl.limiters {
		if now.Sub(l.lastSeen) > 5*time.Minute {
			delete(rl.limiters, key)
		}
	}
}

// Middleware returns an Echo middleware that enforces the rate limit.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := rl.getLimiter(rl.key(c))

			if !limiter.Allow() {
				retryAfter := max(int(1.0/float64(rl.rate)), 1)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, domain.ErrRateLimited.Error())
			}

			return next(c)
		}
	}
}
