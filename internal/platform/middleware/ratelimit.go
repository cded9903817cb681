package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/safetynet/internal/platform/apierror"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// tokenBucket implements a token bucket rate limiter.
type tokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:     float64(burst),
		maxTokens:  float64(burst),
		refillRate: rate,
		lastRefill: time.Now(),
	}
}

// take consumes a token. When none is left it reports how many seconds
// until one is.
func (b *tokenBucket) take() (ok bool, retryAfter int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.maxTokens {
		b.tokens = b.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.refillRate <= 0 {
		return false, 1
	}
	return false, int((1-b.tokens)/b.refillRate) + 1
}

// clientBuckets holds one bucket per client IP. Buckets idle for longer
// than idle are dropped; by then they have refilled and a new bucket is
// equivalent.
type clientBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	cfg       RateLimitConfig
	idle      time.Duration
	lastSweep time.Time
}

func newClientBuckets(cfg RateLimitConfig) *clientBuckets {
	idle := time.Minute
	if cfg.RequestsPerSecond > 0 {
		full := time.Duration(float64(cfg.BurstSize) / cfg.RequestsPerSecond * float64(time.Second))
		if full > idle {
			idle = full
		}
	}
	return &clientBuckets{
		buckets:   make(map[string]*tokenBucket),
		cfg:       cfg,
		idle:      idle,
		lastSweep: time.Now(),
	}
}

func (s *clientBuckets) get(ip string) *tokenBucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now := time.Now(); now.Sub(s.lastSweep) >= s.idle {
		s.sweep(now)
		s.lastSweep = now
	}
	b, ok := s.buckets[ip]
	if !ok {
		b = newTokenBucket(s.cfg.RequestsPerSecond, s.cfg.BurstSize)
		s.buckets[ip] = b
	}
	return b
}

func (s *clientBuckets) sweep(now time.Time) {
	for ip, b := range s.buckets {
		b.mu.Lock()
		idle := now.Sub(b.lastRefill)
		b.mu.Unlock()
		if idle >= s.idle {
			delete(s.buckets, ip)
		}
	}
}

// RateLimit limits each client IP to a token bucket refilled at
// cfg.RequestsPerSecond. Refused requests get 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newClientBuckets(cfg)
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			ok, retryAfter := store.get(c.RealIP()).take()
			if !ok {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, apierror.Body{Message: "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
