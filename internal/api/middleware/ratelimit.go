package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	staleAfter    = 10 * time.Minute
	sweepInterval = 10 * time.Minute
)

// clientLimiter pairs a token bucket with the last time its IP was seen.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

func (c *clientLimiter) touch(now time.Time) {
	c.lastSeen.Store(now.UnixNano())
}

// RateLimiter applies a per-IP token bucket. Entries idle longer than
// staleAfter are evicted by a background sweep so one-off clients do
// not accumulate forever.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(rps),
		burst:   burst,
	}
}

// Allow reports whether a request from key fits its bucket.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.RLock()
	c, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		c.touch(now)
		return c.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if c, ok = rl.clients[key]; ok {
		c.touch(now)
		return c.limiter
	}

	c = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
	c.touch(now)
	rl.clients[key] = c
	return c.limiter
}

// Sweep drops entries not seen within olderThan.
func (rl *RateLimiter) Sweep(olderThan time.Duration) {
	cutoff := time.Now().Add(-olderThan).UnixNano()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if c.lastSeen.Load() < cutoff {
			delete(rl.clients, key)
		}
	}
}

// RateLimit returns middleware that limits requests per client IP.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rps, burst)

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Sweep(staleAfter)
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// RealIP has already rewritten RemoteAddr when a proxy
			// header was present; strip the port so one client maps to
			// one bucket regardless of connection.
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}

			if !limiter.Allow(ip) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
