package transport

import (
	"sync"
	"time"
)

// RateLimiterConfig configures a token-bucket limiter (spec.md §4.2.3).
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         float64
}

// RateLimiter is a token-bucket limiter. Refill is computed from
// wall-clock elapsed time since the last refill, capped at BurstSize.
type RateLimiter struct {
	mu         sync.Mutex
	config     RateLimiterConfig
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter constructs a limiter starting at full capacity.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		config:     config,
		tokens:     config.BurstSize,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

func (r *RateLimiter) refill() {
	now := r.now()
	elapsed := now.Sub(r.lastRefill)
	if elapsed <= 0 {
		return
	}
	r.tokens += elapsed.Seconds() * r.config.RequestsPerSecond
	if r.tokens > r.config.BurstSize {
		r.tokens = r.config.BurstSize
	}
	r.lastRefill = now
}

// TryAcquire attempts to withdraw n tokens, returning whether it
// succeeded and, if denied, a retry-after hint in milliseconds.
func (r *RateLimiter) TryAcquire(n float64) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	if r.tokens >= n {
		r.tokens -= n
		return true, 0
	}
	deficit := n - r.tokens
	waitSecs := deficit / r.config.RequestsPerSecond
	return false, time.Duration(waitSecs * float64(time.Second))
}

// Tokens returns the current token count, for tests and diagnostics.
func (r *RateLimiter) Tokens() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// CompositeLimiter checks a per-connection limiter before a shared global
// limiter, denying if either rejects.
type CompositeLimiter struct {
	perConn *RateLimiter
	global  *RateLimiter
}

// NewCompositeLimiter builds a two-tier limiter.
func NewCompositeLimiter(perConn, global *RateLimiter) *CompositeLimiter {
	return &CompositeLimiter{perConn: perConn, global: global}
}

// TryAcquire admits a request only if both tiers admit it. If the
// per-connection tier denies, the global tier's tokens are left untouched.
func (c *CompositeLimiter) TryAcquire(n float64) (bool, time.Duration) {
	if ok, wait := c.perConn.TryAcquire(n); !ok {
		return false, wait
	}
	if ok, wait := c.global.TryAcquire(n); !ok {
		return false, wait
	}
	return true, 0
}
