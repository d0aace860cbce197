package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 10, BurstSize: 5})
	for i := 0; i < 5; i++ {
		ok, _ := rl.TryAcquire(1)
		assert.True(t, ok)
	}
	ok, wait := rl.TryAcquire(1)
	assert.False(t, ok)
	assert.Greater(t, wait.Nanoseconds(), int64(0))
}

func TestRateLimiterRefillCapsAtBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 100, BurstSize: 3})
	rl.lastRefill = rl.lastRefill.Add(-time.Hour)
	assert.LessOrEqual(t, rl.Tokens(), 3.0)
}

func TestCompositeLimiterDeniesOnEitherTier(t *testing.T) {
	perConn := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1})
	global := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 100, BurstSize: 100})
	c := NewCompositeLimiter(perConn, global)

	ok, _ := c.TryAcquire(1)
	assert.True(t, ok)
	ok, _ = c.TryAcquire(1)
	assert.False(t, ok)
}
