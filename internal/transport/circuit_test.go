package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerTripsOnConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 3, SuccessThreshold: 2, OpenDuration: time.Hour})

	for i := 0; i < 2; i++ {
		err := cb.Execute(func() error { return errors.New("boom") })
		require.Error(t, err)
		assert.Equal(t, BreakerClosed, cb.State())
	}

	err := cb.Execute(func() error { return errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, BreakerOpen, cb.State())
}

func TestCircuitBreakerRejectsWhileOpen(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 1, OpenDuration: time.Hour})
	_ = cb.Execute(func() error { return errors.New("boom") })
	assert.Equal(t, BreakerOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.Error(t, err)
	assert.False(t, called)
}

func TestCircuitBreakerHalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenDuration: time.Millisecond, HalfOpenMaxRequests: 5})
	_ = cb.Execute(func() error { return errors.New("boom") })
	require.Equal(t, BreakerOpen, cb.State())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, BreakerHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenDuration: time.Millisecond})
	_ = cb.Execute(func() error { return errors.New("boom") })
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	_ = cb.Execute(func() error { return errors.New("still broken") })
	assert.Equal(t, BreakerOpen, cb.State())
}

func TestCircuitBreakerSuccessResetsFailureCounter(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{FailureThreshold: 3, OpenDuration: time.Hour})
	_ = cb.Execute(func() error { return errors.New("boom") })
	_ = cb.Execute(func() error { return errors.New("boom") })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return errors.New("boom") })
	_ = cb.Execute(func() error { return errors.New("boom") })
	assert.Equal(t, BreakerClosed, cb.State())
}
