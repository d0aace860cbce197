package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claudefs/claudefs/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryExecutorRetriesIdempotentOpcode(t *testing.T) {
	r := NewRetryExecutor(retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2,
	}, []uint16{42})

	attempts := 0
	err := r.Do(context.Background(), 42, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryExecutorDoesNotRetryNonIdempotent(t *testing.T) {
	r := NewRetryExecutor(retry.DefaultConfig(), []uint16{42})
	attempts := 0
	err := r.Do(context.Background(), 99, func(ctx context.Context) error {
		attempts++
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
