package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlineNotExpiredWhenUnset(t *testing.T) {
	ctx := NewDeadlineContext()
	require.NoError(t, ctx.Check())
}

func TestDeadlineExpiresImmediately(t *testing.T) {
	ctx := WithTimeout(0)
	time.Sleep(time.Millisecond)
	require.Error(t, ctx.Check())
}

func TestDeadlineRemainingPositive(t *testing.T) {
	ctx := WithTimeout(5 * time.Second)
	require.NoError(t, ctx.Check())
}

func TestDeadlineEncodeDecodeRoundtrip(t *testing.T) {
	ctx := WithTimeout(10 * time.Second)
	buf := EncodeDeadline(ctx)
	decoded := DecodeDeadline(buf)
	assert.Equal(t, ctx.deadline.ExpiryMS(), decoded.deadline.ExpiryMS())
}

func TestDeadlineEncodeDecodeUnset(t *testing.T) {
	ctx := NewDeadlineContext()
	buf := EncodeDeadline(ctx)
	assert.Equal(t, [8]byte{}, buf)
	decoded := DecodeDeadline(buf)
	assert.Nil(t, decoded.deadline)
}
