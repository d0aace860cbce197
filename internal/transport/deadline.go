package transport

import (
	"time"

	"github.com/claudefs/claudefs/pkg/errors"
)

// Deadline is an absolute epoch-millis value; zero means "no deadline",
// grounded on claudefs-transport/src/deadline.rs.
type Deadline struct {
	expiryMS uint64
}

// NewDeadline returns a deadline timeout from now.
func NewDeadline(timeout time.Duration) Deadline {
	nowMS := uint64(time.Now().UnixMilli())
	return Deadline{expiryMS: nowMS + uint64(timeout.Milliseconds())}
}

// DeadlineFromEpochMS builds a deadline from an absolute epoch-millis value.
func DeadlineFromEpochMS(ms uint64) Deadline { return Deadline{expiryMS: ms} }

// ExpiryMS returns the absolute expiry in epoch-millis.
func (d Deadline) ExpiryMS() uint64 { return d.expiryMS }

// IsExpired reports whether the deadline has passed.
func (d Deadline) IsExpired() bool {
	if d.expiryMS == 0 {
		return false
	}
	return uint64(time.Now().UnixMilli()) >= d.expiryMS
}

// Remaining returns the time left until expiry, or 0 if already expired
// or unset.
func (d Deadline) Remaining() time.Duration {
	if d.expiryMS == 0 {
		return 0
	}
	nowMS := uint64(time.Now().UnixMilli())
	if d.expiryMS <= nowMS {
		return 0
	}
	return time.Duration(d.expiryMS-nowMS) * time.Millisecond
}

// DeadlineContext propagates an optional deadline through a call chain.
type DeadlineContext struct {
	deadline *Deadline
}

// NewDeadlineContext returns a context with no deadline set.
func NewDeadlineContext() DeadlineContext { return DeadlineContext{} }

// WithTimeout returns a context with a deadline set to now + timeout.
func WithTimeout(timeout time.Duration) DeadlineContext {
	d := NewDeadline(timeout)
	return DeadlineContext{deadline: &d}
}

// WithDeadline returns a context carrying an explicit deadline.
func WithDeadline(d Deadline) DeadlineContext {
	return DeadlineContext{deadline: &d}
}

// Check returns request-timeout iff a deadline is set and has expired.
func (c DeadlineContext) Check() error {
	if c.deadline == nil || !c.deadline.IsExpired() {
		return nil
	}
	return errors.NewError(errors.ErrCodeRequestTimeout, "deadline expired").
		WithDetail("expiry_ms", c.deadline.ExpiryMS())
}

// EncodeDeadline packs the context as an 8-byte big-endian epoch-millis
// value (0 when unset).
func EncodeDeadline(c DeadlineContext) [8]byte {
	var expiry uint64
	if c.deadline != nil {
		expiry = c.deadline.ExpiryMS()
	}
	var out [8]byte
	for i := 0; i < 8; i++ {
		out[7-i] = byte(expiry >> (8 * i))
	}
	return out
}

// DecodeDeadline unpacks an 8-byte big-endian epoch-millis value into a
// context; an all-zero value decodes to "no deadline".
func DecodeDeadline(buf [8]byte) DeadlineContext {
	var expiry uint64
	for i := 0; i < 8; i++ {
		expiry = expiry<<8 | uint64(buf[i])
	}
	if expiry == 0 {
		return NewDeadlineContext()
	}
	return WithDeadline(DeadlineFromEpochMS(expiry))
}
