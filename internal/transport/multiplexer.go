package transport

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/claudefs/claudefs/pkg/errors"
)

// pendingSlot is a one-shot response slot for a single in-flight request.
type pendingSlot struct {
	ch chan *codec.Frame
}

// Multiplexer assigns monotonic request ids to outgoing calls and
// dispatches incoming response frames back to the caller that issued
// them (spec.md §4.2.2). A single reader goroutine per connection feeds
// Dispatch; NextRequestID, Register, Wait and Cancel are safe to call from
// many goroutines concurrently
// (independent read/write halves, per spec.md §5).
type Multiplexer struct {
	mu      sync.Mutex
	pending map[uint64]*pendingSlot
	nextID  uint64
}

// NewMultiplexer constructs an empty multiplexer.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{pending: make(map[uint64]*pendingSlot)}
}

// NextRequestID returns a fresh monotonic request id.
func (m *Multiplexer) NextRequestID() uint64 {
	return atomic.AddUint64(&m.nextID, 1)
}

// Register allocates a pending slot for requestID, returning the channel
// that will receive the eventual response frame.
func (m *Multiplexer) Register(requestID uint64) <-chan *codec.Frame {
	ch := make(chan *codec.Frame, 1)
	m.mu.Lock()
	m.pending[requestID] = &pendingSlot{ch: ch}
	m.mu.Unlock()
	return ch
}

// Dispatch delivers an incoming response frame to its pending slot, if
// any. A response for an unknown (already-cancelled or never-registered)
// request id is silently dropped, per spec.md §4.2.2/§5.
func (m *Multiplexer) Dispatch(frame *codec.Frame) {
	m.mu.Lock()
	slot, ok := m.pending[frame.Header.RequestID]
	if ok {
		delete(m.pending, frame.Header.RequestID)
	}
	m.mu.Unlock()
	if ok {
		slot.ch <- frame
	}
}

// Cancel removes the pending slot for requestID, if present, so that any
// later response for it is dropped by Dispatch. Returns true if a slot
// was actually removed.
func (m *Multiplexer) Cancel(requestID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pending[requestID]; ok {
		delete(m.pending, requestID)
		return true
	}
	return false
}

// Wait blocks on ch until a response arrives or timeout elapses. On
// timeout the pending slot is removed and request-timeout is returned.
func (m *Multiplexer) Wait(requestID uint64, ch <-chan *codec.Frame, timeout time.Duration) (*codec.Frame, error) {
	if timeout <= 0 {
		frame := <-ch
		return frame, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case frame := <-ch:
		return frame, nil
	case <-timer.C:
		m.Cancel(requestID)
		return nil, errors.NewError(errors.ErrCodeRequestTimeout, "request timed out").
			WithDetail("request_id", requestID)
	}
}

// PendingCount returns the number of in-flight requests, for diagnostics.
func (m *Multiplexer) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
