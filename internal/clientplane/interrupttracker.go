package clientplane

import (
	"sync"

	"github.com/claudefs/claudefs/pkg/errors"
)

// RequestState is the lifecycle stage of an in-flight FUSE request.
type RequestState uint8

const (
	RequestPending RequestState = iota
	RequestProcessing
	RequestInterrupted
	RequestCompleted
)

// TrackedRequest is one in-flight FUSE upcall being tracked for
// interruption.
type TrackedRequest struct {
	ID         uint64
	Opcode     uint32
	Pid        uint32
	State      RequestState
	EnqueuedAt int64
	StartedAt  int64
}

// InterruptTracker tracks in-flight requests so a kernel FUSE_INTERRUPT can
// be matched against the pending/processing request and so stale requests
// can be drained.
type InterruptTracker struct {
	mu         sync.Mutex
	maxPending int
	requests   map[uint64]*TrackedRequest
}

// NewInterruptTracker returns a tracker that rejects new requests once
// maxPending are outstanding.
func NewInterruptTracker(maxPending int) *InterruptTracker {
	return &InterruptTracker{maxPending: maxPending, requests: make(map[uint64]*TrackedRequest)}
}

// Enqueue registers a new pending request, failing if the tracker is at
// capacity.
func (t *InterruptTracker) Enqueue(id uint64, opcode uint32, pid uint32, nowMs int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) >= t.maxPending {
		return errors.NewError(errors.ErrCodeInvalidArgument, "interrupt tracker at capacity")
	}
	t.requests[id] = &TrackedRequest{ID: id, Opcode: opcode, Pid: pid, State: RequestPending, EnqueuedAt: nowMs}
	return nil
}

// MarkProcessing transitions id from Pending to Processing.
func (t *InterruptTracker) MarkProcessing(id uint64, nowMs int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.requests[id]
	if !ok {
		return errors.NewError(errors.ErrCodeNotFound, "unknown request id")
	}
	req.State = RequestProcessing
	req.StartedAt = nowMs
	return nil
}

// Interrupt marks id as interrupted if it is still pending or processing.
func (t *InterruptTracker) Interrupt(id uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.requests[id]
	if !ok {
		return errors.NewError(errors.ErrCodeNotFound, "unknown request id")
	}
	if req.State == RequestPending || req.State == RequestProcessing {
		req.State = RequestInterrupted
	}
	return nil
}

// Complete removes id from tracking.
func (t *InterruptTracker) Complete(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.requests, id)
}

// IsInterrupted reports whether id has been marked interrupted.
func (t *InterruptTracker) IsInterrupted(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.requests[id]
	return ok && req.State == RequestInterrupted
}

// DrainTimedOut removes and returns every request whose EnqueuedAt is older
// than timeoutMs relative to nowMs.
func (t *InterruptTracker) DrainTimedOut(nowMs, timeoutMs int64) []TrackedRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	var drained []TrackedRequest
	for id, req := range t.requests {
		if nowMs-req.EnqueuedAt >= timeoutMs {
			drained = append(drained, *req)
			delete(t.requests, id)
		}
	}
	return drained
}

// Len returns the number of tracked requests.
func (t *InterruptTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}
