package gateway

import "sync"

// WriteStability is the NFSv3 stability level requested for a write,
// ordered Unstable < DataSync < FileSync.
type WriteStability int

const (
	WriteStabilityUnstable WriteStability = iota
	WriteStabilityDataSync
	WriteStabilityFileSync
)

// PendingWrite records one uncommitted NFSv3 write.
type PendingWrite struct {
	FhKey     string
	Offset    uint64
	Count     uint32
	Stability WriteStability
	Verf      uint64
}

// WriteTracker tracks pending unstable/datasync writes per file handle
// until a COMMIT clears them, per RFC 1813 §3.3.7.
type WriteTracker struct {
	mu       sync.Mutex
	writeVerf uint64
	pending  map[string][]PendingWrite
}

// NewWriteTracker returns a tracker stamping every pending write with
// writeVerf, the server's boot-instance write verifier.
func NewWriteTracker(writeVerf uint64) *WriteTracker {
	return &WriteTracker{writeVerf: writeVerf, pending: make(map[string][]PendingWrite)}
}

// RecordWrite appends a pending write for fhKey.
func (t *WriteTracker) RecordWrite(fhKey string, offset uint64, count uint32, stability WriteStability) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[fhKey] = append(t.pending[fhKey], PendingWrite{
		FhKey: fhKey, Offset: offset, Count: count, Stability: stability, Verf: t.writeVerf,
	})
}

// PendingWrites returns the pending writes recorded for fhKey.
func (t *WriteTracker) PendingWrites(fhKey string) []PendingWrite {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PendingWrite, len(t.pending[fhKey]))
	copy(out, t.pending[fhKey])
	return out
}

// PendingCount returns the number of pending writes for fhKey.
func (t *WriteTracker) PendingCount(fhKey string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending[fhKey])
}

// TotalPending returns the number of file handles with at least one
// pending write.
func (t *WriteTracker) TotalPending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// HasPendingWrites reports whether fhKey has any uncommitted writes.
func (t *WriteTracker) HasPendingWrites(fhKey string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending[fhKey]) > 0
}

// Commit drops all pending writes for fhKey and returns the write verifier.
func (t *WriteTracker) Commit(fhKey string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, fhKey)
	return t.writeVerf
}

// CommitAll drops every pending write across all file handles and
// returns the write verifier.
func (t *WriteTracker) CommitAll() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = make(map[string][]PendingWrite)
	return t.writeVerf
}

// RemoveFile drops all pending writes for fhKey, e.g. on close/unlink,
// without returning a verifier.
func (t *WriteTracker) RemoveFile(fhKey string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, fhKey)
}

// WriteVerf returns the tracker's write verifier.
func (t *WriteTracker) WriteVerf() uint64 {
	return t.writeVerf
}
