package metadata

import (
	"log"
	"sync"
	"time"
)

// RaftSnapshot captures the metadata KV store state as of a given log
// index and term, so the consensus log can be truncated behind it.
type RaftSnapshot struct {
	LastIncludedIndex uint64
	LastIncludedTerm  uint64
	Data              []byte
	CreatedAt         time.Time
}

// RaftSnapshotConfig tunes when a shard snapshots and how much log it
// retains behind the snapshot point.
type RaftSnapshotConfig struct {
	// MinEntriesBeforeCompact is the minimum number of log entries kept
	// after the snapshot point, to let slow followers catch up via the
	// log rather than forcing an InstallSnapshot RPC.
	MinEntriesBeforeCompact int
	// MaxEntriesBeforeSnapshot is the log length that forces a new
	// snapshot to bound memory growth.
	MaxEntriesBeforeSnapshot int
}

// DefaultRaftSnapshotConfig matches the teacher's consensus engine's
// typical log retention window.
func DefaultRaftSnapshotConfig() RaftSnapshotConfig {
	return RaftSnapshotConfig{MinEntriesBeforeCompact: 1000, MaxEntriesBeforeSnapshot: 10000}
}

// RaftSnapshotManager tracks the latest Raft log snapshot for one
// metadata shard's consensus group, reusing the same (term, index) log
// coordinates as the shard's underlying consensus engine.
type RaftSnapshotManager struct {
	mu     sync.RWMutex
	cfg    RaftSnapshotConfig
	latest *RaftSnapshot
	now    func() time.Time
}

// NewRaftSnapshotManager returns a manager with no stored snapshot.
func NewRaftSnapshotManager(cfg RaftSnapshotConfig) *RaftSnapshotManager {
	return &RaftSnapshotManager{cfg: cfg, now: time.Now}
}

// CreateSnapshot stores a new snapshot covering all log entries up to and
// including lastIncludedIndex at lastIncludedTerm, replacing any previous
// snapshot.
func (m *RaftSnapshotManager) CreateSnapshot(lastIncludedIndex, lastIncludedTerm uint64, data []byte) RaftSnapshot {
	snap := RaftSnapshot{
		LastIncludedIndex: lastIncludedIndex,
		LastIncludedTerm:  lastIncludedTerm,
		Data:              data,
		CreatedAt:         m.now(),
	}
	m.mu.Lock()
	m.latest = &snap
	m.mu.Unlock()
	log.Printf("metadata: created raft snapshot at index %d, term %d", lastIncludedIndex, lastIncludedTerm)
	return snap
}

// LatestSnapshot returns the most recently stored snapshot, if any.
func (m *RaftSnapshotManager) LatestSnapshot() (RaftSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return RaftSnapshot{}, false
	}
	return *m.latest, true
}

// ShouldSnapshot reports whether the log has grown enough to force a new
// snapshot.
func (m *RaftSnapshotManager) ShouldSnapshot(currentLogLen int) bool {
	return currentLogLen >= m.cfg.MaxEntriesBeforeSnapshot
}

// CompactionPoint returns the log index up to which entries can safely be
// discarded, given the current log length. It returns false if no
// snapshot exists yet or the log hasn't grown enough past the retention
// window to justify compacting.
func (m *RaftSnapshotManager) CompactionPoint(currentLogLen int) (uint64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return 0, false
	}
	minIndex := int(m.latest.LastIncludedIndex) + m.cfg.MinEntriesBeforeCompact
	if currentLogLen <= minIndex {
		return 0, false
	}
	candidate := uint64(currentLogLen - m.cfg.MinEntriesBeforeCompact)
	if m.latest.LastIncludedIndex < candidate {
		return m.latest.LastIncludedIndex, true
	}
	return candidate, true
}

// RestoreSnapshot installs snapshot as the latest known snapshot (e.g.
// after receiving an InstallSnapshot RPC or reading local state at
// startup) and returns its state data for the caller to load into the KV
// store.
func (m *RaftSnapshotManager) RestoreSnapshot(snapshot RaftSnapshot) []byte {
	m.mu.Lock()
	m.latest = &snapshot
	m.mu.Unlock()
	log.Printf("metadata: restored raft snapshot from index %d, term %d", snapshot.LastIncludedIndex, snapshot.LastIncludedTerm)
	return snapshot.Data
}

// SnapshotCount returns 0 or 1, reflecting whether a snapshot is stored.
func (m *RaftSnapshotManager) SnapshotCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return 0
	}
	return 1
}
