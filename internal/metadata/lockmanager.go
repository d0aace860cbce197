package metadata

import (
	"sync"

	"github.com/claudefs/claudefs/pkg/errors"
)

// LockType is the POSIX fcntl() lock mode.
type LockType uint8

const (
	// LockRead is a shared lock; any number of readers may hold it
	// concurrently.
	LockRead LockType = iota
	// LockWrite is an exclusive lock.
	LockWrite
)

// LockEntry is one active lock held on an inode.
type LockEntry struct {
	Ino      uint64
	LockType LockType
	Holder   string
	LockID   uint64
}

// LockManager tracks per-inode POSIX read/write locks.
//
// Conflict rule: a write-lock request is rejected if the inode already
// carries a lock from a *different* holder; a read-lock request is
// rejected only if the inode carries a write-lock from a different
// holder. A holder may freely stack additional locks of either kind on an
// inode it already holds a lock on (lock upgrade/re-entry for the same
// client), rather than being treated as one more conflicting lock against
// itself.
type LockManager struct {
	mu         sync.Mutex
	locks      map[uint64][]LockEntry
	nextLockID uint64
}

// NewLockManager returns an empty lock manager.
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[uint64][]LockEntry), nextLockID: 1}
}

// Acquire attempts to take a lock of the given type on ino for holder. It
// returns the new lock's ID, or a permission-denied error if a conflicting
// lock held by a different holder already exists.
func (m *LockManager) Acquire(ino uint64, lockType LockType, holder string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.locks[ino]
	switch lockType {
	case LockRead:
		for _, l := range existing {
			if l.LockType == LockWrite && l.Holder != holder {
				return 0, errors.NewError(errors.ErrCodePermissionDenied, "write lock held by another client")
			}
		}
	case LockWrite:
		for _, l := range existing {
			if l.Holder != holder {
				return 0, errors.NewError(errors.ErrCodePermissionDenied, "lock held by another client")
			}
		}
	}

	id := m.nextLockID
	m.nextLockID++
	m.locks[ino] = append(existing, LockEntry{Ino: ino, LockType: lockType, Holder: holder, LockID: id})
	return id, nil
}

// Release drops the lock with the given ID. Releasing an unknown lock ID
// is a no-op, matching fcntl()'s tolerance of redundant unlocks.
func (m *LockManager) Release(lockID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ino, entries := range m.locks {
		for i, l := range entries {
			if l.LockID == lockID {
				m.locks[ino] = append(entries[:i], entries[i+1:]...)
				if len(m.locks[ino]) == 0 {
					delete(m.locks, ino)
				}
				return
			}
		}
	}
}

// ReleaseAllForNode drops every lock held by holder, across all inodes, and
// returns how many were released. Used when a client session is torn down
// or a node is evicted from the cluster.
func (m *LockManager) ReleaseAllForNode(holder string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	released := 0
	for ino, entries := range m.locks {
		kept := entries[:0:0]
		for _, l := range entries {
			if l.Holder == holder {
				released++
				continue
			}
			kept = append(kept, l)
		}
		if len(kept) == 0 {
			delete(m.locks, ino)
		} else {
			m.locks[ino] = kept
		}
	}
	return released
}

// IsLocked reports whether ino has any active lock.
func (m *LockManager) IsLocked(ino uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks[ino]) > 0
}

// LocksOn returns a copy of all locks currently held on ino.
func (m *LockManager) LocksOn(ino uint64) []LockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.locks[ino]
	out := make([]LockEntry, len(entries))
	copy(out, entries)
	return out
}
