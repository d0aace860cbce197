package clientplane

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosixLockSharedLocksCoexist(t *testing.T) {
	m := NewPosixLockManager()
	ok1 := m.TryLock(1, PosixLockRecord{LockType: PosixLockShared, Owner: "a", Start: 0, End: 10})
	ok2 := m.TryLock(1, PosixLockRecord{LockType: PosixLockShared, Owner: "b", Start: 5, End: 15})

	assert.True(t, ok1)
	assert.True(t, ok2)
}

func TestPosixLockExclusiveBlockedByAnyOverlap(t *testing.T) {
	m := NewPosixLockManager()
	m.TryLock(1, PosixLockRecord{LockType: PosixLockShared, Owner: "a", Start: 0, End: 10})
	ok := m.TryLock(1, PosixLockRecord{LockType: PosixLockExclusive, Owner: "b", Start: 5, End: 15})

	assert.False(t, ok)
}

func TestPosixLockSharedBlockedByExclusive(t *testing.T) {
	m := NewPosixLockManager()
	m.TryLock(1, PosixLockRecord{LockType: PosixLockExclusive, Owner: "a", Start: 0, End: 10})
	ok := m.TryLock(1, PosixLockRecord{LockType: PosixLockShared, Owner: "b", Start: 5, End: 15})

	assert.False(t, ok)
}

func TestPosixLockNonOverlappingRangesDoNotConflict(t *testing.T) {
	m := NewPosixLockManager()
	m.TryLock(1, PosixLockRecord{LockType: PosixLockExclusive, Owner: "a", Start: 0, End: 10})
	ok := m.TryLock(1, PosixLockRecord{LockType: PosixLockExclusive, Owner: "b", Start: 10, End: 20})

	assert.True(t, ok)
}

func TestPosixLockSameOwnerNeverConflicts(t *testing.T) {
	m := NewPosixLockManager()
	m.TryLock(1, PosixLockRecord{LockType: PosixLockExclusive, Owner: "a", Start: 0, End: 10})
	ok := m.TryLock(1, PosixLockRecord{LockType: PosixLockExclusive, Owner: "a", Start: 5, End: 15})

	assert.True(t, ok)
}

func TestPosixLockUnlockAlwaysSucceeds(t *testing.T) {
	m := NewPosixLockManager()
	m.TryLock(1, PosixLockRecord{LockType: PosixLockExclusive, Owner: "a", Start: 0, End: 10})
	ok := m.TryLock(1, PosixLockRecord{LockType: PosixLockUnlock, Owner: "a", Start: 0, End: 10})

	assert.True(t, ok)
	assert.Empty(t, m.LocksOn(1))
}

func TestPosixLockUnlockNonexistentIsNoop(t *testing.T) {
	m := NewPosixLockManager()
	ok := m.TryLock(1, PosixLockRecord{LockType: PosixLockUnlock, Owner: "a", Start: 0, End: 10})
	assert.True(t, ok)
}

func TestPosixLockHasConflictingLock(t *testing.T) {
	m := NewPosixLockManager()
	m.TryLock(1, PosixLockRecord{LockType: PosixLockShared, Owner: "a", Start: 0, End: 10})

	assert.True(t, m.HasConflictingLock(1, 5, 15, "b"))
	assert.False(t, m.HasConflictingLock(1, 5, 15, "a"))
}

func TestPosixLockClearInode(t *testing.T) {
	m := NewPosixLockManager()
	m.TryLock(1, PosixLockRecord{LockType: PosixLockShared, Owner: "a", Start: 0, End: 10})
	m.ClearInode(1)

	assert.Empty(t, m.LocksOn(1))
}
