package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaftSnapshotCreateSnapshot(t *testing.T) {
	m := NewRaftSnapshotManager(RaftSnapshotConfig{MinEntriesBeforeCompact: 10, MaxEntriesBeforeSnapshot: 100})
	data := []byte{1, 1, 1}

	snap := m.CreateSnapshot(50, 5, data)
	assert.Equal(t, uint64(50), snap.LastIncludedIndex)
	assert.Equal(t, uint64(5), snap.LastIncludedTerm)
	assert.Equal(t, data, snap.Data)
}

func TestRaftSnapshotLatestInitiallyNone(t *testing.T) {
	m := NewRaftSnapshotManager(DefaultRaftSnapshotConfig())
	_, ok := m.LatestSnapshot()
	assert.False(t, ok)
}

func TestRaftSnapshotShouldSnapshotThreshold(t *testing.T) {
	m := NewRaftSnapshotManager(RaftSnapshotConfig{MinEntriesBeforeCompact: 10, MaxEntriesBeforeSnapshot: 100})

	assert.False(t, m.ShouldSnapshot(99))
	assert.True(t, m.ShouldSnapshot(100))
	assert.True(t, m.ShouldSnapshot(150))
}

func TestRaftSnapshotCompactionPoint(t *testing.T) {
	m := NewRaftSnapshotManager(RaftSnapshotConfig{MinEntriesBeforeCompact: 10, MaxEntriesBeforeSnapshot: 100})
	m.CreateSnapshot(50, 5, nil)

	_, ok := m.CompactionPoint(60)
	assert.False(t, ok)

	idx, ok := m.CompactionPoint(70)
	require.True(t, ok)
	assert.Equal(t, uint64(50), idx)
}

func TestRaftSnapshotRestoreSnapshot(t *testing.T) {
	m := NewRaftSnapshotManager(DefaultRaftSnapshotConfig())
	data := []byte{1, 2, 3}
	snap := RaftSnapshot{LastIncludedIndex: 100, LastIncludedTerm: 10, Data: data}

	restored := m.RestoreSnapshot(snap)
	assert.Equal(t, data, restored)

	latest, ok := m.LatestSnapshot()
	require.True(t, ok)
	assert.Equal(t, uint64(100), latest.LastIncludedIndex)
}

func TestRaftSnapshotReplacesPrevious(t *testing.T) {
	m := NewRaftSnapshotManager(DefaultRaftSnapshotConfig())
	m.CreateSnapshot(50, 3, []byte{1, 2, 3})
	m.CreateSnapshot(100, 7, []byte{4, 5, 6})

	latest, ok := m.LatestSnapshot()
	require.True(t, ok)
	assert.Equal(t, uint64(100), latest.LastIncludedIndex)
}

func TestRaftSnapshotCount(t *testing.T) {
	m := NewRaftSnapshotManager(DefaultRaftSnapshotConfig())
	assert.Equal(t, 0, m.SnapshotCount())

	m.CreateSnapshot(50, 3, nil)
	assert.Equal(t, 1, m.SnapshotCount())
}
