package reduction

import (
	"testing"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRegistryCreateAndGet(t *testing.T) {
	r := NewSnapshotRegistry(DefaultSnapshotRegistryConfig())
	hashes := []codec.ChunkHash{hashOf("a"), hashOf("b")}

	info, err := r.Create("nightly", hashes, 2048)
	require.NoError(t, err)
	assert.Equal(t, "nightly", info.Name)
	assert.Equal(t, 2, info.BlockCount)

	snap, ok := r.Get(info.ID)
	require.True(t, ok)
	assert.Equal(t, hashes, snap.Hashes)
}

func TestSnapshotRegistryDuplicateNameFails(t *testing.T) {
	r := NewSnapshotRegistry(DefaultSnapshotRegistryConfig())
	_, err := r.Create("dup", nil, 0)
	require.NoError(t, err)
	_, err = r.Create("dup", nil, 0)
	require.Error(t, err)
}

func TestSnapshotRegistryEnforcesMaxSnapshots(t *testing.T) {
	r := NewSnapshotRegistry(SnapshotRegistryConfig{MaxSnapshots: 2})
	_, err := r.Create("a", nil, 0)
	require.NoError(t, err)
	_, err = r.Create("b", nil, 0)
	require.NoError(t, err)
	_, err = r.Create("c", nil, 0)
	require.Error(t, err)
}

func TestSnapshotRegistryDeleteRemovesNameIndex(t *testing.T) {
	r := NewSnapshotRegistry(DefaultSnapshotRegistryConfig())
	info, err := r.Create("temp", nil, 0)
	require.NoError(t, err)

	snap, ok := r.Delete(info.ID)
	require.True(t, ok)
	assert.Equal(t, "temp", snap.Info.Name)

	_, err = r.Create("temp", nil, 0)
	require.NoError(t, err, "name should be free again after delete")
}

func TestSnapshotRegistryCloneInheritsHashes(t *testing.T) {
	r := NewSnapshotRegistry(DefaultSnapshotRegistryConfig())
	hashes := []codec.ChunkHash{hashOf("x"), hashOf("y")}
	info, err := r.Create("base", hashes, 1000)
	require.NoError(t, err)

	clone, err := r.Clone(info.ID, "base-clone")
	require.NoError(t, err)
	assert.Equal(t, info.TotalBytes, clone.TotalBytes)

	snap, _ := r.Get(clone.ID)
	assert.Equal(t, hashes, snap.Hashes)
}

func TestSnapshotRegistryCloneMissingSourceFails(t *testing.T) {
	r := NewSnapshotRegistry(DefaultSnapshotRegistryConfig())
	_, err := r.Clone(999, "nope")
	require.Error(t, err)
}

func TestSnapshotRegistryListOrderedByCreation(t *testing.T) {
	r := NewSnapshotRegistry(DefaultSnapshotRegistryConfig())
	r.Create("first", nil, 0)
	r.Create("second", nil, 0)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "second", list[1].Name)
}
