package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKVStorePutGet(t *testing.T) {
	s := NewMemoryKVStore()
	s.Put([]byte("a"), []byte("1"))

	v, ok := s.Get([]byte("a"))
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	_, ok = s.Get([]byte("missing"))
	assert.False(t, ok)
}

func TestMemoryKVStoreDelete(t *testing.T) {
	s := NewMemoryKVStore()
	s.Put([]byte("a"), []byte("1"))
	s.Delete([]byte("a"))

	assert.False(t, s.ContainsKey([]byte("a")))
	_, ok := s.Get([]byte("a"))
	assert.False(t, ok)
}

func TestMemoryKVStoreScanPrefix(t *testing.T) {
	s := NewMemoryKVStore()
	s.Put([]byte("shard/1/inode/1"), []byte("a"))
	s.Put([]byte("shard/1/inode/2"), []byte("b"))
	s.Put([]byte("shard/2/inode/1"), []byte("c"))

	got := s.ScanPrefix([]byte("shard/1/"))
	require.Len(t, got, 2)
	assert.Equal(t, []byte("shard/1/inode/1"), got[0].Key)
	assert.Equal(t, []byte("shard/1/inode/2"), got[1].Key)
}

func TestMemoryKVStoreScanRange(t *testing.T) {
	s := NewMemoryKVStore()
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		s.Put([]byte(k), []byte(k))
	}

	got := s.ScanRange([]byte("b"), []byte("d"))
	require.Len(t, got, 2)
	assert.Equal(t, []byte("b"), got[0].Key)
	assert.Equal(t, []byte("c"), got[1].Key)
}

func TestMemoryKVStoreWriteBatchAtomic(t *testing.T) {
	s := NewMemoryKVStore()
	s.Put([]byte("keep"), []byte("1"))
	s.Put([]byte("removeme"), []byte("2"))

	s.WriteBatch([]BatchOp{
		{Kind: BatchPut, Key: []byte("new"), Value: []byte("3")},
		{Kind: BatchDelete, Key: []byte("removeme")},
	})

	assert.True(t, s.ContainsKey([]byte("keep")))
	assert.True(t, s.ContainsKey([]byte("new")))
	assert.False(t, s.ContainsKey([]byte("removeme")))
}

func TestMemoryKVStorePutOverwrites(t *testing.T) {
	s := NewMemoryKVStore()
	s.Put([]byte("a"), []byte("1"))
	s.Put([]byte("a"), []byte("2"))

	v, ok := s.Get([]byte("a"))
	require.True(t, ok)
	assert.Equal(t, []byte("2"), v)
	assert.Len(t, s.ScanPrefix([]byte("a")), 1)
}
