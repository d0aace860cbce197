package reduction

import (
	"testing"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/stretchr/testify/assert"
)

func hashOf(s string) codec.ChunkHash {
	return codec.BLAKE3([]byte(s))
}

func TestCASInsertIncrementsRefcount(t *testing.T) {
	cas := NewCASIndex()
	h := hashOf("a")

	rc, isNew := cas.Insert(h)
	assert.Equal(t, uint64(1), rc)
	assert.True(t, isNew)

	rc, isNew = cas.Insert(h)
	assert.Equal(t, uint64(2), rc)
	assert.False(t, isNew)
}

func TestCASLookupAndRefcount(t *testing.T) {
	cas := NewCASIndex()
	h := hashOf("b")
	assert.False(t, cas.Lookup(h))

	cas.Insert(h)
	assert.True(t, cas.Lookup(h))
	assert.Equal(t, uint64(1), cas.Refcount(h))
}

func TestCASReleaseSaturatesAtZero(t *testing.T) {
	cas := NewCASIndex()
	h := hashOf("c")
	cas.Insert(h)

	rc := cas.Release(h)
	assert.Equal(t, uint64(0), rc)

	rc = cas.Release(h)
	assert.Equal(t, uint64(0), rc)
	assert.False(t, cas.Lookup(h))
}

func TestCASIterReturnsAllEntries(t *testing.T) {
	cas := NewCASIndex()
	h1, h2 := hashOf("x"), hashOf("y")
	cas.Insert(h1)
	cas.Insert(h2)
	cas.Release(h2)

	entries := cas.Iter()
	assert.Len(t, entries, 2)
}

func TestCASDrainUnreferenced(t *testing.T) {
	cas := NewCASIndex()
	h1, h2 := hashOf("p"), hashOf("q")
	cas.Insert(h1)
	cas.Insert(h2)
	cas.Release(h2)

	removed := cas.DrainUnreferenced()
	assert.Len(t, removed, 1)
	assert.Equal(t, h2, removed[0])
	assert.Equal(t, 1, cas.Len())
	assert.True(t, cas.Lookup(h1))
}
