package reduction

import (
	"sync"

	"github.com/claudefs/claudefs/internal/codec"
)

// CASIndex is the content-addressed reference-count index over chunk
// fingerprints. Equal hashes are assumed to imply equal plaintext (BLAKE3 is
// treated as collision-resistant); refcount never goes negative.
type CASIndex struct {
	mu    sync.RWMutex
	refs  map[codec.ChunkHash]uint64
}

// NewCASIndex returns an empty index.
func NewCASIndex() *CASIndex {
	return &CASIndex{refs: make(map[codec.ChunkHash]uint64)}
}

// Insert increments the refcount for hash, creating the entry if absent, and
// returns the resulting refcount along with whether this was a new entry
// (refcount transitioned from 0 to 1).
func (c *CASIndex) Insert(hash codec.ChunkHash) (refcount uint64, isNew bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.refs[hash]
	isNew = !ok || cur == 0
	cur++
	c.refs[hash] = cur
	return cur, isNew
}

// Lookup reports whether hash has a live (refcount > 0) entry.
func (c *CASIndex) Lookup(hash codec.ChunkHash) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refs[hash] > 0
}

// Refcount returns the current reference count for hash (0 if absent).
func (c *CASIndex) Refcount(hash codec.ChunkHash) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refs[hash]
}

// Release decrements the refcount for hash, saturating at zero. The entry is
// retained (at refcount 0) until a GC sweep removes it, so the sweep can
// still observe it.
func (c *CASIndex) Release(hash codec.ChunkHash) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.refs[hash]
	if !ok || cur == 0 {
		c.refs[hash] = 0
		return 0
	}
	cur--
	c.refs[hash] = cur
	return cur
}

// CASEntry pairs a hash with its current refcount, as returned by Iter.
type CASEntry struct {
	Hash     codec.ChunkHash
	Refcount uint64
}

// Iter returns a snapshot of every entry in the index, including
// zero-refcount entries awaiting sweep.
func (c *CASIndex) Iter() []CASEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CASEntry, 0, len(c.refs))
	for h, rc := range c.refs {
		out = append(out, CASEntry{Hash: h, Refcount: rc})
	}
	return out
}

// Len returns the total number of entries, including zero-refcount ones.
func (c *CASIndex) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.refs)
}

// removeZero deletes every entry with refcount == 0 and returns their hashes.
// Used by the GC engine's sweep phase; not part of the public CAS contract.
func (c *CASIndex) removeZero() []codec.ChunkHash {
	c.mu.Lock()
	defer c.mu.Unlock()
	var removed []codec.ChunkHash
	for h, rc := range c.refs {
		if rc == 0 {
			removed = append(removed, h)
			delete(c.refs, h)
		}
	}
	return removed
}

// DrainUnreferenced removes and returns every currently zero-refcount hash,
// without requiring a full mark-and-sweep cycle.
func (c *CASIndex) DrainUnreferenced() []codec.ChunkHash {
	return c.removeZero()
}
