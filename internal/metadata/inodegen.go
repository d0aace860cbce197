package metadata

import (
	"encoding/binary"
	"sync"
)

// Generation is the generation number for an inode. NFS file handles carry
// (ino, generation) pairs so that reusing an inode number after deletion
// invalidates handles issued against the prior occupant.
type Generation uint64

// DefaultGeneration is the generation assigned to an inode the first time
// it is allocated.
const DefaultGeneration Generation = 1

// Next returns the following generation number.
func (g Generation) Next() Generation { return g + 1 }

// NfsFileHandle combines an inode number with the generation it was issued
// under.
type NfsFileHandle struct {
	Ino        uint64
	Generation Generation
}

const nfsFileHandleSize = 16

// EncodeNfsFileHandle serializes a handle to its 16-byte wire form.
func EncodeNfsFileHandle(h NfsFileHandle) []byte {
	buf := make([]byte, nfsFileHandleSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.Ino)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(h.Generation))
	return buf
}

// DecodeNfsFileHandle parses a handle from its wire form. It reports false
// if b is too short.
func DecodeNfsFileHandle(b []byte) (NfsFileHandle, bool) {
	if len(b) < nfsFileHandleSize {
		return NfsFileHandle{}, false
	}
	return NfsFileHandle{
		Ino:        binary.LittleEndian.Uint64(b[0:8]),
		Generation: Generation(binary.LittleEndian.Uint64(b[8:16])),
	}, true
}

// InodeGenManager tracks the current generation number for every inode the
// shard has ever allocated, so that an NFS file handle referencing a
// recycled inode number is rejected as stale rather than silently resolved
// to the wrong file.
type InodeGenManager struct {
	mu          sync.RWMutex
	generations map[uint64]Generation
}

// NewInodeGenManager returns an empty generation tracker.
func NewInodeGenManager() *InodeGenManager {
	return &InodeGenManager{generations: make(map[uint64]Generation)}
}

// Allocate assigns a generation number for ino. The first allocation
// returns DefaultGeneration; if ino was previously allocated (and possibly
// deleted), the generation is bumped past whatever it last held.
func (m *InodeGenManager) Allocate(ino uint64) Generation {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.generations[ino]
	if !ok {
		m.generations[ino] = DefaultGeneration
		return DefaultGeneration
	}
	g = g.Next()
	m.generations[ino] = g
	return g
}

// Get returns the current generation for ino, if tracked.
func (m *InodeGenManager) Get(ino uint64) (Generation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.generations[ino]
	return g, ok
}

// MarkDeleted bumps ino's generation so that any handle issued before the
// deletion fails validation, and the next allocation of this inode number
// starts from a higher generation. If ino was never seen, it seeds the
// table at generation 2 so a still-unallocated inode number cannot collide
// with DefaultGeneration.
func (m *InodeGenManager) MarkDeleted(ino uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.generations[ino]
	if !ok {
		m.generations[ino] = 2
		return
	}
	m.generations[ino] = g.Next()
}

// MakeHandle builds the NFS file handle for ino's current generation. An
// untracked inode is treated as DefaultGeneration.
func (m *InodeGenManager) MakeHandle(ino uint64) NfsFileHandle {
	gen, ok := m.Get(ino)
	if !ok {
		gen = DefaultGeneration
	}
	return NfsFileHandle{Ino: ino, Generation: gen}
}

// ValidateHandle reports whether handle's generation still matches the
// inode's current generation.
func (m *InodeGenManager) ValidateHandle(handle NfsFileHandle) bool {
	current, ok := m.Get(handle.Ino)
	if !ok {
		return false
	}
	return current == handle.Generation
}

// TrackedCount returns the number of inodes with a tracked generation.
func (m *InodeGenManager) TrackedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.generations)
}

// Clear resets all generation tracking.
func (m *InodeGenManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = make(map[uint64]Generation)
}

// InodeGenEntry is one (inode, generation) pair, used for snapshot
// export/import.
type InodeGenEntry struct {
	Ino        uint64
	Generation Generation
}

// ExportGenerations captures all tracked generations, for inclusion in a
// metadata snapshot.
func (m *InodeGenManager) ExportGenerations() []InodeGenEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]InodeGenEntry, 0, len(m.generations))
	for ino, gen := range m.generations {
		out = append(out, InodeGenEntry{Ino: ino, Generation: gen})
	}
	return out
}

// LoadGenerations replaces all tracked generations with data, for restoring
// from a metadata snapshot.
func (m *InodeGenManager) LoadGenerations(data []InodeGenEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations = make(map[uint64]Generation, len(data))
	for _, e := range data {
		m.generations[e.Ino] = e.Generation
	}
}
