package reduction

import (
	"sync"

	"github.com/claudefs/claudefs/internal/codec"
)

// GCStats summarizes one garbage collection cycle.
type GCStats struct {
	ChunksScanned   int
	ChunksReclaimed int
}

// GCEngine performs mark-and-sweep collection over a CASIndex: mark every
// hash still reachable from live files, then sweep every entry that ended
// the cycle at refcount zero. Safe to run concurrently with readers, since
// readers hold refcounts >= 1 on what they're using; concurrent writers
// serialize through the CASIndex's own locking.
type GCEngine struct {
	mu        sync.Mutex
	reachable map[codec.ChunkHash]struct{}
}

// NewGCEngine returns an engine with no marks set.
func NewGCEngine() *GCEngine {
	return &GCEngine{reachable: make(map[codec.ChunkHash]struct{})}
}

// MarkReachable records hashes as still in use for the current cycle.
func (g *GCEngine) MarkReachable(hashes []codec.ChunkHash) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, h := range hashes {
		g.reachable[h] = struct{}{}
	}
}

// ClearMarks resets marks ahead of the next cycle.
func (g *GCEngine) ClearMarks() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reachable = make(map[codec.ChunkHash]struct{})
}

// IsMarked reports whether hash was marked reachable this cycle.
func (g *GCEngine) IsMarked(hash codec.ChunkHash) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.reachable[hash]
	return ok
}

// Sweep removes every CAS entry at refcount zero, regardless of mark state
// (marks exist to let a caller decide what to re-reference before sweeping;
// the CAS refcount is the sweep's actual source of truth, matching the CAS
// invariant that a live hash always has refcount >= 1).
func (g *GCEngine) Sweep(cas *CASIndex) GCStats {
	scanned := cas.Len()
	removed := cas.removeZero()
	return GCStats{ChunksScanned: scanned, ChunksReclaimed: len(removed)}
}

// RunCycle clears marks, marks the given reachable set, and sweeps in one call.
func (g *GCEngine) RunCycle(cas *CASIndex, reachable []codec.ChunkHash) GCStats {
	g.ClearMarks()
	g.MarkReachable(reachable)
	return g.Sweep(cas)
}
