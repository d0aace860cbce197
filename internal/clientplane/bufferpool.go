package clientplane

import (
	"sync"

	"github.com/claudefs/claudefs/internal/buffer"
)

// Buffer size classes served by the client-plane pool: a page for small
// metadata-adjacent reads, a block for typical I/O, and a large class for
// readahead/writeback bursts.
const (
	SizeClassPage  = 4096
	SizeClassBlock = 65536
	SizeClassLarge = 1048576
)

// BufferPoolStats reports acquire, release, fresh-allocation and drop
// counts, for capacity tuning. Stats sums them across all size classes;
// FreeCount gives the free-list depth of one class.
type BufferPoolStats struct {
	Acquires  uint64
	Releases  uint64
	Allocations uint64
	Drops     uint64
}

type sizeClassPool struct {
	mu       sync.Mutex
	size     int
	maxFree  int
	free     [][]byte
	stats    BufferPoolStats
}

// BufferPool manages three fixed size classes of reusable buffers on top of
// the generic byte pool, scrubbing the first bytes of a buffer on release so
// stale header bytes never leak across reuse.
type BufferPool struct {
	page  *sizeClassPool
	block *sizeClassPool
	large *sizeClassPool
	bytes *buffer.BytePool
}

// NewBufferPool returns a pool with maxFreePerClass buffers retained per
// size class before additional releases are dropped instead of pooled.
func NewBufferPool(maxFreePerClass int) *BufferPool {
	return &BufferPool{
		page:  &sizeClassPool{size: SizeClassPage, maxFree: maxFreePerClass},
		block: &sizeClassPool{size: SizeClassBlock, maxFree: maxFreePerClass},
		large: &sizeClassPool{size: SizeClassLarge, maxFree: maxFreePerClass},
		bytes: buffer.NewBytePool(),
	}
}

func (p *BufferPool) classFor(size int) *sizeClassPool {
	switch {
	case size <= SizeClassPage:
		return p.page
	case size <= SizeClassBlock:
		return p.block
	default:
		return p.large
	}
}

// Acquire returns a buffer of at least size bytes, drawn from the matching
// size class's free list or freshly allocated via the underlying byte pool.
// A request larger than the large size class bypasses pooling entirely.
func (p *BufferPool) Acquire(size int) []byte {
	class := p.classFor(size)
	if size > class.size {
		class.mu.Lock()
		class.stats.Acquires++
		class.stats.Allocations++
		class.mu.Unlock()
		return make([]byte, size)
	}

	class.mu.Lock()
	if n := len(class.free); n > 0 {
		buf := class.free[n-1]
		class.free = class.free[:n-1]
		class.stats.Acquires++
		class.mu.Unlock()
		return buf[:size]
	}
	class.stats.Acquires++
	class.stats.Allocations++
	class.mu.Unlock()
	return p.bytes.Get(class.size)[:size]
}

// Release returns buf to its size class's free list, scrubbing the first
// min(len, 64) bytes as a cheap defense against leaking stale header data.
// If the free list is at capacity the buffer is dropped for GC.
func (p *BufferPool) Release(buf []byte) {
	if buf == nil {
		return
	}
	scrubLen := len(buf)
	if scrubLen > 64 {
		scrubLen = 64
	}
	for i := 0; i < scrubLen; i++ {
		buf[i] = 0
	}

	class := p.classForCapacity(cap(buf))
	if class == nil {
		return
	}
	class.mu.Lock()
	defer class.mu.Unlock()
	class.stats.Releases++
	if len(class.free) >= class.maxFree {
		class.stats.Drops++
		return
	}
	class.free = append(class.free, buf[:cap(buf)])
}

func (p *BufferPool) classForCapacity(capacity int) *sizeClassPool {
	switch capacity {
	case SizeClassPage:
		return p.page
	case SizeClassBlock:
		return p.block
	case SizeClassLarge:
		return p.large
	default:
		return nil
	}
}

// Stats returns aggregate stats across all three size classes.
func (p *BufferPool) Stats() BufferPoolStats {
	var total BufferPoolStats
	for _, class := range []*sizeClassPool{p.page, p.block, p.large} {
		class.mu.Lock()
		total.Acquires += class.stats.Acquires
		total.Releases += class.stats.Releases
		total.Allocations += class.stats.Allocations
		total.Drops += class.stats.Drops
		class.mu.Unlock()
	}
	return total
}

// HitRate returns the fraction of acquires satisfied from a free list
// rather than a fresh allocation.
func (p *BufferPool) HitRate() float64 {
	s := p.Stats()
	if s.Acquires == 0 {
		return 0
	}
	hits := s.Acquires - s.Allocations
	return float64(hits) / float64(s.Acquires)
}

// FreeCount returns the number of pooled buffers currently held in size.
func (p *BufferPool) FreeCount(size int) int {
	class := p.classFor(size)
	class.mu.Lock()
	defer class.mu.Unlock()
	return len(class.free)
}
