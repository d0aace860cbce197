package clientplane

import (
	"container/list"
	"sync"
	"time"
)

// DirEntry is a single cached directory entry.
type DirEntry struct {
	Name string
	Ino  uint64
}

// DirCacheStats tracks directory-cache lifecycle counters.
type DirCacheStats struct {
	Hits         uint64
	Misses       uint64
	Evictions    uint64
	Invalidations uint64
}

type dirEntry struct {
	ino        uint64
	entries    []DirEntry
	mtime      time.Time
	insertedAt time.Time
	element    *list.Element
}

// DirCache is a bounded LRU cache of directory listings keyed by inode,
// with TTL expiry and mtime-based staleness detection.
type DirCache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	items    map[uint64]*dirEntry
	order    *list.List

	stats DirCacheStats
	now   func() time.Time
}

// NewDirCache returns a directory-listing cache of the given capacity and
// TTL.
func NewDirCache(capacity int, ttl time.Duration) *DirCache {
	return &DirCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[uint64]*dirEntry),
		order:    list.New(),
		now:      time.Now,
	}
}

// Insert stores the listing for ino along with the directory's mtime at the
// time of listing.
func (c *DirCache) Insert(ino uint64, entries []DirEntry, mtime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[ino]; ok {
		existing.entries = entries
		existing.mtime = mtime
		existing.insertedAt = c.now()
		c.order.MoveToFront(existing.element)
		return
	}

	entry := &dirEntry{ino: ino, entries: entries, mtime: mtime, insertedAt: c.now()}
	entry.element = c.order.PushFront(entry)
	c.items[ino] = entry

	for len(c.items) > c.capacity && c.order.Len() > 0 {
		oldest := c.order.Back()
		e := oldest.Value.(*dirEntry)
		c.order.Remove(oldest)
		delete(c.items, e.ino)
		c.stats.Evictions++
	}
}

// Get returns the cached listing for ino if present, unexpired, and not
// stale relative to currentMtime. A mismatched mtime invalidates the entry.
func (c *DirCache) Get(ino uint64, currentMtime time.Time) ([]DirEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[ino]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.removeLocked(ino)
		c.stats.Misses++
		return nil, false
	}
	if entry.isStale(currentMtime) {
		c.removeLocked(ino)
		c.stats.Invalidations++
		c.stats.Misses++
		return nil, false
	}
	c.order.MoveToFront(entry.element)
	c.stats.Hits++
	return entry.entries, true
}

func (e *dirEntry) isStale(currentMtime time.Time) bool {
	return !e.mtime.Equal(currentMtime)
}

// Invalidate explicitly drops the cached listing for ino, e.g. after a
// write to the directory.
func (c *DirCache) Invalidate(ino uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[ino]; ok {
		c.removeLocked(ino)
		c.stats.Invalidations++
	}
}

// Stats returns a snapshot of cache counters.
func (c *DirCache) Stats() DirCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the number of cached directory listings.
func (c *DirCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *DirCache) removeLocked(ino uint64) {
	entry, ok := c.items[ino]
	if !ok {
		return
	}
	c.order.Remove(entry.element)
	delete(c.items, ino)
}
