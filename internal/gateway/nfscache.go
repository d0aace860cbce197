package gateway

import (
	"sync"
	"time"
)

// NFSAttr is the subset of NFSv3 fattr3 fields the attribute cache stores.
type NFSAttr struct {
	Size  uint64
	Mode  uint32
	Uid   uint32
	Gid   uint32
	Mtime uint64
	Ctime uint64
}

type cachedAttr struct {
	attr       NFSAttr
	insertedAt time.Time
	ttl        time.Duration
}

func (c cachedAttr) expired(now time.Time) bool {
	return now.Sub(c.insertedAt) > c.ttl
}

// AttrCacheStats reports cumulative hit/miss counters.
type AttrCacheStats struct {
	Hits   uint64
	Misses uint64
}

// HitRate returns Hits / (Hits + Misses), or 0 when there have been no lookups.
func (s AttrCacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// AttrCache is a bounded NFSv3 attribute cache keyed by opaque file-handle
// bytes, evicting the oldest entry on insert once at capacity.
type AttrCache struct {
	mu         sync.Mutex
	maxEntries int
	entries    map[string]*cachedAttr
	order      []string
	hits       uint64
	misses     uint64
}

// NewAttrCache returns an AttrCache capped at maxEntries.
func NewAttrCache(maxEntries int) *AttrCache {
	return &AttrCache{maxEntries: maxEntries, entries: make(map[string]*cachedAttr)}
}

// Insert caches attr for fh with the given ttl, evicting the oldest entry
// if the cache is at capacity and fh is not already present.
func (c *AttrCache) Insert(fh []byte, attr NFSAttr, ttl time.Duration, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := string(fh)
	if _, exists := c.entries[key]; !exists {
		if len(c.entries) >= c.maxEntries && c.maxEntries > 0 {
			c.evictOldestLocked()
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = &cachedAttr{attr: attr, insertedAt: now, ttl: ttl}
}

func (c *AttrCache) evictOldestLocked() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

// Get returns the cached attribute for fh, if present and not expired.
func (c *AttrCache) Get(fh []byte, now time.Time) (NFSAttr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := string(fh)
	cached, ok := c.entries[key]
	if !ok || cached.expired(now) {
		c.misses++
		return NFSAttr{}, false
	}
	c.hits++
	return cached.attr, true
}

// Invalidate removes any cached attribute for fh.
func (c *AttrCache) Invalidate(fh []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := string(fh)
	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries currently cached.
func (c *AttrCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the cumulative hit/miss counters.
func (c *AttrCache) Stats() AttrCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return AttrCacheStats{Hits: c.hits, Misses: c.misses}
}
