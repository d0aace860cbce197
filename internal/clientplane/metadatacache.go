package clientplane

import (
	"container/list"
	"sync"
	"time"
)

// Attr is the POSIX stat-like attribute set cached per inode. The client
// plane treats it as an opaque blob; only the cache lifecycle matters here.
type Attr struct {
	Ino       uint64
	Size      uint64
	Blocks    uint64
	Mode      uint32
	Uid       uint32
	Gid       uint32
	Nlink     uint32
	Atime     time.Time
	Mtime     time.Time
	Ctime     time.Time
	Generation uint64
}

// MetadataCacheStats tracks hit/miss/eviction counters for both the
// positive and negative caches.
type MetadataCacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	NegHits   uint64
	NegMisses uint64
}

type metadataEntry struct {
	ino       uint64
	attr      Attr
	insertedAt time.Time
	element   *list.Element
}

type negativeKey struct {
	parentIno uint64
	name      string
}

type negativeEntry struct {
	key        negativeKey
	insertedAt time.Time
	element    *list.Element
}

// MetadataCache is a bounded LRU of per-inode attributes with a TTL,
// plus a parallel negative-lookup cache for failed (parent, name) lookups.
type MetadataCache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	items    map[uint64]*metadataEntry
	order    *list.List

	negCapacity int
	negTTL      time.Duration
	negatives   map[negativeKey]*negativeEntry
	negOrder    *list.List

	stats MetadataCacheStats
	now   func() time.Time
}

// NewMetadataCache returns an attribute cache with the given capacities and
// TTLs for the positive and negative lookup tables.
func NewMetadataCache(capacity int, ttl time.Duration, negCapacity int, negTTL time.Duration) *MetadataCache {
	return &MetadataCache{
		capacity:    capacity,
		ttl:         ttl,
		items:       make(map[uint64]*metadataEntry),
		order:       list.New(),
		negCapacity: negCapacity,
		negTTL:      negTTL,
		negatives:   make(map[negativeKey]*negativeEntry),
		negOrder:    list.New(),
		now:         time.Now,
	}
}

// Insert stores attr for ino, evicting the oldest entry if the cache is at
// capacity.
func (c *MetadataCache) Insert(ino uint64, attr Attr) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.items[ino]; ok {
		existing.attr = attr
		existing.insertedAt = c.now()
		c.order.MoveToFront(existing.element)
		return
	}

	entry := &metadataEntry{ino: ino, attr: attr, insertedAt: c.now()}
	entry.element = c.order.PushFront(entry)
	c.items[ino] = entry

	for len(c.items) > c.capacity && c.order.Len() > 0 {
		c.evictOldestLocked()
	}
}

// Get returns the cached attribute for ino, or false if absent or expired.
// An expired entry is removed and counted as a miss.
func (c *MetadataCache) Get(ino uint64) (Attr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.items[ino]
	if !ok {
		c.stats.Misses++
		return Attr{}, false
	}
	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.removeLocked(ino)
		c.stats.Misses++
		return Attr{}, false
	}
	c.order.MoveToFront(entry.element)
	c.stats.Hits++
	return entry.attr, true
}

// Invalidate drops a single cached attribute entry.
func (c *MetadataCache) Invalidate(ino uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(ino)
}

// InvalidateChildren drops every cached attribute; used when a directory's
// contents may have been restructured in a way that invalidates any child.
func (c *MetadataCache) InvalidateChildren(parent uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[uint64]*metadataEntry)
	c.order.Init()
}

// InsertNegative records that (parentIno, name) failed to resolve.
func (c *MetadataCache) InsertNegative(parentIno uint64, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := negativeKey{parentIno: parentIno, name: name}
	if existing, ok := c.negatives[key]; ok {
		existing.insertedAt = c.now()
		c.negOrder.MoveToFront(existing.element)
		return
	}

	entry := &negativeEntry{key: key, insertedAt: c.now()}
	entry.element = c.negOrder.PushFront(entry)
	c.negatives[key] = entry

	for len(c.negatives) > c.negCapacity && c.negOrder.Len() > 0 {
		oldest := c.negOrder.Back()
		e := oldest.Value.(*negativeEntry)
		c.negOrder.Remove(oldest)
		delete(c.negatives, e.key)
		c.stats.Evictions++
	}
}

// IsNegative reports whether (parentIno, name) is a live negative entry.
func (c *MetadataCache) IsNegative(parentIno uint64, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := negativeKey{parentIno: parentIno, name: name}
	entry, ok := c.negatives[key]
	if !ok {
		c.stats.NegMisses++
		return false
	}
	if c.now().Sub(entry.insertedAt) > c.negTTL {
		c.negOrder.Remove(entry.element)
		delete(c.negatives, key)
		c.stats.NegMisses++
		return false
	}
	c.stats.NegHits++
	return true
}

// Stats returns a snapshot of cache counters.
func (c *MetadataCache) Stats() MetadataCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Len returns the number of live positive entries.
func (c *MetadataCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *MetadataCache) removeLocked(ino uint64) {
	entry, ok := c.items[ino]
	if !ok {
		return
	}
	c.order.Remove(entry.element)
	delete(c.items, ino)
}

func (c *MetadataCache) evictOldestLocked() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	entry := oldest.Value.(*metadataEntry)
	c.order.Remove(oldest)
	delete(c.items, entry.ino)
	c.stats.Evictions++
}
