package reduction

import (
	"encoding/hex"

	"github.com/claudefs/claudefs/internal/cache"
	"github.com/claudefs/claudefs/internal/codec"
)

// CachedBlockStore fronts any BlockStore with a multi-level cache so repeat
// reads of hot chunks (a shared library, a recently written segment) never
// round-trip to the backing store. Writes are cached on insert so a reader
// immediately behind a writer never misses.
type CachedBlockStore struct {
	inner BlockStore
	cache *cache.MultiLevelCache
}

// NewCachedBlockStore wraps inner with a multi-level cache built from cfg.
// A nil cfg falls back to cache.NewMultiLevelCache's own in-memory default.
func NewCachedBlockStore(inner BlockStore, cfg *cache.MultiLevelConfig) (*CachedBlockStore, error) {
	mlc, err := cache.NewMultiLevelCache(cfg)
	if err != nil {
		return nil, err
	}
	return &CachedBlockStore{inner: inner, cache: mlc}, nil
}

func (c *CachedBlockStore) key(hash codec.ChunkHash) string {
	return hex.EncodeToString(hash[:])
}

// Get returns the chunk for hash, serving from the cache hierarchy when
// present and falling through to inner on a miss.
func (c *CachedBlockStore) Get(hash codec.ChunkHash) ([]byte, error) {
	key := c.key(hash)
	if data := c.cache.Get(key, 0, 0); data != nil {
		return data, nil
	}
	data, err := c.inner.Get(hash)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, 0, data)
	return data, nil
}

// Put writes the chunk to inner and populates the cache with it.
func (c *CachedBlockStore) Put(hash codec.ChunkHash, data []byte) error {
	if err := c.inner.Put(hash, data); err != nil {
		return err
	}
	c.cache.Put(c.key(hash), 0, data)
	return nil
}

// HitRate returns the underlying cache hierarchy's combined hit rate.
func (c *CachedBlockStore) HitRate() float64 {
	st := c.cache.Stats()
	total := st.Hits + st.Misses
	if total == 0 {
		return 0
	}
	return float64(st.Hits) / float64(total)
}
