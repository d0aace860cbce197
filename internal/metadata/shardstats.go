package metadata

import (
	"math"
	"sync"
)

// ShardStats tracks operation counts and latency for a single metadata
// shard, used to identify hot shards that may need splitting or
// rebalancing.
type ShardStats struct {
	ShardID             uint64
	InodeCount          uint64
	ReadOps             uint64
	WriteOps            uint64
	TotalReadLatencyUs  uint64
	TotalWriteLatencyUs uint64
	PeakReadLatencyUs   uint64
	PeakWriteLatencyUs  uint64
	LeaseGrants         uint64
	LockContentions     uint64
}

// NewShardStats returns zeroed stats for shardID.
func NewShardStats(shardID uint64) *ShardStats {
	return &ShardStats{ShardID: shardID}
}

// RecordRead logs a read operation taking latencyUs microseconds.
func (s *ShardStats) RecordRead(latencyUs uint64) {
	s.ReadOps++
	s.TotalReadLatencyUs += latencyUs
	if latencyUs > s.PeakReadLatencyUs {
		s.PeakReadLatencyUs = latencyUs
	}
}

// RecordWrite logs a write operation taking latencyUs microseconds.
func (s *ShardStats) RecordWrite(latencyUs uint64) {
	s.WriteOps++
	s.TotalWriteLatencyUs += latencyUs
	if latencyUs > s.PeakWriteLatencyUs {
		s.PeakWriteLatencyUs = latencyUs
	}
}

// RecordContention logs a lock contention event.
func (s *ShardStats) RecordContention() {
	s.LockContentions++
}

// AvgReadLatencyUs returns the mean read latency in microseconds.
func (s *ShardStats) AvgReadLatencyUs() uint64 {
	if s.ReadOps == 0 {
		return 0
	}
	return s.TotalReadLatencyUs / s.ReadOps
}

// AvgWriteLatencyUs returns the mean write latency in microseconds.
func (s *ShardStats) AvgWriteLatencyUs() uint64 {
	if s.WriteOps == 0 {
		return 0
	}
	return s.TotalWriteLatencyUs / s.WriteOps
}

// TotalOps returns the sum of read and write operations.
func (s *ShardStats) TotalOps() uint64 {
	return s.ReadOps + s.WriteOps
}

// WriteRatio returns the fraction of operations that were writes, in
// [0.0, 1.0].
func (s *ShardStats) WriteRatio() float64 {
	total := s.TotalOps()
	if total == 0 {
		return 0
	}
	return float64(s.WriteOps) / float64(total)
}

func (s *ShardStats) reset() {
	s.ReadOps = 0
	s.WriteOps = 0
	s.TotalReadLatencyUs = 0
	s.TotalWriteLatencyUs = 0
	s.PeakReadLatencyUs = 0
	s.PeakWriteLatencyUs = 0
	s.LeaseGrants = 0
	s.LockContentions = 0
}

// ClusterShardStats aggregates ShardStats across every shard in the
// cluster, for rebalancing decisions.
type ClusterShardStats struct {
	mu     sync.Mutex
	shards map[uint64]*ShardStats
}

// NewClusterShardStats returns an empty cluster stats tracker.
func NewClusterShardStats() *ClusterShardStats {
	return &ClusterShardStats{shards: make(map[uint64]*ShardStats)}
}

// Shard returns the stats for shardID, creating them on first use.
func (c *ClusterShardStats) Shard(shardID uint64) *ShardStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.shards[shardID]
	if !ok {
		s = NewShardStats(shardID)
		c.shards[shardID] = s
	}
	return s
}

// GetShard returns the stats for shardID, if tracked.
func (c *ClusterShardStats) GetShard(shardID uint64) (*ShardStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.shards[shardID]
	return s, ok
}

// ShardCount returns the number of tracked shards.
func (c *ClusterShardStats) ShardCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.shards)
}

// TotalOps returns total operations across all shards.
func (c *ClusterShardStats) TotalOps() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total uint64
	for _, s := range c.shards {
		total += s.TotalOps()
	}
	return total
}

// TotalInodes returns total inode count across all shards.
func (c *ClusterShardStats) TotalInodes() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total uint64
	for _, s := range c.shards {
		total += s.InodeCount
	}
	return total
}

// HottestShard returns the shard with the most total operations, or nil if
// no shards are tracked.
func (c *ClusterShardStats) HottestShard() *ShardStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var hottest *ShardStats
	for _, s := range c.shards {
		if hottest == nil || s.TotalOps() > hottest.TotalOps() {
			hottest = s
		}
	}
	return hottest
}

// ColdestShard returns the shard with the fewest total operations, or nil
// if no shards are tracked.
func (c *ClusterShardStats) ColdestShard() *ShardStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var coldest *ShardStats
	for _, s := range c.shards {
		if coldest == nil || s.TotalOps() < coldest.TotalOps() {
			coldest = s
		}
	}
	return coldest
}

// ImbalanceRatio returns hottest-ops / coldest-ops. 1.0 means perfectly
// balanced; higher values indicate more skew. An empty cluster reports
// 1.0; a cluster whose coldest shard has zero ops (but some shard has
// nonzero ops) reports +Inf.
func (c *ClusterShardStats) ImbalanceRatio() float64 {
	hot := c.HottestShard()
	cold := c.ColdestShard()
	hotOps := uint64(0)
	if hot != nil {
		hotOps = hot.TotalOps()
	}
	coldOps := uint64(0)
	if cold != nil {
		coldOps = cold.TotalOps()
	}
	if coldOps == 0 {
		if hotOps == 0 {
			return 1.0
		}
		return math.Inf(1)
	}
	return float64(hotOps) / float64(coldOps)
}

// HotShards returns every shard whose total operations exceed
// opsThreshold.
func (c *ClusterShardStats) HotShards(opsThreshold uint64) []*ShardStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*ShardStats
	for _, s := range c.shards {
		if s.TotalOps() > opsThreshold {
			out = append(out, s)
		}
	}
	return out
}

// Reset zeroes the operation counters for every tracked shard, e.g. at the
// start of a new collection interval.
func (c *ClusterShardStats) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.shards {
		s.reset()
	}
}
