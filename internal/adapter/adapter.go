package adapter

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/claudefs/claudefs/internal/buffer"
	"github.com/claudefs/claudefs/internal/cache"
	"github.com/claudefs/claudefs/internal/config"
	"github.com/claudefs/claudefs/internal/distributed"
	"github.com/claudefs/claudefs/internal/fuse"
	"github.com/claudefs/claudefs/internal/health"
	"github.com/claudefs/claudefs/internal/metadata"
	"github.com/claudefs/claudefs/internal/metrics"
	"github.com/claudefs/claudefs/internal/storage/s3"
)

// Adapter is the daemon-lifecycle coordinator that assembles one node's
// full stack - object storage backend, client-plane cache and write
// buffer, a metadata shard group bound to consensus, health monitoring,
// metrics, and the FUSE mount - and drives it through Start/Stop.
type Adapter struct {
	storageURI string
	mountPoint string
	config     *config.Configuration

	// Core components
	backend       *s3.Backend
	cache         *cache.MultiLevelCache
	writeBuffer   *buffer.WriteBuffer
	mountMgr      fuse.PlatformFileSystem
	metrics       *metrics.Collector
	cluster       *distributed.ClusterManager
	shardGroup    *metadata.ShardGroup
	healthMonitor *health.EnhancedMonitor

	// Internal state
	started    bool
	bucketName string
	s3Config   *s3.Config
}

// New creates a node adapter for the given object store URI and local
// mount point. The configuration is validated before any component is
// constructed.
func New(ctx context.Context, storageURI, mountPoint string, cfg *config.Configuration) (*Adapter, error) {
	if err := validateStorageURI(storageURI); err != nil {
		return nil, fmt.Errorf("invalid storage URI: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	parsed, err := url.Parse(storageURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse storage URI: %w", err)
	}

	bucketName := strings.TrimPrefix(parsed.Host, "")
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name cannot be empty")
	}

	adapter := &Adapter{
		storageURI: storageURI,
		mountPoint: mountPoint,
		config:     cfg,
		bucketName: bucketName,
	}

	return adapter, nil
}

// Start initializes every subsystem in dependency order and mounts the
// filesystem: metrics, then the object store backend, then the client
// plane cache and write buffer, then a single-shard metadata group bound
// to a local consensus cluster, then health monitoring, and finally the
// FUSE mount.
func (a *Adapter) Start(ctx context.Context) error {
	if a.started {
		return fmt.Errorf("adapter already started")
	}

	log.Printf("Starting claudefsd node...")
	log.Printf("Storage URI: %s", a.storageURI)
	log.Printf("Mount Point: %s", a.mountPoint)
	log.Printf("Cache Size: %s", a.config.Performance.CacheSize)
	log.Printf("Max Concurrency: %d", a.config.Performance.MaxConcurrency)

	var err error
	a.metrics, err = metrics.NewCollector(&metrics.Config{
		Enabled: a.config.Monitoring.Metrics.Enabled,
		Port:    a.config.Global.MetricsPort,
		Labels:  a.config.Monitoring.Metrics.CustomLabels,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics collector: %w", err)
	}

	a.s3Config = &s3.Config{
		Region:   "us-west-2",
		Endpoint: "",
	}

	a.backend, err = s3.NewBackend(ctx, a.bucketName, a.s3Config)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 backend: %w", err)
	}

	cacheConfig := &cache.MultiLevelConfig{
		L1Config: &cache.L1Config{
			Enabled:    true,
			Size:       parseSize(a.config.Performance.CacheSize),
			MaxEntries: a.config.Cache.MaxEntries,
			TTL:        a.config.Cache.TTL,
			Prefetch:   true,
		},
		L2Config: &cache.L2Config{
			Enabled:     a.config.Cache.PersistentCache.Enabled,
			Size:        parseSize(a.config.Cache.PersistentCache.MaxSize),
			Directory:   a.config.Cache.PersistentCache.Directory,
			TTL:         a.config.Cache.TTL,
			Compression: true,
		},
		Policy: a.config.Cache.EvictionPolicy,
	}

	a.cache, err = cache.NewMultiLevelCache(cacheConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	writeBufferConfig := &buffer.WriteBufferConfig{
		MaxBufferSize:  int64(parseSize(a.config.WriteBuffer.MaxMemory) / 100),
		FlushThreshold: int64(parseSize(a.config.WriteBuffer.MaxMemory) / 200),
		AsyncFlush:     true,
		MaxWriteDelay:  a.config.WriteBuffer.FlushInterval,
	}

	flushCallback := func(key string, data []byte, offset int64) error {
		return a.backend.PutObject(ctx, key, data)
	}

	a.writeBuffer, err = buffer.NewWriteBuffer(writeBufferConfig, flushCallback)
	if err != nil {
		return fmt.Errorf("failed to initialize write buffer: %w", err)
	}

	if err := a.startMetadataShard(ctx); err != nil {
		return fmt.Errorf("failed to start metadata shard: %w", err)
	}

	if err := a.startHealthMonitor(ctx); err != nil {
		return fmt.Errorf("failed to start health monitor: %w", err)
	}

	scheme := "s3"
	if parsed, err := url.Parse(a.storageURI); err == nil {
		scheme = parsed.Scheme
	}

	mountConfig := &fuse.MountConfig{
		MountPoint: a.mountPoint,
		Options: &fuse.MountOptions{
			FSName:   "claudefs",
			Subtype:  scheme,
			MaxRead:  128 * 1024,
			MaxWrite: 128 * 1024,
			Debug:    false,
		},
	}

	a.mountMgr = fuse.CreatePlatformMountManager(a.backend, a.cache, a.writeBuffer, a.metrics, mountConfig)

	if err := a.mountMgr.Mount(ctx); err != nil {
		return fmt.Errorf("failed to mount filesystem: %w", err)
	}

	a.started = true
	log.Printf("claudefsd node started successfully")
	return nil
}

// startMetadataShard brings up a single-node consensus cluster and binds
// shard 0's in-memory KV store to it. A real deployment runs one cluster
// per shard group across the node's replica set; this node always owns
// shard 0 of its local group until range-based shard assignment lands.
func (a *Adapter) startMetadataShard(ctx context.Context) error {
	nodeID := a.bucketName
	if host, err := os.Hostname(); err == nil && host != "" {
		nodeID = host + "-" + a.bucketName
	}

	clusterCfg := &distributed.ClusterConfig{
		NodeID:            nodeID,
		ElectionTimeout:   a.config.Metadata.RaftElectionTimeout,
		HeartbeatInterval: a.config.Metadata.RaftHeartbeat,
		LeadershipTTL:     5 * time.Second,
	}

	cluster, err := distributed.NewClusterManager(clusterCfg)
	if err != nil {
		return fmt.Errorf("create cluster manager: %w", err)
	}
	if err := cluster.Start(ctx); err != nil {
		return fmt.Errorf("start cluster manager: %w", err)
	}
	a.cluster = cluster

	store := metadata.NewMemoryKVStore()
	a.shardGroup = metadata.NewShardGroup(0, cluster.GetConsensusEngine(), store, metadata.RaftSnapshotConfig{
		MinEntriesBeforeCompact:  a.config.Metadata.SnapshotThreshold / 2,
		MaxEntriesBeforeSnapshot: a.config.Metadata.SnapshotThreshold,
	})
	return nil
}

// startHealthMonitor registers every long-running subsystem that exposes
// a HealthyComponent and starts periodic checking. It uses the enhanced
// monitor rather than the bare one so a degraded metadata shard gets
// pattern-based problem detection and the chance at automatic
// remediation, not just a health/unhealthy bit.
func (a *Adapter) startHealthMonitor(ctx context.Context) error {
	monitor, err := health.NewEnhancedMonitor(nil)
	if err != nil {
		return err
	}

	if a.shardGroup != nil {
		if err := monitor.RegisterComponent(a.shardGroup); err != nil {
			return fmt.Errorf("register metadata shard with health monitor: %w", err)
		}
	}

	if err := monitor.Start(ctx); err != nil {
		return err
	}
	a.healthMonitor = monitor
	return nil
}

// Stop unmounts the filesystem, flushes and closes the write buffer, stops
// the health monitor and the metadata cluster, then closes the backend. A
// failing step does not short-circuit the later ones, so a failure
// unmounting still lets the write buffer flush and the backend close; the
// error returned is the last one seen.
func (a *Adapter) Stop(ctx context.Context) error {
	if !a.started {
		return fmt.Errorf("adapter not started")
	}

	log.Printf("Stopping claudefsd node...")

	var lastErr error

	if a.mountMgr != nil && a.mountMgr.IsMounted() {
		if err := a.mountMgr.Unmount(); err != nil {
			log.Printf("Error unmounting filesystem: %v", err)
			lastErr = err
		}
	}

	if a.writeBuffer != nil {
		if err := a.writeBuffer.FlushAll(); err != nil {
			log.Printf("Error flushing write buffers: %v", err)
			lastErr = err
		}
		if err := a.writeBuffer.Close(); err != nil {
			log.Printf("Error closing write buffer: %v", err)
			lastErr = err
		}
	}

	if a.healthMonitor != nil {
		if err := a.healthMonitor.Stop(); err != nil {
			log.Printf("Error stopping health monitor: %v", err)
			lastErr = err
		}
	}

	if a.cluster != nil {
		if err := a.cluster.Stop(); err != nil {
			log.Printf("Error stopping metadata cluster: %v", err)
			lastErr = err
		}
	}

	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			log.Printf("Error closing backend: %v", err)
			lastErr = err
		}
	}

	a.started = false
	log.Printf("claudefsd node stopped successfully")
	return lastErr
}

// ShardGroup exposes the node's metadata shard group for callers (tests,
// the gateway layer) that need to propose writes directly.
func (a *Adapter) ShardGroup() *metadata.ShardGroup { return a.shardGroup }

// validateStorageURI validates the storage URI format
func validateStorageURI(uri string) error {
	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("failed to parse URI: %w", err)
	}

	switch parsed.Scheme {
	case "s3":
		if parsed.Host == "" {
			return fmt.Errorf("S3 URI must include bucket name")
		}
	default:
		return fmt.Errorf("unsupported storage scheme: %s (only s3:// supported)", parsed.Scheme)
	}

	return nil
}

// parseSize parses a human-readable size string (e.g., "2GB", "512MB") to bytes
func parseSize(sizeStr string) int64 {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	var multiplier int64 = 1
	var numStr string

	if strings.HasSuffix(sizeStr, "GB") {
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(sizeStr, "GB")
	} else if strings.HasSuffix(sizeStr, "MB") {
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(sizeStr, "MB")
	} else if strings.HasSuffix(sizeStr, "KB") {
		multiplier = 1024
		numStr = strings.TrimSuffix(sizeStr, "KB")
	} else if strings.HasSuffix(sizeStr, "B") {
		multiplier = 1
		numStr = strings.TrimSuffix(sizeStr, "B")
	} else {
		numStr = sizeStr
	}

	var num int64 = 1024 * 1024 * 1024
	if numStr != "" {
		if parsed, err := fmt.Sscanf(numStr, "%d", &num); err != nil || parsed != 1 {
			return 1024 * 1024 * 1024
		}
	}

	return num * multiplier
}
