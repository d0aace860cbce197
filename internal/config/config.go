package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Configuration represents the complete application configuration
type Configuration struct {
	Global      GlobalConfig      `yaml:"global"`
	Performance PerformanceConfig `yaml:"performance"`
	Cache       CacheConfig       `yaml:"cache"`
	WriteBuffer WriteBufferConfig `yaml:"write_buffer"`
	Network     NetworkConfig     `yaml:"network"`
	Security    SecurityConfig    `yaml:"security"`
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	Features    FeatureConfig     `yaml:"features"`
	Reduction   ReductionConfig   `yaml:"reduction"`
	Metadata    MetadataConfig    `yaml:"metadata"`
	ClientPlane ClientPlaneConfig `yaml:"clientplane"`
	Transport   TransportConfig   `yaml:"transport"`
	Gateway     GatewayConfig     `yaml:"gateway"`
	Replication ReplicationConfig `yaml:"replication"`
}

// ReductionConfig tunes the L2 data-reduction pipeline: content-defined
// chunking, the per-tenant key manager, and segment packing.
type ReductionConfig struct {
	Chunker      ChunkerConfig      `yaml:"chunker"`
	KeyManager   KeyManagerConfig   `yaml:"key_manager"`
	SegmentPacker SegmentPackerConfig `yaml:"segment_packer"`
}

// ChunkerConfig controls the rolling-hash content-defined chunker.
type ChunkerConfig struct {
	MinChunkSize    int    `yaml:"min_chunk_size"`
	AvgChunkSize    int    `yaml:"avg_chunk_size"`
	MaxChunkSize    int    `yaml:"max_chunk_size"`
	HashWindowBytes int    `yaml:"hash_window_bytes"`
	Algorithm       string `yaml:"algorithm"`
}

// KeyManagerConfig controls per-tenant convergent-encryption key derivation.
type KeyManagerConfig struct {
	RotationInterval time.Duration `yaml:"rotation_interval"`
	KeyCacheSize      int           `yaml:"key_cache_size"`
}

// SegmentPackerConfig controls how deduplicated chunks are packed into
// storage-backed segments.
type SegmentPackerConfig struct {
	TargetSegmentSize string `yaml:"target_segment_size"`
	FlushInterval     time.Duration `yaml:"flush_interval"`
	CompressionAlgo   string `yaml:"compression_algo"`
}

// MetadataConfig tunes the L3 metadata and consensus layer.
type MetadataConfig struct {
	ShardCount          int           `yaml:"shard_count"`
	SnapshotThreshold   int           `yaml:"snapshot_threshold"`
	SnapshotInterval    time.Duration `yaml:"snapshot_interval"`
	RaftElectionTimeout time.Duration `yaml:"raft_election_timeout"`
	RaftHeartbeat       time.Duration `yaml:"raft_heartbeat"`
}

// ClientPlaneConfig tunes the L4 client-facing cache and buffer pools.
type ClientPlaneConfig struct {
	AttrCacheTTL           time.Duration `yaml:"attr_cache_ttl"`
	DentryCacheTTL         time.Duration `yaml:"dentry_cache_ttl"`
	BufferPoolMaxBuffers   int           `yaml:"buffer_pool_max_buffers"`
	PassthroughSizeThreshold string      `yaml:"passthrough_size_threshold"`
}

// TransportConfig tunes the L1 transport layer: rate limiting, circuit
// breaking, load shedding, and request deduplication.
type TransportConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rate_limiter"`
	LoadShedder    LoadShedderConfig    `yaml:"load_shedder"`
	Deduplication  DeduplicationConfig `yaml:"deduplication"`
}

// RateLimiterConfig controls the token-bucket request limiter.
type RateLimiterConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second"`
	BurstSize         int  `yaml:"burst_size"`
}

// LoadShedderConfig controls admission shedding under overload.
type LoadShedderConfig struct {
	Enabled          bool    `yaml:"enabled"`
	MaxQueueDepth    int     `yaml:"max_queue_depth"`
	SheddingFraction float64 `yaml:"shedding_fraction"`
}

// DeduplicationConfig controls duplicate-request suppression.
type DeduplicationConfig struct {
	Enabled bool          `yaml:"enabled"`
	Window  time.Duration `yaml:"window"`
}

// GatewayConfig tunes the L5 NFS/pNFS protocol gateway.
type GatewayConfig struct {
	AttrCacheTTL      time.Duration `yaml:"attr_cache_ttl"`
	AttrCacheMaxEntries int         `yaml:"attr_cache_max_entries"`
	StripeUnitSize    int           `yaml:"stripe_unit_size"`
}

// ReplicationConfig tunes cross-site replication topology and
// back-pressure behavior.
type ReplicationConfig struct {
	LocalSiteID   uint64              `yaml:"local_site_id"`
	Backpressure  BackpressureCfgYAML `yaml:"backpressure"`
}

// BackpressureCfgYAML mirrors replication.BackpressureConfig for YAML
// unmarshaling; internal/replication owns the authoritative type.
type BackpressureCfgYAML struct {
	MildQueueDepth     uint64 `yaml:"mild_queue_depth"`
	ModerateQueueDepth uint64 `yaml:"moderate_queue_depth"`
	SevereQueueDepth   uint64 `yaml:"severe_queue_depth"`
	HaltQueueDepth     uint64 `yaml:"halt_queue_depth"`
	MildErrorCount     int    `yaml:"mild_error_count"`
	ModerateErrorCount int    `yaml:"moderate_error_count"`
	SevereErrorCount   int    `yaml:"severe_error_count"`
}

// GlobalConfig represents global application settings
type GlobalConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFile     string `yaml:"log_file"`
	MetricsPort int    `yaml:"metrics_port"`
	HealthPort  int    `yaml:"health_port"`
	ProfilePort int    `yaml:"profile_port"`
}

// PerformanceConfig represents performance-related settings
type PerformanceConfig struct {
	CacheSize          string          `yaml:"cache_size"`
	WriteBufferSize    string          `yaml:"write_buffer_size"`
	MaxConcurrency     int             `yaml:"max_concurrency"`
	ReadAheadSize      string          `yaml:"read_ahead_size"`
	CompressionEnabled bool            `yaml:"compression_enabled"`
	ConnectionPoolSize int             `yaml:"connection_pool_size"`
	ReadAhead          ReadAheadConfig `yaml:"read_ahead"`
}

// ReadAheadConfig tunes the client-plane read-ahead and prefetch
// predictor that sits in front of the segment cache.
type ReadAheadConfig struct {
	Enabled                bool    `yaml:"enabled"`
	Size                   string  `yaml:"size"`
	Strategy               string  `yaml:"strategy"` // simple, predictive, ml
	EnablePatternDetection bool    `yaml:"enable_pattern_detection"`
	SequentialThreshold    float64 `yaml:"sequential_threshold"`
	PatternDepth           int     `yaml:"pattern_depth"`
	EnablePrefetch         bool    `yaml:"enable_prefetch"`
	MaxConcurrentFetch     int     `yaml:"max_concurrent_fetch"`
	PrefetchAhead          int     `yaml:"prefetch_ahead"`
	PrefetchBandwidthMBs   int     `yaml:"prefetch_bandwidth_mbs"`
	PredictionWindow       int     `yaml:"prediction_window"`
	ConfidenceThreshold    float64 `yaml:"confidence_threshold"`
	EnableMLPrediction     bool    `yaml:"enable_ml_prediction"`
	MLModelPath            string  `yaml:"ml_model_path"`
	LearningRate           float64 `yaml:"learning_rate"`
	MetricsEnabled         bool    `yaml:"metrics_enabled"`
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	TTL             time.Duration         `yaml:"ttl"`
	MaxEntries      int                   `yaml:"max_entries"`
	EvictionPolicy  string                `yaml:"eviction_policy"`
	PersistentCache PersistentCacheConfig `yaml:"persistent_cache"`
}

// PersistentCacheConfig represents persistent cache settings
type PersistentCacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
	MaxSize   string `yaml:"max_size"`
}

// WriteBufferConfig represents write buffer configuration
type WriteBufferConfig struct {
	FlushInterval time.Duration     `yaml:"flush_interval"`
	MaxBuffers    int               `yaml:"max_buffers"`
	MaxMemory     string            `yaml:"max_memory"`
	Compression   CompressionConfig `yaml:"compression"`
}

// CompressionConfig represents compression settings
type CompressionConfig struct {
	Enabled   bool   `yaml:"enabled"`
	MinSize   string `yaml:"min_size"`
	Algorithm string `yaml:"algorithm"`
	Level     int    `yaml:"level"`
}

// NetworkConfig represents network configuration
type NetworkConfig struct {
	Timeouts       TimeoutConfig        `yaml:"timeouts"`
	Retry          RetryConfig          `yaml:"retry"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// TimeoutConfig represents timeout settings
type TimeoutConfig struct {
	Connect time.Duration `yaml:"connect"`
	Read    time.Duration `yaml:"read"`
	Write   time.Duration `yaml:"write"`
}

// RetryConfig represents retry settings
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// CircuitBreakerConfig represents circuit breaker settings
type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold int           `yaml:"failure_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

// SecurityConfig represents security settings
type SecurityConfig struct {
	TLS        TLSConfig        `yaml:"tls"`
	Encryption EncryptionConfig `yaml:"encryption"`
}

// TLSConfig represents TLS settings
type TLSConfig struct {
	VerifyCertificates bool   `yaml:"verify_certificates"`
	MinVersion         string `yaml:"min_version"`
}

// EncryptionConfig represents encryption settings
type EncryptionConfig struct {
	InTransit bool `yaml:"in_transit"`
	AtRest    bool `yaml:"at_rest"`
}

// MonitoringConfig represents monitoring settings
type MonitoringConfig struct {
	Metrics      MetricsConfig      `yaml:"metrics"`
	HealthChecks HealthChecksConfig `yaml:"health_checks"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// MetricsConfig represents metrics settings
type MetricsConfig struct {
	Enabled      bool              `yaml:"enabled"`
	Prometheus   bool              `yaml:"prometheus"`
	CustomLabels map[string]string `yaml:"custom_labels"`
}

// HealthChecksConfig represents health check settings
type HealthChecksConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig represents logging settings
type LoggingConfig struct {
	Structured bool           `yaml:"structured"`
	Format     string         `yaml:"format"`
	Sampling   SamplingConfig `yaml:"sampling"`
}

// SamplingConfig represents log sampling settings
type SamplingConfig struct {
	Enabled bool `yaml:"enabled"`
	Rate    int  `yaml:"rate"`
}

// FeatureConfig represents feature flags
type FeatureConfig struct {
	Prefetching           bool `yaml:"prefetching"`
	BatchOperations       bool `yaml:"batch_operations"`
	SmallFileOptimization bool `yaml:"small_file_optimization"`
	MetadataCaching       bool `yaml:"metadata_caching"`
	OfflineMode           bool `yaml:"offline_mode"`
}

// NewDefault returns a configuration with sensible defaults
func NewDefault() *Configuration {
	return &Configuration{
		Global: GlobalConfig{
			LogLevel:    "INFO",
			LogFile:     "",
			MetricsPort: 8080,
			HealthPort:  8081,
			ProfilePort: 6060,
		},
		Performance: PerformanceConfig{
			CacheSize:          "2GB",
			WriteBufferSize:    "16MB",
			MaxConcurrency:     150,
			ReadAheadSize:      "64MB",
			CompressionEnabled: true,
			ConnectionPoolSize: 8,
			ReadAhead: ReadAheadConfig{
				Enabled:                true,
				Size:                   "64MB",
				Strategy:               "predictive",
				EnablePatternDetection: true,
				SequentialThreshold:    0.7,
				PatternDepth:           8,
				EnablePrefetch:         true,
				MaxConcurrentFetch:     4,
				PrefetchAhead:          3,
				PrefetchBandwidthMBs:   10,
				PredictionWindow:       16,
				ConfidenceThreshold:    0.7,
				EnableMLPrediction:     false,
				LearningRate:           0.01,
				MetricsEnabled:         true,
			},
		},
		Cache: CacheConfig{
			TTL:            5 * time.Minute,
			MaxEntries:     100000,
			EvictionPolicy: "weighted_lru",
			PersistentCache: PersistentCacheConfig{
				Enabled:   false,
				Directory: "/var/cache/objectfs",
				MaxSize:   "10GB",
			},
		},
		WriteBuffer: WriteBufferConfig{
			FlushInterval: 30 * time.Second,
			MaxBuffers:    1000,
			MaxMemory:     "512MB",
			Compression: CompressionConfig{
				Enabled:   true,
				MinSize:   "1KB",
				Algorithm: "gzip",
				Level:     6,
			},
		},
		Network: NetworkConfig{
			Timeouts: TimeoutConfig{
				Connect: 10 * time.Second,
				Read:    30 * time.Second,
				Write:   300 * time.Second,
			},
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   1 * time.Second,
				MaxDelay:    30 * time.Second,
			},
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				Timeout:          60 * time.Second,
			},
		},
		Security: SecurityConfig{
			TLS: TLSConfig{
				VerifyCertificates: true,
				MinVersion:         "1.2",
			},
			Encryption: EncryptionConfig{
				InTransit: true,
				AtRest:    true,
			},
		},
		Monitoring: MonitoringConfig{
			Metrics: MetricsConfig{
				Enabled:    true,
				Prometheus: true,
				CustomLabels: map[string]string{
					"service": "objectfs",
				},
			},
			HealthChecks: HealthChecksConfig{
				Enabled:  true,
				Interval: 30 * time.Second,
				Timeout:  5 * time.Second,
			},
			Logging: LoggingConfig{
				Structured: true,
				Format:     "json",
				Sampling: SamplingConfig{
					Enabled: true,
					Rate:    1000,
				},
			},
		},
		Features: FeatureConfig{
			Prefetching:           true,
			BatchOperations:       true,
			SmallFileOptimization: true,
			MetadataCaching:       true,
			OfflineMode:           false,
		},
		Reduction: ReductionConfig{
			Chunker: ChunkerConfig{
				MinChunkSize:    2 * 1024,
				AvgChunkSize:    8 * 1024,
				MaxChunkSize:    64 * 1024,
				HashWindowBytes: 48,
				Algorithm:       "buzhash",
			},
			KeyManager: KeyManagerConfig{
				RotationInterval: 24 * time.Hour,
				KeyCacheSize:     1000,
			},
			SegmentPacker: SegmentPackerConfig{
				TargetSegmentSize: "8MB",
				FlushInterval:     10 * time.Second,
				CompressionAlgo:   "zstd",
			},
		},
		Metadata: MetadataConfig{
			ShardCount:          256,
			SnapshotThreshold:   10000,
			SnapshotInterval:    5 * time.Minute,
			RaftElectionTimeout: 1 * time.Second,
			RaftHeartbeat:       150 * time.Millisecond,
		},
		ClientPlane: ClientPlaneConfig{
			AttrCacheTTL:             1 * time.Second,
			DentryCacheTTL:           1 * time.Second,
			BufferPoolMaxBuffers:     256,
			PassthroughSizeThreshold: "4MB",
		},
		Transport: TransportConfig{
			RateLimiter: RateLimiterConfig{
				Enabled:           true,
				RequestsPerSecond: 10000,
				BurstSize:         1000,
			},
			LoadShedder: LoadShedderConfig{
				Enabled:          true,
				MaxQueueDepth:    50000,
				SheddingFraction: 0.1,
			},
			Deduplication: DeduplicationConfig{
				Enabled: true,
				Window:  30 * time.Second,
			},
		},
		Gateway: GatewayConfig{
			AttrCacheTTL:        3 * time.Second,
			AttrCacheMaxEntries: 100000,
			StripeUnitSize:      65536,
		},
		Replication: ReplicationConfig{
			LocalSiteID: 1,
			Backpressure: BackpressureCfgYAML{
				MildQueueDepth:     1000,
				ModerateQueueDepth: 10000,
				SevereQueueDepth:   100000,
				HaltQueueDepth:     1000000,
				MildErrorCount:     1,
				ModerateErrorCount: 3,
				SevereErrorCount:   10,
			},
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Configuration) LoadFromEnv() error {
	// Global settings
	if val := os.Getenv("OBJECTFS_LOG_LEVEL"); val != "" {
		c.Global.LogLevel = val
	}
	if val := os.Getenv("OBJECTFS_LOG_FILE"); val != "" {
		c.Global.LogFile = val
	}
	if val := os.Getenv("OBJECTFS_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Global.MetricsPort = port
		}
	}

	// Performance settings
	if val := os.Getenv("OBJECTFS_CACHE_SIZE"); val != "" {
		c.Performance.CacheSize = val
	}
	if val := os.Getenv("OBJECTFS_WRITE_BUFFER_SIZE"); val != "" {
		c.Performance.WriteBufferSize = val
	}
	if val := os.Getenv("OBJECTFS_MAX_CONCURRENCY"); val != "" {
		if concurrency, err := strconv.Atoi(val); err == nil {
			c.Performance.MaxConcurrency = concurrency
		}
	}
	if val := os.Getenv("OBJECTFS_READ_AHEAD_SIZE"); val != "" {
		c.Performance.ReadAheadSize = val
	}
	if val := os.Getenv("OBJECTFS_COMPRESSION_ENABLED"); val != "" {
		c.Performance.CompressionEnabled = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("OBJECTFS_CONNECTION_POOL_SIZE"); val != "" {
		if poolSize, err := strconv.Atoi(val); err == nil {
			c.Performance.ConnectionPoolSize = poolSize
		}
	}

	// Read-ahead settings
	if val := os.Getenv("OBJECTFS_READAHEAD_ENABLED"); val != "" {
		c.Performance.ReadAhead.Enabled = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("OBJECTFS_READAHEAD_SIZE"); val != "" {
		c.Performance.ReadAhead.Size = val
	}
	if val := os.Getenv("OBJECTFS_READAHEAD_STRATEGY"); val != "" {
		c.Performance.ReadAhead.Strategy = val
	}
	if val := os.Getenv("OBJECTFS_READAHEAD_PATTERN_DETECTION"); val != "" {
		c.Performance.ReadAhead.EnablePatternDetection = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("OBJECTFS_READAHEAD_PREFETCH"); val != "" {
		c.Performance.ReadAhead.EnablePrefetch = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("OBJECTFS_READAHEAD_ML_PREDICTION"); val != "" {
		c.Performance.ReadAhead.EnableMLPrediction = strings.ToLower(val) == "true"
	}

	// Cache settings
	if val := os.Getenv("OBJECTFS_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Cache.TTL = duration
		}
	}

	// Feature flags
	if val := os.Getenv("OBJECTFS_PREFETCHING"); val != "" {
		c.Features.Prefetching = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("OBJECTFS_BATCH_OPERATIONS"); val != "" {
		c.Features.BatchOperations = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("OBJECTFS_OFFLINE_MODE"); val != "" {
		c.Features.OfflineMode = strings.ToLower(val) == "true"
	}

	return nil
}

// SaveToFile saves the configuration to a YAML file
func (c *Configuration) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Configuration) Validate() error {
	if c.Performance.MaxConcurrency <= 0 {
		return fmt.Errorf("max_concurrency must be greater than 0")
	}

	if c.Performance.ConnectionPoolSize <= 0 {
		return fmt.Errorf("connection_pool_size must be greater than 0")
	}

	if c.Global.MetricsPort == c.Global.HealthPort {
		return fmt.Errorf("metrics_port and health_port cannot be the same")
	}

	if c.Metadata.ShardCount <= 0 {
		return fmt.Errorf("metadata.shard_count must be greater than 0")
	}

	if c.Reduction.Chunker.MinChunkSize > 0 && c.Reduction.Chunker.MaxChunkSize > 0 &&
		c.Reduction.Chunker.MinChunkSize > c.Reduction.Chunker.MaxChunkSize {
		return fmt.Errorf("reduction.chunker.min_chunk_size cannot exceed max_chunk_size")
	}

	if c.Gateway.StripeUnitSize <= 0 {
		return fmt.Errorf("gateway.stripe_unit_size must be greater than 0")
	}

	if err := c.Performance.ReadAhead.validate(); err != nil {
		return err
	}

	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	logLevelValid := false
	for _, level := range validLogLevels {
		if c.Global.LogLevel == level {
			logLevelValid = true
			break
		}
	}
	if !logLevelValid {
		return fmt.Errorf("invalid log_level: %s (must be one of: %s)",
			c.Global.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

func (r ReadAheadConfig) validate() error {
	switch r.Strategy {
	case "simple", "predictive", "ml":
	default:
		return fmt.Errorf("invalid read_ahead strategy: %s (must be one of: simple, predictive, ml)", r.Strategy)
	}

	if r.SequentialThreshold < 0 || r.SequentialThreshold > 1 {
		return fmt.Errorf("read_ahead.sequential_threshold must be between 0 and 1")
	}
	if r.ConfidenceThreshold < 0 || r.ConfidenceThreshold > 1 {
		return fmt.Errorf("read_ahead.confidence_threshold must be between 0 and 1")
	}
	if r.LearningRate < 0 || r.LearningRate > 1 {
		return fmt.Errorf("read_ahead.learning_rate must be between 0 and 1")
	}
	if r.PredictionWindow < 0 {
		return fmt.Errorf("read_ahead.prediction_window cannot be negative")
	}
	if r.MaxConcurrentFetch <= 0 {
		return fmt.Errorf("read_ahead.max_concurrent_fetch must be greater than 0")
	}
	if r.PrefetchAhead < 0 {
		return fmt.Errorf("read_ahead.prefetch_ahead cannot be negative")
	}
	if r.PrefetchBandwidthMBs < 0 {
		return fmt.Errorf("read_ahead.prefetch_bandwidth_mbs cannot be negative")
	}
	if r.PatternDepth < 0 {
		return fmt.Errorf("read_ahead.pattern_depth cannot be negative")
	}
	if r.EnableMLPrediction && r.MLModelPath == "" {
		return fmt.Errorf("read_ahead.ml_model_path is required when enable_ml_prediction is true")
	}

	return nil
}