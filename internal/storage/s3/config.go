package s3

import (
	"time"
)

// Config represents S3 backend configuration
type Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	ForcePathStyle  bool   `yaml:"force_path_style"`

	// Performance settings
	MaxRetries     int           `yaml:"max_retries"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PoolSize       int           `yaml:"pool_size"`

	// Advanced settings
	UseAccelerate bool `yaml:"use_accelerate"`
	UseDualStack  bool `yaml:"use_dual_stack"`
	DisableSSL    bool `yaml:"disable_ssl"`

	// CargoShip optimization settings
	EnableCargoShipOptimization bool    `yaml:"enable_cargoship_optimization"`
	TargetThroughput            float64 `yaml:"target_throughput"`  // MB/s
	OptimizationLevel           string  `yaml:"optimization_level"` // "standard", "aggressive"
}

// NewDefaultConfig returns a configuration with sensible defaults for the
// flat chunk-store namespace the reduction pipeline and block stores put
// under this backend (no storage-tier or pricing concept - every object
// here is a content-addressed chunk or a metadata snapshot blob, not a
// billable customer file).
func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:                  3,
		ConnectTimeout:              10 * time.Second,
		RequestTimeout:              30 * time.Second,
		PoolSize:                    8,
		EnableCargoShipOptimization: true,
		TargetThroughput:            800.0, // 800 MB/s target
		OptimizationLevel:           "standard",
	}
}
