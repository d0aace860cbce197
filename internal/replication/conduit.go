package replication

import (
	"sync"

	"github.com/claudefs/claudefs/internal/reduction"
)

// BackpressureLevel tiers how hard the replication conduit should throttle
// or stop producing EntryBatch traffic, ordered least to most severe.
type BackpressureLevel int

const (
	BackpressureNone BackpressureLevel = iota
	BackpressureMild
	BackpressureModerate
	BackpressureSevere
	BackpressureHalt
)

// SuggestedDelayMs returns the recommended pacing delay in milliseconds
// for this level. Halt has no finite delay: producing must stop.
func (l BackpressureLevel) SuggestedDelayMs() uint64 {
	switch l {
	case BackpressureNone:
		return 0
	case BackpressureMild:
		return 5
	case BackpressureModerate:
		return 50
	case BackpressureSevere:
		return 500
	case BackpressureHalt:
		return ^uint64(0)
	default:
		return 0
	}
}

// IsHalted reports whether the level requires producing to stop entirely.
func (l BackpressureLevel) IsHalted() bool { return l == BackpressureHalt }

// IsActive reports whether the level is anything other than None.
func (l BackpressureLevel) IsActive() bool { return l != BackpressureNone }

// BackpressureConfig tunes the queue-depth and consecutive-error-count
// thresholds that drive BackpressureController.ComputeLevel. The final
// level is the more severe of the queue-depth tier and the error-count
// tier.
type BackpressureConfig struct {
	MildQueueDepth     uint64
	ModerateQueueDepth uint64
	SevereQueueDepth   uint64
	HaltQueueDepth     uint64

	MildErrorCount     int
	ModerateErrorCount int
	SevereErrorCount   int
}

// DefaultBackpressureConfig returns reasonable default thresholds.
func DefaultBackpressureConfig() BackpressureConfig {
	return BackpressureConfig{
		MildQueueDepth:     1000,
		ModerateQueueDepth: 10000,
		SevereQueueDepth:   100000,
		HaltQueueDepth:     1000000,
		MildErrorCount:     1,
		ModerateErrorCount: 3,
		SevereErrorCount:   10,
	}
}

// BackpressureController derives the current back-pressure tier from
// queue depth and consecutive error count, with a manual force-halt
// override.
type BackpressureController struct {
	mu           sync.Mutex
	cfg          BackpressureConfig
	queueDepth   uint64
	errorCount   int
	forcedHalt   bool
}

// NewBackpressureController returns a controller starting at BackpressureNone.
func NewBackpressureController(cfg BackpressureConfig) *BackpressureController {
	return &BackpressureController{cfg: cfg}
}

// SetQueueDepth records the current outbound queue depth.
func (c *BackpressureController) SetQueueDepth(depth uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queueDepth = depth
}

// RecordError increments the consecutive error counter.
func (c *BackpressureController) RecordError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount++
}

// ResetErrors clears the consecutive error counter, e.g. after a
// successful batch send.
func (c *BackpressureController) ResetErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorCount = 0
}

// ForceHalt overrides the computed level to Halt until ClearHalt is called.
func (c *BackpressureController) ForceHalt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forcedHalt = true
}

// ClearHalt removes a prior ForceHalt override.
func (c *BackpressureController) ClearHalt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forcedHalt = false
}

func levelForQueueDepth(cfg BackpressureConfig, depth uint64) BackpressureLevel {
	switch {
	case depth >= cfg.HaltQueueDepth:
		return BackpressureHalt
	case depth >= cfg.SevereQueueDepth:
		return BackpressureSevere
	case depth >= cfg.ModerateQueueDepth:
		return BackpressureModerate
	case depth >= cfg.MildQueueDepth:
		return BackpressureMild
	default:
		return BackpressureNone
	}
}

func levelForErrorCount(cfg BackpressureConfig, count int) BackpressureLevel {
	switch {
	case cfg.SevereErrorCount > 0 && count >= cfg.SevereErrorCount:
		return BackpressureSevere
	case cfg.ModerateErrorCount > 0 && count >= cfg.ModerateErrorCount:
		return BackpressureModerate
	case cfg.MildErrorCount > 0 && count >= cfg.MildErrorCount:
		return BackpressureMild
	default:
		return BackpressureNone
	}
}

// ComputeLevel derives the current tier as the more severe of the
// queue-depth tier and the consecutive-error-count tier, overridden to
// Halt when forced.
func (c *BackpressureController) ComputeLevel() BackpressureLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.forcedHalt {
		return BackpressureHalt
	}

	queueLevel := levelForQueueDepth(c.cfg, c.queueDepth)
	errorLevel := levelForErrorCount(c.cfg, c.errorCount)
	if errorLevel > queueLevel {
		return errorLevel
	}
	return queueLevel
}

// CurrentLevel returns the current tier. It recomputes the tier exactly as
// ComputeLevel does; no previously computed level is cached.
func (c *BackpressureController) CurrentLevel() BackpressureLevel {
	return c.ComputeLevel()
}

// ConduitConfig names the local and remote site a conduit connects.
type ConduitConfig struct {
	LocalSiteID  SiteID
	RemoteSiteID SiteID
}

// NewConduitConfig returns a ConduitConfig for the given site pair.
func NewConduitConfig(localSiteID, remoteSiteID SiteID) ConduitConfig {
	return ConduitConfig{LocalSiteID: localSiteID, RemoteSiteID: remoteSiteID}
}

// EntryBatch is an ordered batch of replicated log entries transported
// between two sites. Validation of SourceSiteID against the conduit's
// expected peer is left to an auth layer above this package.
type EntryBatch struct {
	BatchSeq     uint64
	SourceSiteID SiteID
	Entries      [][]byte
}

// CompressedBatch wraps an EntryBatch's serialized payload after
// optional compression, reusing the reduction layer's compression
// algorithm enum (None/LZ4/Zstd) rather than a second one.
type CompressedBatch struct {
	BatchSeq        uint64
	SourceSiteID    SiteID
	OriginalBytes   uint64
	CompressedBytes uint64
	Algo            reduction.CompressionAlgorithm
	Data            []byte
}

// CompressionRatio returns OriginalBytes / CompressedBytes, or 1.0 when
// CompressedBytes is zero.
func (b CompressedBatch) CompressionRatio() float64 {
	if b.CompressedBytes == 0 {
		return 1.0
	}
	return float64(b.OriginalBytes) / float64(b.CompressedBytes)
}

// IsBeneficial reports whether compression actually reduced the size.
func (b CompressedBatch) IsBeneficial() bool {
	return b.Algo != reduction.CompressionNone && b.CompressedBytes < b.OriginalBytes
}
