package reduction

import (
	"sync"
	"time"

	"github.com/claudefs/claudefs/internal/codec"
)

// DefaultSegmentSize is the target payload size for erasure-coded segments.
const DefaultSegmentSize = 2 * 1024 * 1024

// SegmentEntry describes one chunk's placement within a sealed segment.
type SegmentEntry struct {
	Hash            codec.ChunkHash
	OffsetInSegment uint32
	PayloadSize     uint32
	OriginalSize    uint32
}

// Segment packs the payloads of several chunks for erasure-coded storage.
type Segment struct {
	ID        uint64
	Entries   []SegmentEntry
	Payload   []byte
	Sealed    bool
	CreatedAt time.Time
}

// TotalChunks returns the number of chunks packed into the segment.
func (s *Segment) TotalChunks() int { return len(s.Entries) }

// TotalPayloadBytes returns the size of the packed payload.
func (s *Segment) TotalPayloadBytes() int { return len(s.Payload) }

// SegmentPackerConfig tunes the target segment size.
type SegmentPackerConfig struct {
	TargetSize int
}

// DefaultSegmentPackerConfig targets DefaultSegmentSize.
func DefaultSegmentPackerConfig() SegmentPackerConfig {
	return SegmentPackerConfig{TargetSize: DefaultSegmentSize}
}

// SegmentPacker appends chunk payloads into fixed-target-size segments,
// sealing and emitting one whenever it reaches the target.
type SegmentPacker struct {
	mu      sync.Mutex
	cfg     SegmentPackerConfig
	nextID  uint64
	current *Segment
	now     func() time.Time
}

// NewSegmentPacker builds a packer with the given configuration.
func NewSegmentPacker(cfg SegmentPackerConfig) *SegmentPacker {
	return &SegmentPacker{cfg: cfg, now: time.Now}
}

// AddChunk appends a chunk's payload to the in-flight segment. It returns the
// sealed segment if this addition filled it to TargetSize or beyond,
// otherwise (nil, false).
func (p *SegmentPacker) AddChunk(hash codec.ChunkHash, payload []byte, originalSize uint32) (*Segment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		p.current = &Segment{ID: p.nextID, CreatedAt: p.now()}
		p.nextID++
	}

	seg := p.current
	offset := uint32(len(seg.Payload))
	seg.Entries = append(seg.Entries, SegmentEntry{
		Hash:            hash,
		OffsetInSegment: offset,
		PayloadSize:     uint32(len(payload)),
		OriginalSize:    originalSize,
	})
	seg.Payload = append(seg.Payload, payload...)

	if len(seg.Payload) >= p.cfg.TargetSize {
		seg.Sealed = true
		p.current = nil
		return seg, true
	}
	return nil, false
}

// Flush seals and returns the in-flight segment even if under target size.
// Returns (nil, false) if there is no in-flight segment.
func (p *SegmentPacker) Flush() (*Segment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, false
	}
	seg := p.current
	seg.Sealed = true
	p.current = nil
	return seg, true
}

// CurrentSize returns the in-flight payload size, 0 if none.
func (p *SegmentPacker) CurrentSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return 0
	}
	return len(p.current.Payload)
}

// IsEmpty reports whether there is no in-flight segment or it has no chunks.
func (p *SegmentPacker) IsEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current == nil || len(p.current.Entries) == 0
}
