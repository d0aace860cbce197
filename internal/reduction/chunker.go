package reduction

import (
	"bytes"
	"io"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/restic/chunker"
)

// claudefsPolynomial is a fixed irreducible polynomial used to seed the
// rolling-hash chunker. It is a constant, not a per-instance random value,
// so that identical input always produces identical chunk boundaries
// regardless of which node or process performs the chunking.
const claudefsPolynomial = chunker.Pol(0x3DA3358B4DC173)

// ChunkerConfig bounds the content-defined chunker. Split uses MinSize and
// MaxSize only: AvgSize is not passed to the rolling-hash chunker, so the
// average chunk size is that library's own default.
type ChunkerConfig struct {
	MinSize uint
	AvgSize uint
	MaxSize uint
}

// DefaultChunkerConfig bounds chunks to 512 KiB..8 MiB and records an
// AvgSize of 2 MiB, the same as DefaultSegmentSize.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MinSize: 512 * 1024,
		AvgSize: 2 * 1024 * 1024,
		MaxSize: 8 * 1024 * 1024,
	}
}

// Chunk is one content-defined slice of an input, along with its fingerprint.
type Chunk struct {
	Data []byte
	Hash codec.ChunkHash
}

// Chunker splits byte slices into content-defined chunks. It is stateless
// between calls to Split: each call establishes a fresh rolling-hash window,
// so Split is deterministic for a given input and configuration.
type Chunker struct {
	cfg ChunkerConfig
}

// NewChunker builds a chunker with the given boundary configuration.
func NewChunker(cfg ChunkerConfig) *Chunker {
	return &Chunker{cfg: cfg}
}

// Split partitions data into chunks whose lengths fall within
// [MinSize, MaxSize], except possibly the final chunk. The concatenation of
// the returned chunk payloads always reassembles to the original input.
func (c *Chunker) Split(data []byte) ([]Chunk, error) {
	if len(data) == 0 {
		return nil, nil
	}

	ck := chunker.NewWithBoundaries(bytes.NewReader(data), claudefsPolynomial, c.cfg.MinSize, c.cfg.MaxSize)
	buf := make([]byte, c.cfg.MaxSize)

	var chunks []Chunk
	for {
		piece, err := ck.Next(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		payload := make([]byte, len(piece.Data))
		copy(payload, piece.Data)
		chunks = append(chunks, Chunk{Data: payload, Hash: codec.BLAKE3(payload)})
	}
	return chunks, nil
}
