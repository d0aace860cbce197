package reduction

import (
	"sync"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/claudefs/claudefs/pkg/errors"
)

// BlockStore is the minimal contract the pipeline needs from whatever holds
// encrypted, compressed chunk bytes at rest. S3BlockStore implements this
// over internal/storage/s3; tests may use an in-memory stand-in.
type BlockStore interface {
	Put(hash codec.ChunkHash, data []byte) error
	Get(hash codec.ChunkHash) ([]byte, error)
}

// PipelineConfig selects the compression/encryption treatment new chunks
// receive on the write path.
type PipelineConfig struct {
	Compression      CompressionAlgorithm
	CompressionLevel int
	EncryptionAlgo   Algorithm
}

// DefaultPipelineConfig compresses with LZ4 and encrypts with AES-256-GCM,
// matching the hot-path defaults described for newly written chunks.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{Compression: CompressionLZ4, EncryptionAlgo: AlgoAESGCM256}
}

// PipelineStats accumulates counters across writes processed by a Pipeline.
type PipelineStats struct {
	mu                 sync.Mutex
	InputBytes         uint64
	OutputBytes        uint64
	DuplicateChunkBytes uint64
	ChunksWritten      uint64
	ChunksDeduped      uint64
}

func (s *PipelineStats) record(input, output int, duplicate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InputBytes += uint64(input)
	if duplicate {
		s.DuplicateChunkBytes += uint64(input)
		s.ChunksDeduped++
		return
	}
	s.OutputBytes += uint64(output)
	s.ChunksWritten++
}

// Snapshot returns a point-in-time copy of the counters.
func (s *PipelineStats) Snapshot() PipelineStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PipelineStats{
		InputBytes:          s.InputBytes,
		OutputBytes:         s.OutputBytes,
		DuplicateChunkBytes: s.DuplicateChunkBytes,
		ChunksWritten:       s.ChunksWritten,
		ChunksDeduped:       s.ChunksDeduped,
	}
}

// CompressionRatio is InputBytes/OutputBytes, or 1.0 with no output yet.
func (s PipelineStats) CompressionRatio() float64 {
	if s.OutputBytes == 0 {
		return 1.0
	}
	return float64(s.InputBytes) / float64(s.OutputBytes)
}

// Pipeline orchestrates the write and read paths of the data-reduction
// flow: chunk, deduplicate through the CAS index, compress, encrypt, and
// persist; or the inverse for reads.
type Pipeline struct {
	cfg     PipelineConfig
	chunker *Chunker
	cas     *CASIndex
	store   BlockStore
	master  EncryptionKey
	stats   PipelineStats
}

// NewPipeline wires a pipeline over the given CAS index and block store,
// deriving per-chunk keys from masterKey.
func NewPipeline(cfg PipelineConfig, chunkerCfg ChunkerConfig, cas *CASIndex, store BlockStore, masterKey EncryptionKey) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		chunker: NewChunker(chunkerCfg),
		cas:     cas,
		store:   store,
		master:  masterKey,
	}
}

// WriteResult lists the chunk hashes that make up a written input, in order,
// so the caller can record them against an inode/extent.
type WriteResult struct {
	Hashes []codec.ChunkHash
}

// Write runs the full write path over plaintext: chunk, hash, dedup against
// the CAS index, and for new chunks compress + encrypt + persist + CAS
// insert.
func (p *Pipeline) Write(plaintext []byte) (WriteResult, error) {
	chunks, err := p.chunker.Split(plaintext)
	if err != nil {
		return WriteResult{}, err
	}

	result := WriteResult{Hashes: make([]codec.ChunkHash, 0, len(chunks))}
	for _, c := range chunks {
		refcount, isNew := p.cas.Insert(c.Hash)
		result.Hashes = append(result.Hashes, c.Hash)
		if !isNew && refcount > 1 {
			p.stats.record(len(c.Data), 0, true)
			continue
		}

		compressed, err := Compress(c.Data, p.cfg.Compression, p.cfg.CompressionLevel)
		if err != nil {
			return WriteResult{}, err
		}
		chunkKey, err := DeriveChunkKey(p.master, c.Hash)
		if err != nil {
			return WriteResult{}, err
		}
		encrypted, err := Encrypt(compressed, chunkKey, p.cfg.EncryptionAlgo)
		if err != nil {
			return WriteResult{}, err
		}
		onDisk := encodeEncryptedChunk(encrypted)
		if err := p.store.Put(c.Hash, onDisk); err != nil {
			return WriteResult{}, err
		}
		p.stats.record(len(c.Data), len(onDisk), false)
	}
	return result, nil
}

// Read runs the inverse path: locate each hash's stored bytes, decrypt,
// decompress, and concatenate in order.
func (p *Pipeline) Read(hashes []codec.ChunkHash) ([]byte, error) {
	var out []byte
	for _, h := range hashes {
		onDisk, err := p.store.Get(h)
		if err != nil {
			return nil, err
		}
		encrypted, err := decodeEncryptedChunk(onDisk)
		if err != nil {
			return nil, err
		}
		chunkKey, err := DeriveChunkKey(p.master, h)
		if err != nil {
			return nil, err
		}
		compressed, err := Decrypt(encrypted, chunkKey)
		if err != nil {
			return nil, err
		}
		plain, err := Decompress(compressed, p.cfg.Compression)
		if err != nil {
			return nil, err
		}
		out = append(out, plain...)
	}
	return out, nil
}

// Stats returns a point-in-time snapshot of the pipeline's counters.
func (p *Pipeline) Stats() PipelineStats {
	return p.stats.Snapshot()
}

// Release decrements the CAS refcount for every hash in hashes, e.g. when an
// extent or file referencing them is deleted. It does not remove chunk
// bytes from the block store; that's the GC sweep's job.
func (p *Pipeline) Release(hashes []codec.ChunkHash) {
	for _, h := range hashes {
		p.cas.Release(h)
	}
}

var errNotFound = errors.NewError(errors.ErrCodeBlockNotFound, "block not found")

// ErrBlockNotFound is returned by in-memory BlockStore stand-ins when a
// hash has no stored bytes.
func ErrBlockNotFound() error { return errNotFound }
