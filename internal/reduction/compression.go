package reduction

import (
	"bytes"
	"io"

	"github.com/claudefs/claudefs/pkg/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionAlgorithm selects how a chunk payload is stored.
type CompressionAlgorithm uint8

const (
	CompressionNone CompressionAlgorithm = iota
	CompressionLZ4
	CompressionZstd
)

// Compress encodes data with the given algorithm. level is only consulted
// for Zstd (1=fastest .. 19=best); it is ignored otherwise.
func Compress(data []byte, algo CompressionAlgorithm, level int) ([]byte, error) {
	switch algo {
	case CompressionNone:
		return append([]byte(nil), data...), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, errors.NewError(errors.ErrCodeInvalidArgument, "lz4 compress failed").WithCause(err)
		}
		if err := w.Close(); err != nil {
			return nil, errors.NewError(errors.ErrCodeInvalidArgument, "lz4 compress failed").WithCause(err)
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdLevel(level)))
		if err != nil {
			return nil, errors.NewError(errors.ErrCodeInvalidArgument, "zstd encoder setup failed").WithCause(err)
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	default:
		return nil, errors.NewError(errors.ErrCodeInvalidArgument, "unknown compression algorithm")
	}
}

// Decompress is the inverse of Compress. Tampered or truncated input returns
// ErrCodeDecompressionFailed rather than panicking.
func Decompress(data []byte, algo CompressionAlgorithm) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.NewError(errors.ErrCodeDecompressionFailed, "decompression panicked on malformed input")
		}
	}()

	switch algo {
	case CompressionNone:
		return append([]byte(nil), data...), nil
	case CompressionLZ4:
		r := lz4.NewReader(bytes.NewReader(data))
		buf, readErr := io.ReadAll(r)
		if readErr != nil {
			return nil, errors.NewError(errors.ErrCodeDecompressionFailed, "lz4 decompress failed").WithCause(readErr)
		}
		return buf, nil
	case CompressionZstd:
		dec, decErr := zstd.NewReader(nil)
		if decErr != nil {
			return nil, errors.NewError(errors.ErrCodeDecompressionFailed, "zstd decoder setup failed").WithCause(decErr)
		}
		defer dec.Close()
		buf, decodeErr := dec.DecodeAll(data, nil)
		if decodeErr != nil {
			return nil, errors.NewError(errors.ErrCodeDecompressionFailed, "zstd decompress failed").WithCause(decodeErr)
		}
		return buf, nil
	default:
		return nil, errors.NewError(errors.ErrCodeInvalidArgument, "unknown compression algorithm")
	}
}

// RecompressorConfig tunes the background LZ4→Zstd recompressor used ahead
// of cold-tier storage.
type RecompressorConfig struct {
	ZstdLevel        int
	MinImprovementPct uint8
}

// DefaultRecompressorConfig matches the original cold-tiering defaults.
func DefaultRecompressorConfig() RecompressorConfig {
	return RecompressorConfig{ZstdLevel: 3, MinImprovementPct: 5}
}

// RecompressionStats aggregates the outcome of a recompression batch.
type RecompressionStats struct {
	ChunksProcessed uint64
	ChunksImproved  uint64
	ChunksSkipped   uint64
	BytesBefore     uint64
	BytesAfter      uint64
}

// CompressionRatio is BytesBefore/BytesAfter, or 1.0 if nothing was processed.
func (s RecompressionStats) CompressionRatio() float64 {
	if s.BytesAfter == 0 {
		return 1.0
	}
	return float64(s.BytesBefore) / float64(s.BytesAfter)
}

// BytesSaved may be negative when Zstd output is larger than the LZ4 input.
func (s RecompressionStats) BytesSaved() int64 {
	return int64(s.BytesBefore) - int64(s.BytesAfter)
}

// Recompressor decodes LZ4-compressed chunks and recompresses them with
// Zstd, keeping the result only when it beats the LZ4 size by at least
// MinImprovementPct.
type Recompressor struct {
	cfg RecompressorConfig
}

// NewRecompressor builds a recompressor with the given configuration.
func NewRecompressor(cfg RecompressorConfig) *Recompressor {
	return &Recompressor{cfg: cfg}
}

// RecompressChunk recompresses a single LZ4 payload. It returns nil data
// (no error) when the Zstd result does not clear the improvement threshold.
func (r *Recompressor) RecompressChunk(lz4Data []byte) (zstdData []byte, improved bool, err error) {
	plaintext, err := Decompress(lz4Data, CompressionLZ4)
	if err != nil {
		return nil, false, err
	}
	zstdData, err = Compress(plaintext, CompressionZstd, r.cfg.ZstdLevel)
	if err != nil {
		return nil, false, err
	}
	thresholdBytes := (len(lz4Data) * (100 - int(r.cfg.MinImprovementPct))) / 100
	if len(zstdData) < thresholdBytes {
		return zstdData, true, nil
	}
	return nil, false, nil
}

// RecompressBatch recompresses every chunk in the batch and returns the
// chunks that improved along with aggregate statistics. An unimproved chunk
// is omitted from the result, so result indices do not line up with the
// input slice.
func (r *Recompressor) RecompressBatch(lz4Chunks [][]byte) ([][]byte, RecompressionStats) {
	var stats RecompressionStats
	improved := make([][]byte, 0, len(lz4Chunks))
	for _, data := range lz4Chunks {
		stats.ChunksProcessed++
		stats.BytesBefore += uint64(len(data))
		zstdData, ok, err := r.RecompressChunk(data)
		if err != nil || !ok {
			stats.ChunksSkipped++
			stats.BytesAfter += uint64(len(data))
			continue
		}
		stats.ChunksImproved++
		stats.BytesAfter += uint64(len(zstdData))
		improved = append(improved, zstdData)
	}
	return improved, stats
}

func zstdLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level <= 3:
		return zstd.SpeedDefault
	case level <= 9:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}
