package reduction

import (
	"context"

	"github.com/claudefs/claudefs/internal/batch"
	"github.com/claudefs/claudefs/internal/codec"
	"github.com/claudefs/claudefs/internal/storage/s3"
)

// s3BatchBackend adapts *s3.Backend to batch.Backend. Both already share
// the same method shapes; this exists only because Go requires a named
// type to satisfy the interface across package boundaries cleanly.
type s3BatchBackend struct {
	backend *s3.Backend
}

func (b s3BatchBackend) GetObject(ctx context.Context, key string, offset, size int64) ([]byte, error) {
	return b.backend.GetObject(ctx, key, offset, size)
}

func (b s3BatchBackend) PutObject(ctx context.Context, key string, data []byte) error {
	return b.backend.PutObject(ctx, key, data)
}

func (b s3BatchBackend) DeleteObject(ctx context.Context, key string) error {
	return b.backend.DeleteObject(ctx, key)
}

func (b s3BatchBackend) HeadObject(ctx context.Context, key string) (interface{}, error) {
	return b.backend.HeadObject(ctx, key)
}

func (b s3BatchBackend) GetObjects(ctx context.Context, keys []string) (map[string][]byte, error) {
	return b.backend.GetObjects(ctx, keys)
}

func (b s3BatchBackend) PutObjects(ctx context.Context, objects map[string][]byte) error {
	return b.backend.PutObjects(ctx, objects)
}

// BatchedS3BlockStore is S3BlockStore with writes routed through a
// batch.Processor so bursts of small chunk puts coalesce into the S3
// backend's PutObjects call instead of one request per chunk. Reads stay
// synchronous: the pipeline always needs the bytes immediately, so there
// is nothing to gain by batching Get.
type BatchedS3BlockStore struct {
	S3BlockStore
	proc *batch.Processor
}

// NewBatchedS3BlockStore wraps backend with a running batch.Processor
// tuned by cfg ("nil" picks the processor's defaults).
func NewBatchedS3BlockStore(backend *s3.Backend, prefix string, cfg *batch.ProcessorConfig) *BatchedS3BlockStore {
	proc := batch.NewProcessor(s3BatchBackend{backend: backend}, cfg)
	return &BatchedS3BlockStore{
		S3BlockStore: S3BlockStore{backend: backend, prefix: prefixOrDefault(prefix)},
		proc:         proc,
	}
}

func prefixOrDefault(prefix string) string {
	if prefix == "" {
		return "chunks/"
	}
	return prefix
}

// Start begins the processor's background flush loop.
func (s *BatchedS3BlockStore) Start() error { return s.proc.Start() }

// Stop flushes any pending puts and stops the processor.
func (s *BatchedS3BlockStore) Stop() error { return s.proc.Stop() }

// Put submits data for batched storage under hash's key, blocking until
// the batch containing it has been flushed.
func (s *BatchedS3BlockStore) Put(hash codec.ChunkHash, data []byte) error {
	done := make(chan error, 1)
	op := &batch.Operation{
		Type: batch.OpTypePut,
		Key:  s.key(hash),
		Data: data,
		Callback: func(err error) {
			done <- err
		},
	}
	if err := s.proc.Submit(op); err != nil {
		return err
	}
	return <-done
}

// Stats returns the underlying processor's batching statistics.
func (s *BatchedS3BlockStore) Stats() batch.ProcessorStats {
	return s.proc.GetStats()
}
