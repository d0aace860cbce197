package reduction

import (
	"context"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/claudefs/claudefs/internal/storage/s3"
)

// S3BlockStore adapts the S3 backend as the pipeline's chunk block store,
// keying each chunk by its hex-encoded BLAKE3 fingerprint under a fixed
// prefix so chunk objects never collide with inode or segment metadata kept
// in the same bucket.
type S3BlockStore struct {
	backend *s3.Backend
	prefix  string
}

// NewS3BlockStore wraps backend with the given key prefix ("chunks/" if empty).
func NewS3BlockStore(backend *s3.Backend, prefix string) *S3BlockStore {
	if prefix == "" {
		prefix = "chunks/"
	}
	return &S3BlockStore{backend: backend, prefix: prefix}
}

func (s *S3BlockStore) key(hash codec.ChunkHash) string {
	return s.prefix + hash.String()
}

// Put persists data under hash's key, overwriting any existing object.
func (s *S3BlockStore) Put(hash codec.ChunkHash, data []byte) error {
	return s.backend.PutObject(context.Background(), s.key(hash), data)
}

// Get retrieves the full object stored under hash's key.
func (s *S3BlockStore) Get(hash codec.ChunkHash) ([]byte, error) {
	return s.backend.GetObject(context.Background(), s.key(hash), 0, 0)
}
