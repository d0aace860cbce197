package fuse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudefs/claudefs/pkg/types"
)

func newTestFileSystem(t *testing.T) *FileSystem {
	t.Helper()
	return NewFileSystem(nil, nil, nil, nil, &Config{
		DefaultUID:  1000,
		DefaultGID:  1000,
		DefaultMode: 0644,
		CacheTTL:    time.Minute,
	})
}

func TestPathInoIsStablePerPath(t *testing.T) {
	assert.Equal(t, pathIno("a/b/c"), pathIno("a/b/c"))
	assert.NotEqual(t, pathIno("a/b/c"), pathIno("a/b/d"))
}

func TestFileSystemCacheInfoRoundTrips(t *testing.T) {
	fs := newTestFileSystem(t)

	info := &types.ObjectInfo{Key: "dir/file.txt", Size: 42, LastModified: time.Now().Truncate(time.Second)}
	fs.cacheInfo(info.Key, info)

	cached := fs.getCachedInfo(info.Key)
	require.NotNil(t, cached)
	assert.Equal(t, info.Key, cached.Key)
	assert.Equal(t, info.Size, cached.Size)
	assert.True(t, info.LastModified.Equal(cached.LastModified))
}

func TestFileSystemGetCachedInfoMissReturnsNil(t *testing.T) {
	fs := newTestFileSystem(t)
	assert.Nil(t, fs.getCachedInfo("never/inserted"))
}

func TestFileSystemCacheInfoNilIsNoop(t *testing.T) {
	fs := newTestFileSystem(t)
	fs.cacheInfo("whatever", nil)
	assert.Nil(t, fs.getCachedInfo("whatever"))
}
