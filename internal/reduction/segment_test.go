package reduction

import (
	"testing"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentPackerSealsWhenFull(t *testing.T) {
	p := NewSegmentPacker(SegmentPackerConfig{TargetSize: 1024})

	payload := make([]byte, 100)
	var sealedCount int
	for i := 0; i < 100; i++ {
		h := codec.BLAKE3([]byte{byte(i)})
		if seg, sealed := p.AddChunk(h, payload, uint32(len(payload))); sealed {
			sealedCount++
			assert.True(t, seg.Sealed)
			assert.GreaterOrEqual(t, seg.TotalPayloadBytes(), 1024)
		}
	}
	assert.Greater(t, sealedCount, 0)
}

func TestSegmentPackerFlushReturnsPartial(t *testing.T) {
	p := NewSegmentPacker(SegmentPackerConfig{TargetSize: 10000})
	p.AddChunk(codec.BLAKE3([]byte("test")), make([]byte, 100), 100)

	seg, ok := p.Flush()
	require.True(t, ok)
	assert.True(t, seg.Sealed)
	assert.Len(t, seg.Entries, 1)
}

func TestSegmentPackerFlushOnEmptyReturnsFalse(t *testing.T) {
	p := NewSegmentPacker(DefaultSegmentPackerConfig())
	_, ok := p.Flush()
	assert.False(t, ok)
}

func TestSegmentEntriesOffsetsCorrect(t *testing.T) {
	p := NewSegmentPacker(SegmentPackerConfig{TargetSize: 10000})
	h1, h2 := codec.BLAKE3([]byte("one")), codec.BLAKE3([]byte("two"))

	p.AddChunk(h1, make([]byte, 100), 100)
	p.AddChunk(h2, make([]byte, 200), 200)

	seg, ok := p.Flush()
	require.True(t, ok)
	require.Len(t, seg.Entries, 2)

	assert.Equal(t, uint32(0), seg.Entries[0].OffsetInSegment)
	assert.Equal(t, uint32(100), seg.Entries[0].PayloadSize)
	assert.Equal(t, uint32(100), seg.Entries[1].OffsetInSegment)
	assert.Equal(t, uint32(200), seg.Entries[1].PayloadSize)
}

func TestSegmentIDsIncrementMonotonically(t *testing.T) {
	p := NewSegmentPacker(DefaultSegmentPackerConfig())
	payload := make([]byte, 100)

	p.AddChunk(codec.BLAKE3([]byte("c1")), payload, 100)
	seg1, _ := p.Flush()

	p.AddChunk(codec.BLAKE3([]byte("c2")), payload, 100)
	seg2, _ := p.Flush()

	assert.Equal(t, uint64(0), seg1.ID)
	assert.Equal(t, uint64(1), seg2.ID)
}

func TestSegmentPackerIsEmpty(t *testing.T) {
	p := NewSegmentPacker(DefaultSegmentPackerConfig())
	assert.True(t, p.IsEmpty())
	p.AddChunk(codec.BLAKE3([]byte("x")), []byte{1, 2, 3}, 3)
	assert.False(t, p.IsEmpty())
}
