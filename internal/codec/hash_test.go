package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBLAKE3Deterministic(t *testing.T) {
	a := BLAKE3([]byte("claudefs chunk"))
	b := BLAKE3([]byte("claudefs chunk"))
	assert.Equal(t, a, b)
}

func TestBLAKE3Avalanche(t *testing.T) {
	a := BLAKE3([]byte("claudefs chunk"))
	b := BLAKE3([]byte("claudefs chunl")) // last byte changed
	assert.NotEqual(t, a, b)
}

func TestBLAKE3IsZero(t *testing.T) {
	var zero ChunkHash
	assert.True(t, zero.IsZero())
	h := BLAKE3([]byte("x"))
	assert.False(t, h.IsZero())
}

func TestBLAKE3String(t *testing.T) {
	h := BLAKE3([]byte("x"))
	assert.Len(t, h.String(), ChunkHashSize*2)
}
