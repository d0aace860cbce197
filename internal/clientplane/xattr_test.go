package clientplane

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXattrSetAndGet(t *testing.T) {
	s := NewXattrStore()
	require.NoError(t, s.Set(2, "user.test", []byte("value")))

	value, ok := s.Get(2, "user.test")
	assert.True(t, ok)
	assert.Equal(t, []byte("value"), value)
}

func TestXattrSetEmptyNameFails(t *testing.T) {
	s := NewXattrStore()
	err := s.Set(2, "", []byte("value"))
	assert.Error(t, err)
}

func TestXattrSetNameTooLongFails(t *testing.T) {
	s := NewXattrStore()
	err := s.Set(2, strings.Repeat("x", 256), []byte("value"))
	assert.Error(t, err)
}

func TestXattrSetValueTooLongFails(t *testing.T) {
	s := NewXattrStore()
	err := s.Set(2, "user.test", make([]byte, 65537))
	assert.Error(t, err)
}

func TestXattrGetMissingReturnsFalse(t *testing.T) {
	s := NewXattrStore()
	_, ok := s.Get(2, "user.nonexistent")
	assert.False(t, ok)
}

func TestXattrListSortedNames(t *testing.T) {
	s := NewXattrStore()
	s.Set(2, "user.z", []byte("z"))
	s.Set(2, "user.a", []byte("a"))
	s.Set(2, "user.m", []byte("m"))

	assert.Equal(t, []string{"user.a", "user.m", "user.z"}, s.List(2))
}

func TestXattrListSize(t *testing.T) {
	s := NewXattrStore()
	s.Set(2, "a", []byte("v1"))
	s.Set(2, "bb", []byte("v2"))

	assert.Equal(t, uint32(5), s.ListSize(2))
}

func TestXattrRemove(t *testing.T) {
	s := NewXattrStore()
	s.Set(2, "user.test", []byte("value"))
	require.NoError(t, s.Remove(2, "user.test"))

	_, ok := s.Get(2, "user.test")
	assert.False(t, ok)
}

func TestXattrRemoveUnknownFails(t *testing.T) {
	s := NewXattrStore()
	err := s.Remove(2, "user.nonexistent")
	assert.Error(t, err)
}

func TestXattrClearInode(t *testing.T) {
	s := NewXattrStore()
	s.Set(1, "user.a", []byte("a"))
	s.Set(1, "user.b", []byte("b"))
	s.Set(2, "user.c", []byte("c"))

	s.ClearInode(1)
	assert.Empty(t, s.List(1))
	assert.Equal(t, []string{"user.c"}, s.List(2))
}

func TestXattrMultipleInodesIsolated(t *testing.T) {
	s := NewXattrStore()
	s.Set(1, "user.test", []byte("value1"))
	s.Set(2, "user.test", []byte("value2"))

	v1, _ := s.Get(1, "user.test")
	v2, _ := s.Get(2, "user.test")
	assert.Equal(t, []byte("value1"), v1)
	assert.Equal(t, []byte("value2"), v2)
}

func TestXattrOverwriteValue(t *testing.T) {
	s := NewXattrStore()
	s.Set(2, "user.test", []byte("value1"))
	s.Set(2, "user.test", []byte("value2"))

	v, _ := s.Get(2, "user.test")
	assert.Equal(t, []byte("value2"), v)
}
