package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUidMapAddAndMap(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 1000, 2000, "user1")

	assert.Equal(t, 1, m.MappingCount())
	assert.Equal(t, uint32(2000), m.MapUID(1, 1000))
}

func TestUidMapPassthroughWhenUnmapped(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 1000, 2000, "")

	assert.Equal(t, uint32(999), m.MapUID(1, 999))
}

func TestUidMapRootAlwaysPassthrough(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 0, 65534, "root maps to nobody")

	assert.Equal(t, uint32(0), m.MapUID(1, 0))
}

func TestUidMapDifferentSitesIndependent(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 1000, 2000, "")
	m.AddMapping(2, 1000, 3000, "")

	assert.Equal(t, uint32(2000), m.MapUID(1, 1000))
	assert.Equal(t, uint32(3000), m.MapUID(2, 1000))
}

func TestUidMapRemoveMapping(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 1000, 2000, "")

	removed := m.RemoveMapping(1, 1000)
	assert.True(t, removed)
	assert.Equal(t, 0, m.MappingCount())
	assert.Equal(t, uint32(1000), m.MapUID(1, 1000))
}

func TestUidMapRemoveMappingNotFound(t *testing.T) {
	m := NewUidMapManager()
	assert.False(t, m.RemoveMapping(1, 1000))
}

func TestUidMapGidPassthrough(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 1000, 2000, "")

	assert.Equal(t, uint32(500), m.MapGID(1, 500))
	assert.Equal(t, uint32(500), m.MapGID(2, 500))
}

func TestUidMapMappingsForSite(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 1000, 2000, "")
	m.AddMapping(1, 1001, 2001, "")
	m.AddMapping(2, 1000, 3000, "")

	assert.Len(t, m.MappingsForSite(1), 2)
	assert.Len(t, m.MappingsForSite(2), 1)
}

func TestUidMapAllMappings(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 1000, 2000, "desc1")
	m.AddMapping(2, 1001, 2001, "desc2")

	assert.Len(t, m.AllMappings(), 2)
}

func TestUidMapAddMappingReplacesExisting(t *testing.T) {
	m := NewUidMapManager()
	m.AddMapping(1, 1000, 2000, "first")
	m.AddMapping(1, 1000, 2500, "second")

	assert.Equal(t, 1, m.MappingCount())
	assert.Equal(t, uint32(2500), m.MapUID(1, 1000))
}
