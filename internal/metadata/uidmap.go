package metadata

import "sync"

// UidMapKey identifies a single UID mapping entry by source site and
// canonical UID.
type UidMapKey struct {
	SiteID       uint64
	CanonicalUID uint32
}

// UidMapping is one recorded UID translation, kept alongside the lookup
// table so mappings can be listed and described.
type UidMapping struct {
	SiteID       uint64
	CanonicalUID uint32
	LocalUID     uint32
	Description  string
}

// UidMapManager translates UIDs from a replication source site to the
// receiving site's local identity space. Translation happens only at the
// receiving site; GIDs are shared cluster-wide and never mapped.
type UidMapManager struct {
	mu       sync.RWMutex
	mappings map[UidMapKey]uint32
	entries  []UidMapping
}

// NewUidMapManager returns a manager with no mappings; every UID passes
// through unchanged until a mapping is added.
func NewUidMapManager() *UidMapManager {
	return &UidMapManager{mappings: make(map[UidMapKey]uint32)}
}

// AddMapping records a translation from (siteID, canonicalUID) to
// localUID. A later call for the same key replaces the previous mapping.
func (m *UidMapManager) AddMapping(siteID uint64, canonicalUID, localUID uint32, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := UidMapKey{SiteID: siteID, CanonicalUID: canonicalUID}
	m.mappings[key] = localUID

	for i, e := range m.entries {
		if e.SiteID == siteID && e.CanonicalUID == canonicalUID {
			m.entries[i] = UidMapping{SiteID: siteID, CanonicalUID: canonicalUID, LocalUID: localUID, Description: description}
			return
		}
	}
	m.entries = append(m.entries, UidMapping{SiteID: siteID, CanonicalUID: canonicalUID, LocalUID: localUID, Description: description})
}

// RemoveMapping deletes the mapping for (siteID, canonicalUID), reporting
// whether one existed.
func (m *UidMapManager) RemoveMapping(siteID uint64, canonicalUID uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := UidMapKey{SiteID: siteID, CanonicalUID: canonicalUID}
	if _, ok := m.mappings[key]; !ok {
		return false
	}
	delete(m.mappings, key)

	for i, e := range m.entries {
		if e.SiteID == siteID && e.CanonicalUID == canonicalUID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return true
}

// MapUID translates canonicalUID from siteID into the local UID space.
// UID 0 always passes through as 0; an unmapped UID passes through
// unchanged.
func (m *UidMapManager) MapUID(siteID uint64, canonicalUID uint32) uint32 {
	if canonicalUID == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if local, ok := m.mappings[UidMapKey{SiteID: siteID, CanonicalUID: canonicalUID}]; ok {
		return local
	}
	return canonicalUID
}

// MapGID always returns canonicalGID unchanged: GIDs are shared across
// sites and are never translated.
func (m *UidMapManager) MapGID(siteID uint64, canonicalGID uint32) uint32 {
	return canonicalGID
}

// MappingsForSite returns every mapping recorded for siteID.
func (m *UidMapManager) MappingsForSite(siteID uint64) []UidMapping {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []UidMapping
	for _, e := range m.entries {
		if e.SiteID == siteID {
			out = append(out, e)
		}
	}
	return out
}

// AllMappings returns every recorded mapping across all sites.
func (m *UidMapManager) AllMappings() []UidMapping {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UidMapping, len(m.entries))
	copy(out, m.entries)
	return out
}

// MappingCount returns the number of recorded mappings.
func (m *UidMapManager) MappingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
