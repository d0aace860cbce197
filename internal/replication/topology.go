package replication

import "sync"

// SiteID uniquely identifies a replication site; the site's readable name
// (e.g. "us-west-2") is SiteInfo.Name.
type SiteID uint64

// ReplicationRoleKind tags which ReplicationRole variant a site carries.
type ReplicationRoleKind int

const (
	RolePrimary ReplicationRoleKind = iota
	RoleReplica
	RoleBidirectional
)

// ReplicationRole is the replication role of a remote site: Primary
// originates writes, Replica follows a named primary, Bidirectional
// accepts writes from both ends under last-writer-wins resolution.
type ReplicationRole struct {
	Kind          ReplicationRoleKind
	PrimarySiteID SiteID // only meaningful when Kind == RoleReplica
}

// PrimaryRole returns a Primary role.
func PrimaryRole() ReplicationRole { return ReplicationRole{Kind: RolePrimary} }

// ReplicaRole returns a Replica role following primarySiteID.
func ReplicaRole(primarySiteID SiteID) ReplicationRole {
	return ReplicationRole{Kind: RoleReplica, PrimarySiteID: primarySiteID}
}

// BidirectionalRole returns a Bidirectional role.
func BidirectionalRole() ReplicationRole { return ReplicationRole{Kind: RoleBidirectional} }

// SiteInfo describes one remote replication site.
type SiteInfo struct {
	SiteID       SiteID
	Name         string
	ConduitAddrs []string
	Role         ReplicationRole
	Active       bool
	LagUs        *uint64
}

// NewSiteInfo returns an active SiteInfo with no measured lag.
func NewSiteInfo(siteID SiteID, name string, conduitAddrs []string, role ReplicationRole) SiteInfo {
	addrs := make([]string, len(conduitAddrs))
	copy(addrs, conduitAddrs)
	return SiteInfo{SiteID: siteID, Name: name, ConduitAddrs: addrs, Role: role, Active: true}
}

// Topology manages the set of known remote replication sites, keyed by
// site id. The local site is never present among them.
type Topology struct {
	mu          sync.RWMutex
	LocalSiteID SiteID
	sites       map[SiteID]SiteInfo
}

// NewTopology returns a Topology for the given local site id.
func NewTopology(localSiteID SiteID) *Topology {
	return &Topology{LocalSiteID: localSiteID, sites: make(map[SiteID]SiteInfo)}
}

// UpsertSite adds or replaces a remote site entry. An entry carrying the
// local site id is ignored.
func (t *Topology) UpsertSite(info SiteInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if info.SiteID == t.LocalSiteID {
		return
	}
	t.sites[info.SiteID] = info
}

// RemoveSite removes a remote site, returning it if it existed.
func (t *Topology) RemoveSite(siteID SiteID) (SiteInfo, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.sites[siteID]
	if ok {
		delete(t.sites, siteID)
	}
	return info, ok
}

// GetSite returns the info for siteID, if known.
func (t *Topology) GetSite(siteID SiteID) (SiteInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.sites[siteID]
	return info, ok
}

// ActiveSites returns every remote site currently marked active.
func (t *Topology) ActiveSites() []SiteInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []SiteInfo
	for _, s := range t.sites {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// AllSites returns every known remote site.
func (t *Topology) AllSites() []SiteInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]SiteInfo, 0, len(t.sites))
	for _, s := range t.sites {
		out = append(out, s)
	}
	return out
}

// UpdateLag records the latest measured replication lag for siteID, a
// no-op if siteID is unknown.
func (t *Topology) UpdateLag(siteID SiteID, lagUs uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sites[siteID]; ok {
		s.LagUs = &lagUs
		t.sites[siteID] = s
	}
}

// Deactivate marks siteID inactive, a no-op if siteID is unknown.
func (t *Topology) Deactivate(siteID SiteID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sites[siteID]; ok {
		s.Active = false
		t.sites[siteID] = s
	}
}

// Activate marks siteID active, a no-op if siteID is unknown.
func (t *Topology) Activate(siteID SiteID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sites[siteID]; ok {
		s.Active = true
		t.sites[siteID] = s
	}
}

// SiteCount returns the number of known remote sites.
func (t *Topology) SiteCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sites)
}
