package clientplane

import "sync"

// MmapProt is the protection bits requested for a memory-mapped region.
type MmapProt struct {
	Read  bool
	Write bool
	Exec  bool
}

// MmapRegion is one registered mmap(2) region.
type MmapRegion struct {
	RegionID uint64
	Ino      uint64
	Fh       uint64
	Offset   uint64
	Length   uint64
	Prot     MmapProt
	Flags    uint32
}

// MmapTracker records active mmap regions per inode so the client can keep
// mapped pages alive and restrict operations that would race with mapped
// writes.
type MmapTracker struct {
	mu       sync.Mutex
	nextID   uint64
	byInode  map[uint64][]*MmapRegion
	byRegion map[uint64]*MmapRegion
}

// NewMmapTracker returns an empty tracker.
func NewMmapTracker() *MmapTracker {
	return &MmapTracker{
		nextID:   1,
		byInode:  make(map[uint64][]*MmapRegion),
		byRegion: make(map[uint64]*MmapRegion),
	}
}

// Register records a new mapping and returns its region id.
func (t *MmapTracker) Register(ino, fh, offset, length uint64, prot MmapProt, flags uint32) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	region := &MmapRegion{RegionID: id, Ino: ino, Fh: fh, Offset: offset, Length: length, Prot: prot, Flags: flags}
	t.byInode[ino] = append(t.byInode[ino], region)
	t.byRegion[id] = region
	return id
}

// Unregister removes a previously registered region.
func (t *MmapTracker) Unregister(regionID uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	region, ok := t.byRegion[regionID]
	if !ok {
		return false
	}
	delete(t.byRegion, regionID)
	remaining := t.byInode[region.Ino][:0]
	for _, r := range t.byInode[region.Ino] {
		if r.RegionID != regionID {
			remaining = append(remaining, r)
		}
	}
	if len(remaining) == 0 {
		delete(t.byInode, region.Ino)
	} else {
		t.byInode[region.Ino] = remaining
	}
	return true
}

// HasWritableMapping reports whether ino has any registered writable
// region.
func (t *MmapTracker) HasWritableMapping(ino uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.byInode[ino] {
		if r.Prot.Write {
			return true
		}
	}
	return false
}

// RegionsForInode returns a copy of the regions registered on ino.
func (t *MmapTracker) RegionsForInode(ino uint64) []MmapRegion {
	t.mu.Lock()
	defer t.mu.Unlock()
	existing := t.byInode[ino]
	out := make([]MmapRegion, len(existing))
	for i, r := range existing {
		out[i] = *r
	}
	return out
}

// TotalMappedBytes returns the sum of lengths across every registered
// region.
func (t *MmapTracker) TotalMappedBytes() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total uint64
	for _, region := range t.byRegion {
		total += region.Length
	}
	return total
}
