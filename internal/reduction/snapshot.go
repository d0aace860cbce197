package reduction

import (
	"sort"
	"sync"
	"time"

	"github.com/claudefs/claudefs/internal/codec"
	"github.com/claudefs/claudefs/pkg/errors"
)

// SnapshotInfo is the lightweight, listable metadata for a CoW snapshot.
type SnapshotInfo struct {
	ID         uint64
	Name       string
	CreatedAt  time.Time
	BlockCount int
	TotalBytes uint64
}

// Snapshot is a CoW snapshot: the CAS hashes live at the moment it was
// taken. No chunk data is copied; the CAS refcounts for these hashes are
// expected to already reflect the snapshot's reference.
type Snapshot struct {
	Info   SnapshotInfo
	Hashes []codec.ChunkHash
}

// SnapshotRegistryConfig bounds the registry.
type SnapshotRegistryConfig struct {
	MaxSnapshots int
}

// DefaultSnapshotRegistryConfig matches the reference default of 64.
func DefaultSnapshotRegistryConfig() SnapshotRegistryConfig {
	return SnapshotRegistryConfig{MaxSnapshots: 64}
}

// SnapshotRegistry tracks CAS-level (block) snapshots, as distinct from the
// client plane's user-visible named snapshots.
type SnapshotRegistry struct {
	mu        sync.Mutex
	cfg       SnapshotRegistryConfig
	nextID    uint64
	snapshots map[uint64]*Snapshot
	byName    map[string]uint64
	now       func() time.Time
}

// NewSnapshotRegistry builds an empty registry.
func NewSnapshotRegistry(cfg SnapshotRegistryConfig) *SnapshotRegistry {
	return &SnapshotRegistry{
		cfg:       cfg,
		nextID:    1,
		snapshots: make(map[uint64]*Snapshot),
		byName:    make(map[string]uint64),
		now:       time.Now,
	}
}

// Create registers a new snapshot referencing hashes at the given size.
// Fails with ErrCodeOutOfSpace once MaxSnapshots is reached, and with
// ErrCodeAlreadyExists if name is already in use.
func (r *SnapshotRegistry) Create(name string, hashes []codec.ChunkHash, totalBytes uint64) (SnapshotInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.snapshots) >= r.cfg.MaxSnapshots {
		return SnapshotInfo{}, errors.NewError(errors.ErrCodeOutOfSpace, "maximum snapshot limit reached")
	}
	if _, exists := r.byName[name]; exists {
		return SnapshotInfo{}, errors.NewError(errors.ErrCodeAlreadyExists, "snapshot name already in use")
	}

	id := r.nextID
	r.nextID++
	info := SnapshotInfo{
		ID:         id,
		Name:       name,
		CreatedAt:  r.now(),
		BlockCount: len(hashes),
		TotalBytes: totalBytes,
	}
	r.snapshots[id] = &Snapshot{Info: info, Hashes: hashes}
	r.byName[name] = id
	return info, nil
}

// Delete removes a snapshot by id, returning it if it existed.
func (r *SnapshotRegistry) Delete(id uint64) (*Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snapshots[id]
	if !ok {
		return nil, false
	}
	delete(r.snapshots, id)
	delete(r.byName, snap.Info.Name)
	return snap, true
}

// Get returns a snapshot by id.
func (r *SnapshotRegistry) Get(id uint64) (*Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snapshots[id]
	return snap, ok
}

// List returns every snapshot's info, oldest first.
func (r *SnapshotRegistry) List() []SnapshotInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SnapshotInfo, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, s.Info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Count returns the number of snapshots currently registered.
func (r *SnapshotRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

// Clone registers a new snapshot under newName inheriting sourceID's hash
// list and size. Fails if sourceID doesn't exist or newName is taken, or at
// the MaxSnapshots limit.
func (r *SnapshotRegistry) Clone(sourceID uint64, newName string) (SnapshotInfo, error) {
	r.mu.Lock()
	source, ok := r.snapshots[sourceID]
	if !ok {
		r.mu.Unlock()
		return SnapshotInfo{}, errors.NewError(errors.ErrCodeNotFound, "source snapshot not found")
	}
	hashes := append([]codec.ChunkHash(nil), source.Hashes...)
	totalBytes := source.Info.TotalBytes
	r.mu.Unlock()

	return r.Create(newName, hashes, totalBytes)
}
