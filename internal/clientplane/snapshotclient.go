package clientplane

import (
	"sort"
	"sync"

	"github.com/claudefs/claudefs/pkg/errors"
)

// NamespaceSnapshotState is the lifecycle stage of a user-visible named
// snapshot, distinct from the reduction layer's CAS copy-on-write
// snapshots and the metadata layer's Raft log snapshots.
type NamespaceSnapshotState uint8

const (
	NamespaceSnapshotCreating NamespaceSnapshotState = iota
	NamespaceSnapshotActive
	NamespaceSnapshotDeleting
)

// NamespaceSnapshot describes one user-visible snapshot or clone.
type NamespaceSnapshot struct {
	ID           uint64
	Name         string
	CreatedAtSec uint64
	SizeBytes    uint64
	State        NamespaceSnapshotState
	IsClone      bool
}

// IsActive reports whether the snapshot is in the Active state.
func (s NamespaceSnapshot) IsActive() bool {
	return s.State == NamespaceSnapshotActive
}

// IsReadOnly reports whether the snapshot is read-only: every non-clone
// snapshot is read-only once active.
func (s NamespaceSnapshot) IsReadOnly() bool {
	return !s.IsClone && s.State == NamespaceSnapshotActive
}

// AgeSec returns how many seconds have elapsed since creation, given the
// current time in seconds.
func (s NamespaceSnapshot) AgeSec(nowSec uint64) uint64 {
	if nowSec < s.CreatedAtSec {
		return 0
	}
	return nowSec - s.CreatedAtSec
}

// NamespaceSnapshotRegistry manages user-visible named snapshots, bounded
// by a maximum count and unique by name.
type NamespaceSnapshotRegistry struct {
	mu            sync.Mutex
	nextID        uint64
	maxSnapshots  int
	snapshots     map[uint64]*NamespaceSnapshot
}

// NewNamespaceSnapshotRegistry returns a registry capped at maxSnapshots.
func NewNamespaceSnapshotRegistry(maxSnapshots int) *NamespaceSnapshotRegistry {
	return &NamespaceSnapshotRegistry{nextID: 1, maxSnapshots: maxSnapshots, snapshots: make(map[uint64]*NamespaceSnapshot)}
}

func (r *NamespaceSnapshotRegistry) findByNameLocked(name string) *NamespaceSnapshot {
	for _, s := range r.snapshots {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Create adds a new active snapshot named name, failing if the registry is
// full or the name is already in use.
func (r *NamespaceSnapshotRegistry) Create(name string, nowSec uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.snapshots) >= r.maxSnapshots {
		return 0, errors.NewError(errors.ErrCodeInvalidArgument, "snapshot capacity exceeded")
	}
	if r.findByNameLocked(name) != nil {
		return 0, errors.NewError(errors.ErrCodeAlreadyExists, "snapshot name already exists")
	}

	id := r.nextID
	r.nextID++
	r.snapshots[id] = &NamespaceSnapshot{ID: id, Name: name, CreatedAtSec: nowSec, State: NamespaceSnapshotActive}
	return id, nil
}

// CreateClone creates a writable clone of snapshotID under cloneName,
// inheriting its size.
func (r *NamespaceSnapshotRegistry) CreateClone(snapshotID uint64, cloneName string, nowSec uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	source, ok := r.snapshots[snapshotID]
	if !ok {
		return 0, errors.NewError(errors.ErrCodeNotFound, "source snapshot not found")
	}
	if len(r.snapshots) >= r.maxSnapshots {
		return 0, errors.NewError(errors.ErrCodeInvalidArgument, "snapshot capacity exceeded")
	}
	if r.findByNameLocked(cloneName) != nil {
		return 0, errors.NewError(errors.ErrCodeAlreadyExists, "snapshot name already exists")
	}

	id := r.nextID
	r.nextID++
	r.snapshots[id] = &NamespaceSnapshot{
		ID: id, Name: cloneName, CreatedAtSec: nowSec,
		SizeBytes: source.SizeBytes, State: NamespaceSnapshotActive, IsClone: true,
	}
	return id, nil
}

// Delete removes id from the registry.
func (r *NamespaceSnapshotRegistry) Delete(id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.snapshots[id]; !ok {
		return errors.NewError(errors.ErrCodeNotFound, "snapshot not found")
	}
	delete(r.snapshots, id)
	return nil
}

// Get returns a copy of the snapshot for id.
func (r *NamespaceSnapshotRegistry) Get(id uint64) (NamespaceSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[id]
	if !ok {
		return NamespaceSnapshot{}, false
	}
	return *s, true
}

// List returns every snapshot sorted by creation time.
func (r *NamespaceSnapshotRegistry) List() []NamespaceSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]NamespaceSnapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAtSec < out[j].CreatedAtSec })
	return out
}

// FindByName returns the snapshot named name, if any.
func (r *NamespaceSnapshotRegistry) FindByName(name string) (NamespaceSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.findByNameLocked(name)
	if s == nil {
		return NamespaceSnapshot{}, false
	}
	return *s, true
}

// Count returns the total number of tracked snapshots.
func (r *NamespaceSnapshotRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

// ActiveCount returns the number of snapshots in the Active state.
func (r *NamespaceSnapshotRegistry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, s := range r.snapshots {
		if s.IsActive() {
			count++
		}
	}
	return count
}
