package clientplane

import (
	"sync"
	"time"

	"github.com/claudefs/claudefs/pkg/errors"
)

// DelegationKind is the right a delegation grants a client.
type DelegationKind uint8

const (
	DelegationRead DelegationKind = iota
	DelegationWrite
)

// DelegationState is the lifecycle stage of a delegation.
type DelegationState uint8

const (
	DelegationGranted DelegationState = iota
	DelegationRecalled
	DelegationReturned
	DelegationRevoked
)

// Delegation is a lease granting a client read or write rights on an inode
// so it can cache modifications without server round-trips.
type Delegation struct {
	ID     uint64
	Ino    uint64
	Kind   DelegationKind
	Client string
	State  DelegationState
	Expiry time.Time
}

// DelegationManager tracks outstanding delegations per inode.
type DelegationManager struct {
	mu       sync.Mutex
	nextID   uint64
	byInode  map[uint64][]*Delegation
	byID     map[uint64]*Delegation
}

// NewDelegationManager returns an empty delegation manager.
func NewDelegationManager() *DelegationManager {
	return &DelegationManager{
		nextID:  1,
		byInode: make(map[uint64][]*Delegation),
		byID:    make(map[uint64]*Delegation),
	}
}

func activeConflicts(existing []*Delegation, kind DelegationKind) bool {
	for _, d := range existing {
		if d.State != DelegationGranted && d.State != DelegationRecalled {
			continue
		}
		if kind == DelegationWrite || d.Kind == DelegationWrite {
			return true
		}
	}
	return false
}

// Grant issues a new delegation on ino, failing with a conflict error if an
// incompatible delegation is already active: a write delegation is
// exclusive, while read delegations coexist with other read delegations.
func (m *DelegationManager) Grant(ino uint64, kind DelegationKind, client string, now time.Time) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if activeConflicts(m.byInode[ino], kind) {
		return 0, errors.NewError(errors.ErrCodeConflict, "incompatible delegation already active")
	}

	id := m.nextID
	m.nextID++
	d := &Delegation{ID: id, Ino: ino, Kind: kind, Client: client, State: DelegationGranted, Expiry: now.Add(defaultDelegationTTL)}
	m.byInode[ino] = append(m.byInode[ino], d)
	m.byID[id] = d
	return id, nil
}

const defaultDelegationTTL = 30 * time.Second

// RecallForIno moves every active delegation on ino to Recalled.
func (m *DelegationManager) RecallForIno(ino uint64, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, d := range m.byInode[ino] {
		if d.State == DelegationGranted {
			d.State = DelegationRecalled
			count++
		}
	}
	return count
}

// ReturnDeleg finalizes a recalled (or granted) delegation as returned.
func (m *DelegationManager) ReturnDeleg(id uint64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return errors.NewError(errors.ErrCodeNotFound, "unknown delegation id")
	}
	d.State = DelegationReturned
	return nil
}

// RevokeExpired moves every delegation whose expiry has passed to Revoked,
// returning the number revoked.
func (m *DelegationManager) RevokeExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, d := range m.byID {
		if (d.State == DelegationGranted || d.State == DelegationRecalled) && now.After(d.Expiry) {
			d.State = DelegationRevoked
			count++
		}
	}
	return count
}

// Get returns a copy of the delegation for id.
func (m *DelegationManager) Get(id uint64) (Delegation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return Delegation{}, false
	}
	return *d, true
}

// ActiveOnIno returns every Granted or Recalled delegation on ino.
func (m *DelegationManager) ActiveOnIno(ino uint64) []Delegation {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Delegation
	for _, d := range m.byInode[ino] {
		if d.State == DelegationGranted || d.State == DelegationRecalled {
			out = append(out, *d)
		}
	}
	return out
}
