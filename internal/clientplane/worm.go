package clientplane

import (
	"sync"
	"time"

	"github.com/claudefs/claudefs/pkg/errors"
)

// WormModeKind distinguishes the retention mode an inode is under.
type WormModeKind uint8

const (
	WormNone WormModeKind = iota
	WormAppendOnly
	WormImmutable
	WormRetention
	WormLegalHold
)

// WormMode is the per-inode retention state. Until and HoldID are only
// meaningful for WormRetention and WormLegalHold respectively.
type WormMode struct {
	Kind    WormModeKind
	Until   time.Time
	HoldID  string
}

// WormOp is a mutating operation the retention policy may block.
type WormOp uint8

const (
	WormOpWrite WormOp = iota
	WormOpDelete
	WormOpRename
	WormOpTruncate
	WormOpAppend
)

// rank gives a total order over modes from weakest to strongest, used to
// detect downgrade attempts.
func (k WormModeKind) rank() int {
	switch k {
	case WormNone:
		return 0
	case WormAppendOnly:
		return 1
	case WormRetention:
		return 2
	case WormImmutable:
		return 3
	case WormLegalHold:
		return 4
	default:
		return 0
	}
}

// Allows reports whether op is permitted under m at time now.
func (m WormMode) Allows(op WormOp, now time.Time) bool {
	switch m.Kind {
	case WormNone:
		return true
	case WormAppendOnly:
		return op == WormOpDelete || op == WormOpRename || op == WormOpAppend
	case WormImmutable:
		return false
	case WormRetention:
		return now.After(m.Until) || now.Equal(m.Until)
	case WormLegalHold:
		return false
	default:
		return true
	}
}

// WormRegistry tracks per-inode retention mode.
type WormRegistry struct {
	mu    sync.Mutex
	modes map[uint64]WormMode
}

// NewWormRegistry returns an empty registry; inodes default to WormNone.
func NewWormRegistry() *WormRegistry {
	return &WormRegistry{modes: make(map[uint64]WormMode)}
}

// GetMode returns the retention mode for ino, defaulting to WormNone.
func (r *WormRegistry) GetMode(ino uint64) WormMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	mode, ok := r.modes[ino]
	if !ok {
		return WormMode{Kind: WormNone}
	}
	return mode
}

// SetMode transitions ino to mode, rejecting any transition from a WORM
// mode to a strictly weaker one.
func (r *WormRegistry) SetMode(ino uint64, mode WormMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.modes[ino]
	if ok && mode.Kind.rank() < current.Kind.rank() {
		return errors.NewError(errors.ErrCodePolicyDowngrade, "worm mode downgrade attempted")
	}
	r.modes[ino] = mode
	return nil
}

// Check returns an error if op is blocked on ino under its current mode.
func (r *WormRegistry) Check(ino uint64, op WormOp, now time.Time) error {
	mode := r.GetMode(ino)
	if !mode.Allows(op, now) {
		return errors.NewError(errors.ErrCodeCFSPermissionDenied, "operation blocked by retention policy")
	}
	return nil
}
