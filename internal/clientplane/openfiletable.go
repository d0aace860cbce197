package clientplane

import (
	"sync"

	"github.com/claudefs/claudefs/pkg/errors"
)

// OpenFlags mirrors the low two bits of a POSIX open(2) flags argument.
type OpenFlags uint32

const (
	OpenReadOnly OpenFlags = iota
	OpenWriteOnly
	OpenReadWrite
)

// FlagsFromPosix extracts the access-mode bits from a raw open(2) flags
// value (flags & O_ACCMODE).
func FlagsFromPosix(flags uint32) OpenFlags {
	return OpenFlags(flags & 0x3)
}

// IsReadable reports whether the handle was opened for reading.
func (f OpenFlags) IsReadable() bool {
	return f == OpenReadOnly || f == OpenReadWrite
}

// IsWritable reports whether the handle was opened for writing.
func (f OpenFlags) IsWritable() bool {
	return f == OpenWriteOnly || f == OpenReadWrite
}

// OpenFileEntry tracks one open file-handle's state.
type OpenFileEntry struct {
	Fh    uint64
	Ino   uint64
	Flags OpenFlags
	Dirty bool
	pos   int64
}

// OpenFileTable allocates monotonic file handles and tracks their dirty
// state, mirroring the FUSE open/release lifecycle.
type OpenFileTable struct {
	mu      sync.Mutex
	nextFh  uint64
	entries map[uint64]*OpenFileEntry
}

// NewOpenFileTable returns an empty table; handle ids start at 1.
func NewOpenFileTable() *OpenFileTable {
	return &OpenFileTable{nextFh: 1, entries: make(map[uint64]*OpenFileEntry)}
}

// Open allocates a new handle for ino with the given flags.
func (t *OpenFileTable) Open(ino uint64, flags OpenFlags) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	fh := t.nextFh
	t.nextFh++
	t.entries[fh] = &OpenFileEntry{Fh: fh, Ino: ino, Flags: flags}
	return fh
}

// Close removes and returns the entry for fh.
func (t *OpenFileTable) Close(fh uint64) (OpenFileEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[fh]
	if !ok {
		return OpenFileEntry{}, false
	}
	delete(t.entries, fh)
	return *entry, true
}

// Seek records the current read/write position for fh.
func (t *OpenFileTable) Seek(fh uint64, pos int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[fh]
	if !ok {
		return errors.NewError(errors.ErrCodeNotFound, "unknown file handle")
	}
	entry.pos = pos
	return nil
}

// Position returns the last recorded position for fh.
func (t *OpenFileTable) Position(fh uint64) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[fh]
	if !ok {
		return 0, false
	}
	return entry.pos, true
}

// MarkDirty flags fh as having unwritten-back data.
func (t *OpenFileTable) MarkDirty(fh uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[fh]
	if !ok {
		return errors.NewError(errors.ErrCodeNotFound, "unknown file handle")
	}
	entry.Dirty = true
	return nil
}

// MarkClean clears fh's dirty flag, e.g. after a successful flush.
func (t *OpenFileTable) MarkClean(fh uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[fh]
	if !ok {
		return errors.NewError(errors.ErrCodeNotFound, "unknown file handle")
	}
	entry.Dirty = false
	return nil
}

// Get returns a copy of the entry for fh.
func (t *OpenFileTable) Get(fh uint64) (OpenFileEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[fh]
	if !ok {
		return OpenFileEntry{}, false
	}
	return *entry, true
}

// HandlesForInode returns every open handle on ino.
func (t *OpenFileTable) HandlesForInode(ino uint64) []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []uint64
	for fh, entry := range t.entries {
		if entry.Ino == ino {
			out = append(out, fh)
		}
	}
	return out
}

// DirtyCount returns the number of open handles with the dirty flag set.
func (t *OpenFileTable) DirtyCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, entry := range t.entries {
		if entry.Dirty {
			count++
		}
	}
	return count
}

// Len returns the number of open handles.
func (t *OpenFileTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
