package clientplane

import (
	"sort"
	"sync"

	"github.com/claudefs/claudefs/pkg/errors"
)

const (
	xattrMaxNameLen  = 255
	xattrMaxValueLen = 65536
)

// XattrStore holds extended attributes per inode.
type XattrStore struct {
	mu    sync.Mutex
	attrs map[uint64]map[string][]byte
}

// NewXattrStore returns an empty extended-attribute store.
func NewXattrStore() *XattrStore {
	return &XattrStore{attrs: make(map[uint64]map[string][]byte)}
}

// Set stores value under name for ino, validating the name and value
// against the size limits enforced by the wire protocol.
func (s *XattrStore) Set(ino uint64, name string, value []byte) error {
	if name == "" {
		return errors.NewError(errors.ErrCodeInvalidArgument, "xattr name cannot be empty")
	}
	if len(name) > xattrMaxNameLen {
		return errors.NewError(errors.ErrCodeInvalidArgument, "xattr name exceeds maximum length")
	}
	if len(value) > xattrMaxValueLen {
		return errors.NewError(errors.ErrCodeInvalidArgument, "xattr value exceeds maximum length")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inodeAttrs, ok := s.attrs[ino]
	if !ok {
		inodeAttrs = make(map[string][]byte)
		s.attrs[ino] = inodeAttrs
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	inodeAttrs[name] = stored
	return nil
}

// Get returns the value stored under name for ino.
func (s *XattrStore) Get(ino uint64, name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inodeAttrs, ok := s.attrs[ino]
	if !ok {
		return nil, false
	}
	value, ok := inodeAttrs[name]
	return value, ok
}

// List returns the sorted names of every attribute set on ino.
func (s *XattrStore) List(ino uint64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	inodeAttrs := s.attrs[ino]
	names := make([]string, 0, len(inodeAttrs))
	for name := range inodeAttrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListSize returns the byte count of the null-terminated name list, as
// reported to listxattr(2) callers: sum(len(name)+1).
func (s *XattrStore) ListSize(ino uint64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total uint32
	for name := range s.attrs[ino] {
		total += uint32(len(name)) + 1
	}
	return total
}

// Remove deletes the attribute named name on ino.
func (s *XattrStore) Remove(ino uint64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inodeAttrs, ok := s.attrs[ino]
	if !ok {
		return errors.NewError(errors.ErrCodeNotFound, "inode has no extended attributes")
	}
	if _, ok := inodeAttrs[name]; !ok {
		return errors.NewError(errors.ErrCodeNotFound, "extended attribute not found")
	}
	delete(inodeAttrs, name)
	if len(inodeAttrs) == 0 {
		delete(s.attrs, ino)
	}
	return nil
}

// ClearInode drops every extended attribute on ino.
func (s *XattrStore) ClearInode(ino uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attrs, ino)
}

// Len returns the total number of attributes across every inode.
func (s *XattrStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, m := range s.attrs {
		total += len(m)
	}
	return total
}
