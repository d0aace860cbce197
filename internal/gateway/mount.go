package gateway

import "sync"

// MountStatus is the result code returned by Mnt, matching the MOUNT
// protocol v3 status values (RFC 1813 Appendix I).
type MountStatus int

const (
	MountStatusOK     MountStatus = 0
	MountStatusNoEnt  MountStatus = 2
	MountStatusAccess MountStatus = 13
)

// AuthFlavor enumerates the RPC authentication flavors a mount may
// accept, in the encoding used by AUTH_NONE/AUTH_SYS.
type AuthFlavor uint32

const (
	AuthFlavorNone AuthFlavor = 0
	AuthFlavorSys  AuthFlavor = 1
)

var defaultAuthFlavors = []AuthFlavor{AuthFlavorNone, AuthFlavorSys}

// Export describes one exported path and the clients allowed to mount it.
type Export struct {
	Path           string
	AllowedClients []string
	FileHandle     []byte
}

// MountEntry records one active client mount.
type MountEntry struct {
	Client string
	Path   string
}

func isLocalhost(client string) bool {
	switch client {
	case "127.0.0.1", "::1", "localhost":
		return true
	default:
		return false
	}
}

func clientAllowed(allowed []string, client string) bool {
	if len(allowed) == 0 {
		return true
	}
	if isLocalhost(client) {
		return true
	}
	for _, c := range allowed {
		if c == client || c == "*" {
			return true
		}
	}
	return false
}

// MountHandler implements the MOUNT protocol v3: the exports table and
// the list of currently active mounts.
type MountHandler struct {
	mu      sync.Mutex
	exports map[string]*Export
	mounts  []MountEntry
}

// NewMountHandler returns an empty MountHandler.
func NewMountHandler() *MountHandler {
	return &MountHandler{exports: make(map[string]*Export)}
}

// AddExport registers path as exported, allowed for the client patterns
// in allowedClients (empty means any client).
func (h *MountHandler) AddExport(path string, allowedClients []string, fileHandle []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exports[path] = &Export{Path: path, AllowedClients: allowedClients, FileHandle: fileHandle}
}

// RemoveExport unregisters path, reporting whether it had been exported.
func (h *MountHandler) RemoveExport(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.exports[path]; !ok {
		return false
	}
	delete(h.exports, path)
	return true
}

// IsExported reports whether path is currently exported.
func (h *MountHandler) IsExported(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.exports[path]
	return ok
}

// IsAllowed reports whether client may mount path, per the allowed-client
// rule: empty allow-list, localhost, or an explicit/wildcard match.
func (h *MountHandler) IsAllowed(path, client string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	export, ok := h.exports[path]
	if !ok {
		return false
	}
	return clientAllowed(export.AllowedClients, client)
}

// Mnt processes a MOUNT request, returning the status, file handle (nil
// unless status is OK), and the accepted auth flavor list.
func (h *MountHandler) Mnt(path, client string) (MountStatus, []byte, []AuthFlavor) {
	h.mu.Lock()
	defer h.mu.Unlock()

	export, ok := h.exports[path]
	if !ok {
		return MountStatusNoEnt, nil, nil
	}
	if !clientAllowed(export.AllowedClients, client) {
		return MountStatusAccess, nil, nil
	}

	h.mounts = append(h.mounts, MountEntry{Client: client, Path: path})
	return MountStatusOK, export.FileHandle, defaultAuthFlavors
}

// Dump returns the list of currently active mounts.
func (h *MountHandler) Dump() []MountEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]MountEntry, len(h.mounts))
	copy(out, h.mounts)
	return out
}

// Umnt removes the mount entry matching client and path, if any.
func (h *MountHandler) Umnt(path, client string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.mounts[:0]
	for _, m := range h.mounts {
		if m.Client == client && m.Path == path {
			continue
		}
		out = append(out, m)
	}
	h.mounts = out
}

// UmntAll removes every mount entry belonging to client.
func (h *MountHandler) UmntAll(client string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.mounts[:0]
	for _, m := range h.mounts {
		if m.Client == client {
			continue
		}
		out = append(out, m)
	}
	h.mounts = out
}

// MountCount returns the number of currently active mounts.
func (h *MountHandler) MountCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.mounts)
}
