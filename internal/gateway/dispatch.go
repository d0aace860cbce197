package gateway

import (
	"context"
	"fmt"

	"github.com/claudefs/claudefs/internal/filesystem"
)

// Handler dispatches NFSv3 READ/WRITE/COMMIT requests against a
// protocol-neutral filesystem, tracking unstable writes per file handle
// until a COMMIT (or a FileSync write) clears them. It is the seam
// between the wire-level NFS decoding (not this package's concern) and
// whatever backs the export - normally an internal/fuse-style mount
// talking to internal/clientplane, but any filesystem.FilesystemInterface
// works, including a test double.
type Handler struct {
	fs     filesystem.FilesystemInterface
	writes *WriteTracker
}

// NewHandler returns a dispatcher backed by fs, stamping pending writes
// with writeVerf (the server's boot-instance verifier).
func NewHandler(fs filesystem.FilesystemInterface, writeVerf uint64) *Handler {
	return &Handler{fs: fs, writes: NewWriteTracker(writeVerf)}
}

// Read opens path, reads count bytes at offset into buf, and closes the
// handle, returning the number of bytes actually read.
func (h *Handler) Read(ctx context.Context, path string, offset int64, buf []byte) (int, error) {
	fh, err := h.fs.Open(ctx, path, 0)
	if err != nil {
		return 0, fmt.Errorf("gateway: open %s: %w", path, err)
	}
	defer h.fs.Close(ctx, fh)

	return h.fs.Read(ctx, fh, buf, offset)
}

// Write opens path, writes data at offset, and records the write as
// pending unless stability is FileSync, in which case it calls Sync
// immediately so no COMMIT is required for this range.
func (h *Handler) Write(ctx context.Context, fhKey, path string, offset int64, data []byte, stability WriteStability) error {
	fh, err := h.fs.Open(ctx, path, 0)
	if err != nil {
		return fmt.Errorf("gateway: open %s: %w", path, err)
	}
	defer h.fs.Close(ctx, fh)

	n, err := h.fs.Write(ctx, fh, data, offset)
	if err != nil {
		return fmt.Errorf("gateway: write %s: %w", path, err)
	}

	if stability == WriteStabilityFileSync {
		if err := h.fs.Sync(ctx, fh); err != nil {
			return fmt.Errorf("gateway: sync %s: %w", path, err)
		}
		return nil
	}

	h.writes.RecordWrite(fhKey, uint64(offset), uint32(n), stability)
	return nil
}

// Commit flushes every pending write recorded for fhKey and returns the
// write verifier the client should expect unchanged on success, matching
// the NFSv3 COMMIT procedure's contract that a subsequent read of the
// committed range is durable.
func (h *Handler) Commit(ctx context.Context, fhKey, path string) (uint64, error) {
	fh, err := h.fs.Open(ctx, path, 0)
	if err != nil {
		return 0, fmt.Errorf("gateway: open %s: %w", path, err)
	}
	defer h.fs.Close(ctx, fh)

	if err := h.fs.Sync(ctx, fh); err != nil {
		return 0, fmt.Errorf("gateway: commit %s: %w", path, err)
	}

	return h.writes.Commit(fhKey), nil
}

// PendingWrites returns the writes recorded for fhKey that have not yet
// been committed.
func (h *Handler) PendingWrites(fhKey string) []PendingWrite {
	return h.writes.PendingWrites(fhKey)
}
