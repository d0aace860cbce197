// Package codec implements the wire-level primitives shared by every
// ClaudeFS RPC surface: XDR encoding, frame header pack/unpack, BLAKE3
// content fingerprinting, and CRC32 checksums. Nothing in this package
// performs I/O; it only converts between in-memory values and byte slices.
package codec
