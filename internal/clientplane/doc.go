// Package clientplane implements the filesystem-upcall-facing state that
// sits in front of the metadata service: attribute/directory/negative
// caches, the buffer pool, the open-file table, local POSIX byte-range
// locks, delegations, WORM/retention enforcement, mmap tracking, in-flight
// request interruption, FUSE kernel capability negotiation and
// passthrough I/O, extended attributes, and user-visible named snapshots.
package clientplane
