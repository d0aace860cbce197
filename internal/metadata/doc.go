// Package metadata implements the sharded metadata service core: the
// key-value persistence abstraction, inode generation tracking, per-inode
// lock manager, Raft log snapshot/compaction, cross-site UID/GID mapping,
// and per-shard statistics used for rebalancing decisions.
package metadata
