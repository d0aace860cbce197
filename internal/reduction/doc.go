// Package reduction implements the data-reduction pipeline: content-defined
// chunking, CAS deduplication, per-chunk encryption, compression, segment
// packing, garbage collection, and CoW snapshots over the chunk store.
package reduction
