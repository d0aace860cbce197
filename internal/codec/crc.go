package codec

import "hash/crc32"

// CRC32 computes the IEEE CRC32 checksum of data. CRC32 is a thin stdlib
// wrapper: no third-party library in the retrieval pack offers anything
// beyond what hash/crc32 already provides for this well-understood,
// fixed-algorithm checksum, so the ambient stdlib implementation is used
// directly rather than introducing a dependency for it.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
