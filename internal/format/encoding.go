package format

import "encoding/binary"

// Little-endian word accessors for block headers.

// ReadU64 reads a little-endian uint64 at off.
func ReadU64(data []byte, off int64) uint64 {
	return binary.LittleEndian.Uint64(data[off : off+8])
}

// PutU64 writes a little-endian uint64 at off.
func PutU64(data []byte, off int64, v uint64) {
	binary.LittleEndian.PutUint64(data[off:off+8], v)
}
