package mem

import "errors"

// ErrExhausted indicates that the provider cannot supply more raw memory.
// The allocator reports this to its caller as an allocation failure; it is
// never fatal.
var ErrExhausted = errors.New("mem: raw memory exhausted")

// Provider supplies the raw-memory extents backing arena segments.
//
// All sizes are in bytes and are rounded up to Pagesize() by callers.
// Extents are addressed by offset, so a provider may re-back an extent
// during Extend as long as the prior contents are preserved at the same
// offsets. Grown extents remain contiguous with their prior span.
//
// Implementations:
//   - Heap: garbage-collected byte slices (the portable default)
//   - Mmap: anonymous memory mappings via golang.org/x/sys/unix
//   - Capped: wraps another provider with a total-bytes quota
type Provider interface {
	// Acquire obtains a new zeroed extent of exactly size bytes.
	Acquire(size int64) ([]byte, error)

	// Extend grows an extent obtained from Acquire to size bytes,
	// preserving existing contents at their offsets. The returned slice
	// replaces the old one.
	Extend(buf []byte, size int64) ([]byte, error)

	// Shrink releases the tail of an extent, keeping the first size
	// bytes. size == 0 releases the extent entirely and returns nil.
	Shrink(buf []byte, size int64) ([]byte, error)

	// Pagesize is the granularity of Acquire/Extend/Shrink sizes.
	Pagesize() int64
}
