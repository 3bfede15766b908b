// Package mem abstracts raw-memory acquisition for arena segments.
//
// The allocator core is agnostic to where its segments come from; it only
// requires monotonic, page-aligned grow/shrink semantics and that a grown
// extent stays contiguous with its prior span (offsets into the extent
// remain valid). This package supplies that contract through the Provider
// interface and three backends:
//
//   - Heap: plain byte slices from the Go heap. Portable, and the default.
//   - Mmap: anonymous private mappings (Linux), released back to the OS
//     eagerly on Shrink.
//   - Capped: a quota wrapper around any Provider, used to bound an
//     arena's total footprint and to simulate exhaustion in tests.
//
// Backends are chosen at arena construction time and never swapped after.
package mem
