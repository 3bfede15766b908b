// Package arena implements a best-fit dynamic allocator over raw-memory
// extents. Blocks are addressed by opaque handles (Ref), carved out of
// segments obtained from a mem.Provider, and recycled through a deferred
// reclaim engine so that free is cheap and coalescing happens in batches.
//
// The free directory has three tiers: exact-size lists for small blocks,
// a size-ordered self-adjusting tree with equal-size chains for the rest,
// and a single wilderness block abutting the growing edge that is carved
// only when nothing else fits. Freed blocks first sit in per-size-class
// cache buckets as deferred-free; the reclaim engine drains the buckets,
// merging physical neighbors in both directions before filing the result.
//
// Every arena operation is serialized by one mutex, so an Arena is safe
// for concurrent use; distinct arenas never contend.
package arena
