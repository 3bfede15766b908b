package arena

import "github.com/memkit/bestalloc/internal/format"

// Ref is an opaque block handle: the owning segment's id in the high 32
// bits (offset by one so the zero value stays free for NilRef) and the
// payload byte offset within the segment in the low 32 bits.
type Ref uint64

// NilRef is the absent handle. Free(NilRef) is a no-op and
// Resize(NilRef, n) allocates.
const NilRef Ref = 0

func makeRef(segID uint32, payOff int64) Ref {
	return Ref(uint64(segID+1)<<32 | uint64(uint32(payOff)))
}

func (r Ref) segID() uint32 { return uint32(r>>32) - 1 }
func (r Ref) payOff() int64 { return int64(uint32(r)) }

const (
	headerSize = format.HeaderSize
	quantum    = format.Quantum
	bodyMin    = format.BodyMin

	// numTiny exact size classes cover bodies in [bodyMin, maxTiny);
	// larger free blocks go to the size-ordered tree.
	numTiny = 8
	maxTiny = bodyMin + numTiny*quantum

	// Deferred-free buckets mirror the tiny classes, with one catch-all
	// bucket at index numCache for oversized junk.
	numCache = 8
)

// Block state flags. They live in the header's state word, never in the
// size word. busy+junk marks a deferred-free block awaiting reclaim;
// pfree on a block records that its physical predecessor is free.
const (
	stBusy uint64 = 1 << iota
	stJunk
	stPfree
)

func tinyIndex(size int64) int { return int((size - bodyMin) / quantum) }

func cacheIndex(size int64) int {
	if i := tinyIndex(size); i < numCache {
		return i
	}
	return numCache
}
