package arena

import (
	"github.com/memkit/bestalloc/internal/format"
	"github.com/memkit/bestalloc/mem"
	"github.com/memkit/bestalloc/trace"
)

// ResizeMode controls what Resize may do when a block cannot grow in
// place.
type ResizeMode uint8

const (
	// Move permits relocating the block to a fresh allocation.
	Move ResizeMode = 1 << iota
	// Copy carries the old contents (the lesser of old and new size)
	// across a relocation.
	Copy
	// ZeroTail zeroes only the newly extended portion of a grown block;
	// existing content is never re-zeroed.
	ZeroTail
)

// Resize changes a block's usable size. Resize(NilRef, n) is an
// allocation; Resize(ref, 0) is a free and returns NilRef. Growth is
// attempted in place first, by absorbing free, deferred-free, and
// wilderness neighbors and then by stretching the segment itself; only
// then, and only with Move set, is the block relocated. On failure
// without Move the original block is left untouched.
func (a *Arena) Resize(ref Ref, size int64, mode ResizeMode) (Ref, []byte, error) {
	if ref == NilRef {
		nref, payload, err := a.Alloc(size)
		if err == nil && mode&ZeroTail != 0 {
			clear(payload)
		}
		return nref, payload, err
	}
	if size == 0 {
		return NilRef, nil, a.Free(ref)
	}
	if size < 0 {
		return NilRef, nil, ErrBadSize
	}

	a.mu.Lock()
	nref, err := a.resizeLocked(ref, size, mode)
	if err != nil {
		a.mu.Unlock()
		return NilRef, nil, err
	}
	s, off := a.locate(nref)
	payload := s.payload(off)
	a.mu.Unlock()
	a.emit(trace.OpResize, ref, nref, size, 0)
	return nref, payload, nil
}

func (a *Arena) resizeLocked(ref Ref, size int64, mode ResizeMode) (Ref, error) {
	a.stats.ResizeCalls++
	s, off, ok := a.validBusy(ref)
	if !ok {
		return NilRef, ErrBadRef
	}
	size = format.RoundBody(size)
	oldz := s.bsize(off)

	if oldz < size {
		a.growInPlace(s, off, size)
	}

	if got := s.bsize(off); got >= size+headerSize+bodyMin {
		// give back the excess as deferred-free and reclaim right away
		a.stats.SplitCount++
		s.setSize(off, size)
		tail := off + headerSize + size
		s.setSize(tail, got-size-headerSize)
		s.setState(tail, stBusy|stJunk)
		a.cache[numCache] = append(a.cache[numCache], s.refAt(tail+headerSize))
		a.reclaim(NilRef, numCache)
	} else if got < size {
		if mode&Move == 0 {
			a.shrinkBack(s, off, oldz)
			return NilRef, ErrNoSpace
		}
		nref, err := a.allocLocked(size)
		if err != nil {
			a.shrinkBack(s, off, oldz)
			return NilRef, err
		}
		ns, noff := a.locate(nref)
		if mode&Copy != 0 {
			copy(ns.payload(noff), s.payload(off)[:oldz])
		}
		// free the old block through the deferred path
		s.setFlag(off, stJunk)
		a.cache[numCache] = append(a.cache[numCache], ref)
		a.reclaim(NilRef, numCache)
		s, off, ref = ns, noff, nref
	}

	if mode&ZeroTail != 0 {
		if nz := s.bsize(off); nz > oldz {
			clear(s.payload(off)[oldz:])
		}
	}
	return ref, nil
}

// growInPlace enlarges the block headed at off by absorbing forward
// neighbors and, if it reaches the segment edge, by extending the
// segment itself. It stops as soon as the block covers size bytes.
func (a *Arena) growInPlace(s *segment, off, size int64) {
	for s.bsize(off) < size {
		np := off + headerSize + s.bsize(off)
		if np == s.guardOff() {
			break
		}
		nref := s.refAt(np + headerSize)
		nst := s.state(np)
		var got int64
		switch {
		case nref == a.last:
			a.last = NilRef
			got = s.bsize(np)
		case nst&stBusy == 0:
			nn := a.lookupFree(nref)
			if nn == nil {
				corrupt("free block %#x missing from directory", nref)
			}
			a.unfile(nn)
			got = nn.size
		case nst&stJunk != 0:
			// let the reclaim engine coalesce the junk run first, with
			// an early stop so the merged block stays unfiled for us
			if !a.reclaim(nref, cacheIndex(s.bsize(np))) {
				corrupt("deferred block %#x not seen by reclaim", nref)
			}
			got = s.bsize(np)
		default:
			got = -1
		}
		if got < 0 {
			break
		}
		s.setSize(off, s.bsize(off)+headerSize+got)
		s.clearFlag(off+headerSize+s.bsize(off), stPfree)
	}

	if s.bsize(off) >= size || size <= a.incr {
		return
	}
	if off+headerSize+s.bsize(off) != s.guardOff() {
		return
	}
	// the block touches the segment edge; try stretching the extent
	grow := format.RoundTo(size-s.bsize(off)+headerSize, a.incr)
	grow = mem.RoundPages(grow, a.prov.Pagesize())
	grown, err := a.prov.Extend(s.buf, int64(len(s.buf))+grow)
	if err != nil {
		return
	}
	s.buf = grown
	s.writeGuard()
	s.setSize(off, s.bsize(off)+grow)
	a.stats.GrowCalls++
	a.stats.GrowBytes += grow
}

// shrinkBack undoes speculative in-place growth so a failed resize
// leaves the caller's block exactly as it was.
func (a *Arena) shrinkBack(s *segment, off, oldz int64) {
	got := s.bsize(off)
	if got <= oldz {
		return
	}
	s.setSize(off, oldz)
	tail := off + headerSize + oldz
	s.setSize(tail, got-oldz-headerSize)
	s.setState(tail, stBusy|stJunk)
	a.cache[numCache] = append(a.cache[numCache], s.refAt(tail+headerSize))
	a.reclaim(NilRef, numCache)
}
