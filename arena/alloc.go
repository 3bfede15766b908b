package arena

import (
	"github.com/memkit/bestalloc/internal/format"
	"github.com/memkit/bestalloc/mem"
	"github.com/memkit/bestalloc/trace"
)

// Alloc carves a busy block with at least size usable bytes and returns
// its handle and payload. Alloc(0) still returns a valid, distinct,
// freeable block. Exhaustion of the raw-memory provider is reported as
// ErrNoSpace, never as a fault.
func (a *Arena) Alloc(size int64) (Ref, []byte, error) {
	if size < 0 {
		return NilRef, nil, ErrBadSize
	}
	a.mu.Lock()
	ref, err := a.allocLocked(size)
	if err != nil {
		a.mu.Unlock()
		return NilRef, nil, err
	}
	s, off := a.locate(ref)
	payload := s.payload(off)
	a.mu.Unlock()
	a.emit(trace.OpAlloc, NilRef, ref, size, 0)
	return ref, payload, nil
}

func (a *Arena) allocLocked(size int64) (Ref, error) {
	a.stats.AllocCalls++
	size = format.RoundBody(size)

	// last-freed fast path: reuse the most recent free directly when it
	// is neither too small nor more than twice the request.
	if a.last != NilRef {
		ref := a.last
		a.last = NilRef
		ls, loff := a.locate(ref)
		if got := ls.bsize(loff); got >= size && got < size<<1 {
			if got >= size+headerSize+bodyMin {
				ls.setSize(loff, size)
				tail := loff + headerSize + size
				ls.setSize(tail, got-size-headerSize)
				ls.setState(tail, stBusy|stJunk)
				a.last = ls.refAt(tail + headerSize)
				a.stats.SplitCount++
			}
			ls.clearFlag(loff, stJunk)
			a.stats.FastHits++
			a.stats.BytesAllocated += ls.bsize(loff)
			return ref, nil
		}
		a.cache[numCache] = append(a.cache[numCache], ref)
	}

	// reclaim and re-search, draining buckets from the largest class
	// down, stopping at the first fit
	for n := numCache; n >= 0; n-- {
		a.reclaim(NilRef, n)
		if a.root != nil {
			if fn := a.bestsearch(size); fn != nil {
				s, off := a.locate(fn.ref)
				return a.finish(s, off, fn.size, size), nil
			}
		}
	}

	// wilderness
	if a.wild != nil && a.wild.size >= size {
		fn := a.takeWild()
		s, off := a.locate(fn.ref)
		a.stats.WildHits++
		return a.finish(s, off, fn.size, size), nil
	}

	// growth: compact first to hand stale trailing memory back, then
	// extend the arena
	a.compactLocked()
	s, off, got, err := a.extend(size)
	if err != nil {
		return NilRef, err
	}
	return a.finish(s, off, got, size), nil
}

func (a *Arena) takeWild() *freeNode {
	fn := a.wild
	a.wild = nil
	a.unindexFree(fn)
	return fn
}

// finish stamps a chosen free block busy, splitting off surplus into a
// deferred-free tail (or a fresh wilderness when the tail reaches the
// growing edge). got is the block's current body size, need the rounded
// request.
func (a *Arena) finish(s *segment, off, got, need int64) Ref {
	np := off + headerSize + got
	s.clearFlag(np, stPfree)

	if slack := got - need; slack >= headerSize+bodyMin {
		a.stats.SplitCount++
		s.setSize(off, need)
		tail := off + headerSize + need
		s.setSize(tail, slack-headerSize)
		if np == s.guardOff() && s == a.current() {
			s.setState(tail, 0)
			s.setFlag(np, stPfree)
			a.fileWild(&freeNode{ref: s.refAt(tail + headerSize), size: slack - headerSize})
		} else {
			s.setState(tail, stBusy|stJunk)
			a.last = s.refAt(tail + headerSize)
		}
	}

	s.setState(off, stBusy)
	a.stats.BytesAllocated += s.bsize(off)
	return s.refAt(off + headerSize)
}

// extend grows the arena for a request no existing free space could
// serve: first by stretching the current segment in place, then by
// acquiring a new segment. It returns an unfiled free block of at least
// need bytes.
func (a *Arena) extend(need int64) (*segment, int64, int64, error) {
	grow := format.RoundTo(need+2*headerSize, a.incr)
	grow = mem.RoundPages(grow, a.prov.Pagesize())
	if need > a.incr {
		// a large customer showed up; raise the hint so subsequent
		// growth keeps pace
		a.incr = grow
	}

	if cur := a.current(); cur != nil {
		if grown, err := a.prov.Extend(cur.buf, int64(len(cur.buf))+grow); err == nil {
			oldGuard := cur.guardOff()
			pf := cur.state(oldGuard) & stPfree
			cur.buf = grown
			cur.writeGuard()
			cur.setSize(oldGuard, grow-headerSize)
			cur.setState(oldGuard, stBusy|stJunk|pf)
			body := grow - headerSize
			a.cache[cacheIndex(body)] = append(a.cache[cacheIndex(body)], cur.refAt(oldGuard+headerSize))
			a.stats.GrowCalls++
			a.stats.GrowBytes += grow
			a.reclaim(NilRef, 0)
			if a.wild != nil && a.wild.size >= need {
				fn := a.takeWild()
				s, off := a.locate(fn.ref)
				return s, off, fn.size, nil
			}
		}
	}

	buf, err := a.prov.Acquire(grow)
	if err != nil {
		return nil, 0, 0, ErrNoSpace
	}
	s := &segment{id: a.nextID, buf: buf}
	a.nextID++
	s.writeGuard()
	body := int64(len(buf)) - 2*headerSize
	s.setSize(0, body)
	s.setState(0, 0)
	a.segs = append(a.segs, s)
	a.byID[s.id] = s
	a.stats.GrowCalls++
	a.stats.GrowBytes += grow
	return s, 0, body, nil
}
