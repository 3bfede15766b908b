package arena

import "github.com/memkit/bestalloc/trace"

// Compact returns surplus free memory at segment ends to the raw-memory
// provider. Live blocks are never touched; a wilderness is surrendered
// only when it is large relative to both the growth increment and the
// recent-free-size average, to avoid thrashing the provider.
func (a *Arena) Compact() error {
	a.mu.Lock()
	a.compactLocked()
	a.mu.Unlock()
	a.emit(trace.OpCompact, NilRef, NilRef, 0, 0)
	return nil
}

func (a *Arena) compactLocked() {
	a.stats.CompactRuns++
	a.reclaim(NilRef, 0)

	kept := a.segs[:0]
	for _, s := range a.segs {
		guard := s.guardOff()
		if s.state(guard)&stPfree == 0 {
			kept = append(kept, s)
			continue
		}
		bref, ok := a.endAt[s.refAt(guard+headerSize)]
		if !ok {
			corrupt("segment %d ends free with no trailing directory block", s.id)
		}
		fn := a.lookupFree(bref)
		if fn == nil {
			corrupt("trailing free block %#x missing from directory", bref)
		}

		if fn == a.wild {
			// an oversized wilderness means the increment overshot;
			// ease it back down
			if fn.size > a.cfg.CompactFactor*a.incr && a.incr > a.prov.Pagesize() {
				a.incr /= 2
			}
			if fn.size <= a.cfg.CompactFactor*a.incr || fn.size <= a.cfg.CompactFactor*a.pool {
				kept = append(kept, s)
				continue
			}
			a.pool = 0
		}
		a.unfile(fn)

		off := bref.payOff() - headerSize
		if off == 0 {
			// the whole segment is free; release it outright
			if _, err := a.prov.Shrink(s.buf, 0); err == nil {
				delete(a.byID, s.id)
				a.stats.ShrinkBytes += int64(len(s.buf))
				continue
			}
			// provider would not let go; park the block again
			a.refileTrailing(s, fn)
			kept = append(kept, s)
			continue
		}

		keep := off + headerSize
		shrunk, err := a.prov.Shrink(s.buf, keep)
		if err != nil {
			a.refileTrailing(s, fn)
			kept = append(kept, s)
			continue
		}
		a.stats.ShrinkBytes += int64(len(s.buf)) - keep
		s.buf = shrunk
		s.writeGuard()
		kept = append(kept, s)
	}
	a.segs = kept
}

// refileTrailing puts a trailing free block back where it belongs after
// a declined shrink.
func (a *Arena) refileTrailing(s *segment, fn *freeNode) {
	switch {
	case s == a.current() && fn.ref.payOff()+fn.size == s.guardOff():
		a.fileWild(fn)
	case fn.size < maxTiny:
		a.fileTiny(fn)
	default:
		a.fileTree(fn)
	}
}
