package arena

import "github.com/memkit/bestalloc/trace"

// Free demotes a live block to deferred-free; the reclaim engine merges
// it with its neighbors later. Free(NilRef) is a no-op; freeing anything
// else that is not a live block reports ErrBadRef (this is how a double
// free surfaces).
func (a *Arena) Free(ref Ref) error {
	if ref == NilRef {
		return nil
	}
	a.mu.Lock()
	s, off, ok := a.validBusy(ref)
	if !ok {
		a.mu.Unlock()
		return ErrBadRef
	}
	size := s.bsize(off)
	a.stats.FreeCalls++
	a.stats.BytesFreed += size

	// running average of freed sizes; compaction consults it so a
	// large-block workload does not get its memory chopped away
	a.pool = (a.pool + size) / a.cfg.PoolDecay

	s.setFlag(off, stJunk)
	switch {
	case size < maxTiny:
		i := cacheIndex(size)
		a.cache[i] = append(a.cache[i], ref)
	case a.last == NilRef:
		a.last = ref
	default:
		a.cache[numCache] = append(a.cache[numCache], ref)
	}

	// coalesce eagerly on large frees to keep fragmentation down
	if size >= 2*a.incr {
		a.reclaim(NilRef, 0)
		if a.wild != nil && a.wild.size >= a.cfg.CompactFactor*a.incr {
			a.compactLocked()
		}
	}

	a.mu.Unlock()
	a.emit(trace.OpFree, ref, NilRef, size, 0)
	return nil
}
