package arena

import (
	"github.com/memkit/bestalloc/internal/format"
	"github.com/memkit/bestalloc/trace"
)

// AllocAlign returns a block of at least size bytes whose payload offset
// within its segment is a multiple of align. The alignment is rounded up
// to a multiple of the quantum. Size or alignment below one is ErrBadSize.
//
// The implementation over-allocates, carves the aligned block out of the
// middle, and files the prefix and suffix splinters as deferred-free,
// running the reclaim engine before and after so the oddly-sized cuts
// never linger in the directory.
func (a *Arena) AllocAlign(size, align int64) (Ref, []byte, error) {
	if size <= 0 || align <= 0 {
		return NilRef, nil, ErrBadSize
	}
	a.mu.Lock()
	ref, err := a.allocAlignLocked(size, align)
	if err != nil {
		a.mu.Unlock()
		return NilRef, nil, err
	}
	s, off := a.locate(ref)
	payload := s.payload(off)
	a.mu.Unlock()
	a.emit(trace.OpAlign, NilRef, ref, size, align)
	return ref, payload, nil
}

func (a *Arena) allocAlignLocked(size, align int64) (Ref, error) {
	a.stats.AlignCalls++
	size = format.RoundBody(size)
	align = format.MultipleOf(align)

	a.reclaim(NilRef, 0)

	raw := size + 2*(align+headerSize)
	ref, err := a.allocLocked(raw)
	if err != nil {
		return NilRef, err
	}
	s, off := a.locate(ref)

	payOff := off + headerSize
	if rem := payOff % align; rem != 0 {
		payOff += align - rem
		if payOff-(off+headerSize) < headerSize+bodyMin {
			// prefix too small to stand as a block; skip one full step
			payOff += align
		}
		head := payOff - headerSize
		total := s.bsize(off)
		s.setSize(head, off+headerSize+total-payOff)
		s.setState(head, stBusy)
		prefix := head - off - headerSize
		s.setSize(off, prefix)
		s.setFlag(off, stJunk)
		a.cache[cacheIndex(prefix)] = append(a.cache[cacheIndex(prefix)], s.refAt(off+headerSize))
		off = head
	}

	if slack := s.bsize(off) - size; slack >= headerSize+bodyMin {
		a.stats.SplitCount++
		s.setSize(off, size)
		tail := off + headerSize + size
		s.setSize(tail, slack-headerSize)
		s.setState(tail, stBusy|stJunk)
		a.cache[cacheIndex(slack-headerSize)] = append(a.cache[cacheIndex(slack-headerSize)], s.refAt(tail+headerSize))
	}

	a.reclaim(NilRef, 0)
	return s.refAt(off + headerSize), nil
}
