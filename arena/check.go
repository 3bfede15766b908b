package arena

import "fmt"

// Check walks every structure the arena maintains and verifies them
// against each other: segment tilings, header flags, the free directory,
// the deferred-free buckets, and the tree ordering. It is meant for tests
// and debugging; it holds the lock for the whole walk.
func (a *Arena) Check() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	junk := make(map[Ref]bool)
	for _, list := range a.cache {
		for _, ref := range list {
			junk[ref] = true
		}
	}
	if a.last != NilRef {
		junk[a.last] = true
	}

	seenFree := make(map[Ref]bool)
	for i, s := range a.segs {
		prevFree := false
		var off int64
		for off < s.guardOff() {
			body := s.bsize(off)
			st := s.state(off)
			ref := s.refAt(off + headerSize)
			switch {
			case body < bodyMin || body%quantum != 0:
				return fmt.Errorf("segment %d offset %d: bad body size %d", s.id, off, body)
			case off+headerSize+body > s.guardOff():
				return fmt.Errorf("segment %d offset %d: block overruns guard", s.id, off)
			case st&stJunk != 0 && st&stBusy == 0:
				return fmt.Errorf("segment %d offset %d: junk without busy", s.id, off)
			}
			if prevFree != (st&stPfree != 0) {
				return fmt.Errorf("segment %d offset %d: pfree flag %v, predecessor free %v",
					s.id, off, st&stPfree != 0, prevFree)
			}
			if prevFree && st&stBusy == 0 {
				return fmt.Errorf("segment %d offset %d: two adjacent free blocks", s.id, off)
			}
			if st&stBusy == 0 {
				fn := a.byRef[ref]
				if fn == nil {
					return fmt.Errorf("segment %d offset %d: free block not in directory", s.id, off)
				}
				if fn.size != body {
					return fmt.Errorf("free block %#x: directory size %d, header size %d", ref, fn.size, body)
				}
				if got := a.endAt[a.endKey(s, off, body)]; got != ref {
					return fmt.Errorf("free block %#x: end index points at %#x", ref, got)
				}
				if fn == a.wild && (i != len(a.segs)-1 || off+headerSize+body != s.guardOff()) {
					return fmt.Errorf("wilderness %#x not at the growing edge", ref)
				}
				seenFree[ref] = true
			} else if st&stJunk != 0 && !junk[ref] {
				return fmt.Errorf("deferred block %#x in no cache bucket", ref)
			}
			prevFree = st&stBusy == 0
			off += headerSize + body
		}
		if off != s.guardOff() {
			return fmt.Errorf("segment %d: blocks cover %d bytes, guard at %d", s.id, off, s.guardOff())
		}
		if s.bsize(off) != 0 || s.state(off)&stBusy == 0 {
			return fmt.Errorf("segment %d: guard header damaged", s.id)
		}
	}

	for ref := range a.byRef {
		if !seenFree[ref] {
			return fmt.Errorf("directory block %#x not found in any segment", ref)
		}
	}

	return a.checkTree(a.root, 0, 1<<62)
}

func (a *Arena) checkTree(tn *treeNode, lo, hi int64) error {
	if tn == nil {
		return nil
	}
	if tn.size <= lo || tn.size >= hi {
		return fmt.Errorf("tree node size %d violates ordering (%d, %d)", tn.size, lo, hi)
	}
	if tn.head == nil {
		return fmt.Errorf("tree node size %d has an empty chain", tn.size)
	}
	for fn := tn.head; fn != nil; fn = fn.next {
		if fn.size != tn.size {
			return fmt.Errorf("chain block %#x size %d under tree node %d", fn.ref, fn.size, tn.size)
		}
		if fn.owner != tn {
			return fmt.Errorf("chain block %#x has wrong owner", fn.ref)
		}
	}
	if err := a.checkTree(tn.left, lo, tn.size); err != nil {
		return err
	}
	return a.checkTree(tn.right, tn.size, hi)
}
