package arena

import "fmt"

// corrupt aborts on a broken internal invariant. By the time a directory
// structure disagrees with block headers, no recovery is possible.
func corrupt(format string, args ...any) {
	panic(fmt.Sprintf("arena: corrupted state: "+format, args...))
}

// reclaim drains the deferred-free buckets from the overflow bucket down
// to floor, coalescing each junk block with its free neighbors and filing
// the merged result into the wilderness, a tiny list, or the tree.
//
// If wanted is a junk block about to be consumed by the caller, reclaim
// leaves that block unfiled once produced and reports whether it was
// seen, sparing a directory round trip.
func (a *Arena) reclaim(wanted Ref, floor int) bool {
	a.stats.ReclaimRuns++

	if a.last != NilRef {
		a.cache[numCache] = append(a.cache[numCache], a.last)
		a.last = NilRef
	}

	saw := wanted == NilRef
	for n := numCache; n >= floor; n-- {
		list := a.cache[n]
		a.cache[n] = nil
		for _, ref := range list {
			s, off := a.locate(ref)
			if s == nil {
				continue
			}
			if s.state(off)&stJunk == 0 {
				// absorbed by an earlier merge in this same pass
				continue
			}

			fp := off
			size := s.bsize(off)
			if s.state(off)&stPfree != 0 {
				// backward merge: the predecessor is in the directory
				pref, ok := a.endAt[ref]
				if !ok {
					corrupt("pfree block %#x has no preceding free block", ref)
				}
				pn := a.lookupFree(pref)
				if pn == nil {
					corrupt("free block %#x missing from directory", pref)
				}
				a.unfile(pn)
				fp = pref.payOff() - headerSize
				size += pn.size + headerSize
			}

			// forward merge until a busy, non-junk header
			for {
				np := fp + headerSize + size
				nst := s.state(np)
				if nst&stBusy == 0 {
					nref := s.refAt(np + headerSize)
					nn := a.lookupFree(nref)
					if nn == nil {
						corrupt("free block %#x missing from directory", nref)
					}
					a.unfile(nn)
					size += nn.size + headerSize
				} else if nst&stJunk != 0 {
					nsz := s.bsize(np)
					if ci := cacheIndex(nsz); ci < floor {
						// its bucket must drain this pass too, or a
						// stale ref would outlive the merge
						floor = ci
					}
					s.setState(np, 0)
					size += nsz + headerSize
				} else {
					break
				}
			}

			s.setSize(fp, size)
			s.setState(fp, 0)
			np := fp + headerSize + size
			s.setFlag(np, stPfree)

			fpRef := s.refAt(fp + headerSize)
			if wanted != NilRef && fpRef == wanted {
				saw = true
				continue
			}

			fn := &freeNode{ref: fpRef, size: size}
			switch {
			case np == s.guardOff() && s == a.current():
				a.fileWild(fn)
			case size < maxTiny:
				a.fileTiny(fn)
			default:
				a.fileTree(fn)
			}
		}
	}
	return saw
}
