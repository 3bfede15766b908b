package arena

// freeNode is the directory-side record of one free block. The block's
// header stays in segment memory; the node carries everything the
// directory needs to find and unlink it in O(1).
type freeNode struct {
	ref  Ref
	size int64

	// prev/next link the node into either a tiny list or an equal-size
	// chain below a tree node; owner is set in the latter case.
	prev, next *freeNode
	owner      *treeNode
}

// endKey identifies the position immediately after a block: the
// payload-style handle of whatever header follows it. It is the lookup
// key for backward merging.
func (a *Arena) endKey(s *segment, off, size int64) Ref {
	return s.refAt(off + 2*headerSize + size)
}

// indexFree registers a directory-resident free block in the byRef and
// endAt maps. Junk blocks are never indexed; they are not in the
// directory yet.
func (a *Arena) indexFree(fn *freeNode) {
	a.byRef[fn.ref] = fn
	s, off := a.locate(fn.ref)
	a.endAt[a.endKey(s, off, fn.size)] = fn.ref
}

func (a *Arena) unindexFree(fn *freeNode) {
	delete(a.byRef, fn.ref)
	s, off := a.locate(fn.ref)
	delete(a.endAt, a.endKey(s, off, fn.size))
}

// fileTiny pushes a free block onto its exact-size tiny list.
func (a *Arena) fileTiny(fn *freeNode) {
	i := tinyIndex(fn.size)
	fn.owner = nil
	fn.prev = nil
	fn.next = a.tiny[i]
	if fn.next != nil {
		fn.next.prev = fn
	}
	a.tiny[i] = fn
	a.indexFree(fn)
}

// fileWild installs fn as the arena's wilderness. A previously held
// wilderness (from an older segment edge) is demoted into the regular
// directory so at most one wilderness exists.
func (a *Arena) fileWild(fn *freeNode) {
	if old := a.wild; old != nil && old != fn {
		a.wild = nil
		if old.size < maxTiny {
			a.unindexFree(old)
			a.fileTiny(old)
		} else {
			a.unindexFree(old)
			a.fileTree(old)
		}
	}
	fn.owner = nil
	fn.prev, fn.next = nil, nil
	a.wild = fn
	a.indexFree(fn)
}

// unfile removes a known directory block from whichever structure holds
// it: the wilderness slot, its tiny list, or the tree.
func (a *Arena) unfile(fn *freeNode) {
	a.unindexFree(fn)
	switch {
	case fn == a.wild:
		a.wild = nil
	case fn.owner != nil:
		a.chainRemove(fn)
	default:
		i := tinyIndex(fn.size)
		if fn.prev != nil {
			fn.prev.next = fn.next
		} else {
			a.tiny[i] = fn.next
		}
		if fn.next != nil {
			fn.next.prev = fn.prev
		}
		fn.prev, fn.next = nil, nil
	}
}

// lookupFree resolves the directory node for a free block handle,
// covering the wilderness, tiny lists, and tree chains alike.
func (a *Arena) lookupFree(ref Ref) *freeNode {
	if fn, ok := a.byRef[ref]; ok {
		return fn
	}
	return nil
}
