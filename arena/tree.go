package arena

// The free tree is a binary search tree keyed by block size, self-adjusted
// with splay-style rotations during search so that runs of similar-sized
// requests touch only the top of the tree. Blocks of equal size share one
// tree node and hang off it in a chain, never as duplicate nodes.

type treeNode struct {
	size        int64
	left, right *treeNode
	head        *freeNode // equal-size chain, never nil while in the tree
}

func (tn *treeNode) chainPush(fn *freeNode) {
	fn.owner = tn
	fn.prev = nil
	fn.next = tn.head
	if tn.head != nil {
		tn.head.prev = fn
	}
	tn.head = fn
}

func (a *Arena) chainRemove(fn *freeNode) {
	tn := fn.owner
	if fn.prev != nil {
		fn.prev.next = fn.next
	} else {
		tn.head = fn.next
	}
	if fn.next != nil {
		fn.next.prev = fn.prev
	}
	fn.prev, fn.next, fn.owner = nil, nil, nil
	if tn.head == nil {
		a.treeRemove(tn.size)
	}
}

// fileTree inserts a free block into the tree by leaf insertion; no
// rebalancing happens on insert, only during search.
func (a *Arena) fileTree(fn *freeNode) {
	a.indexFree(fn)
	tn := a.root
	if tn == nil {
		nn := &treeNode{size: fn.size}
		nn.chainPush(fn)
		a.root = nn
		return
	}
	for {
		switch {
		case fn.size < tn.size:
			if tn.left == nil {
				nn := &treeNode{size: fn.size}
				nn.chainPush(fn)
				tn.left = nn
				return
			}
			tn = tn.left
		case fn.size > tn.size:
			if tn.right == nil {
				nn := &treeNode{size: fn.size}
				nn.chainPush(fn)
				tn.right = nn
				return
			}
			tn = tn.right
		default:
			tn.chainPush(fn)
			return
		}
	}
}

// bestsearch finds, removes, and returns a free block of exactly size
// bytes, or of the smallest size strictly greater, or nil if every tree
// block is too small. The descent is a top-down splay: each step applies
// a rotation that drags nodes near the requested size toward the root,
// so repeated similar requests amortize to near-constant time.
func (a *Arena) bestsearch(size int64) *freeNode {
	var link treeNode
	l, r := &link, &link
	root := a.root

	for root != nil {
		if size == root.size {
			break
		}
		if size < root.size {
			t := root.left
			if t != nil {
				if size <= t.size {
					// rotate right, pulling the closer node up
					root.left = t.right
					t.right = root
					root = t
					if size == root.size {
						break
					}
					t = root.left
				} else {
					l.right = t
					l = t
					t = t.right
				}
			}
			r.left = root
			r = root
			root = t
		} else {
			t := root.right
			if t != nil {
				if size >= t.size {
					root.right = t.left
					t.left = root
					root = t
					if size == root.size {
						break
					}
					t = root.right
				} else {
					r.left = t
					r = t
					t = t.left
				}
			}
			l.right = root
			l = root
			root = t
		}
	}

	if root != nil {
		// exact match: detach its subtrees into the side trees
		l.right = root.left
		r.left = root.right
	} else {
		// no exact fit: the best fit is the least node of the right
		// (greater-size) side tree
		r.left = nil
		l.right = nil
		if root = link.left; root != nil {
			for t := root.left; t != nil; t = root.left {
				root.left = t.right
				t.right = root
				root = t
			}
			link.left = root.right
		}
	}

	if root == nil {
		// every block is smaller than the request; reassemble and fail
		a.root = join(link.right, link.left)
		return nil
	}

	fn := root.head
	a.chainPop(fn)
	if root.head != nil {
		// equal-size siblings remain; the node keeps its tree position
		root.left = link.right
		root.right = link.left
		a.root = root
	} else {
		a.root = join(link.right, link.left)
	}
	a.unindexFree(fn)
	return fn
}

// chainPop unlinks fn from its chain without triggering tree removal;
// bestsearch handles the node's fate itself.
func (a *Arena) chainPop(fn *freeNode) {
	tn := fn.owner
	tn.head = fn.next
	if fn.next != nil {
		fn.next.prev = nil
	}
	fn.prev, fn.next, fn.owner = nil, nil, nil
}

// join grafts the left tree onto the least node of the right tree,
// promoting that least node with the same rotation used everywhere else.
func join(left, right *treeNode) *treeNode {
	if right == nil {
		return left
	}
	for t := right.left; t != nil; t = right.left {
		right.left = t.right
		t.right = right
		right = t
	}
	right.left = left
	return right
}

// treeRemove deletes the (empty-chained) node holding size, rebalancing
// by promoting the least node of its right subtree.
func (a *Arena) treeRemove(size int64) {
	var parent *treeNode
	tn := a.root
	for tn != nil && tn.size != size {
		parent = tn
		if size < tn.size {
			tn = tn.left
		} else {
			tn = tn.right
		}
	}
	if tn == nil {
		return
	}
	sub := join(tn.left, tn.right)
	switch {
	case parent == nil:
		a.root = sub
	case parent.left == tn:
		parent.left = sub
	default:
		parent.right = sub
	}
}
