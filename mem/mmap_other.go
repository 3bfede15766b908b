//go:build !linux

package mem

// NewMmap falls back to the heap provider where anonymous-mapping resize
// primitives are unavailable. Callers keep the same Provider contract.
func NewMmap() Provider {
	return NewHeap()
}
