package mem

import "os"

// Heap provides extents from the Go heap. Extend may re-back the extent
// with a fresh slice; contents are copied so offsets stay valid, which is
// all the Provider contract asks for.
type Heap struct {
	pagesize int64
}

// NewHeap returns a heap-backed provider using the OS page size as its
// allocation granularity.
func NewHeap() *Heap {
	return &Heap{pagesize: int64(os.Getpagesize())}
}

func (h *Heap) Acquire(size int64) ([]byte, error) {
	if size <= 0 {
		return nil, ErrExhausted
	}
	return make([]byte, size), nil
}

func (h *Heap) Extend(buf []byte, size int64) ([]byte, error) {
	if size <= int64(len(buf)) {
		return buf, nil
	}
	if size <= int64(cap(buf)) {
		return buf[:size], nil
	}
	grown := make([]byte, size)
	copy(grown, buf)
	return grown, nil
}

func (h *Heap) Shrink(buf []byte, size int64) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	return buf[:size:size], nil
}

func (h *Heap) Pagesize() int64 { return h.pagesize }
