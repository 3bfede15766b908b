//go:build linux

package mem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mmap provides extents from anonymous private mappings. Extend uses
// mremap so a grown extent keeps its contents without copying; Shrink
// unmaps tail pages eagerly, returning them to the OS.
//
// The *Ptr mapping primitives are used instead of unix.Mmap because the
// slice-based helpers track whole mappings and refuse the partial
// unmaps and remaps Shrink and Extend need. The capacity of every slice
// handed out equals its mapped length.
type Mmap struct {
	pagesize int64
}

// NewMmap returns an mmap-backed provider.
func NewMmap() *Mmap {
	return &Mmap{pagesize: int64(unix.Getpagesize())}
}

func (m *Mmap) Acquire(size int64) ([]byte, error) {
	if size <= 0 {
		return nil, ErrExhausted
	}
	n := RoundPages(size, m.pagesize)
	p, err := unix.MmapPtr(-1, 0, nil, uintptr(n),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, ErrExhausted
	}
	return unsafe.Slice((*byte)(p), n)[:size:n], nil
}

func (m *Mmap) Extend(buf []byte, size int64) ([]byte, error) {
	if size <= int64(len(buf)) {
		return buf, nil
	}
	if size <= int64(cap(buf)) {
		return buf[:size:cap(buf)], nil
	}
	n := RoundPages(size, m.pagesize)
	p, err := unix.MremapPtr(unsafe.Pointer(unsafe.SliceData(buf)),
		uintptr(cap(buf)), nil, uintptr(n), unix.MREMAP_MAYMOVE)
	if err != nil {
		return nil, ErrExhausted
	}
	return unsafe.Slice((*byte)(p), n)[:size:n], nil
}

func (m *Mmap) Shrink(buf []byte, size int64) ([]byte, error) {
	base := unsafe.Pointer(unsafe.SliceData(buf))
	if size <= 0 {
		if err := unix.MunmapPtr(base, uintptr(cap(buf))); err != nil {
			return nil, err
		}
		return nil, nil
	}
	keep := RoundPages(size, m.pagesize)
	if keep >= int64(cap(buf)) {
		return buf[:size:cap(buf)], nil
	}
	if err := unix.MunmapPtr(unsafe.Add(base, keep), uintptr(int64(cap(buf))-keep)); err != nil {
		return nil, err
	}
	return buf[:size:keep], nil
}

func (m *Mmap) Pagesize() int64 { return m.pagesize }
