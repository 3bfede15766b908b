package arena

import "github.com/memkit/bestalloc/internal/format"

// segment is one contiguous raw-memory extent. Blocks tile it exactly
// from offset 0 up to the trailing guard header, so that for any segment
// the sum of (header + body) over its blocks plus the guard equals the
// extent length.
type segment struct {
	id  uint32
	buf []byte
}

// guardOff is the offset of the trailing guard: a bare header with size
// zero and the busy flag, so forward walks always stop on a busy header.
// The guard's pfree flag records whether the segment ends in free space.
func (s *segment) guardOff() int64 { return int64(len(s.buf)) - headerSize }

func (s *segment) writeGuard() {
	off := s.guardOff()
	format.PutU64(s.buf, off, 0)
	format.PutU64(s.buf, off+8, stBusy)
}

func (s *segment) bsize(off int64) int64 {
	return int64(format.ReadU64(s.buf, off))
}

func (s *segment) setSize(off, size int64) {
	format.PutU64(s.buf, off, uint64(size))
}

func (s *segment) state(off int64) uint64 {
	return format.ReadU64(s.buf, off+8)
}

func (s *segment) setState(off int64, st uint64) {
	format.PutU64(s.buf, off+8, st)
}

func (s *segment) setFlag(off int64, flag uint64) {
	s.setState(off, s.state(off)|flag)
}

func (s *segment) clearFlag(off int64, flag uint64) {
	s.setState(off, s.state(off)&^flag)
}

// refAt returns the handle for the payload starting at payOff.
func (s *segment) refAt(payOff int64) Ref { return makeRef(s.id, payOff) }

// payload returns the body bytes of the block headed at off.
func (s *segment) payload(off int64) []byte {
	body := s.bsize(off)
	return s.buf[off+headerSize : off+headerSize+body : off+headerSize+body]
}
