package arena

import (
	"sync"

	"github.com/memkit/bestalloc/mem"
	"github.com/memkit/bestalloc/trace"
)

// Arena is one managed allocation domain: an ordered set of segments, a
// free directory over them, and the bookkeeping that recycles blocks with
// bounded overhead.
//
// One mutex serializes every operation on the arena; two goroutines on
// the same arena take turns, while separate arenas proceed independently.
// The mutex is held across raw-memory acquisition on purpose: providers
// are not required to be atomic.
type Arena struct {
	mu   sync.Mutex
	cfg  Config
	prov mem.Provider
	tr   trace.Tracer

	segs   []*segment // creation order; the last is the growing segment
	byID   map[uint32]*segment
	nextID uint32

	// free directory
	root  *treeNode            // size-ordered tree of blocks >= maxTiny
	tiny  [numTiny]*freeNode   // exact-size lists of blocks < maxTiny
	byRef map[Ref]*freeNode    // every directory-resident free block
	endAt map[Ref]Ref          // position after a free block -> its ref
	wild  *freeNode            // the block abutting the growing edge

	// deferred-free state
	cache [numCache + 1][]Ref // junk buckets by size class + overflow
	last  Ref                 // most recently freed block, reused first

	pool int64 // moving average of recently freed sizes
	incr int64 // current growth increment

	stats Stats
}

// Option adjusts arena construction.
type Option func(*Arena)

// WithTracer attaches a trace collaborator; it is notified after every
// successful front-end operation.
func WithTracer(tr trace.Tracer) Option {
	return func(a *Arena) { a.tr = tr }
}

// New creates an arena drawing raw memory from prov. A nil provider
// defaults to the heap provider; a zero Config field defaults per
// DefaultConfig.
func New(cfg Config, prov mem.Provider, opts ...Option) *Arena {
	cfg.sanitize()
	if prov == nil {
		prov = mem.NewHeap()
	}
	a := &Arena{
		cfg:   cfg,
		prov:  prov,
		tr:    trace.Nop{},
		byID:  make(map[uint32]*segment),
		byRef: make(map[Ref]*freeNode),
		endAt: make(map[Ref]Ref),
		incr:  cfg.GrowIncrement,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name reports the configured arena label.
func (a *Arena) Name() string { return a.cfg.Name }

// current is the segment whose edge can still move.
func (a *Arena) current() *segment {
	if len(a.segs) == 0 {
		return nil
	}
	return a.segs[len(a.segs)-1]
}

// locate resolves a handle to its segment and block header offset.
// The segment may be nil if the handle is stale or foreign.
func (a *Arena) locate(ref Ref) (*segment, int64) {
	s := a.byID[ref.segID()]
	if s == nil {
		return nil, 0
	}
	return s, ref.payOff() - headerSize
}

// validBusy resolves ref and checks that it heads a live allocation:
// in range, aligned, busy and not deferred-freed.
func (a *Arena) validBusy(ref Ref) (*segment, int64, bool) {
	s, off := a.locate(ref)
	if s == nil || off < 0 || off%quantum != 0 || off+headerSize > s.guardOff() {
		return nil, 0, false
	}
	size := s.bsize(off)
	if size < bodyMin || off+headerSize+size > s.guardOff() {
		return nil, 0, false
	}
	st := s.state(off)
	if st&stBusy == 0 || st&stJunk != 0 {
		return nil, 0, false
	}
	return s, off, true
}

func (a *Arena) emit(op trace.Op, old, new Ref, size, align int64) {
	if _, nop := a.tr.(trace.Nop); nop {
		return
	}
	a.tr.Emit(trace.Event{
		Arena: a.cfg.Name,
		Op:    op,
		Old:   uint64(old),
		New:   uint64(new),
		Size:  size,
		Align: align,
	})
}

// Bytes returns the payload of a live block. The slice stays valid until
// an operation grows or shrinks the owning segment; callers that grow the
// arena re-fetch.
func (a *Arena) Bytes(ref Ref) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, off, ok := a.validBusy(ref)
	if !ok {
		return nil, ErrBadRef
	}
	return s.payload(off), nil
}
