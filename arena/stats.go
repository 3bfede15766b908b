package arena

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats is a point-in-time snapshot of an arena's counters. Byte figures
// count rounded block bodies, not caller-requested sizes.
type Stats struct {
	AllocCalls  int64
	FreeCalls   int64
	ResizeCalls int64
	AlignCalls  int64

	FastHits    int64 // allocations served by the last-freed block
	WildHits    int64 // allocations served by the wilderness
	SplitCount  int64
	ReclaimRuns int64
	CompactRuns int64

	GrowCalls   int64
	GrowBytes   int64
	ShrinkBytes int64

	BytesAllocated int64
	BytesFreed     int64

	Segments  int
	LiveBytes int64 // BytesAllocated - BytesFreed
	Extent    int64 // total raw memory currently held
}

// Stats returns a snapshot of the arena's counters.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.stats
	st.Segments = len(a.segs)
	st.LiveBytes = st.BytesAllocated - st.BytesFreed
	for _, s := range a.segs {
		st.Extent += int64(len(s.buf))
	}
	return st
}

func (st Stats) String() string {
	return fmt.Sprintf(
		"allocs:%d frees:%d resizes:%d aligns:%d fast:%d wild:%d "+
			"reclaims:%d compacts:%d segments:%d live:%s extent:%s grown:%s returned:%s",
		st.AllocCalls, st.FreeCalls, st.ResizeCalls, st.AlignCalls,
		st.FastHits, st.WildHits, st.ReclaimRuns, st.CompactRuns,
		st.Segments,
		humanize.IBytes(uint64(max(st.LiveBytes, 0))),
		humanize.IBytes(uint64(st.Extent)),
		humanize.IBytes(uint64(st.GrowBytes)),
		humanize.IBytes(uint64(st.ShrinkBytes)),
	)
}
