package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkit/bestalloc/mem"
)

func newTestArena(t *testing.T) *Arena {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Name = t.Name()
	return New(cfg, nil)
}

func TestAllocZeroIsDistinct(t *testing.T) {
	a := newTestArena(t)

	r1, p1, err := a.Alloc(0)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, r1)
	assert.Len(t, p1, bodyMin)

	r2, _, err := a.Alloc(0)
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2)

	require.NoError(t, a.Check())
	require.NoError(t, a.Free(r1))
	require.NoError(t, a.Free(r2))
	require.NoError(t, a.Check())
}

func TestAllocRejectsNegative(t *testing.T) {
	a := newTestArena(t)
	_, _, err := a.Alloc(-1)
	assert.ErrorIs(t, err, ErrBadSize)
}

func TestUsableSizeCoversPayload(t *testing.T) {
	a := newTestArena(t)

	for _, req := range []int64{0, 1, 20, 32, 33, 100, 4096} {
		ref, payload, err := a.Alloc(req)
		require.NoError(t, err)
		got, err := a.UsableSize(ref)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, req)
		assert.EqualValues(t, got, len(payload))
		assert.Zero(t, got%quantum)
	}
	require.NoError(t, a.Check())
}

func TestFreeRejectsBadRefs(t *testing.T) {
	a := newTestArena(t)

	require.NoError(t, a.Free(NilRef))
	assert.ErrorIs(t, a.Free(Ref(1<<32|48)), ErrBadRef)

	ref, _, err := a.Alloc(64)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))
	assert.ErrorIs(t, a.Free(ref), ErrBadRef, "double free must surface")

	// interior position is not a block handle
	ref2, _, err := a.Alloc(256)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Free(ref2+quantum), ErrBadRef)
}

func TestLastFreedFastPath(t *testing.T) {
	a := newTestArena(t)

	ref, _, err := a.Alloc(200)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))

	again, _, err := a.Alloc(200)
	require.NoError(t, err)
	assert.Equal(t, ref, again, "a fitting last-freed block is reused as is")
	assert.EqualValues(t, 1, a.Stats().FastHits)
	require.NoError(t, a.Check())
}

func TestForwardCoalescing(t *testing.T) {
	a := newTestArena(t)

	ra, _, err := a.Alloc(64)
	require.NoError(t, err)
	rb, _, err := a.Alloc(64)
	require.NoError(t, err)

	require.NoError(t, a.Free(ra))
	require.NoError(t, a.Free(rb))

	// both freed blocks and the wilderness behind them merge into one
	// span starting where the first block was
	rc, payload, err := a.Alloc(120)
	require.NoError(t, err)
	assert.Equal(t, ra, rc)
	assert.GreaterOrEqual(t, len(payload), 120)
	require.NoError(t, a.Check())
}

func TestBackwardCoalescing(t *testing.T) {
	a := newTestArena(t)

	ra, _, err := a.Alloc(64)
	require.NoError(t, err)
	rb, _, err := a.Alloc(64)
	require.NoError(t, err)

	// file ra as a directory free block first
	require.NoError(t, a.Free(ra))
	rbig, _, err := a.Alloc(500)
	require.NoError(t, err)

	// now rb's deferred-free carries the predecessor-free mark, so its
	// reclaim merges backward into ra's block
	require.NoError(t, a.Free(rb))
	_, _, err = a.Alloc(32)
	require.NoError(t, err)

	a.mu.Lock()
	fn := a.lookupFree(ra)
	a.mu.Unlock()
	require.NotNil(t, fn, "merged block keeps the lower address")
	assert.EqualValues(t, 64+headerSize+64, fn.size)

	require.NoError(t, a.Check())
	require.NoError(t, a.Free(rbig))
	require.NoError(t, a.Check())
}

func TestExhaustionIsNotFatal(t *testing.T) {
	prov := mem.NewCapped(mem.NewHeap(), 96<<10)
	a := New(DefaultConfig(), prov)

	ref, payload, err := a.Alloc(60 << 10)
	require.NoError(t, err)
	want := make([]byte, len(payload))
	for i := range want {
		want[i] = byte(i)
	}
	copy(payload, want)

	_, _, err = a.Alloc(60 << 10)
	require.ErrorIs(t, err, ErrNoSpace)

	// the failed attempt corrupts nothing
	require.NoError(t, a.Check())
	got, err := a.Bytes(ref)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// smaller requests still fit in the remaining free space
	_, _, err = a.Alloc(1000)
	assert.NoError(t, err)
	require.NoError(t, a.Check())
}

func TestOffsetResolvesInterior(t *testing.T) {
	a := newTestArena(t)

	ref, _, err := a.Alloc(256)
	require.NoError(t, err)

	head, at, err := a.Offset(ref + 100)
	require.NoError(t, err)
	assert.Equal(t, ref, head)
	assert.EqualValues(t, 100, at)

	head, at, err = a.Offset(ref)
	require.NoError(t, err)
	assert.Equal(t, ref, head)
	assert.Zero(t, at)

	require.NoError(t, a.Free(ref))
	_, _, err = a.Offset(ref + 100)
	assert.ErrorIs(t, err, ErrBadRef, "freed blocks resolve to nothing")
}

func TestStatsSnapshot(t *testing.T) {
	a := newTestArena(t)

	ref, _, err := a.Alloc(1024)
	require.NoError(t, err)
	require.NoError(t, a.Free(ref))

	st := a.Stats()
	assert.EqualValues(t, 1, st.AllocCalls)
	assert.EqualValues(t, 1, st.FreeCalls)
	assert.EqualValues(t, 1024, st.BytesAllocated)
	assert.EqualValues(t, 1024, st.BytesFreed)
	assert.Equal(t, 1, st.Segments)
	assert.Positive(t, st.Extent)
	assert.NotEmpty(t, st.String())
}

func TestDefaultArena(t *testing.T) {
	ref, payload, err := Alloc(64)
	require.NoError(t, err)
	require.Len(t, payload, 64)
	require.NoError(t, Free(ref))
	assert.Same(t, Default(), Default())
	assert.Equal(t, "default", Default().Name())
}
