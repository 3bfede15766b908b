package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memkit/bestalloc/mem"
)

func fill(p []byte, b byte) {
	for i := range p {
		p[i] = b
	}
}

func TestResizeNilAllocatesZeroFrees(t *testing.T) {
	a := newTestArena(t)

	ref, payload, err := a.Resize(NilRef, 100, Copy)
	require.NoError(t, err)
	require.NotEqual(t, NilRef, ref)
	assert.GreaterOrEqual(t, len(payload), 100)

	got, _, err := a.Resize(ref, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, NilRef, got)
	assert.ErrorIs(t, a.Free(ref), ErrBadRef, "resize to zero already freed it")

	_, _, err = a.Resize(ref, -5, 0)
	assert.ErrorIs(t, err, ErrBadSize)
}

func TestResizeGrowsInPlace(t *testing.T) {
	a := newTestArena(t)

	ref, payload, err := a.Alloc(64)
	require.NoError(t, err)
	fill(payload, 0xAB)

	// the wilderness sits right behind the only block, so growth absorbs
	// it without moving anything
	nref, grown, err := a.Resize(ref, 200, 0)
	require.NoError(t, err)
	assert.Equal(t, ref, nref)
	assert.GreaterOrEqual(t, len(grown), 200)
	assert.Equal(t, byte(0xAB), grown[0])
	assert.Equal(t, byte(0xAB), grown[63])
	require.NoError(t, a.Check())
}

func TestResizeShrinkReturnsExcess(t *testing.T) {
	a := newTestArena(t)

	ref, payload, err := a.Alloc(1024)
	require.NoError(t, err)
	fill(payload[:64], 0xCD)

	nref, small, err := a.Resize(ref, 64, 0)
	require.NoError(t, err)
	assert.Equal(t, ref, nref)
	assert.Len(t, small, 64)
	assert.Equal(t, byte(0xCD), small[63])

	got, err := a.UsableSize(ref)
	require.NoError(t, err)
	assert.EqualValues(t, 64, got)
	require.NoError(t, a.Check())
}

func TestResizeWithoutMoveLeavesBlockUntouched(t *testing.T) {
	a := newTestArena(t)

	ra, pa, err := a.Alloc(64)
	require.NoError(t, err)
	rb, _, err := a.Alloc(64)
	require.NoError(t, err)
	fill(pa, 0x5A)

	// rb sits right behind ra, so ra cannot grow in place
	_, _, err = a.Resize(ra, 200, 0)
	require.ErrorIs(t, err, ErrNoSpace)

	got, err := a.UsableSize(ra)
	require.NoError(t, err)
	assert.EqualValues(t, 64, got)
	pb, err := a.Bytes(ra)
	require.NoError(t, err)
	assert.Equal(t, byte(0x5A), pb[0])
	assert.Equal(t, byte(0x5A), pb[63])
	require.NoError(t, a.Check())
	require.NoError(t, a.Free(rb))
}

func TestResizeMoveCopiesContents(t *testing.T) {
	a := newTestArena(t)

	ra, pa, err := a.Alloc(64)
	require.NoError(t, err)
	_, _, err = a.Alloc(64) // pin a busy block behind ra
	require.NoError(t, err)
	fill(pa, 0x77)

	nref, np, err := a.Resize(ra, 500, Move|Copy)
	require.NoError(t, err)
	assert.NotEqual(t, ra, nref)
	require.GreaterOrEqual(t, len(np), 500)
	for i := 0; i < 64; i++ {
		require.Equal(t, byte(0x77), np[i], "byte %d", i)
	}
	require.NoError(t, a.Check())
}

func TestResizeZeroTail(t *testing.T) {
	a := newTestArena(t)

	ref, payload, err := a.Alloc(64)
	require.NoError(t, err)
	fill(payload, 0xFF)

	_, grown, err := a.Resize(ref, 256, Move|Copy|ZeroTail)
	require.NoError(t, err)
	for i := 0; i < 64; i++ {
		require.Equal(t, byte(0xFF), grown[i], "kept byte %d", i)
	}
	for i := 64; i < len(grown); i++ {
		require.Zero(t, grown[i], "extended byte %d", i)
	}
}

func TestResizeExtendsSegmentAtEdge(t *testing.T) {
	prov := mem.NewCapped(mem.NewHeap(), 1<<20)
	cfg := DefaultConfig()
	cfg.GrowIncrement = 1 << 12
	a := New(cfg, prov)

	// claim everything so the block ends at the segment edge
	ref, payload, err := a.Alloc(8 << 10)
	require.NoError(t, err)
	rest, _, err := a.Alloc(1)
	require.NoError(t, err)
	for {
		r, _, err := a.Resize(rest, 2*mustUsable(t, a, rest), 0)
		if err != nil {
			break
		}
		rest = r
	}
	fill(payload, 0xEE)

	before := prov.Used()
	nref, grown, err := a.Resize(rest, mustUsable(t, a, rest)+(16<<10), 0)
	require.NoError(t, err)
	assert.Equal(t, rest, nref, "edge blocks stretch their segment in place")
	assert.Greater(t, prov.Used(), before)
	assert.NotEmpty(t, grown)

	pb, err := a.Bytes(ref)
	require.NoError(t, err)
	assert.Equal(t, byte(0xEE), pb[0])
	require.NoError(t, a.Check())
}

func mustUsable(t *testing.T, a *Arena, ref Ref) int64 {
	t.Helper()
	n, err := a.UsableSize(ref)
	require.NoError(t, err)
	return n
}
