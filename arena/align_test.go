package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAlign(t *testing.T) {
	a := newTestArena(t)

	for _, tc := range []struct {
		size, align int64
	}{
		{1, 16},
		{64, 32},
		{100, 64},
		{1000, 256},
		{64, 4096},
		{24, 24}, // alignment itself gets quantum-rounded
	} {
		ref, payload, err := a.AllocAlign(tc.size, tc.align)
		require.NoError(t, err, "size %d align %d", tc.size, tc.align)
		require.NotEqual(t, NilRef, ref)
		assert.GreaterOrEqual(t, int64(len(payload)), tc.size)

		want := tc.align
		if want%quantum != 0 {
			want += quantum - want%quantum
		}
		assert.Zerof(t, ref.payOff()%want, "size %d align %d payoff %d",
			tc.size, tc.align, ref.payOff())

		require.NoError(t, a.Check(), "after size %d align %d", tc.size, tc.align)
	}
}

func TestAllocAlignRejectsBadArgs(t *testing.T) {
	a := newTestArena(t)

	_, _, err := a.AllocAlign(0, 16)
	assert.ErrorIs(t, err, ErrBadSize)
	_, _, err = a.AllocAlign(16, 0)
	assert.ErrorIs(t, err, ErrBadSize)
	_, _, err = a.AllocAlign(-1, 16)
	assert.ErrorIs(t, err, ErrBadSize)
}

func TestAllocAlignBlocksAreOrdinary(t *testing.T) {
	a := newTestArena(t)

	ref, payload, err := a.AllocAlign(128, 512)
	require.NoError(t, err)
	fill(payload, 0x3C)

	// aligned blocks free, resize and introspect like any other
	got, err := a.UsableSize(ref)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, int64(128))

	nref, grown, err := a.Resize(ref, 300, Move|Copy)
	require.NoError(t, err)
	assert.Equal(t, byte(0x3C), grown[127])
	require.NoError(t, a.Free(nref))
	require.NoError(t, a.Check())
}
