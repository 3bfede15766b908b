package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	for in, want := range map[int64]int64{
		0: 0, 1: 16, 15: 16, 16: 16, 17: 32, 160: 160,
	} {
		assert.Equal(t, want, AlignUp(in), "AlignUp(%d)", in)
	}
}

func TestRoundBody(t *testing.T) {
	for in, want := range map[int64]int64{
		0: BodyMin, 1: BodyMin, 32: BodyMin, 33: 48, 100: 112,
	} {
		assert.Equal(t, want, RoundBody(in), "RoundBody(%d)", in)
	}
}

func TestRoundTo(t *testing.T) {
	assert.EqualValues(t, 12288, RoundTo(8193, 4096))
	assert.EqualValues(t, 8192, RoundTo(8192, 4096))
	assert.EqualValues(t, 30, RoundTo(25, 10), "units need not be powers of two")
}

func TestMultipleOf(t *testing.T) {
	assert.EqualValues(t, 16, MultipleOf(1))
	assert.EqualValues(t, 32, MultipleOf(24))
	assert.EqualValues(t, 64, MultipleOf(64))
}
