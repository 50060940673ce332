package decoder

import (
	"testing"

	"github.com/frewtypebbles/riscv-sim/internal/gate"
	"github.com/stretchr/testify/assert"
)

func bits(n, width int) []gate.Bit {
	out := make([]gate.Bit, width)
	for i := 0; i < width; i++ {
		out[i] = gate.Bit((n >> i) & 1)
	}
	return out
}

func TestDecode2to4OneHot(t *testing.T) {
	for i := 0; i < 4; i++ {
		b := bits(i, 2)
		out := Decode2to4([2]gate.Bit{b[0], b[1]})
		for j, v := range out {
			if j == i {
				assert.Equal(t, gate.High, v, "index %d", i)
			} else {
				assert.Equal(t, gate.Low, v, "index %d bit %d", i, j)
			}
		}
	}
}

func TestDecode5to32OneHot(t *testing.T) {
	for i := 0; i < 32; i++ {
		out := Decode5to32Index(uint8(i))
		idx := OneHotIndex(out[:])
		assert.Equal(t, i, idx)
	}
}

func TestEncode8to3PicksHighestSetBit(t *testing.T) {
	in := [8]gate.Bit{}
	in[2] = gate.High
	in[5] = gate.High
	idx, ok := Encode8to3(in)
	assert.True(t, ok)
	assert.Equal(t, uint8(5), idx)
}

func TestEncode8to3NoneSet(t *testing.T) {
	var in [8]gate.Bit
	_, ok := Encode8to3(in)
	assert.False(t, ok)
}

func TestOneHotIndexNoneSetIsNegativeOne(t *testing.T) {
	assert.Equal(t, -1, OneHotIndex(make([]gate.Bit, 8)))
}
