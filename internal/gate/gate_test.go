package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotTruthTable(t *testing.T) {
	assert.Equal(t, High, Not(Low, Powered))
	assert.Equal(t, Low, Not(High, Powered))
}

func TestUnpoweredGroundsOutput(t *testing.T) {
	assert.Equal(t, Low, Not(Low, Low))
	assert.Equal(t, Low, And(High, High, Low))
	assert.Equal(t, Low, Or(High, High, Low))
}

func TestAndOrTruthTables(t *testing.T) {
	cases := []struct{ a, b, and, or Bit }{
		{Low, Low, Low, Low},
		{Low, High, Low, High},
		{High, Low, Low, High},
		{High, High, High, High},
	}
	for _, c := range cases {
		assert.Equal(t, c.and, And(c.a, c.b, Powered))
		assert.Equal(t, c.or, Or(c.a, c.b, Powered))
	}
}

func TestXorMatchesNativeInequality(t *testing.T) {
	for a := Bit(0); a <= 1; a++ {
		for b := Bit(0); b <= 1; b++ {
			want := Low
			if a != b {
				want = High
			}
			assert.Equal(t, want, Xor(a, b, Powered))
		}
	}
}

func TestMuxSelectsSecondOperandWhenSelHigh(t *testing.T) {
	assert.Equal(t, Low, Mux(Low, High, Low, Powered))
	assert.Equal(t, High, Mux(Low, High, High, Powered))
}

func TestFullAdderTruthTable(t *testing.T) {
	sum, carry := FullAdder(High, High, Low, Powered)
	assert.Equal(t, Low, sum)
	assert.Equal(t, High, carry)

	sum, carry = FullAdder(High, High, High, Powered)
	assert.Equal(t, High, sum)
	assert.Equal(t, High, carry)

	sum, carry = FullAdder(Low, Low, Low, Powered)
	assert.Equal(t, Low, sum)
	assert.Equal(t, Low, carry)
}

func TestVectorMuxPicksWholeSequence(t *testing.T) {
	a := []Bit{Low, Low, Low}
	b := []Bit{High, High, High}
	assert.Equal(t, a, VectorMux(a, b, Low))
	assert.Equal(t, b, VectorMux(a, b, High))
}
