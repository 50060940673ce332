package bitvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMasksHighBits(t *testing.T) {
	v := New(0xFFFFFFFF, 4)
	assert.Equal(t, uint64(0xF), v.Uint64())
	assert.Equal(t, uint(4), v.Width())
}

func TestBitLSBFirst(t *testing.T) {
	v := New(0b1010, 4)
	assert.Equal(t, uint8(0), v.Bit(0))
	assert.Equal(t, uint8(1), v.Bit(1))
	assert.Equal(t, uint8(0), v.Bit(2))
	assert.Equal(t, uint8(1), v.Bit(3))
}

func TestWithBit(t *testing.T) {
	v := New(0, 4)
	v = v.WithBit(1, 1)
	assert.Equal(t, uint64(0b0010), v.Uint64())
	v = v.WithBit(1, 0)
	assert.Equal(t, uint64(0), v.Uint64())
}

func TestSlice(t *testing.T) {
	v := New(0b1101_0110, 8)
	assert.Equal(t, uint64(0b0110), v.Slice(0, 3).Uint64())
	assert.Equal(t, uint64(0b1101), v.Slice(4, 7).Uint64())
}

func TestSignExtend(t *testing.T) {
	neg1 := New(0xFFF, 12)
	ext := neg1.SignExtend(32)
	assert.Equal(t, int64(-1), ext.Int64())

	pos := New(0x7FF, 12)
	ext = pos.SignExtend(32)
	assert.Equal(t, int64(0x7FF), ext.Int64())
}

func TestConcatOrdersMostSignificantFirst(t *testing.T) {
	hi := New(0b101, 3)
	lo := New(0b11, 2)
	v := Concat(hi, lo)
	assert.Equal(t, uint(5), v.Width())
	assert.Equal(t, uint64(0b10111), v.Uint64())
}

func TestToLittleEndianHexWordRoundTrips(t *testing.T) {
	v := New(0x003100B3, 32)
	hex := v.ToLittleEndianHexWord()
	assert.Equal(t, "B3003100", hex)

	back, err := FromHexWord(hex)
	assert.NoError(t, err)
	assert.Equal(t, v.Uint32(), back.Uint32())
}

func TestIsZero(t *testing.T) {
	assert.True(t, Zero(32).IsZero())
	assert.False(t, New(1, 32).IsZero())
}
