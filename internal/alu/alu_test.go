package alu

import (
	"testing"

	"github.com/frewtypebbles/riscv-sim/internal/bitvec"
	"github.com/stretchr/testify/assert"
)

// Scenario 1, spec §8.
func TestAddOverflowWraps(t *testing.T) {
	a := bitvec.New(0x7FFFFFFF, Width)
	b := bitvec.New(0x00000001, Width)
	zero, result := Update(ADD, a, b)
	assert.Equal(t, uint64(0x80000000), result.Uint64())
	assert.False(t, zero)
}

// Scenario 2, spec §8.
func TestShiftRightArithmeticReplicatesSign(t *testing.T) {
	a := bitvec.New(0x80000001, Width)
	b := bitvec.New(0x00000001, Width)
	_, result := Update(SRA, a, b)
	assert.Equal(t, uint64(0xC0000000), result.Uint64())
}

func TestZeroFlagIsORReductionInverted(t *testing.T) {
	zero, _ := Update(XOR, bitvec.New(7, Width), bitvec.New(7, Width))
	assert.True(t, zero)

	zero, _ = Update(XOR, bitvec.New(7, Width), bitvec.New(8, Width))
	assert.False(t, zero)
}

func TestSubMatchesTwosComplementAdd(t *testing.T) {
	a := bitvec.New(10, Width)
	b := bitvec.New(3, Width)
	_, sub := Update(SUB, a, b)

	notB := bitvec.New(uint64(^uint32(3)), Width)
	_, negB := Update(ADD, notB, bitvec.New(1, Width))
	_, add := Update(ADD, a, negB)

	assert.Equal(t, add.Uint64(), sub.Uint64())
}

func TestShiftOnlyUsesLow5Bits(t *testing.T) {
	a := bitvec.New(1, Width)
	_, withExtraBits := Update(SLL, a, bitvec.New(0xFFFFFFE1, Width)) // low 5 bits = 1
	_, plain := Update(SLL, a, bitvec.New(1, Width))
	assert.Equal(t, plain.Uint64(), withExtraBits.Uint64())
}

func TestSLTSigned(t *testing.T) {
	negOne := bitvec.New(0xFFFFFFFF, Width) // -1
	one := bitvec.New(1, Width)
	_, result := Update(SLT, negOne, one)
	assert.Equal(t, uint64(1), result.Uint64())

	_, result = Update(SLTU, negOne, one) // -1 as unsigned is huge
	assert.Equal(t, uint64(0), result.Uint64())
}

func TestUnsupportedOpPanics(t *testing.T) {
	assert.Panics(t, func() {
		Update(Op(0xFF), bitvec.Zero(Width), bitvec.Zero(Width))
	})
}

func TestMulDivByZero(t *testing.T) {
	a := bitvec.New(42, Width)
	zero := bitvec.Zero(Width)

	div := MulDiv(DIV, a, zero)
	assert.Equal(t, uint64(0xFFFFFFFF), div.Uint64())

	rem := MulDiv(REM, a, zero)
	assert.Equal(t, uint64(42), rem.Uint64())
}

func TestDivMinInt32ByNegOneOverflow(t *testing.T) {
	minInt := bitvec.New(0x80000000, Width) // MinInt32
	negOne := bitvec.New(0xFFFFFFFF, Width)

	div := MulDiv(DIV, minInt, negOne)
	assert.Equal(t, uint64(0x80000000), div.Uint64())

	rem := MulDiv(REM, minInt, negOne)
	assert.Equal(t, uint64(0), rem.Uint64())
}

func TestMulhVariants(t *testing.T) {
	a := bitvec.New(0xFFFFFFFF, Width) // -1 signed, huge unsigned
	b := bitvec.New(0xFFFFFFFF, Width)

	// (-1)*(-1) = 1, high 32 bits of signed product are 0.
	mulh := MulDiv(MULH, a, b)
	assert.Equal(t, uint64(0), mulh.Uint64())

	// unsigned: 0xFFFFFFFF * 0xFFFFFFFF high bits are 0xFFFFFFFE.
	mulhu := MulDiv(MULHU, a, b)
	assert.Equal(t, uint64(0xFFFFFFFE), mulhu.Uint64())
}
