package alucontrol

import (
	"testing"

	"github.com/frewtypebbles/riscv-sim/internal/alu"
	"github.com/frewtypebbles/riscv-sim/internal/control"
	"github.com/stretchr/testify/assert"
)

func TestAddressArithAlwaysAdd(t *testing.T) {
	d, err := Decode(control.ALUOpAddressArith, 0b111, 0b1111111, true)
	assert.NoError(t, err)
	assert.Equal(t, alu.ADD, d.Op)
}

func TestBranchFunct3Routing(t *testing.T) {
	d, err := Decode(control.ALUOpBranch, 0b000, 0, true) // beq
	assert.NoError(t, err)
	assert.Equal(t, alu.SUB, d.Op)

	d, err = Decode(control.ALUOpBranch, 0b100, 0, true) // blt
	assert.NoError(t, err)
	assert.Equal(t, alu.SLT, d.Op)

	d, err = Decode(control.ALUOpBranch, 0b110, 0, true) // bltu
	assert.NoError(t, err)
	assert.Equal(t, alu.SLTU, d.Op)
}

func TestRTypeSubVsAddByFunct7Bit30(t *testing.T) {
	d, err := Decode(control.ALUOpCompute, 0b000, 0b0100000, true)
	assert.NoError(t, err)
	assert.Equal(t, alu.SUB, d.Op)

	d, err = Decode(control.ALUOpCompute, 0b000, 0b0000000, true)
	assert.NoError(t, err)
	assert.Equal(t, alu.ADD, d.Op)
}

// An addi whose immediate happens to set bit 30 (e.g. addi x1, x1, 1024)
// must still decode as ADD: OP-IMM's bits[31:25] are immediate bits, not
// a funct7, for every funct3 except the shift-immediates.
func TestITypeAddiIgnoresImmediateBit30(t *testing.T) {
	d, err := Decode(control.ALUOpCompute, 0b000, 0b0100000, false)
	assert.NoError(t, err)
	assert.Equal(t, alu.ADD, d.Op)
}

func TestITypeShiftImmediateUsesRealFunct7(t *testing.T) {
	d, err := Decode(control.ALUOpCompute, 0b101, 0b0100000, false) // srai
	assert.NoError(t, err)
	assert.Equal(t, alu.SRA, d.Op)

	d, err = Decode(control.ALUOpCompute, 0b101, 0b0000000, false) // srli
	assert.NoError(t, err)
	assert.Equal(t, alu.SRL, d.Op)
}

func TestRTypeMulDivRouting(t *testing.T) {
	d, err := Decode(control.ALUOpCompute, 0b000, 0b0000001, true) // mul
	assert.NoError(t, err)
	assert.True(t, d.IsMulDiv)
	assert.Equal(t, alu.MUL, d.MOp)

	d, err = Decode(control.ALUOpCompute, 0b100, 0b0000001, true) // div
	assert.NoError(t, err)
	assert.True(t, d.IsMulDiv)
	assert.Equal(t, alu.DIV, d.MOp)
}

func TestFPALUOpIsNotRoutedHere(t *testing.T) {
	_, err := Decode(control.ALUOpFP, 0, 0, true)
	assert.Error(t, err)
}
