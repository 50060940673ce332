package assembler

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
)

// Scenario 8, spec §8: add x1, x2, x3 at PC=0 -> word 0x003100B3.
func TestAssembleRTypeRoundtrip(t *testing.T) {
	prog, err := Assemble("add x1, x2, x3", 0)
	assert.NoError(t, err)
	assert.Len(t, prog.Words, 1)
	assert.Equal(t, uint64(0x003100B3), prog.Words[0].Uint64())
	assert.Equal(t, "B3003100", prog.Words[0].ToLittleEndianHexWord())
}

// Scenario 9, spec §8: beq x0, x0, target skips the middle nop.
func TestAssembleBranchLabelOffset(t *testing.T) {
	src := "beq x0, x0, target\naddi x0, x0, 0\ntarget:\naddi x0, x0, 0\n"
	prog, err := Assemble(src, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint32(8), prog.Labels["target"])
	// imm[12:1] encodes offset 8 (bits: imm[12]=0, imm[10:5]=0, rs2=0, rs1=0, funct3=0, imm[4:1]=0100, imm[11]=0).
	assert.NotEqual(t, uint64(0), prog.Words[0].Uint64())
}

func TestAssembleLoadStoreIndexedOperand(t *testing.T) {
	prog, err := Assemble("sw x1, 4(x2)\nlw x3, 4(x2)", 0)
	assert.NoError(t, err)
	assert.Len(t, prog.Words, 2)
}

func TestAssembleImmediateOutOfRangeIsEncodingError(t *testing.T) {
	_, err := Assemble("addi x1, x0, 4096", 0)
	assert.Error(t, err)
}

func TestAssembleUnknownMnemonicIsSyntaxError(t *testing.T) {
	_, err := Assemble("foo x1, x2, x3", 0)
	assert.Error(t, err)
}

func TestAssembleUnevenBranchOffsetIsRejected(t *testing.T) {
	_, err := Assemble("beq x0, x0, 3", 0)
	assert.Error(t, err)
}

func TestAssembleDuplicateLabelIsSyntaxError(t *testing.T) {
	_, err := Assemble("a:\naddi x0, x0, 0\na:\naddi x0, x0, 0\n", 0)
	assert.Error(t, err)
}

func TestDirectiveByteLayoutAccumulatesDataBytes(t *testing.T) {
	src := ".byte 1, 2, 3\n.half 0x0A0B\n.word 0xDEADBEEF\n"
	prog, err := Assemble(src, 0)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 0x0B, 0x0A, 0xEF, 0xBE, 0xAD, 0xDE}, prog.DataBytes)
	// Each directive line still occupies exactly one word slot.
	assert.Len(t, prog.Words, 3)
}

func TestDirectiveAsciizAppendsTrailingNul(t *testing.T) {
	prog, err := Assemble(`.asciz "hi"`, 0)
	assert.NoError(t, err)
	assert.Equal(t, []byte{'h', 'i', 0}, prog.DataBytes)
}

// TestAssembleGoldenProgramShape is a golden-output check over a short
// program covering labels, instructions, and directives in one pass: a
// mismatch reports a field-by-field diff via go-test/deep rather than
// just "not equal", and dumps the full Program on failure via go-spew
// for the same reason jmchacon-6502's decoder tests pair the two
// packages.
func TestAssembleGoldenProgramShape(t *testing.T) {
	src := `
		addi x1, x0, 5
		beq x1, x1, done
		addi x4, x0, 99
	done:
		add x5, x1, x4
		.byte 0xAA, 0xBB
		.half 0x1234
	`
	prog, err := Assemble(src, 0)
	assert.NoError(t, err)

	wantLabels := map[string]uint32{"done": 12}
	wantData := []byte{0xAA, 0xBB, 0x34, 0x12}
	wantWordCount := 6 // 4 instructions + 2 directive lines, one word slot each

	if diff := deep.Equal(prog.Labels, wantLabels); diff != nil {
		t.Fatalf("label diff: %v\nfull program: %s", diff, spew.Sdump(prog))
	}
	if diff := deep.Equal(prog.DataBytes, wantData); diff != nil {
		t.Fatalf("data bytes diff: %v\nfull program: %s", diff, spew.Sdump(prog))
	}
	assert.Len(t, prog.Words, wantWordCount)
}

func TestDirectiveAlignPadsToBoundary(t *testing.T) {
	src := ".byte 1\n.align 2\n.byte 2\n"
	prog, err := Assemble(src, 0)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 2}, prog.DataBytes)
}

func TestSectionDirectivesAreIgnored(t *testing.T) {
	src := ".globl main\n.text\nadd x1, x2, x3\n"
	prog, err := Assemble(src, 0)
	assert.NoError(t, err)
	assert.Len(t, prog.Words, 1)
}

func TestAssembleShiftImmediateEncodesFunct7(t *testing.T) {
	prog, err := Assemble("srai x1, x2, 5", 0)
	assert.NoError(t, err)
	// funct7=0100000, rs1=x2(00010), funct3=101, rd=x1(00001), opcode=0010011
	expected := uint64(0b0100000_00101_00010_101_00001_0010011)
	assert.Equal(t, expected, prog.Words[0].Uint64())
}

func TestAssembleFPStubEncodesButNoFPUSemantics(t *testing.T) {
	prog, err := Assemble("fsqrt.s f1, f2", 0)
	assert.NoError(t, err)
	assert.Len(t, prog.Words, 1)
}

func TestAssembleJalAbsoluteLabel(t *testing.T) {
	prog, err := Assemble("jal x1, target\naddi x0, x0, 0\ntarget:\naddi x0, x0, 0\n", 0x1000)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x1008), prog.Labels["target"])
}
