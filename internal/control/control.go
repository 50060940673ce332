// Package control implements the control unit of spec §4.6: opcode to
// control-signal decode, plus the five immediate extractors (I/S/B/U/J).
package control

import (
	"fmt"

	"github.com/frewtypebbles/riscv-sim/internal/bitvec"
	"github.com/frewtypebbles/riscv-sim/internal/isa"
)

// ALUOp is the 2-bit tag spec §4.6 routes to internal/alucontrol.
type ALUOp uint8

const (
	ALUOpAddressArith ALUOp = 0b00
	ALUOpBranch       ALUOp = 0b01
	ALUOpCompute      ALUOp = 0b10
	ALUOpFP           ALUOp = 0b11
)

// Signals is the immutable record a single decode() call returns (spec
// §9's design note: a struct, not mutating shared fields).
type Signals struct {
	RegDst    bool
	ALUSrc    bool
	MemToReg  bool
	RegWrite  bool
	MemRead   bool
	MemWrite  bool
	Branch    bool
	Jump      bool
	ALUOp     ALUOp

	FPUOp      bool
	FPRegWrite bool
	FPRegRead  bool
	FPALUSrc   bool
	FPMemToReg bool
	RegFileSel isa.RegKind // which file rs1 (and the ALU-operand-1 path) draws from
	FPToInt    bool
	IntToFP    bool

	// Unimplemented marks an FP stub opcode (spec §4.17): recognized here
	// so decode does not fault on a legally-encoded instruction, but the
	// datapath must refuse to execute it.
	Unimplemented bool
}

// Decode maps a 7-bit opcode (plus, where needed to disambiguate FP
// stubs from implemented FP ops, the full instruction word) to control
// signals, per spec §4.6's table.
func Decode(instr bitvec.Vector) (Signals, error) {
	opcode := uint8(instr.Slice(0, 6).Uint64())

	switch opcode {
	case isa.OpcodeOp:
		return Signals{RegDst: true, RegWrite: true, ALUOp: ALUOpCompute}, nil
	case isa.OpcodeOpImm:
		return Signals{ALUSrc: true, RegWrite: true, ALUOp: ALUOpCompute}, nil
	case isa.OpcodeLoad:
		return Signals{ALUSrc: true, MemToReg: true, RegWrite: true, MemRead: true, ALUOp: ALUOpAddressArith, RegFileSel: isa.RegInt}, nil
	case isa.OpcodeStore:
		return Signals{ALUSrc: true, MemWrite: true, ALUOp: ALUOpAddressArith, RegFileSel: isa.RegInt}, nil
	case isa.OpcodeBranch:
		return Signals{Branch: true, ALUOp: ALUOpBranch}, nil
	case isa.OpcodeJAL:
		return Signals{RegDst: true, RegWrite: true, Jump: true}, nil
	case isa.OpcodeJALR:
		return Signals{RegDst: true, ALUSrc: true, RegWrite: true, Jump: true, ALUOp: ALUOpAddressArith}, nil
	case isa.OpcodeLUI:
		return Signals{RegDst: true, ALUSrc: true, RegWrite: true, ALUOp: ALUOpAddressArith}, nil
	case isa.OpcodeAUIPC:
		return Signals{RegDst: true, ALUSrc: true, RegWrite: true, ALUOp: ALUOpAddressArith}, nil
	case isa.OpcodeSystem, isa.OpcodeFence:
		// ecall/ebreak/fence are recognized per spec §1's carve-out
		// ("trap/interrupt handling beyond recognizing ecall/ebreak
		// opcodes") but drive no datapath side effect.
		return Signals{}, nil
	case isa.OpcodeFPLoad:
		return Signals{ALUSrc: true, FPMemToReg: true, FPRegWrite: true, MemRead: true, ALUOp: ALUOpAddressArith, RegFileSel: isa.RegInt}, nil
	case isa.OpcodeFPStore:
		return Signals{ALUSrc: true, MemWrite: true, ALUOp: ALUOpAddressArith, RegFileSel: isa.RegInt}, nil
	case isa.OpcodeFPOp:
		return decodeFPOp(instr), nil
	default:
		return Signals{}, fmt.Errorf("control: unrecognized opcode 0b%07b", opcode)
	}
}

// decodeFPOp distinguishes the implemented FP ALU ops from the stub
// opcodes of spec §4.17 by funct7, and routes int<->FP transfer ops
// (fcvt.w.s/fcvt.s.w/fmv.x.w/fmv.w.x) through FPToInt/IntToFP.
func decodeFPOp(instr bitvec.Vector) Signals {
	funct7 := uint8(instr.Slice(25, 31).Uint64())

	sig := Signals{FPUOp: true, FPRegWrite: true, RegFileSel: isa.RegFP, ALUOp: ALUOpFP}

	switch funct7 {
	case 0b0000000, 0b0000100, 0b0001000: // fadd.s, fsub.s, fmul.s
		return sig
	case 0b1100000: // fcvt.w.s / fcvt.wu.s: FP -> int
		sig.FPToInt = true
		sig.FPRegWrite = false
		sig.RegWrite = true
		sig.Unimplemented = true
		return sig
	case 0b1101000: // fcvt.s.w / fcvt.s.wu: int -> FP
		sig.IntToFP = true
		sig.RegFileSel = isa.RegInt
		sig.Unimplemented = true
		return sig
	case 0b1110000: // fmv.x.w / fclass.s: FP -> int
		sig.FPToInt = true
		sig.FPRegWrite = false
		sig.RegWrite = true
		sig.Unimplemented = true
		return sig
	case 0b1111000: // fmv.w.x: int -> FP
		sig.IntToFP = true
		sig.RegFileSel = isa.RegInt
		sig.Unimplemented = true
		return sig
	case 0b1010000: // feq.s / flt.s / fle.s: FP compare -> int result
		sig.FPRegWrite = false
		sig.RegWrite = true
		sig.Unimplemented = true
		return sig
	default: // fdiv.s, fsqrt.s, fmin.s, fmax.s, fsgnj*.s
		sig.Unimplemented = true
		return sig
	}
}

// IImm extracts and sign-extends the I-format immediate: instr[31:20].
func IImm(instr bitvec.Vector) bitvec.Vector {
	return instr.Slice(20, 31).SignExtend(32)
}

// SImm extracts and sign-extends the S-format immediate:
// {instr[31:25], instr[11:7]}.
func SImm(instr bitvec.Vector) bitvec.Vector {
	hi := instr.Slice(25, 31) // 7 bits
	lo := instr.Slice(7, 11)  // 5 bits
	return bitvec.Concat(hi, lo).SignExtend(32)
}

// BImm extracts and sign-extends the B-format immediate:
// {instr[31], instr[7], instr[30:25], instr[11:8], 0}.
func BImm(instr bitvec.Vector) bitvec.Vector {
	bit12 := instr.Slice(31, 31)
	bit11 := instr.Slice(7, 7)
	bits10to5 := instr.Slice(25, 30)
	bits4to1 := instr.Slice(8, 11)
	zero := bitvec.Zero(1)
	return bitvec.Concat(bit12, bit11, bits10to5, bits4to1, zero).SignExtend(32)
}

// UImm extracts the U-format immediate: instr[31:12] in the high 20 bits,
// not sign-extended (spec §4.6: "places immediate in high 20 bits").
func UImm(instr bitvec.Vector) bitvec.Vector {
	hi := instr.Slice(12, 31)
	zero := bitvec.Zero(12)
	return bitvec.Concat(hi, zero)
}

// JImm extracts and sign-extends the J-format immediate:
// {instr[31], instr[19:12], instr[20], instr[30:21], 0}.
func JImm(instr bitvec.Vector) bitvec.Vector {
	bit20 := instr.Slice(31, 31)
	bits19to12 := instr.Slice(12, 19)
	bit11 := instr.Slice(20, 20)
	bits10to1 := instr.Slice(21, 30)
	zero := bitvec.Zero(1)
	return bitvec.Concat(bit20, bits19to12, bit11, bits10to1, zero).SignExtend(32)
}
