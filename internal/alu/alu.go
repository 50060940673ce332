// Package alu implements the 32-bit integer ALU of spec §4.4: the ten
// RV32I operations built from the ripple-carry full adder of internal/gate,
// plus the RV32M multiply/divide extension (spec SPEC_FULL.md §4.16),
// grounded on the teacher's barrel-shifter and CLZ-divider technique in
// SupraX.go's BarrelShift/Divide.
package alu

import (
	"fmt"
	"math/bits"

	"github.com/frewtypebbles/riscv-sim/internal/bitvec"
	"github.com/frewtypebbles/riscv-sim/internal/gate"
)

// Op is the closed set of integer ALU operation codes (spec §4.4). It is a
// 4-bit tag; values outside this set are fatal per the ALU's contract.
type Op uint8

const (
	ADD Op = iota
	SUB
	AND
	OR
	XOR
	SLL
	SRL
	SRA
	SLT
	SLTU
)

func (op Op) String() string {
	names := [...]string{"ADD", "SUB", "AND", "OR", "XOR", "SLL", "SRL", "SRA", "SLT", "SLTU"}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("Op(%d)", op)
}

// Width is the operand/result width of the integer ALU.
const Width = 32

// Update computes the result of op on 32-bit operands a and b, per spec
// §4.4, returning the zero flag (OR-reduction of the result, inverted)
// alongside the result. Panics on an unrecognized op code — the ALU's
// contract treats that as fatal, not a returned error, matching the
// "Unsupported op" row of the error taxonomy (spec §7): the caller (the
// datapath) is expected to have already validated op via alucontrol.
func Update(op Op, a, b bitvec.Vector) (zero bool, result bitvec.Vector) {
	checkWidth(a)
	checkWidth(b)

	switch op {
	case ADD:
		result = rippleAdd(a, b)
	case SUB:
		result = twosComplementSub(a, b)
	case AND:
		result = bitvec.New(a.Uint64()&b.Uint64(), Width)
	case OR:
		result = bitvec.New(a.Uint64()|b.Uint64(), Width)
	case XOR:
		result = bitvec.New(a.Uint64()^b.Uint64(), Width)
	case SLL:
		result = bitvec.New(uint64(uint32(a.Uint64())<<shiftAmount(b)), Width)
	case SRL:
		result = bitvec.New(uint64(uint32(a.Uint64())>>shiftAmount(b)), Width)
	case SRA:
		result = bitvec.New(uint64(uint32(int32(a.Uint32())>>shiftAmount(b))), Width)
	case SLT:
		if a.Int64() < b.Int64() {
			result = bitvec.New(1, Width)
		} else {
			result = bitvec.Zero(Width)
		}
	case SLTU:
		if a.Uint64() < b.Uint64() {
			result = bitvec.New(1, Width)
		} else {
			result = bitvec.Zero(Width)
		}
	default:
		panic(fmt.Sprintf("alu: unsupported op code %d", op))
	}

	return result.IsZero(), result
}

func checkWidth(v bitvec.Vector) {
	if v.Width() != Width {
		panic(fmt.Sprintf("alu: operand width %d, want %d", v.Width(), Width))
	}
}

// rippleAdd performs a bitwise full-adder ripple from LSB to MSB, exactly
// as spec §4.4 describes ADD. Carry-out past bit 31 is discarded (32-bit
// wraparound), matching two's-complement arithmetic.
func rippleAdd(a, b bitvec.Vector) bitvec.Vector {
	carry := gate.Low
	var sumBits [Width]gate.Bit
	for i := 0; i < Width; i++ {
		var s gate.Bit
		s, carry = gate.FullAdder(a.Bit(uint(i)), b.Bit(uint(i)), carry, gate.Powered)
		sumBits[i] = s
	}
	var acc uint64
	for i := Width - 1; i >= 0; i-- {
		acc = (acc << 1) | uint64(sumBits[i])
	}
	return bitvec.New(acc, Width)
}

// twosComplementSub implements SUB as a + (~b + 1), the same ripple adder
// used for ADD applied to the two's-complement negation of b.
func twosComplementSub(a, b bitvec.Vector) bitvec.Vector {
	notB := bitvec.New(uint64(^b.Uint32()&mask32), Width)
	negB := rippleAdd(notB, bitvec.New(1, Width))
	return rippleAdd(a, negB)
}

const mask32 = 0xFFFFFFFF

// shiftAmount extracts the low 5 bits of b: only those bits influence a
// shift (spec §4.4, invariant ALU.shift-bounds).
func shiftAmount(b bitvec.Vector) uint {
	return uint(b.Uint32() & 0x1F)
}

// MOp is the RV32M multiply/divide operation code set (SPEC_FULL.md
// §4.16). Routed separately from Op because the base ALU's "unknown op is
// fatal" rule does not apply here: DIV/REM by zero and MinInt32/-1
// overflow are RISC-V-defined results, not faults.
type MOp uint8

const (
	MUL MOp = iota
	MULH
	MULHSU
	MULHU
	DIV
	DIVU
	REM
	REMU
)

// MulDiv computes the RV32M result of op on 32-bit operands a and b.
func MulDiv(op MOp, a, b bitvec.Vector) bitvec.Vector {
	checkWidth(a)
	checkWidth(b)

	switch op {
	case MUL:
		return bitvec.New(uint64(uint32(a.Uint32()*b.Uint32())), Width)
	case MULH:
		product := int64(int32(a.Uint32())) * int64(int32(b.Uint32()))
		return bitvec.New(uint64(uint32(product>>32)), Width)
	case MULHSU:
		product := int64(int32(a.Uint32())) * int64(b.Uint32())
		return bitvec.New(uint64(uint32(product>>32)), Width)
	case MULHU:
		hi, _ := bits.Mul32(a.Uint32(), b.Uint32())
		return bitvec.New(uint64(hi), Width)
	case DIV:
		return bitvec.New(uint64(uint32(signedDiv(int32(a.Uint32()), int32(b.Uint32())))), Width)
	case DIVU:
		if b.Uint32() == 0 {
			return bitvec.New(0xFFFFFFFF, Width)
		}
		return bitvec.New(uint64(a.Uint32()/b.Uint32()), Width)
	case REM:
		return bitvec.New(uint64(uint32(signedRem(int32(a.Uint32()), int32(b.Uint32())))), Width)
	case REMU:
		if b.Uint32() == 0 {
			return bitvec.New(uint64(a.Uint32()), Width)
		}
		return bitvec.New(uint64(a.Uint32()%b.Uint32()), Width)
	default:
		panic(fmt.Sprintf("alu: unsupported muldiv op code %d", op))
	}
}

// signedDiv implements RISC-V's defined DIV semantics: division by zero
// yields -1, and MinInt32/-1 yields MinInt32 (the one case that would
// overflow a native machine division).
func signedDiv(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == -2147483648 && b == -1 {
		return a
	}
	return a / b
}

// signedRem implements RISC-V's defined REM semantics: remainder by zero
// yields the dividend, and MinInt32 % -1 yields 0.
func signedRem(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == -2147483648 && b == -1 {
		return 0
	}
	return a % b
}
