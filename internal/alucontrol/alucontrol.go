// Package alucontrol implements the ALU-control unit of spec §4.7:
// (ALUOp, funct3, funct7[30]) -> an internal/alu.Op, plus the RV32M
// routing of SPEC_FULL.md §4.16 (funct7=0000001 selects a MulDiv op
// instead of a base ALU op).
package alucontrol

import (
	"fmt"

	"github.com/frewtypebbles/riscv-sim/internal/alu"
	"github.com/frewtypebbles/riscv-sim/internal/control"
)

// Decision is what the ALU-control unit hands the datapath: either a
// base ALU op or an RV32M multiply/divide op, never both.
type Decision struct {
	IsMulDiv bool
	Op       alu.Op
	MOp      alu.MOp
}

// Decode computes the ALU op for ALUOp=00/01/10. ALUOp=11 (FP) is not
// this unit's concern — the datapath routes those to internal/fpu
// directly (spec §4.7: "ALUOp=11: FP — routed to FPU-control instead").
//
// isRType distinguishes R-type's full 7-bit funct7 (and the RV32M
// funct7=0000001 tag) from OP-IMM's instruction word, where bits[31:25]
// are live immediate bits for every funct3 except the shift-immediates
// (slli/srli/srai) — consulting them as a funct7 for e.g. addi would
// misdecode as SUB whenever the immediate happens to set bit 30.
func Decode(aluOp control.ALUOp, funct3 uint8, funct7 uint8, isRType bool) (Decision, error) {
	switch aluOp {
	case control.ALUOpAddressArith:
		return Decision{Op: alu.ADD}, nil
	case control.ALUOpBranch:
		return decodeBranch(funct3)
	case control.ALUOpCompute:
		if isRType {
			return decodeRCompute(funct3, funct7)
		}
		return decodeICompute(funct3, funct7)
	default:
		return Decision{}, fmt.Errorf("alucontrol: ALUOp=11 (FP) is not routed through this unit")
	}
}

func decodeBranch(funct3 uint8) (Decision, error) {
	switch funct3 {
	case 0b000, 0b001: // beq, bne: both compare via subtraction, zero flag decides
		return Decision{Op: alu.SUB}, nil
	case 0b100, 0b101: // blt, bge: signed compare
		return Decision{Op: alu.SLT}, nil
	case 0b110, 0b111: // bltu, bgeu: unsigned compare
		return Decision{Op: alu.SLTU}, nil
	default:
		return Decision{}, fmt.Errorf("alucontrol: unsupported branch funct3 0b%03b", funct3)
	}
}

// decodeRCompute handles R-type's ALUOp=10: full 7-bit funct7, including
// the RV32M tag.
func decodeRCompute(funct3, funct7 uint8) (Decision, error) {
	if funct7 == 0b0000001 {
		mop, err := decodeMulDiv(funct3)
		if err != nil {
			return Decision{}, err
		}
		return Decision{IsMulDiv: true, MOp: mop}, nil
	}

	altBit := funct7&0b0100000 != 0
	switch funct3 {
	case 0b000:
		if altBit {
			return Decision{Op: alu.SUB}, nil
		}
		return Decision{Op: alu.ADD}, nil
	case 0b001:
		return Decision{Op: alu.SLL}, nil
	case 0b010:
		return Decision{Op: alu.SLT}, nil
	case 0b011:
		return Decision{Op: alu.SLTU}, nil
	case 0b100:
		return Decision{Op: alu.XOR}, nil
	case 0b101:
		if altBit {
			return Decision{Op: alu.SRA}, nil
		}
		return Decision{Op: alu.SRL}, nil
	case 0b110:
		return Decision{Op: alu.OR}, nil
	case 0b111:
		return Decision{Op: alu.AND}, nil
	default:
		return Decision{}, fmt.Errorf("alucontrol: unsupported compute funct3 0b%03b", funct3)
	}
}

// decodeICompute handles OP-IMM's ALUOp=10: funct3 alone picks the op,
// except the shift-immediates (slli/srli/srai), which do carry a real
// funct7 distinguishing srli from srai exactly as R-type srl/sra does.
func decodeICompute(funct3, funct7 uint8) (Decision, error) {
	switch funct3 {
	case 0b000:
		return Decision{Op: alu.ADD}, nil
	case 0b001:
		return Decision{Op: alu.SLL}, nil
	case 0b010:
		return Decision{Op: alu.SLT}, nil
	case 0b011:
		return Decision{Op: alu.SLTU}, nil
	case 0b100:
		return Decision{Op: alu.XOR}, nil
	case 0b101:
		if funct7&0b0100000 != 0 {
			return Decision{Op: alu.SRA}, nil
		}
		return Decision{Op: alu.SRL}, nil
	case 0b110:
		return Decision{Op: alu.OR}, nil
	case 0b111:
		return Decision{Op: alu.AND}, nil
	default:
		return Decision{}, fmt.Errorf("alucontrol: unsupported compute funct3 0b%03b", funct3)
	}
}

func decodeMulDiv(funct3 uint8) (alu.MOp, error) {
	switch funct3 {
	case 0b000:
		return alu.MUL, nil
	case 0b001:
		return alu.MULH, nil
	case 0b010:
		return alu.MULHSU, nil
	case 0b011:
		return alu.MULHU, nil
	case 0b100:
		return alu.DIV, nil
	case 0b101:
		return alu.DIVU, nil
	case 0b110:
		return alu.REM, nil
	case 0b111:
		return alu.REMU, nil
	default:
		return 0, fmt.Errorf("alucontrol: unsupported muldiv funct3 0b%03b", funct3)
	}
}
