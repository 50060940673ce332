// Package isa is the single source of truth for the mnemonic, opcode,
// funct3/funct7, and register-name tables shared by internal/assembler
// (mnemonic → encoding), internal/control (opcode constants) and
// internal/datapath (opcode constants, trace mnemonics), per SPEC_FULL.md §2's
// package table and §6.4's mnemonic list.
package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// Format is one of the six RISC-V instruction encoding shapes, plus a
// seventh pseudo-format for the zero-operand system instructions
// (ecall/ebreak/fence) that share I-type's wire encoding but have no
// assembler-visible operands.
type Format uint8

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
	FormatSystem
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	case FormatSystem:
		return "system"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// RegKind says which register file (if any) a given operand slot draws
// from, so the assembler and datapath can arbitrate RegFileSel (spec
// §4.11) per instruction rather than per opcode class alone.
type RegKind uint8

const (
	RegNone RegKind = iota
	RegInt
	RegFP
)

// Opcode values, the RISC-V base ISA plus the F extension (spec §6.4).
const (
	OpcodeLoad       = uint8(0b0000011)
	OpcodeFPLoad     = uint8(0b0000111)
	OpcodeFence      = uint8(0b0001111)
	OpcodeOpImm      = uint8(0b0010011)
	OpcodeAUIPC      = uint8(0b0010111)
	OpcodeStore      = uint8(0b0100011)
	OpcodeFPStore    = uint8(0b0100111)
	OpcodeOp         = uint8(0b0110011)
	OpcodeLUI        = uint8(0b0110111)
	OpcodeFPOp       = uint8(0b1010011)
	OpcodeBranch     = uint8(0b1100011)
	OpcodeJALR       = uint8(0b1100111)
	OpcodeJAL        = uint8(0b1101111)
	OpcodeSystem     = uint8(0b1110011)
)

// NoField is the sentinel for an unused funct3/funct7/fixed-rs2 slot.
const NoField = int8(-1)

// Encoding is the full wire-encoding and assembler-operand-shape
// description of one mnemonic.
type Encoding struct {
	Mnemonic string
	Format   Format
	Opcode   uint8
	Funct3   int8 // NoField if the format has no funct3 (U/J) or it is a don't-care
	Funct7   int8 // NoField except for R-type/R-type-shaped FP ops and the shift-immediates

	// RS2Fixed holds a literal value for the rs2 field when the mnemonic's
	// assembly syntax does not supply one (e.g. fsqrt.s, fcvt.w.s) — the
	// RV32F "funct5+rs2-as-selector" convention. NoField means the
	// assembler must take rs2 from the source operand.
	RS2Fixed int8

	RDKind, RS1Kind, RS2Kind RegKind

	// HasFixedImm/FixedImm cover ecall/ebreak, whose immediate field is
	// not parsed from source but is part of the mnemonic's identity.
	HasFixedImm bool
	FixedImm    int32

	// Unimplemented marks the RV32F stub opcodes spec §1/§4.17 require
	// the assembler and control unit to recognize but that internal/fpu
	// does not implement; attempting to execute one is an
	// UnsupportedOpError rather than a DecodeError.
	Unimplemented bool
}

var table = buildTable()

// Lookup returns the encoding for a mnemonic (case-sensitive, as written
// in assembly source).
func Lookup(mnemonic string) (Encoding, bool) {
	e, ok := table[mnemonic]
	return e, ok
}

func buildTable() map[string]Encoding {
	t := make(map[string]Encoding)

	add := func(e Encoding) { t[e.Mnemonic] = e }

	// R-type integer ops (spec §6.4 base set).
	rtype := []struct {
		mnemonic       string
		funct3, funct7 int8
	}{
		{"add", 0b000, 0b0000000},
		{"sub", 0b000, 0b0100000},
		{"sll", 0b001, 0b0000000},
		{"slt", 0b010, 0b0000000},
		{"sltu", 0b011, 0b0000000},
		{"xor", 0b100, 0b0000000},
		{"srl", 0b101, 0b0000000},
		{"sra", 0b101, 0b0100000},
		{"or", 0b110, 0b0000000},
		{"and", 0b111, 0b0000000},
		// RV32M (SPEC_FULL.md §4.16): same opcode, funct7=0000001.
		{"mul", 0b000, 0b0000001},
		{"mulh", 0b001, 0b0000001},
		{"mulhsu", 0b010, 0b0000001},
		{"mulhu", 0b011, 0b0000001},
		{"div", 0b100, 0b0000001},
		{"divu", 0b101, 0b0000001},
		{"rem", 0b110, 0b0000001},
		{"remu", 0b111, 0b0000001},
	}
	for _, r := range rtype {
		add(Encoding{
			Mnemonic: r.mnemonic, Format: FormatR, Opcode: OpcodeOp,
			Funct3: r.funct3, Funct7: r.funct7, RS2Fixed: NoField,
			RDKind: RegInt, RS1Kind: RegInt, RS2Kind: RegInt,
		})
	}

	// I-type arithmetic-immediate ops.
	itype := []struct {
		mnemonic string
		funct3   int8
		funct7   int8 // only meaningful for the shift-immediates
	}{
		{"addi", 0b000, NoField},
		{"slti", 0b010, NoField},
		{"sltiu", 0b011, NoField},
		{"xori", 0b100, NoField},
		{"ori", 0b110, NoField},
		{"andi", 0b111, NoField},
		{"slli", 0b001, 0b0000000},
		{"srli", 0b101, 0b0000000},
		{"srai", 0b101, 0b0100000},
	}
	for _, i := range itype {
		add(Encoding{
			Mnemonic: i.mnemonic, Format: FormatI, Opcode: OpcodeOpImm,
			Funct3: i.funct3, Funct7: i.funct7, RS2Fixed: NoField,
			RDKind: RegInt, RS1Kind: RegInt, RS2Kind: RegNone,
		})
	}

	// Integer loads.
	loads := []struct {
		mnemonic string
		funct3   int8
	}{
		{"lb", 0b000}, {"lh", 0b001}, {"lw", 0b010}, {"lbu", 0b100}, {"lhu", 0b101},
	}
	for _, l := range loads {
		add(Encoding{
			Mnemonic: l.mnemonic, Format: FormatI, Opcode: OpcodeLoad,
			Funct3: l.funct3, Funct7: NoField, RS2Fixed: NoField,
			RDKind: RegInt, RS1Kind: RegInt, RS2Kind: RegNone,
		})
	}

	// Integer stores.
	stores := []struct {
		mnemonic string
		funct3   int8
	}{
		{"sb", 0b000}, {"sh", 0b001}, {"sw", 0b010},
	}
	for _, s := range stores {
		add(Encoding{
			Mnemonic: s.mnemonic, Format: FormatS, Opcode: OpcodeStore,
			Funct3: s.funct3, Funct7: NoField, RS2Fixed: NoField,
			RDKind: RegNone, RS1Kind: RegInt, RS2Kind: RegInt,
		})
	}

	// Branches.
	branches := []struct {
		mnemonic string
		funct3   int8
	}{
		{"beq", 0b000}, {"bne", 0b001}, {"blt", 0b100}, {"bge", 0b101}, {"bltu", 0b110}, {"bgeu", 0b111},
	}
	for _, b := range branches {
		add(Encoding{
			Mnemonic: b.mnemonic, Format: FormatB, Opcode: OpcodeBranch,
			Funct3: b.funct3, Funct7: NoField, RS2Fixed: NoField,
			RDKind: RegNone, RS1Kind: RegInt, RS2Kind: RegInt,
		})
	}

	add(Encoding{Mnemonic: "jal", Format: FormatJ, Opcode: OpcodeJAL, Funct3: NoField, Funct7: NoField, RS2Fixed: NoField, RDKind: RegInt, RS1Kind: RegNone, RS2Kind: RegNone})
	add(Encoding{Mnemonic: "jalr", Format: FormatI, Opcode: OpcodeJALR, Funct3: 0b000, Funct7: NoField, RS2Fixed: NoField, RDKind: RegInt, RS1Kind: RegInt, RS2Kind: RegNone})
	add(Encoding{Mnemonic: "lui", Format: FormatU, Opcode: OpcodeLUI, Funct3: NoField, Funct7: NoField, RS2Fixed: NoField, RDKind: RegInt, RS1Kind: RegNone, RS2Kind: RegNone})
	add(Encoding{Mnemonic: "auipc", Format: FormatU, Opcode: OpcodeAUIPC, Funct3: NoField, Funct7: NoField, RS2Fixed: NoField, RDKind: RegInt, RS1Kind: RegNone, RS2Kind: RegNone})

	add(Encoding{Mnemonic: "ecall", Format: FormatSystem, Opcode: OpcodeSystem, Funct3: 0b000, Funct7: NoField, RS2Fixed: NoField, RDKind: RegNone, RS1Kind: RegNone, RS2Kind: RegNone, HasFixedImm: true, FixedImm: 0})
	add(Encoding{Mnemonic: "ebreak", Format: FormatSystem, Opcode: OpcodeSystem, Funct3: 0b000, Funct7: NoField, RS2Fixed: NoField, RDKind: RegNone, RS1Kind: RegNone, RS2Kind: RegNone, HasFixedImm: true, FixedImm: 1})
	add(Encoding{Mnemonic: "fence", Format: FormatSystem, Opcode: OpcodeFence, Funct3: 0b000, Funct7: NoField, RS2Fixed: NoField, RDKind: RegNone, RS1Kind: RegNone, RS2Kind: RegNone, HasFixedImm: true, FixedImm: 0})

	// FP load/store.
	add(Encoding{Mnemonic: "flw", Format: FormatI, Opcode: OpcodeFPLoad, Funct3: 0b010, Funct7: NoField, RS2Fixed: NoField, RDKind: RegFP, RS1Kind: RegInt, RS2Kind: RegNone})
	add(Encoding{Mnemonic: "fsw", Format: FormatS, Opcode: OpcodeFPStore, Funct3: 0b010, Funct7: NoField, RS2Fixed: NoField, RDKind: RegNone, RS1Kind: RegInt, RS2Kind: RegFP})

	// Implemented FP arithmetic (spec §1/§4.5).
	fpImplemented := []struct {
		mnemonic string
		funct7   int8
	}{
		{"fadd.s", 0b0000000}, {"fsub.s", 0b0000100}, {"fmul.s", 0b0001000},
	}
	for _, f := range fpImplemented {
		add(Encoding{
			Mnemonic: f.mnemonic, Format: FormatR, Opcode: OpcodeFPOp,
			Funct3: NoField, Funct7: f.funct7, RS2Fixed: NoField,
			RDKind: RegFP, RS1Kind: RegFP, RS2Kind: RegFP,
		})
	}

	// FP stubs (spec §4.17): recognized by the assembler/control, not
	// executable — internal/fpu has no semantics for them.
	add(Encoding{Mnemonic: "fdiv.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: NoField, Funct7: 0b0001100, RS2Fixed: NoField, RDKind: RegFP, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "fsqrt.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: NoField, Funct7: 0b0101100, RS2Fixed: 0, RDKind: RegFP, RS1Kind: RegFP, RS2Kind: RegNone, Unimplemented: true})
	add(Encoding{Mnemonic: "fmin.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b000, Funct7: 0b0010100, RS2Fixed: NoField, RDKind: RegFP, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "fmax.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b001, Funct7: 0b0010100, RS2Fixed: NoField, RDKind: RegFP, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "feq.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b010, Funct7: 0b1010000, RS2Fixed: NoField, RDKind: RegInt, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "flt.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b001, Funct7: 0b1010000, RS2Fixed: NoField, RDKind: RegInt, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "fle.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b000, Funct7: 0b1010000, RS2Fixed: NoField, RDKind: RegInt, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "fsgnj.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b000, Funct7: 0b0010000, RS2Fixed: NoField, RDKind: RegFP, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "fsgnjn.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b001, Funct7: 0b0010000, RS2Fixed: NoField, RDKind: RegFP, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "fsgnjx.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b010, Funct7: 0b0010000, RS2Fixed: NoField, RDKind: RegFP, RS1Kind: RegFP, RS2Kind: RegFP, Unimplemented: true})
	add(Encoding{Mnemonic: "fcvt.w.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: NoField, Funct7: 0b1100000, RS2Fixed: 0, RDKind: RegInt, RS1Kind: RegFP, RS2Kind: RegNone, Unimplemented: true})
	add(Encoding{Mnemonic: "fcvt.wu.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: NoField, Funct7: 0b1100000, RS2Fixed: 1, RDKind: RegInt, RS1Kind: RegFP, RS2Kind: RegNone, Unimplemented: true})
	add(Encoding{Mnemonic: "fcvt.s.w", Format: FormatR, Opcode: OpcodeFPOp, Funct3: NoField, Funct7: 0b1101000, RS2Fixed: 0, RDKind: RegFP, RS1Kind: RegInt, RS2Kind: RegNone, Unimplemented: true})
	add(Encoding{Mnemonic: "fcvt.s.wu", Format: FormatR, Opcode: OpcodeFPOp, Funct3: NoField, Funct7: 0b1101000, RS2Fixed: 1, RDKind: RegFP, RS1Kind: RegInt, RS2Kind: RegNone, Unimplemented: true})
	add(Encoding{Mnemonic: "fmv.x.w", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b000, Funct7: 0b1110000, RS2Fixed: 0, RDKind: RegInt, RS1Kind: RegFP, RS2Kind: RegNone, Unimplemented: true})
	add(Encoding{Mnemonic: "fmv.w.x", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b000, Funct7: 0b1111000, RS2Fixed: 0, RDKind: RegFP, RS1Kind: RegInt, RS2Kind: RegNone, Unimplemented: true})
	add(Encoding{Mnemonic: "fclass.s", Format: FormatR, Opcode: OpcodeFPOp, Funct3: 0b001, Funct7: 0b1110000, RS2Fixed: 0, RDKind: RegInt, RS1Kind: RegFP, RS2Kind: RegNone, Unimplemented: true})

	return t
}

// Describe best-effort reverse-looks-up the mnemonic matching an
// (opcode, funct3, funct7) triple, for trace/debug output only — not used
// by decode, which works from the opcode/funct7 switches in
// internal/control and internal/alucontrol directly.
func Describe(opcode uint8, funct3, funct7 int8) string {
	for mnemonic, e := range table {
		if e.Opcode != opcode {
			continue
		}
		if e.Funct3 != NoField && e.Funct3 != funct3 {
			continue
		}
		if e.Funct7 != NoField && e.Funct7 != funct7 {
			continue
		}
		return mnemonic
	}
	return fmt.Sprintf("unknown(op=0b%07b)", opcode)
}

// ParseIntReg parses "x0".."x31".
func ParseIntReg(tok string) (uint8, bool) { return parseReg(tok, "x") }

// ParseFPReg parses "f0".."f31".
func ParseFPReg(tok string) (uint8, bool) { return parseReg(tok, "f") }

func parseReg(tok, prefix string) (uint8, bool) {
	tok = strings.TrimSpace(tok)
	if !strings.HasPrefix(tok, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(tok[len(prefix):])
	if err != nil || n < 0 || n > 31 {
		return 0, false
	}
	return uint8(n), true
}
