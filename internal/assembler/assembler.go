// Package assembler implements the two-pass assembler of spec §4.10: a
// label-resolution pass over the source text followed by a code-gen pass
// that turns each instruction or data directive into a 32-bit machine
// word, using internal/isa's mnemonic table as the single source of truth
// for opcode/funct3/funct7/register-kind per mnemonic.
package assembler

import (
	"math"
	"strconv"
	"strings"

	"github.com/frewtypebbles/riscv-sim/internal/bitvec"
	"github.com/frewtypebbles/riscv-sim/internal/isa"
	"github.com/frewtypebbles/riscv-sim/internal/simerr"
)

// Program is the output of Assemble: the word stream InstructionMemory
// loads (one word per source line, per spec §4.10's flat PC-advance rule)
// and the byte-accurate data section spec SPEC_FULL.md §4.18 tracks
// alongside it for callers that want to preload data memory precisely.
type Program struct {
	Words     []bitvec.Vector
	DataBytes []byte
	Labels    map[string]uint32
}

// HexLines renders Words as the upper-case, byte-swapped 8-digit hex
// strings spec §6.3 defines as machine-code output.
func (p *Program) HexLines() []string {
	lines := make([]string, len(p.Words))
	for i, w := range p.Words {
		lines[i] = w.ToLittleEndianHexWord()
	}
	return lines
}

type sourceLine struct {
	number int
	text   string
}

// Assemble runs both passes over source and returns the resulting
// Program, or the first SyntaxError/EncodingError encountered.
func Assemble(source string, startAddress uint32) (*Program, error) {
	lines := cleanLines(source)

	labels, err := resolveLabels(lines, startAddress)
	if err != nil {
		return nil, err
	}

	prog := &Program{Labels: labels}
	pc := startAddress
	for _, l := range lines {
		if isSectionDirective(l.text) {
			continue
		}
		if strings.HasSuffix(l.text, ":") {
			continue
		}

		var word bitvec.Vector
		if strings.HasPrefix(l.text, ".") {
			word, err = emitDirective(l, prog)
		} else {
			word, err = emitInstruction(l, pc, labels)
		}
		if err != nil {
			return nil, err
		}
		prog.Words = append(prog.Words, word)
		pc += 4
	}
	return prog, nil
}

func cleanLines(source string) []sourceLine {
	var out []sourceLine
	for i, raw := range strings.Split(source, "\n") {
		line := raw
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, sourceLine{number: i + 1, text: line})
	}
	return out
}

var sectionDirectives = map[string]bool{
	".globl": true, ".section": true, ".text": true, ".data": true, ".bss": true,
}

func isSectionDirective(text string) bool {
	first := text
	if idx := strings.IndexAny(text, " \t"); idx >= 0 {
		first = text[:idx]
	}
	return sectionDirectives[first]
}

// resolveLabels is Pass 1 (spec §4.10): walk the cleaned lines once,
// recording each label's byte address and advancing a flat 4-byte PC for
// every other line, matching the source's own (intentionally imprecise
// for wide data directives, per SPEC_FULL.md §4.18) PC model.
func resolveLabels(lines []sourceLine, startAddress uint32) (map[string]uint32, error) {
	labels := make(map[string]uint32)
	pc := startAddress
	for _, l := range lines {
		if isSectionDirective(l.text) {
			continue
		}
		if strings.HasSuffix(l.text, ":") {
			name := strings.TrimSpace(strings.TrimSuffix(l.text, ":"))
			if name == "" {
				return nil, simerr.NewSyntaxError(l.number, "empty label")
			}
			if _, exists := labels[name]; exists {
				return nil, simerr.NewSyntaxError(l.number, "label %q redefined", name)
			}
			labels[name] = pc
			continue
		}
		pc += 4
	}
	return labels, nil
}

func emitInstruction(l sourceLine, pc uint32, labels map[string]uint32) (bitvec.Vector, error) {
	mnemonic, operandStr := splitMnemonic(l.text)
	enc, ok := isa.Lookup(mnemonic)
	if !ok {
		return bitvec.Vector{}, simerr.NewSyntaxError(l.number, "unknown mnemonic %q", mnemonic)
	}
	rd, rs1, rs2, imm, err := parseOperands(enc, operandStr, labels, pc, l.number)
	if err != nil {
		return bitvec.Vector{}, err
	}
	return encode(enc, rd, rs1, rs2, imm, l.number)
}

func splitMnemonic(text string) (mnemonic, rest string) {
	idx := strings.IndexAny(text, " \t")
	if idx < 0 {
		return text, ""
	}
	return text[:idx], strings.TrimSpace(text[idx+1:])
}

func splitOperands(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// parseOperands extracts (rd, rs1, rs2, imm) from an operand string per
// enc's format and register-kind metadata. Not every field is meaningful
// for every format; callers only consult the fields encode needs.
func parseOperands(enc isa.Encoding, operandStr string, labels map[string]uint32, pc uint32, line int) (rd, rs1, rs2 uint8, imm int32, err error) {
	switch enc.Format {
	case isa.FormatR:
		return parseRTypeOperands(enc, operandStr, line)

	case isa.FormatI:
		if enc.Opcode == isa.OpcodeLoad || enc.Opcode == isa.OpcodeFPLoad || enc.Opcode == isa.OpcodeJALR {
			return parseIndexedOperands(enc, operandStr, labels, pc, line)
		}
		return parseImmArithOperands(enc, operandStr, labels, pc, line)

	case isa.FormatS:
		tokens := splitOperands(operandStr)
		if len(tokens) != 2 {
			return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s expects 2 operands, got %d", enc.Mnemonic, len(tokens))
		}
		rs2, err = parseReg(tokens[0], enc.RS2Kind, line)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		immVal, regTok, err := splitIndexed(tokens[1], line)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		imm, err = parseImmediateOrLabel(immVal, labels, pc, false, line)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		rs1, err = parseReg(regTok, enc.RS1Kind, line)
		return 0, rs1, rs2, imm, err

	case isa.FormatB:
		tokens := splitOperands(operandStr)
		if len(tokens) != 3 {
			return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s expects 3 operands, got %d", enc.Mnemonic, len(tokens))
		}
		rs1, err = parseReg(tokens[0], enc.RS1Kind, line)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		rs2, err = parseReg(tokens[1], enc.RS2Kind, line)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		imm, err = parseImmediateOrLabel(tokens[2], labels, pc, true, line)
		return 0, rs1, rs2, imm, err

	case isa.FormatU:
		tokens := splitOperands(operandStr)
		if len(tokens) != 2 {
			return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s expects 2 operands, got %d", enc.Mnemonic, len(tokens))
		}
		rd, err = parseReg(tokens[0], enc.RDKind, line)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		imm, err = parseImmediateOrLabel(tokens[1], labels, pc, false, line)
		return rd, 0, 0, imm, err

	case isa.FormatJ:
		tokens := splitOperands(operandStr)
		if len(tokens) != 2 {
			return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s expects 2 operands, got %d", enc.Mnemonic, len(tokens))
		}
		rd, err = parseReg(tokens[0], enc.RDKind, line)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		imm, err = parseImmediateOrLabel(tokens[1], labels, pc, true, line)
		return rd, 0, 0, imm, err

	case isa.FormatSystem:
		if strings.TrimSpace(operandStr) != "" {
			return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s takes no operands", enc.Mnemonic)
		}
		return 0, 0, 0, enc.FixedImm, nil

	default:
		return 0, 0, 0, 0, simerr.NewSyntaxError(line, "unhandled format for %s", enc.Mnemonic)
	}
}

func parseRTypeOperands(enc isa.Encoding, operandStr string, line int) (rd, rs1, rs2 uint8, imm int32, err error) {
	tokens := splitOperands(operandStr)
	want := 3
	if enc.RS2Fixed != isa.NoField {
		want = 2
	}
	if len(tokens) != want {
		return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s expects %d operands, got %d", enc.Mnemonic, want, len(tokens))
	}
	rd, err = parseReg(tokens[0], enc.RDKind, line)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	rs1, err = parseReg(tokens[1], enc.RS1Kind, line)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if enc.RS2Fixed != isa.NoField {
		return rd, rs1, uint8(enc.RS2Fixed), 0, nil
	}
	rs2, err = parseReg(tokens[2], enc.RS2Kind, line)
	return rd, rs1, rs2, 0, err
}

func parseIndexedOperands(enc isa.Encoding, operandStr string, labels map[string]uint32, pc uint32, line int) (rd, rs1, rs2 uint8, imm int32, err error) {
	tokens := splitOperands(operandStr)
	if len(tokens) != 2 {
		return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s expects 2 operands, got %d", enc.Mnemonic, len(tokens))
	}
	rd, err = parseReg(tokens[0], enc.RDKind, line)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	immTok, regTok, err := splitIndexed(tokens[1], line)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	imm, err = parseImmediateOrLabel(immTok, labels, pc, false, line)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	rs1, err = parseReg(regTok, enc.RS1Kind, line)
	return rd, rs1, 0, imm, err
}

func parseImmArithOperands(enc isa.Encoding, operandStr string, labels map[string]uint32, pc uint32, line int) (rd, rs1, rs2 uint8, imm int32, err error) {
	tokens := splitOperands(operandStr)
	if len(tokens) != 3 {
		return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s expects 3 operands, got %d", enc.Mnemonic, len(tokens))
	}
	rd, err = parseReg(tokens[0], enc.RDKind, line)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	rs1, err = parseReg(tokens[1], enc.RS1Kind, line)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if enc.Funct7 != isa.NoField {
		shamt, perr := strconv.ParseInt(tokens[2], 0, 64)
		if perr != nil || shamt < 0 || shamt > 31 {
			return 0, 0, 0, 0, simerr.NewSyntaxError(line, "%s shift amount %q must be 0-31", enc.Mnemonic, tokens[2])
		}
		return rd, rs1, 0, int32(shamt), nil
	}
	imm, err = parseImmediateOrLabel(tokens[2], labels, pc, false, line)
	return rd, rs1, 0, imm, err
}

// splitIndexed splits an "imm(reg)" operand into its two parts.
func splitIndexed(tok string, line int) (immTok, regTok string, err error) {
	open := strings.IndexByte(tok, '(')
	shut := strings.IndexByte(tok, ')')
	if open < 0 || shut < open {
		return "", "", simerr.NewSyntaxError(line, "expected imm(reg) operand, got %q", tok)
	}
	return strings.TrimSpace(tok[:open]), strings.TrimSpace(tok[open+1 : shut]), nil
}

func parseReg(tok string, kind isa.RegKind, line int) (uint8, error) {
	switch kind {
	case isa.RegInt:
		v, ok := isa.ParseIntReg(tok)
		if !ok {
			return 0, simerr.NewSyntaxError(line, "not an integer register: %q", tok)
		}
		return v, nil
	case isa.RegFP:
		v, ok := isa.ParseFPReg(tok)
		if !ok {
			return 0, simerr.NewSyntaxError(line, "not an FP register: %q", tok)
		}
		return v, nil
	default:
		return 0, nil
	}
}

// parseImmediateOrLabel accepts 0x hex, 0o octal, leading-0 octal, signed
// decimal (all via strconv's base-0 parsing), or a label name. For
// branch/jump immediates the resolved value is target-minus-current_pc
// and must be even (spec §4.10); otherwise the resolved address is used
// verbatim.
func parseImmediateOrLabel(tok string, labels map[string]uint32, pc uint32, isBranchOrJump bool, line int) (int32, error) {
	tok = strings.TrimSpace(tok)
	if addr, ok := labels[tok]; ok {
		if isBranchOrJump {
			offset := int64(addr) - int64(pc)
			if offset%2 != 0 {
				return 0, simerr.NewSyntaxError(line, "branch/jump offset to %q is not even", tok)
			}
			return int32(offset), nil
		}
		return int32(addr), nil
	}
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return 0, simerr.NewSyntaxError(line, "invalid immediate or undefined label %q", tok)
	}
	if isBranchOrJump && v%2 != 0 {
		return 0, simerr.NewSyntaxError(line, "branch/jump offset %q is not even", tok)
	}
	return int32(v), nil
}

// encode converts a parsed instruction into its 32-bit machine word per
// spec §4.10's per-format bit layout tables.
func encode(enc isa.Encoding, rd, rs1, rs2 uint8, imm int32, line int) (bitvec.Vector, error) {
	opcode := bitvec.New(uint64(enc.Opcode), 7)
	funct3 := bitvec.New(uint64(fieldOrZero(enc.Funct3)), 3)

	switch enc.Format {
	case isa.FormatR:
		funct7 := bitvec.New(uint64(fieldOrZero(enc.Funct7)), 7)
		return bitvec.Concat(funct7, reg5(rs2), reg5(rs1), funct3, reg5(rd), opcode), nil

	case isa.FormatI:
		if enc.Funct7 != isa.NoField {
			// Shift-immediate: the 12-bit I-field splits into a real
			// funct7 (the shift direction tag) and a 5-bit shamt.
			if imm < 0 || imm > 31 {
				return bitvec.Vector{}, simerr.NewEncodingError(line, "%s shift amount %d out of range", enc.Mnemonic, imm)
			}
			imm12 := bitvec.Concat(bitvec.New(uint64(enc.Funct7), 7), bitvec.New(uint64(imm), 5))
			return bitvec.Concat(imm12, reg5(rs1), funct3, reg5(rd), opcode), nil
		}
		if err := checkSignedRange(imm, 12, enc.Mnemonic, line); err != nil {
			return bitvec.Vector{}, err
		}
		imm12 := bitvec.New(uint64(uint32(imm)), 12)
		return bitvec.Concat(imm12, reg5(rs1), funct3, reg5(rd), opcode), nil

	case isa.FormatS:
		if err := checkSignedRange(imm, 12, enc.Mnemonic, line); err != nil {
			return bitvec.Vector{}, err
		}
		immVec := bitvec.New(uint64(uint32(imm)), 12)
		hi := immVec.Slice(5, 11)
		lo := immVec.Slice(0, 4)
		return bitvec.Concat(hi, reg5(rs2), reg5(rs1), funct3, lo, opcode), nil

	case isa.FormatB:
		if imm%2 != 0 {
			return bitvec.Vector{}, simerr.NewEncodingError(line, "%s branch offset %d is not even", enc.Mnemonic, imm)
		}
		if err := checkSignedRange(imm, 13, enc.Mnemonic, line); err != nil {
			return bitvec.Vector{}, err
		}
		immVec := bitvec.New(uint64(uint32(imm)), 13)
		bit12 := immVec.Slice(12, 12)
		bits10_5 := immVec.Slice(5, 10)
		bits4_1 := immVec.Slice(1, 4)
		bit11 := immVec.Slice(11, 11)
		return bitvec.Concat(bit12, bits10_5, reg5(rs2), reg5(rs1), funct3, bits4_1, bit11, opcode), nil

	case isa.FormatU:
		immVec := bitvec.New(uint64(uint32(imm)), 20)
		return bitvec.Concat(immVec, reg5(rd), opcode), nil

	case isa.FormatJ:
		if imm%2 != 0 {
			return bitvec.Vector{}, simerr.NewEncodingError(line, "%s jump offset %d is not even", enc.Mnemonic, imm)
		}
		if err := checkSignedRange(imm, 21, enc.Mnemonic, line); err != nil {
			return bitvec.Vector{}, err
		}
		immVec := bitvec.New(uint64(uint32(imm)), 21)
		bit20 := immVec.Slice(20, 20)
		bits10_1 := immVec.Slice(1, 10)
		bit11 := immVec.Slice(11, 11)
		bits19_12 := immVec.Slice(12, 19)
		return bitvec.Concat(bit20, bits10_1, bit11, bits19_12, reg5(rd), opcode), nil

	case isa.FormatSystem:
		imm12 := bitvec.New(uint64(uint32(imm)), 12)
		return bitvec.Concat(imm12, reg5(0), funct3, reg5(0), opcode), nil

	default:
		return bitvec.Vector{}, simerr.NewEncodingError(line, "unhandled format for %s", enc.Mnemonic)
	}
}

func reg5(v uint8) bitvec.Vector { return bitvec.New(uint64(v), 5) }

func fieldOrZero(f int8) uint64 {
	if f == isa.NoField {
		return 0
	}
	return uint64(f)
}

func checkSignedRange(imm int32, bitsWidth uint, mnemonic string, line int) error {
	lo := -(int64(1) << (bitsWidth - 1))
	hi := (int64(1) << (bitsWidth - 1)) - 1
	v := int64(imm)
	if v < lo || v > hi {
		return simerr.NewEncodingError(line, "%s immediate %d does not fit in %d bits", mnemonic, imm, bitsWidth)
	}
	return nil
}

// emitDirective handles one code-generating directive line (spec §4.10,
// byte-layout rules per SPEC_FULL.md §4.18): it appends the directive's
// exact byte contribution to prog.DataBytes, and returns a single 32-bit
// word built from (up to) the first 4 of those bytes for the flat,
// one-word-per-line instruction stream — the two disagree in byte count
// for directives wider than a word, by design (§4.18).
func emitDirective(l sourceLine, prog *Program) (bitvec.Vector, error) {
	name, operandStr := splitMnemonic(l.text)

	var contributed []byte
	switch name {
	case ".byte":
		vs, err := parseIntList(operandStr, l.number)
		if err != nil {
			return bitvec.Vector{}, err
		}
		for _, v := range vs {
			contributed = append(contributed, byte(v))
		}
	case ".half":
		vs, err := parseIntList(operandStr, l.number)
		if err != nil {
			return bitvec.Vector{}, err
		}
		for _, v := range vs {
			contributed = append(contributed, byte(v), byte(v>>8))
		}
	case ".word":
		vs, err := parseIntList(operandStr, l.number)
		if err != nil {
			return bitvec.Vector{}, err
		}
		for _, v := range vs {
			contributed = append(contributed, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
	case ".float":
		vs, err := parseFloatList(operandStr, l.number)
		if err != nil {
			return bitvec.Vector{}, err
		}
		for _, v := range vs {
			bits := math.Float32bits(float32(v))
			contributed = append(contributed, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
		}
	case ".double":
		vs, err := parseFloatList(operandStr, l.number)
		if err != nil {
			return bitvec.Vector{}, err
		}
		for _, v := range vs {
			bits := math.Float64bits(v)
			for i := 0; i < 8; i++ {
				contributed = append(contributed, byte(bits>>(8*i)))
			}
		}
	case ".ascii", ".asciz", ".string":
		s, err := parseQuotedString(operandStr, l.number)
		if err != nil {
			return bitvec.Vector{}, err
		}
		contributed = append(contributed, []byte(s)...)
		if name != ".ascii" {
			contributed = append(contributed, 0)
		}
	case ".align":
		n, err := strconv.ParseInt(strings.TrimSpace(operandStr), 0, 64)
		if err != nil || n < 0 {
			return bitvec.Vector{}, simerr.NewSyntaxError(l.number, "invalid .align operand %q", operandStr)
		}
		boundary := 1 << uint(n)
		pad := (boundary - len(prog.DataBytes)%boundary) % boundary
		contributed = make([]byte, pad)
	default:
		return bitvec.Vector{}, simerr.NewSyntaxError(l.number, "unknown directive %q", name)
	}

	prog.DataBytes = append(prog.DataBytes, contributed...)

	var w uint32
	for i := 0; i < 4 && i < len(contributed); i++ {
		w |= uint32(contributed[i]) << (8 * i)
	}
	return bitvec.New(uint64(w), 32), nil
}

func parseIntList(operandStr string, line int) ([]int64, error) {
	tokens := splitOperands(operandStr)
	out := make([]int64, 0, len(tokens))
	for _, t := range tokens {
		v, err := strconv.ParseInt(t, 0, 64)
		if err != nil {
			return nil, simerr.NewSyntaxError(line, "invalid integer literal %q", t)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloatList(operandStr string, line int) ([]float64, error) {
	tokens := splitOperands(operandStr)
	out := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, simerr.NewSyntaxError(line, "invalid float literal %q", t)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseQuotedString(operandStr string, line int) (string, error) {
	s := strings.TrimSpace(operandStr)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", simerr.NewSyntaxError(line, "expected a quoted string, got %q", operandStr)
	}
	return s[1 : len(s)-1], nil
}
