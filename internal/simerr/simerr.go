// Package simerr implements the error taxonomy of spec §7: one type per
// row, each carrying enough context (source line, byte address, cycle
// count) to locate the fault, wrapped the way the teacher wraps errors
// with fmt.Errorf("...: %w", err) and checked with errors.Is/errors.As.
// IEEE exceptions are not part of this taxonomy — they are data
// (fpu.Flags), never errors, per §7's explicit carve-out.
package simerr

import (
	"errors"
	"fmt"
)

// Kind is a sentinel identifying which row of the taxonomy an error
// belongs to, for errors.Is checks that don't care about the specific
// instance's context.
type Kind int

const (
	KindSyntax Kind = iota
	KindEncoding
	KindDecode
	KindMemoryFault
	KindUnsupportedOp
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindEncoding:
		return "encoding error"
	case KindDecode:
		return "decode error"
	case KindMemoryFault:
		return "memory fault"
	case KindUnsupportedOp:
		return "unsupported op"
	default:
		return "unknown error"
	}
}

// sentinel is what errors.Is compares against; every concrete error type
// below wraps one of these.
type sentinel struct{ kind Kind }

func (s sentinel) Error() string { return s.kind.String() }

var (
	errSyntax        = sentinel{KindSyntax}
	errEncoding      = sentinel{KindEncoding}
	errDecode        = sentinel{KindDecode}
	errMemoryFault   = sentinel{KindMemoryFault}
	errUnsupportedOp = sentinel{KindUnsupportedOp}
)

// SyntaxError is raised by the assembler: unknown mnemonic, bad register
// name, malformed immediate, undefined label, odd branch offset, and
// empty or duplicate labels.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Message)
}
func (e *SyntaxError) Unwrap() error { return errSyntax }

// NewSyntaxError constructs a SyntaxError at the given source line.
func NewSyntaxError(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// EncodingError is raised turning an instruction token into a machine
// word: an immediate that does not fit its field.
type EncodingError struct {
	Line    int
	Message string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding error at line %d: %s", e.Line, e.Message)
}
func (e *EncodingError) Unwrap() error { return errEncoding }

// NewEncodingError constructs an EncodingError at the given source line.
func NewEncodingError(line int, format string, args ...any) *EncodingError {
	return &EncodingError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// DecodeError is raised by the control unit or ALU-control: an unknown
// opcode, or an unsupported funct3/funct7 combination.
type DecodeError struct {
	Cycle   int
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at cycle %d: %s", e.Cycle, e.Message)
}
func (e *DecodeError) Unwrap() error { return errDecode }

// NewDecodeError constructs a DecodeError at the given cycle.
func NewDecodeError(cycle int, format string, args ...any) *DecodeError {
	return &DecodeError{Cycle: cycle, Message: fmt.Sprintf(format, args...)}
}

// MemoryFaultError is raised by the memory unit: an address outside the
// configured ceiling.
type MemoryFaultError struct {
	Cycle   int
	Address uint32
	Message string
}

func (e *MemoryFaultError) Error() string {
	return fmt.Sprintf("memory fault at cycle %d, address 0x%08X: %s", e.Cycle, e.Address, e.Message)
}
func (e *MemoryFaultError) Unwrap() error { return errMemoryFault }

// NewMemoryFaultError constructs a MemoryFaultError for the given
// address and cycle.
func NewMemoryFaultError(cycle int, address uint32, format string, args ...any) *MemoryFaultError {
	return &MemoryFaultError{Cycle: cycle, Address: address, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedOpError is raised by the ALU or FPU: an op tag outside the
// closed set, or an FP stub opcode (spec §4.17) that decode recognizes
// but the FPU does not implement.
type UnsupportedOpError struct {
	Cycle   int
	Message string
}

func (e *UnsupportedOpError) Error() string {
	return fmt.Sprintf("unsupported op at cycle %d: %s", e.Cycle, e.Message)
}
func (e *UnsupportedOpError) Unwrap() error { return errUnsupportedOp }

// NewUnsupportedOpError constructs an UnsupportedOpError at the given
// cycle.
func NewUnsupportedOpError(cycle int, format string, args ...any) *UnsupportedOpError {
	return &UnsupportedOpError{Cycle: cycle, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err belongs to the taxonomy row named by kind, for
// callers that only care about the row (e.g. the CLI's exit-code
// mapping) and not the specific instance's context.
func Is(err error, kind Kind) bool {
	var s sentinel
	if errors.As(err, &s) {
		return s.kind == kind
	}
	switch kind {
	case KindSyntax:
		return errors.Is(err, errSyntax)
	case KindEncoding:
		return errors.Is(err, errEncoding)
	case KindDecode:
		return errors.Is(err, errDecode)
	case KindMemoryFault:
		return errors.Is(err, errMemoryFault)
	case KindUnsupportedOp:
		return errors.Is(err, errUnsupportedOp)
	default:
		return false
	}
}
