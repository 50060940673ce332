// Package gate implements the primitive logic-gate layer spec §4.1 builds
// the rest of the core out of: single-bit NOT/AND/OR/NAND/NOR/XOR/XNOR,
// a 2:1 mux, and a one-bit full adder, each carrying a "power" input that
// forces the output to ground when deasserted.
//
// The source models these gates as pmos/nmos transistor compositions; per
// spec §4.1 that hardware story is not required here, only the resulting
// truth tables and the power-enable semantics. Gates operate on individual
// bits (Bit, 0 or 1) rather than bitvec.Vector — composition onto whole
// vectors happens one level up, in the decoder package and in Mux's
// vector-valued sibling VectorMux.
package gate

// Bit is a single-bit value, always 0 or 1.
type Bit = uint8

const (
	Low  Bit = 0
	High Bit = 1

	// Powered is the default power input: gate calls that don't model a
	// disabled circuit pass this.
	Powered = High
)

func asBit(b bool) Bit {
	if b {
		return High
	}
	return Low
}

// Not returns the logical negation of a, or Low if power is deasserted.
func Not(a, power Bit) Bit {
	if power == Low {
		return Low
	}
	return asBit(a == Low)
}

// And returns a AND b, or Low if power is deasserted.
func And(a, b, power Bit) Bit {
	if power == Low {
		return Low
	}
	return asBit(a != Low && b != Low)
}

// Or returns a OR b, or Low if power is deasserted.
func Or(a, b, power Bit) Bit {
	if power == Low {
		return Low
	}
	return asBit(a != Low || b != Low)
}

// Nand returns NOT(a AND b).
func Nand(a, b, power Bit) Bit {
	return Not(And(a, b, power), power)
}

// Nor returns NOT(a OR b).
func Nor(a, b, power Bit) Bit {
	return Not(Or(a, b, power), power)
}

// Xor returns (a OR b) AND NOT(a AND b), matching spec §4.1's composition
// rather than a native inequality check.
func Xor(a, b, power Bit) Bit {
	aOrB := Or(a, b, power)
	aAndB := And(a, b, power)
	notAAndB := Not(aAndB, power)
	return And(aOrB, notAAndB, power)
}

// Xnor returns NOT(Xor(a, b)).
func Xnor(a, b, power Bit) Bit {
	return Not(Xor(a, b, power), power)
}

// And3 is the 3-input AND built from two 2-input ANDs.
func And3(a, b, c, power Bit) Bit {
	return And(And(a, b, power), c, power)
}

// Or3 is the 3-input OR built from two 2-input ORs.
func Or3(a, b, c, power Bit) Bit {
	return Or(Or(a, b, power), c, power)
}

// Mux returns a when sel is 0, b when sel is 1:
//
//	mux(a,b,sel) = (a AND NOT sel) OR (b AND sel)
func Mux(a, b, sel, power Bit) Bit {
	notSel := Not(sel, power)
	aPath := And(a, notSel, power)
	bPath := And(b, sel, power)
	return Or(aPath, bPath, power)
}

// FullAdder returns (sum, carryOut) for one bit position given two data
// bits and a carry-in.
func FullAdder(a, b, carryIn, power Bit) (sum, carryOut Bit) {
	axb := Xor(a, b, power)
	sum = Xor(axb, carryIn, power)
	carryOut = Or(And(a, b, power), And(axb, carryIn, power), power)
	return sum, carryOut
}

// VectorMux picks one of two same-width bit sequences by a single select
// bit — the "high-level mux" of spec §4.1, applied bit-by-bit.
func VectorMux(a, b []Bit, sel Bit) []Bit {
	if len(a) != len(b) {
		panic("gate: VectorMux operands must have equal width")
	}
	out := make([]Bit, len(a))
	for i := range a {
		out[i] = Mux(a[i], b[i], sel, Powered)
	}
	return out
}
