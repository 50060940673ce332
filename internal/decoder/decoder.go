// Package decoder implements the one-hot address decoders and the
// priority encoder of spec §4.2: 2→4, 3→8, 4→16, 5→32, built by recursive
// composition rather than as flat lookup tables, plus an 8→3 priority
// encoder and the one-hot-to-index helper the register file relies on.
package decoder

import "github.com/frewtypebbles/riscv-sim/internal/gate"

// Decode2to4 returns a 4-wide one-hot vector; index i is High iff the
// 2-bit input equals i.
func Decode2to4(addr [2]gate.Bit) [4]gate.Bit {
	a0, a1 := addr[0], addr[1]
	notA0 := gate.Not(a0, gate.Powered)
	notA1 := gate.Not(a1, gate.Powered)
	var out [4]gate.Bit
	out[0] = gate.And(notA1, notA0, gate.Powered)
	out[1] = gate.And(notA1, a0, gate.Powered)
	out[2] = gate.And(a1, notA0, gate.Powered)
	out[3] = gate.And(a1, a0, gate.Powered)
	return out
}

// Decode3to8 is two Decode2to4s gated by the high address bit and its
// negation, per spec §4.2's recursive-composition rule.
func Decode3to8(addr [3]gate.Bit) [8]gate.Bit {
	low := Decode2to4([2]gate.Bit{addr[0], addr[1]})
	hi := addr[2]
	notHi := gate.Not(hi, gate.Powered)

	var out [8]gate.Bit
	for i := 0; i < 4; i++ {
		out[i] = gate.And(low[i], notHi, gate.Powered)
		out[i+4] = gate.And(low[i], hi, gate.Powered)
	}
	return out
}

// Decode4to16 composes two Decode3to8s the same way.
func Decode4to16(addr [4]gate.Bit) [16]gate.Bit {
	low := Decode3to8([3]gate.Bit{addr[0], addr[1], addr[2]})
	hi := addr[3]
	notHi := gate.Not(hi, gate.Powered)

	var out [16]gate.Bit
	for i := 0; i < 8; i++ {
		out[i] = gate.And(low[i], notHi, gate.Powered)
		out[i+8] = gate.And(low[i], hi, gate.Powered)
	}
	return out
}

// Decode5to32 composes two Decode4to16s; this is the decoder the register
// file uses to turn a 5-bit address into a one-hot register select.
func Decode5to32(addr [5]gate.Bit) [32]gate.Bit {
	low := Decode4to16([4]gate.Bit{addr[0], addr[1], addr[2], addr[3]})
	hi := addr[4]
	notHi := gate.Not(hi, gate.Powered)

	var out [32]gate.Bit
	for i := 0; i < 16; i++ {
		out[i] = gate.And(low[i], notHi, gate.Powered)
		out[i+16] = gate.And(low[i], hi, gate.Powered)
	}
	return out
}

// Decode5to32Index is a convenience wrapper for callers that already have
// a plain 0-31 register index rather than individual address bits.
func Decode5to32Index(addr uint8) [32]gate.Bit {
	var bits [5]gate.Bit
	for i := range bits {
		bits[i] = gate.Bit((addr >> i) & 1)
	}
	return Decode5to32(bits)
}

// Encode8to3 is the priority encoder: it returns the 3-bit index of the
// highest-set input bit. If no bit is set it returns zero with ok=false.
func Encode8to3(in [8]gate.Bit) (index uint8, ok bool) {
	for i := 7; i >= 0; i-- {
		if in[i] != gate.Low {
			return uint8(i), true
		}
	}
	return 0, false
}

// OneHotIndex returns the position of the single set bit in a one-hot
// vector, or -1 if no bit is set (spec §9 open question: -1 chosen over 0
// or len(in) because it can never collide with a real index).
func OneHotIndex(in []gate.Bit) int {
	for i, b := range in {
		if b != gate.Low {
			return i
		}
	}
	return -1
}
