// Package memory implements the sparse data memory, instruction memory,
// and program counter of spec §4.8/§4.9.
package memory

import (
	"fmt"

	"github.com/frewtypebbles/riscv-sim/internal/bitvec"
	"github.com/frewtypebbles/riscv-sim/internal/register"
)

// DefaultCeiling is the address-space bound used when none is configured
// (SPEC_FULL.md §4.14's `[memory] ceiling_bytes` default).
const DefaultCeiling = 1 << 20

// Unit is the sparse byte-addressable data memory of spec §4.8: a
// map[uint32]byte that grows on demand and never shrinks, defaulting to
// zero for untouched addresses.
type Unit struct {
	pages   map[uint32]byte
	ceiling uint32
}

// NewUnit returns an empty memory bounded by ceiling bytes.
func NewUnit(ceiling uint32) *Unit {
	return &Unit{pages: make(map[uint32]byte), ceiling: ceiling}
}

// Read concatenates four consecutive bytes starting at addr into a
// 32-bit little-endian word. Panics if the access falls outside the
// configured ceiling — per spec §4.8 this is fatal, not a returned error,
// matching the "Memory fault" row of the error taxonomy being the
// caller's (datapath's) responsibility to translate into simerr.
func (m *Unit) Read(addr uint32) bitvec.Vector {
	m.checkBounds(addr)
	var word uint32
	for i := uint32(0); i < 4; i++ {
		word |= uint32(m.byteAt(addr+i)) << (8 * i)
	}
	return bitvec.New(uint64(word), 32)
}

// Write distributes a 32-bit value across four consecutive bytes starting
// at addr, little-endian.
func (m *Unit) Write(addr uint32, data bitvec.Vector) {
	m.checkBounds(addr)
	w := data.Uint32()
	for i := uint32(0); i < 4; i++ {
		m.pages[addr+i] = byte(w >> (8 * i))
	}
}

func (m *Unit) byteAt(addr uint32) byte {
	return m.pages[addr]
}

func (m *Unit) checkBounds(addr uint32) {
	if addr > m.ceiling-4 {
		panic(fmt.Sprintf("memory: address 0x%08X out of bounds (ceiling 0x%08X)", addr, m.ceiling))
	}
}

// ReadByte/ReadHalf back lb/lh/lbu/lhu, whose access granularity is
// narrower than Read's fixed 4-byte word (spec §4.8's byte/half/word
// distinction, which the sparse map itself is agnostic to).
func (m *Unit) ReadByte(addr uint32) byte {
	m.checkBoundsWidth(addr, 1)
	return m.byteAt(addr)
}

func (m *Unit) ReadHalf(addr uint32) uint16 {
	m.checkBoundsWidth(addr, 2)
	return uint16(m.byteAt(addr)) | uint16(m.byteAt(addr+1))<<8
}

// WriteByte/WriteHalf back sb/sh, touching only the bytes named rather
// than the full word Write always overwrites.
func (m *Unit) WriteByte(addr uint32, v byte) {
	m.checkBoundsWidth(addr, 1)
	m.pages[addr] = v
}

func (m *Unit) WriteHalf(addr uint32, v uint16) {
	m.checkBoundsWidth(addr, 2)
	m.pages[addr] = byte(v)
	m.pages[addr+1] = byte(v >> 8)
}

func (m *Unit) checkBoundsWidth(addr uint32, width uint32) {
	if addr > m.ceiling-width {
		panic(fmt.Sprintf("memory: address 0x%08X out of bounds (ceiling 0x%08X)", addr, m.ceiling))
	}
}

// Pages exposes the sparse backing map directly, for callers that print a
// memory dump (tracelog.Logger.Memory, the CLI's --show_memory pretty
// printer) rather than issuing individual Read/Write calls.
func (m *Unit) Pages() map[uint32]byte { return m.pages }

// EndOfProgram is InstructionMemory.Fetch's sentinel for "past the last
// loaded word" (spec §4.9); the datapath halts on it.
var EndOfProgram = bitvec.New(0xFFFFFFFF, 32)

// InstructionMemory is the ordered sequence of 32-bit words a program
// assembles into, addressed by word index = byte address / 4.
type InstructionMemory struct {
	words []bitvec.Vector
}

// NewInstructionMemory returns an empty instruction memory.
func NewInstructionMemory() *InstructionMemory {
	return &InstructionMemory{}
}

// Load replaces the contents with a new list of 32-bit words.
func (im *InstructionMemory) Load(words []bitvec.Vector) {
	im.words = words
}

// Fetch returns the word at pc/4, or EndOfProgram past the last word.
func (im *InstructionMemory) Fetch(pc bitvec.Vector) bitvec.Vector {
	idx := pc.Uint32() / 4
	if int(idx) >= len(im.words) {
		return EndOfProgram
	}
	return im.words[idx]
}

// Len reports how many words are loaded.
func (im *InstructionMemory) Len() int { return len(im.words) }

// ProgramCounter wraps a 32-bit register holding the byte address of the
// next instruction to fetch.
type ProgramCounter struct {
	reg *register.Register
}

// NewProgramCounter returns a PC initialized to startAddress.
func NewProgramCounter(startAddress uint32) *ProgramCounter {
	pc := &ProgramCounter{reg: register.NewRegister(register.Width)}
	pc.reg.Write(bitvec.New(uint64(startAddress), register.Width))
	return pc
}

// Read returns the current PC value.
func (pc *ProgramCounter) Read() bitvec.Vector { return pc.reg.Read() }

// Write sets the PC to a new value, once per cycle (spec §4.9).
func (pc *ProgramCounter) Write(v bitvec.Vector) { pc.reg.Write(v) }
