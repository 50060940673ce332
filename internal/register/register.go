// Package register implements the Register and RegisterFile types of spec
// §3/§4.3: 32-bit latches with read/write ports, and a 32-entry file with
// two read ports and one write port that arbitrates the integer file's
// hardwired-zero register.
//
// Per the design notes (spec §9), a Register here is a value-type latch
// whose Write replaces the whole bit-vector rather than mutating
// individual bits — semantically equivalent to the source's
// sequence-of-mutable-bits model, mechanically simpler.
package register

import (
	"fmt"

	"github.com/frewtypebbles/riscv-sim/internal/bitvec"
	"github.com/frewtypebbles/riscv-sim/internal/decoder"
)

// Width is the bit width of every general-purpose register in this core.
const Width = 32

// Register is a single fixed-width latch.
type Register struct {
	v bitvec.Vector
}

// NewRegister returns a zeroed register of the given width.
func NewRegister(width uint) *Register {
	return &Register{v: bitvec.Zero(width)}
}

// Read returns the register's current value.
func (r *Register) Read() bitvec.Vector { return r.v }

// Write replaces the register's value. len(bits) must equal the
// register's declared width.
func (r *Register) Write(v bitvec.Vector) {
	if v.Width() != r.v.Width() {
		panic(fmt.Sprintf("register: write width %d does not match register width %d", v.Width(), r.v.Width()))
	}
	r.v = v
}

// File is a 32-register file with two read ports and one write port.
type File struct {
	regs [32]*Register
	// zeroHardwired asserts the integer-RF rule that register 0 always
	// reads as zero regardless of writes (spec §3/§4.3). The FP file has
	// no such register and passes false.
	zeroHardwired bool
}

// NewIntegerFile returns a 32×32-bit integer register file with x0
// hardwired to zero.
func NewIntegerFile() *File { return newFile(true) }

// NewFloatFile returns a 32×32-bit FP register file with no hardwired
// register.
func NewFloatFile() *File { return newFile(false) }

func newFile(zeroHardwired bool) *File {
	f := &File{zeroHardwired: zeroHardwired}
	for i := range f.regs {
		f.regs[i] = NewRegister(Width)
	}
	return f
}

// Update performs one register-file cycle: decode the two read addresses
// via the 5→32 decoder, capture their pre-write values, then — if
// writeEnable is set and (for the integer file) writeAddr is not zero —
// commit writeData to writeAddr. Reads always observe the pre-write value,
// even when a read address equals the write address.
func (f *File) Update(read1Addr, read2Addr, writeAddr uint8, writeData bitvec.Vector, writeEnable bool) (read1Data, read2Data bitvec.Vector) {
	read1Data = f.selectRead(read1Addr)
	read2Data = f.selectRead(read2Addr)

	if writeEnable && !(f.zeroHardwired && writeAddr == 0) {
		f.checkAddr(writeAddr)
		f.regs[writeAddr].Write(writeData)
	}

	return read1Data, read2Data
}

// Peek reads a single register without going through a full Update cycle,
// and without disturbing the read-before-write contract of Update (used
// by trace/debug printing and by callers, like store instructions, that
// only need one operand).
func (f *File) Peek(addr uint8) bitvec.Vector {
	return f.selectRead(addr)
}

func (f *File) selectRead(addr uint8) bitvec.Vector {
	f.checkAddr(addr)
	onehot := decoder.Decode5to32Index(addr)
	idx := decoder.OneHotIndex(onehot[:])
	if f.zeroHardwired && idx == 0 {
		return bitvec.Zero(Width)
	}
	return f.regs[idx].Read()
}

func (f *File) checkAddr(addr uint8) {
	if addr > 31 {
		panic(fmt.Sprintf("register: address %d out of range [0,31]", addr))
	}
}
