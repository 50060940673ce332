// Package datapath implements the single-cycle fetch/decode/execute/
// memory/writeback driver of spec §4.11, wiring internal/control,
// internal/alucontrol, internal/alu, internal/fpu, internal/register, and
// internal/memory together exactly as §4.11's ten numbered steps describe.
package datapath

import (
	"github.com/frewtypebbles/riscv-sim/internal/alu"
	"github.com/frewtypebbles/riscv-sim/internal/alucontrol"
	"github.com/frewtypebbles/riscv-sim/internal/bitvec"
	"github.com/frewtypebbles/riscv-sim/internal/control"
	"github.com/frewtypebbles/riscv-sim/internal/fpu"
	"github.com/frewtypebbles/riscv-sim/internal/isa"
	"github.com/frewtypebbles/riscv-sim/internal/memory"
	"github.com/frewtypebbles/riscv-sim/internal/register"
	"github.com/frewtypebbles/riscv-sim/internal/simerr"
	"github.com/frewtypebbles/riscv-sim/internal/tracelog"
)

// Datapath owns the two register files, the data and instruction memory,
// and the program counter, and drives them one cycle at a time. It is the
// single mutating owner spec §5 requires: nothing here runs concurrently.
type Datapath struct {
	instrMem *memory.InstructionMemory
	dataMem  *memory.Unit
	pc       *memory.ProgramCounter
	intRF    *register.File
	fpRF     *register.File
	log      tracelog.Logger

	Cycle int

	// LastFPFlags holds the IEEE-754 exception flags from the most recent
	// FP ALU op, for callers that want to inspect them; the datapath
	// itself does not branch on them (spec's Non-goal list excludes
	// trap/interrupt handling beyond ecall/ebreak).
	LastFPFlags fpu.Flags
}

// New builds a Datapath with the given program loaded into instruction
// memory, a data memory bounded by ceiling bytes, and PC starting at
// startAddress.
func New(words []bitvec.Vector, ceiling uint32, startAddress uint32, log tracelog.Logger) *Datapath {
	instrMem := memory.NewInstructionMemory()
	instrMem.Load(words)
	return &Datapath{
		instrMem: instrMem,
		dataMem:  memory.NewUnit(ceiling),
		pc:       memory.NewProgramCounter(startAddress),
		intRF:    register.NewIntegerFile(),
		fpRF:     register.NewFloatFile(),
		log:      log,
	}
}

// PC returns the current program-counter value.
func (d *Datapath) PC() uint32 { return d.pc.Read().Uint32() }

// IntRegisters snapshots the integer register file for trace/test use.
func (d *Datapath) IntRegisters() [32]uint32 { return snapshot(d.intRF) }

// FPRegisters snapshots the FP register file for trace/test use.
func (d *Datapath) FPRegisters() [32]uint32 { return snapshot(d.fpRF) }

// DataMemory exposes the data memory for preloading and inspection (the
// CLI loads assembler.Program.DataBytes through this before running).
func (d *Datapath) DataMemory() *memory.Unit { return d.dataMem }

func snapshot(f *register.File) [32]uint32 {
	var out [32]uint32
	for i := uint8(0); i < 32; i++ {
		out[i] = f.Peek(i).Uint32()
	}
	return out
}

// Run executes cycles until InstructionMemory.Fetch returns the
// end-of-program sentinel or a cycle returns an error (spec §5: a program
// terminates exactly when fetch hits the sentinel).
func (d *Datapath) Run() error {
	for {
		halted, err := d.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// Step executes exactly one cycle per spec §4.11's ten numbered steps.
func (d *Datapath) Step() (halted bool, err error) {
	instrWord := d.instrMem.Fetch(d.pc.Read())
	if instrWord.Equal(memory.EndOfProgram) {
		return true, nil
	}
	d.Cycle++

	opcode := uint8(instrWord.Slice(0, 6).Uint64())
	rd := uint8(instrWord.Slice(7, 11).Uint64())
	funct3 := uint8(instrWord.Slice(12, 14).Uint64())
	rs1 := uint8(instrWord.Slice(15, 19).Uint64())
	rs2 := uint8(instrWord.Slice(20, 24).Uint64())
	funct7 := uint8(instrWord.Slice(25, 31).Uint64())

	sig, decErr := control.Decode(instrWord)
	if decErr != nil {
		return false, simerr.NewDecodeError(d.Cycle, "%v", decErr)
	}
	d.log.Cycle(d.Cycle, d.pc.Read().Uint32(), instrWord.Uint32(), isa.Describe(opcode, int8(funct3), int8(funct7)))

	iImm := control.IImm(instrWord)
	sImm := control.SImm(instrWord)
	bImm := control.BImm(instrWord)
	uImm := control.UImm(instrWord)
	jImm := control.JImm(instrWord)
	d.log.Immediate(d.Cycle, "I", iImm.Int64())
	d.log.Immediate(d.Cycle, "S", sImm.Int64())
	d.log.Immediate(d.Cycle, "B", bImm.Int64())
	d.log.Immediate(d.Cycle, "U", int64(uImm.Uint64()))
	d.log.Immediate(d.Cycle, "J", jImm.Int64())

	_, pcPlus4 := alu.Update(alu.ADD, d.pc.Read(), bitvec.New(4, 32))

	operand1, operand2, storeValue := d.selectOperands(opcode, sig, rs1, rs2, iImm, sImm, uImm)

	zero, result, err := d.compute(sig, opcode, funct3, funct7, operand1, operand2)
	if err != nil {
		return false, err
	}

	memWord, err := d.accessMemory(sig, opcode, funct3, result, storeValue)
	if err != nil {
		return false, err
	}

	writebackData := result
	if sig.FPMemToReg || sig.MemToReg {
		writebackData = memWord
	}
	if sig.Jump {
		writebackData = pcPlus4
	}
	d.writeback(sig, rd, writebackData)

	d.nextPC(sig, opcode, funct3, zero, result, pcPlus4, bImm, jImm)

	d.log.Registers(d.Cycle, "int", d.IntRegisters())
	d.log.Registers(d.Cycle, "fp", d.FPRegisters())
	d.log.Memory(d.Cycle, d.dataMem.Pages())

	return false, nil
}

// selectOperands implements spec §4.11 step 5's per-opcode ALU-input
// selection.
func (d *Datapath) selectOperands(opcode uint8, sig control.Signals, rs1, rs2 uint8, iImm, sImm, uImm bitvec.Vector) (operand1, operand2, storeValue bitvec.Vector) {
	switch opcode {
	case isa.OpcodeLUI:
		return bitvec.Zero(32), uImm, bitvec.Vector{}
	case isa.OpcodeAUIPC:
		return d.pc.Read(), uImm, bitvec.Vector{}
	case isa.OpcodeStore:
		return d.intRF.Peek(rs1), sImm, d.intRF.Peek(rs2)
	case isa.OpcodeFPStore:
		return d.intRF.Peek(rs1), sImm, d.fpRF.Peek(rs2)
	case isa.OpcodeFPLoad:
		return d.intRF.Peek(rs1), iImm, bitvec.Vector{}
	default:
		var rs1Value bitvec.Vector
		if sig.RegFileSel == isa.RegFP {
			rs1Value = d.fpRF.Peek(rs1)
		} else {
			rs1Value = d.intRF.Peek(rs1)
		}
		if sig.ALUSrc {
			return rs1Value, iImm, bitvec.Vector{}
		}
		var rs2Value bitvec.Vector
		if sig.RegFileSel == isa.RegFP {
			rs2Value = d.fpRF.Peek(rs2)
		} else {
			rs2Value = d.intRF.Peek(rs2)
		}
		return rs1Value, rs2Value, bitvec.Vector{}
	}
}

// compute implements spec §4.11 step 6: FPU for FPUOp instructions,
// otherwise the integer ALU (or RV32M multiply/divide) via alucontrol.
func (d *Datapath) compute(sig control.Signals, opcode, funct3, funct7 uint8, operand1, operand2 bitvec.Vector) (zero bool, result bitvec.Vector, err error) {
	if sig.FPUOp {
		if sig.Unimplemented {
			return false, bitvec.Vector{}, simerr.NewUnsupportedOpError(d.Cycle, "%s is recognized but not implemented", isa.Describe(opcode, int8(funct3), int8(funct7)))
		}
		var bits uint32
		switch funct7 {
		case 0b0000000:
			bits, d.LastFPFlags = fpu.Add(operand1.Uint32(), operand2.Uint32())
		case 0b0000100:
			bits, d.LastFPFlags = fpu.Sub(operand1.Uint32(), operand2.Uint32())
		case 0b0001000:
			bits, d.LastFPFlags = fpu.Mul(operand1.Uint32(), operand2.Uint32())
		default:
			return false, bitvec.Vector{}, simerr.NewUnsupportedOpError(d.Cycle, "FP funct7 0b%07b has no implemented semantics", funct7)
		}
		result = bitvec.New(uint64(bits), 32)
		return result.IsZero(), result, nil
	}

	if sig.Unimplemented {
		return false, bitvec.Vector{}, simerr.NewUnsupportedOpError(d.Cycle, "%s is recognized but not implemented", isa.Describe(opcode, int8(funct3), int8(funct7)))
	}

	isRType := opcode == isa.OpcodeOp
	decision, derr := alucontrol.Decode(sig.ALUOp, funct3, funct7, isRType)
	if derr != nil {
		return false, bitvec.Vector{}, simerr.NewDecodeError(d.Cycle, "%v", derr)
	}
	if decision.IsMulDiv {
		result = alu.MulDiv(decision.MOp, operand1, operand2)
		return result.IsZero(), result, nil
	}
	zero, result = alu.Update(decision.Op, operand1, operand2)
	return zero, result, nil
}

// accessMemory implements spec §4.11 step 7, translating a memory.Unit
// bounds panic into a MemoryFaultError (the memory layer's contract is
// "fatal", the datapath's is "return an error"). funct3 picks the
// byte/half/word access width and, for loads, sign- vs zero-extension;
// memory.Unit's Read/Write are always word-granular, so narrower loads
// and stores go through its ReadByte/ReadHalf/WriteByte/WriteHalf.
func (d *Datapath) accessMemory(sig control.Signals, opcode, funct3 uint8, address, storeValue bitvec.Vector) (bitvec.Vector, error) {
	var loaded bitvec.Vector
	if sig.MemRead {
		v, err := d.safeMemRead(opcode, funct3, address.Uint32())
		if err != nil {
			return bitvec.Vector{}, err
		}
		loaded = v
		d.log.MemRead(d.Cycle, address.Uint32(), loaded.Uint32())
	}
	if sig.MemWrite {
		if err := d.safeMemWrite(opcode, funct3, address.Uint32(), storeValue); err != nil {
			return bitvec.Vector{}, err
		}
		d.log.MemWrite(d.Cycle, address.Uint32(), storeValue.Uint32())
	}
	return loaded, nil
}

func (d *Datapath) safeMemRead(opcode, funct3 uint8, addr uint32) (v bitvec.Vector, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = simerr.NewMemoryFaultError(d.Cycle, addr, "%v", r)
		}
	}()
	if opcode == isa.OpcodeFPLoad {
		return d.dataMem.Read(addr), nil
	}
	switch funct3 {
	case 0b000: // lb
		return bitvec.New(uint64(int32(int8(d.dataMem.ReadByte(addr)))), 32), nil
	case 0b001: // lh
		return bitvec.New(uint64(int32(int16(d.dataMem.ReadHalf(addr)))), 32), nil
	case 0b100: // lbu
		return bitvec.New(uint64(d.dataMem.ReadByte(addr)), 32), nil
	case 0b101: // lhu
		return bitvec.New(uint64(d.dataMem.ReadHalf(addr)), 32), nil
	default: // lw (0b010)
		return d.dataMem.Read(addr), nil
	}
}

func (d *Datapath) safeMemWrite(opcode, funct3 uint8, addr uint32, data bitvec.Vector) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = simerr.NewMemoryFaultError(d.Cycle, addr, "%v", r)
		}
	}()
	if opcode == isa.OpcodeFPStore {
		d.dataMem.Write(addr, data)
		return nil
	}
	switch funct3 {
	case 0b000: // sb
		d.dataMem.WriteByte(addr, byte(data.Uint32()))
	case 0b001: // sh
		d.dataMem.WriteHalf(addr, uint16(data.Uint32()))
	default: // sw (0b010)
		d.dataMem.Write(addr, data)
	}
	return nil
}

// writeback implements spec §4.11 step 9: FPRegWrite takes priority over
// RegWrite, and FPToInt/IntToFP additionally mirror the result into the
// other file. In the current opcode table every FPToInt/IntToFP-tagged
// instruction is also Unimplemented (spec §4.17), so compute already
// returned an UnsupportedOpError before writeback runs for those; this
// still follows the general contract rather than special-casing it away.
func (d *Datapath) writeback(sig control.Signals, rd uint8, data bitvec.Vector) {
	if sig.FPRegWrite {
		d.fpRF.Update(0, 0, rd, data, true)
	} else if sig.RegWrite {
		d.intRF.Update(0, 0, rd, data, true)
	}
	if sig.FPToInt {
		d.intRF.Update(0, 0, rd, data, true)
	}
	if sig.IntToFP {
		d.fpRF.Update(0, 0, rd, data, true)
	}
}

// nextPC implements spec §4.11 step 10, including the explicit JALR-vs-JAL
// split spec §9's open question resolves: JALR masks (rs1+I-imm)&~1 (the
// ALU's result for a JALR cycle, since operand1=rs1 and operand2=I-imm
// there), JAL uses PC+J-imm, and jump-free paths use PC+B-imm for a taken
// branch or PC+4 otherwise.
func (d *Datapath) nextPC(sig control.Signals, opcode, funct3 uint8, zero bool, aluResult, pcPlus4, bImm, jImm bitvec.Vector) {
	_, pcBranch := alu.Update(alu.ADD, d.pc.Read(), bImm)

	candidate := pcPlus4
	if sig.Branch && branchTaken(funct3, zero) {
		candidate = pcBranch
	}

	var pcJump bitvec.Vector
	if opcode == isa.OpcodeJALR {
		pcJump = bitvec.New(uint64(aluResult.Uint32()&^uint32(1)), 32)
	} else {
		_, pcJump = alu.Update(alu.ADD, d.pc.Read(), jImm)
	}

	if sig.Jump {
		d.pc.Write(pcJump)
	} else {
		d.pc.Write(candidate)
	}
}

// branchTaken interprets the alucontrol-chosen comparison's zero flag
// according to which of the six branch funct3 codes fired. alucontrol
// maps {beq,bne}->SUB, {blt,bge}->SLT, {bltu,bgeu}->SLTU: the base member
// of each pair (funct3 bit 0 clear) is taken when the comparison's zero
// flag matches the base condition, and the bit-0-set member is its exact
// logical inverse (bne, bge, bgeu).
func branchTaken(funct3 uint8, zero bool) bool {
	var base bool
	switch funct3 &^ 1 {
	case 0b000: // beq/bne: SUB result is zero iff equal
		base = zero
	default: // blt/bge, bltu/bgeu: SLT(U) result is 1 (non-zero) iff "less than"
		base = !zero
	}
	invert := funct3&1 == 1
	return base != invert
}
