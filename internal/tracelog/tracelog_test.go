package tracelog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleIsSuppressedWhenStepsFlagIsOff(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Flags{})
	l.Cycle(1, 0, 0x003100B3, "add")
	assert.Empty(t, buf.String())
}

func TestCycleLogsWhenStepsFlagIsOn(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Flags{Steps: true})
	l.Cycle(1, 0x1000, 0x003100B3, "add")
	assert.Contains(t, buf.String(), "add")
	assert.Contains(t, buf.String(), "0x00001000")
}

func TestMemReadGatedByReadsFlag(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Flags{Reads: true})
	l.MemRead(3, 0x100, 0xDEADBEEF)
	assert.True(t, strings.Contains(buf.String(), "DEADBEEF"))
}

func TestDiscardLoggerNeverPanics(t *testing.T) {
	l := Discard()
	l.Cycle(1, 0, 0, "nop")
	l.MemRead(1, 0, 0)
	l.MemWrite(1, 0, 0)
	l.Immediate(1, "I", -1)
	l.Registers(1, "int", [32]uint32{})
	l.Memory(1, map[uint32]byte{0x10: 0xFF})
}
