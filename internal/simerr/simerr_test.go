package simerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyntaxErrorFormatsLineAndMessage(t *testing.T) {
	err := NewSyntaxError(12, "unknown mnemonic %q", "addx")
	assert.Equal(t, `syntax error at line 12: unknown mnemonic "addx"`, err.Error())
	assert.True(t, Is(err, KindSyntax))
	assert.False(t, Is(err, KindDecode))
}

func TestMemoryFaultErrorCarriesAddress(t *testing.T) {
	err := NewMemoryFaultError(7, 0x100000, "out of bounds")
	assert.True(t, Is(err, KindMemoryFault))
	assert.Contains(t, err.Error(), "0x00100000")
}

func TestWrappedErrorStillMatchesIs(t *testing.T) {
	base := NewDecodeError(3, "unrecognized opcode %07b", 0x7F)
	wrapped := fmt.Errorf("fetch-decode stage: %w", base)
	assert.True(t, Is(wrapped, KindDecode))

	var target *DecodeError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, 3, target.Cycle)
}

func TestUnsupportedOpErrorDoesNotMatchOtherKinds(t *testing.T) {
	err := NewUnsupportedOpError(1, "fsqrt.s is not implemented")
	assert.True(t, Is(err, KindUnsupportedOp))
	assert.False(t, Is(err, KindEncoding))
	assert.False(t, Is(err, KindSyntax))
}
