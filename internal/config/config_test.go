package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSetsMemoryCeiling(t *testing.T) {
	cfg := Default()
	assert.Equal(t, uint32(DefaultMemoryCeiling), cfg.Memory.CeilingBytes)
}

func TestLoadParsesTomlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "riscv-sim.toml")
	contents := `
[memory]
ceiling_bytes = 4096

[trace]
show_memory = true
show_reads = true

[output]
assemble_only = true
path = "out.hex"
`
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, uint32(4096), cfg.Memory.CeilingBytes)
	assert.True(t, cfg.Trace.ShowMemory)
	assert.True(t, cfg.Trace.ShowReads)
	assert.False(t, cfg.Trace.ShowWrites)
	assert.True(t, cfg.Output.AssembleOnly)
	assert.Equal(t, "out.hex", cfg.Output.Path)
}

func TestLoadFallsBackToDefaultCeilingWhenUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "riscv-sim.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[trace]\nshow_reads = true\n"), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, uint32(DefaultMemoryCeiling), cfg.Memory.CeilingBytes)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
