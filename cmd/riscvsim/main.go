// Command riscv-sim is the CLI wrapper of SPEC_FULL.md §4.15: a single
// cobra root command that assembles a source file and, unless
// --assemble_only is set, drives internal/datapath one cycle at a time,
// printing per-cycle trace/memory/register detail through internal/tracelog
// according to the spec §6.1 --show_* flag group.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frewtypebbles/riscv-sim/internal/assembler"
	"github.com/frewtypebbles/riscv-sim/internal/bitvec"
	"github.com/frewtypebbles/riscv-sim/internal/config"
	"github.com/frewtypebbles/riscv-sim/internal/datapath"
	"github.com/frewtypebbles/riscv-sim/internal/simerr"
	"github.com/frewtypebbles/riscv-sim/internal/tracelog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

type cliFlags struct {
	configPath          string
	assembleOnly        bool
	outputPath          string
	dontShowSteps       bool
	showMemory          bool
	showReads           bool
	showWrites          bool
	showImmediateValues bool
	showRegisters       bool
	showRV32IRegisters  bool
	showRV32FRegisters  bool
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   "riscv-sim <source>",
		Short: "Assemble and run a single-cycle RV32I/M/F emulator program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "riscv-sim.toml", "optional run configuration file")
	cmd.Flags().BoolVar(&flags.assembleOnly, "assemble_only", false, "do not execute; only write hex output")
	cmd.Flags().StringVarP(&flags.outputPath, "output", "o", "", "destination for assembled hex (default: stdout)")
	cmd.Flags().BoolVar(&flags.dontShowSteps, "dont_show_steps", false, "suppress per-cycle trace")
	cmd.Flags().BoolVar(&flags.showMemory, "show_memory", false, "after each cycle, dump touched memory pages")
	cmd.Flags().BoolVar(&flags.showReads, "show_reads", false, "log each memory read")
	cmd.Flags().BoolVar(&flags.showWrites, "show_writes", false, "log each memory write")
	cmd.Flags().BoolVar(&flags.showImmediateValues, "show_immediate_values", false, "print each format's decoded immediate per cycle")
	cmd.Flags().BoolVar(&flags.showRegisters, "show_registers", false, "dump both register files every cycle")
	cmd.Flags().BoolVar(&flags.showRV32IRegisters, "show_rv32i_registers", false, "dump the integer register file every cycle")
	cmd.Flags().BoolVar(&flags.showRV32FRegisters, "show_rv32f_registers", false, "dump the FP register file every cycle")

	return cmd
}

func run(sourcePath string, flags cliFlags) error {
	cfg := loadConfig(flags.configPath)
	applyFlagOverrides(&cfg, flags)

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}

	prog, err := assembler.Assemble(string(source), 0)
	if err != nil {
		return err
	}

	if cfg.Output.AssembleOnly {
		return writeHex(prog, cfg.Output.Path)
	}

	logFlags := tracelog.Flags{
		Steps:      !cfg.Trace.DontShowSteps,
		Memory:     cfg.Trace.ShowMemory,
		Reads:      cfg.Trace.ShowReads,
		Writes:     cfg.Trace.ShowWrites,
		Immediates: cfg.Trace.ShowImmediateValues,
		IntRegs:    cfg.Trace.ShowRegisters || cfg.Trace.ShowRV32IRegisters,
		FPRegs:     cfg.Trace.ShowRegisters || cfg.Trace.ShowRV32FRegisters,
	}
	logger := tracelog.New(os.Stderr, logFlags)

	dp := datapath.New(prog.Words, cfg.Memory.CeilingBytes, 0, logger)
	preloadDataSection(dp, prog.DataBytes)

	runErr := dp.Run()

	if logFlags.Memory {
		printMemoryDump(dp)
	}

	return runErr
}

func loadConfig(path string) config.Config {
	if path == "" {
		return config.Default()
	}
	if _, err := os.Stat(path); err != nil {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Default()
	}
	return cfg
}

// applyFlagOverrides layers the CLI flags over riscv-sim.toml: -o replaces
// the file's output path, and each boolean flag, when set, turns its
// setting on. A boolean the file sets to true stays on even if its flag is
// given as false.
func applyFlagOverrides(cfg *config.Config, flags cliFlags) {
	cfg.Output.AssembleOnly = cfg.Output.AssembleOnly || flags.assembleOnly
	if flags.outputPath != "" {
		cfg.Output.Path = flags.outputPath
	}
	cfg.Trace.DontShowSteps = cfg.Trace.DontShowSteps || flags.dontShowSteps
	cfg.Trace.ShowMemory = cfg.Trace.ShowMemory || flags.showMemory
	cfg.Trace.ShowReads = cfg.Trace.ShowReads || flags.showReads
	cfg.Trace.ShowWrites = cfg.Trace.ShowWrites || flags.showWrites
	cfg.Trace.ShowImmediateValues = cfg.Trace.ShowImmediateValues || flags.showImmediateValues
	cfg.Trace.ShowRegisters = cfg.Trace.ShowRegisters || flags.showRegisters
	cfg.Trace.ShowRV32IRegisters = cfg.Trace.ShowRV32IRegisters || flags.showRV32IRegisters
	cfg.Trace.ShowRV32FRegisters = cfg.Trace.ShowRV32FRegisters || flags.showRV32FRegisters
}

func writeHex(prog *assembler.Program, outputPath string) error {
	lines := prog.HexLines()
	if outputPath == "" {
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	}
	return os.WriteFile(outputPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

// preloadDataSection loads the assembler's byte-accurate data-directive
// output into data memory starting at address 0. Data directives and
// instructions share the same flat per-line PC numbering in Pass 1 (spec
// §4.10), so a program that wants a directive's bytes at a particular
// runtime address places the directive, and any load/store referencing
// it, accordingly; this CLI does not infer a separate data-segment base.
func preloadDataSection(dp *datapath.Datapath, data []byte) {
	for i := 0; i+4 <= len(data); i += 4 {
		word := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
		dp.DataMemory().Write(uint32(i), bitvec.New(uint64(word), 32))
	}
	for i := len(data) - len(data)%4; i < len(data); i++ {
		dp.DataMemory().WriteByte(uint32(i), data[i])
	}
}

// printMemoryDump renders the touched data-memory pages as a sorted hex
// grid sized to the terminal width, a final summary to accompany the
// per-cycle dumps tracelog.Logger.Memory already wrote during Run.
func printMemoryDump(dp *datapath.Datapath) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	perByte := 3 // "XX "
	cols := width / perByte
	if cols < 1 {
		cols = 1
	}

	pages := dp.DataMemory().Pages()
	addrs := make([]uint32, 0, len(pages))
	for a := range pages {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	fmt.Fprintf(os.Stderr, "-- final PC: 0x%08X, %d bytes touched --\n", dp.PC(), len(pages))
	for i, a := range addrs {
		if i%cols == 0 {
			if i > 0 {
				fmt.Fprintln(os.Stderr)
			}
			fmt.Fprintf(os.Stderr, "0x%08X: ", a)
		}
		fmt.Fprintf(os.Stderr, "%02X ", pages[a])
	}
	if len(addrs) > 0 {
		fmt.Fprintln(os.Stderr)
	}
}

func exitCodeFor(err error) int {
	switch {
	case simerr.Is(err, simerr.KindSyntax), simerr.Is(err, simerr.KindEncoding):
		return 2
	case simerr.Is(err, simerr.KindMemoryFault), simerr.Is(err, simerr.KindUnsupportedOp), simerr.Is(err, simerr.KindDecode):
		return 3
	default:
		return 1
	}
}
