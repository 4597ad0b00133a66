package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nescore/nescore/pkg/nes"
)

const (
	nestestEntryPoint  = 0xC000
	nestestCycleBudget = 26554
)

func newNestestCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "nestest <nestest.nes>",
		Short: "Run the headless nestest CPU conformance scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNestest(args[0], verbose)
		},
	}
	cmd.Flags().BoolVar(&verbose, "trace", false, "print a disassembly trace for every instruction")
	return cmd
}

// runNestest loads nestest.nes, forces execution to begin at the ROM's
// "automated" entry point ($C000, which skips the parts of the test that
// need a real PPU frame to run safely), and steps the CPU until either the
// cycle budget is exhausted or the CPU loops in place (the test ROM halts
// by jumping to itself once done). It reports failure the same way the
// well-known nestest log convention does: the two result bytes at $0002
// and $0003 must both read back zero.
func runNestest(path string, trace bool) error {
	system := nes.New(0)
	if err := system.LoadROMFile(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	system.Reset()

	cpu := system.CPU()
	bus := system.Bus()
	cpu.PC = nestestEntryPoint

	var cyclesRun uint64
	for cyclesRun < nestestCycleBudget {
		if trace {
			fmt.Println(cpu.Disassemble(cpu.PC))
		}
		pc := cpu.PC
		cyclesRun += uint64(system.StepInstruction())
		if cpu.PC == pc {
			break // the ROM parks the PC in a tight loop (JMP *) once it's done
		}
	}

	result1 := bus.Read(0x0002)
	result2 := bus.Read(0x0003)
	fmt.Printf("cycles run: %d\n", cyclesRun)
	fmt.Printf("result bytes: $0002=%02X $0003=%02X\n", result1, result2)

	if result1 != 0x00 || result2 != 0x00 {
		return fmt.Errorf("nestest failed: expected $0002=$0003=$00, got $0002=%02X $0003=%02X", result1, result2)
	}

	fmt.Println("nestest: PASS")
	return nil
}
