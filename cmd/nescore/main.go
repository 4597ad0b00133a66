// Command nescore is the command-line front end for the nescore emulator
// library: it plays a ROM through SDL2 video and audio, prints parsed iNES
// header fields, or runs the headless nestest CPU conformance scenario.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "nescore",
		Short:         "NES emulator core: play ROMs, inspect headers, run conformance tests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newROMInfoCommand())
	root.AddCommand(newNestestCommand())

	if err := root.Execute(); err != nil {
		log.Fatalf("nescore: %v", err)
	}
}
