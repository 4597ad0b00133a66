package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nescore/nescore/pkg/cartridge"
)

func newROMInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rom-info <rom-file>",
		Short: "Print the parsed iNES header fields for a ROM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runROMInfo(args[0])
		},
	}
}

var mirroringNames = map[uint8]string{
	cartridge.MirrorHorizontal: "horizontal",
	cartridge.MirrorVertical:   "vertical",
	cartridge.MirrorSingleLow:  "single-screen (low)",
	cartridge.MirrorSingleHigh: "single-screen (high)",
	cartridge.MirrorFourScreen: "four-screen",
}

func runROMInfo(path string) error {
	cart, err := cartridge.LoadFromFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("ROM file:       %s\n", path)
	fmt.Printf("Mapper:         %d\n", cart.MapperID())
	fmt.Printf("PRG-ROM:        %d x 16KB banks (%d KB)\n", cart.PRGBankCount(), int(cart.PRGBankCount())*16)
	fmt.Printf("CHR-ROM:        %d x 8KB banks (%d KB)\n", cart.CHRBankCount(), int(cart.CHRBankCount())*8)
	fmt.Printf("Mirroring:      %s\n", mirroringNames[cart.Mirroring()])
	fmt.Printf("Battery SRAM:   %v\n", cart.HasBattery())
	return nil
}
