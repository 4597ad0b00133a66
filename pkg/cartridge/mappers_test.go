package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// prgFill builds n 16KB PRG banks, each filled with its own bank number.
func prgFill(n int) []uint8 {
	prg := make([]uint8, n*0x4000)
	for i := range prg {
		prg[i] = uint8(i / 0x4000)
	}
	return prg
}

// chrFill builds n 1KB CHR banks, each filled with its own bank number.
func chrFill(n int) []uint8 {
	chr := make([]uint8, n*0x0400)
	for i := range chr {
		chr[i] = uint8(i / 0x0400)
	}
	return chr
}

// mmc1Serial shifts a 5-bit value into an MMC1 register port, LSB first.
func mmc1Serial(m *MMC1, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		m.WritePRG(addr, value>>i&1)
	}
}

func TestMMC1DefaultsToFixLastBank(t *testing.T) {
	m := NewMMC1(prgFill(8), chrFill(8), MirrorHorizontal)

	assert.Equal(t, uint8(0), m.ReadPRG(0x8000), "first bank switched in at $8000")
	assert.Equal(t, uint8(7), m.ReadPRG(0xC000), "last bank fixed at $C000")
}

func TestMMC1SerialPRGBankSwitch(t *testing.T) {
	m := NewMMC1(prgFill(8), chrFill(8), MirrorHorizontal)

	mmc1Serial(m, 0xE000, 3)
	assert.Equal(t, uint8(3), m.ReadPRG(0x8000))
	assert.Equal(t, uint8(7), m.ReadPRG(0xC000), "fix-last mode leaves $C000 alone")
}

func TestMMC1ResetWriteAbandonsSequence(t *testing.T) {
	m := NewMMC1(prgFill(8), chrFill(8), MirrorHorizontal)

	// Two bits of a would-be bank switch, then a reset write.
	m.WritePRG(0xE000, 1)
	m.WritePRG(0xE000, 1)
	m.WritePRG(0xE000, 0x80)

	// Four more single-bit writes must not latch anything...
	for i := 0; i < 4; i++ {
		m.WritePRG(0xE000, 1)
		assert.Equal(t, uint8(0), m.ReadPRG(0x8000), "register must not latch before the fifth write")
	}
	// ...and the fifth completes a fresh 5-bit value (11111 -> bank 15,
	// masked to the 8 banks present -> bank 7).
	m.WritePRG(0xE000, 1)
	assert.Equal(t, uint8(7), m.ReadPRG(0x8000))
}

func TestMMC1MirroringFollowsControl(t *testing.T) {
	m := NewMMC1(prgFill(2), chrFill(8), MirrorHorizontal)
	assert.Equal(t, uint8(MirrorHorizontal), m.Mirroring())

	mmc1Serial(m, 0x8000, 0x0E) // vertical, fix-last PRG mode
	assert.Equal(t, uint8(MirrorVertical), m.Mirroring())
}

func TestCNROMSwitchesCHRBanks(t *testing.T) {
	m := NewCNROM(prgFill(2), chrFill(32), MirrorVertical) // 4x 8KB CHR

	assert.Equal(t, uint8(0), m.ReadCHR(0x0000))
	m.WritePRG(0x8000, 2)
	assert.Equal(t, uint8(16), m.ReadCHR(0x0000), "bank 2 starts at 1KB-bank index 16")
}

func TestAxROMBankAndMirroring(t *testing.T) {
	m := NewAxROM(prgFill(8), nil, MirrorHorizontal) // 4x 32KB PRG

	assert.Equal(t, uint8(MirrorSingleLow), m.Mirroring())
	assert.Equal(t, uint8(0), m.ReadPRG(0x8000))

	m.WritePRG(0x8000, 0x11) // bank 1, upper nametable
	assert.Equal(t, uint8(2), m.ReadPRG(0x8000), "32KB bank 1 begins at 16KB bank 2")
	assert.Equal(t, uint8(MirrorSingleHigh), m.Mirroring())
}

func TestMMC3PRGModeSwapsFixedWindows(t *testing.T) {
	m := NewMMC3(prgFill(8), chrFill(8), MirrorHorizontal) // 16x 8KB PRG banks

	m.WritePRG(0x8000, 6) // select slot 6, PRG mode 0
	m.WritePRG(0x8001, 4)
	assert.Equal(t, uint8(2), m.ReadPRG(0x8000), "8KB bank 4 holds PRG byte pattern 2")
	assert.Equal(t, uint8(7), m.ReadPRG(0xC000), "second-to-last bank fixed at $C000")

	m.WritePRG(0x8000, 0x46) // same slot, PRG mode 1
	assert.Equal(t, uint8(7), m.ReadPRG(0x8000), "mode 1 fixes second-to-last bank at $8000")
	assert.Equal(t, uint8(2), m.ReadPRG(0xC000), "mode 1 moves the switchable window to $C000")
}

func TestMMC3IRQCountsA12Rises(t *testing.T) {
	m := NewMMC3(prgFill(8), chrFill(8), MirrorHorizontal)

	m.WritePRG(0xC000, 3) // latch
	m.WritePRG(0xC001, 0) // reload on next clock
	m.WritePRG(0xE001, 0) // enable

	for i := 0; i < 3; i++ {
		m.OnPPUA12Rise()
		assert.False(t, m.IRQPending(), "no IRQ until the counter reaches zero")
	}
	m.OnPPUA12Rise()
	assert.True(t, m.IRQPending())

	m.ClearIRQ()
	assert.False(t, m.IRQPending())
}

func TestMMC3IRQDisableAcknowledges(t *testing.T) {
	m := NewMMC3(prgFill(8), chrFill(8), MirrorHorizontal)
	m.WritePRG(0xC000, 0)
	m.WritePRG(0xC001, 0)
	m.WritePRG(0xE001, 0)
	m.OnPPUA12Rise()
	assert.True(t, m.IRQPending())

	m.WritePRG(0xE000, 0)
	assert.False(t, m.IRQPending(), "IRQ disable also acknowledges a pending IRQ")
}

func TestMMC1SaveStateRestoresBanks(t *testing.T) {
	m := NewMMC1(prgFill(8), chrFill(8), MirrorHorizontal)
	mmc1Serial(m, 0xE000, 5)
	saved := m.SaveState()

	other := NewMMC1(prgFill(8), chrFill(8), MirrorHorizontal)
	other.LoadState(saved)
	assert.Equal(t, m.ReadPRG(0x8000), other.ReadPRG(0x8000))
	assert.Equal(t, saved, other.SaveState())
}
