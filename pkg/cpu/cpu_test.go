package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatBus is a 64KB RAM-backed Bus used only for CPU unit tests.
type flatBus struct {
	mem [65536]uint8
}

func (b *flatBus) Read(addr uint16) uint8         { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, value uint8) { b.mem[addr] = value }

func newTestCPU() (*CPU, *flatBus) {
	bus := &flatBus{}
	bus.mem[0xFFFC] = 0x00
	bus.mem[0xFFFD] = 0x80
	c := New(bus)
	c.Reset()
	return c, bus
}

func TestResetVector(t *testing.T) {
	bus := &flatBus{}
	bus.mem[0xFFFC] = 0x34
	bus.mem[0xFFFD] = 0x12
	c := New(bus)
	c.Reset()

	assert.Equal(t, uint16(0x1234), c.PC)
	assert.Equal(t, uint8(0xFD), c.SP)
	assert.True(t, c.P&FlagInterrupt != 0)
	assert.True(t, c.P&FlagUnused != 0)
}

func TestADCSignedOverflow(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x7F
	c.P &^= FlagCarry

	bus.mem[0x8000] = 0x69 // ADC #imm
	bus.mem[0x8001] = 0x01

	c.Step()

	assert.Equal(t, uint8(0x80), c.A)
	assert.False(t, c.getFlag(FlagCarry), "no unsigned carry out of 0x7F+0x01")
	assert.True(t, c.getFlag(FlagOverflow), "0x7F+0x01 overflows as a signed addition")
	assert.True(t, c.getFlag(FlagNegative))
	assert.False(t, c.getFlag(FlagZero))
}

func TestIndirectJMPPageBoundaryBug(t *testing.T) {
	c, bus := newTestCPU()

	// Pointer straddles the page boundary: low byte at $30FF, high byte
	// incorrectly re-read from $3000 instead of $3100.
	bus.mem[0x30FF] = 0x40
	bus.mem[0x3000] = 0x80
	bus.mem[0x3100] = 0xFF // if the bug were absent, this would be used instead

	bus.mem[0x8000] = 0x6C // JMP (ind)
	bus.mem[0x8001] = 0xFF
	bus.mem[0x8002] = 0x30

	c.Step()

	assert.Equal(t, uint16(0x8040), c.PC)
}

func TestUnusedFlagAlwaysSet(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0xA9 // LDA #$00
	bus.mem[0x8001] = 0x00
	bus.mem[0x8002] = 0xA9 // LDA #$FF
	bus.mem[0x8003] = 0xFF

	c.Step()
	assert.True(t, c.P&FlagUnused != 0)
	c.Step()
	assert.True(t, c.P&FlagUnused != 0)
}

func TestBRKSetsBreakOnPushedStatusOnly(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0xFFFE] = 0x00
	bus.mem[0xFFFF] = 0x90 // IRQ/BRK vector -> $9000

	bus.mem[0x8000] = 0x00 // BRK

	c.Step()

	assert.Equal(t, uint16(0x9000), c.PC)
	assert.True(t, c.P&FlagUnused != 0)
	pushedStatus := bus.mem[stackBase+uint16(c.SP)+1]
	assert.True(t, pushedStatus&FlagBreak != 0, "BRK pushes status with B set")
	assert.False(t, c.P&FlagBreak != 0, "B is never a real bit of the live status register")
}

func TestDisassembleImmediate(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0x69 // ADC #$42
	bus.mem[0x8001] = 0x42

	line := c.Disassemble(0x8000)
	assert.Contains(t, line, "ADC")
	assert.Contains(t, line, "#$42")
}

func TestSaveStateRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.A, c.X, c.Y = 0x11, 0x22, 0x33
	c.PC = 0xBEEF
	c.Cycles = 123456789
	c.TriggerNMI()

	saved := c.SaveState()

	other, _ := newTestCPU()
	other.LoadState(saved)

	require.Equal(t, c.A, other.A)
	assert.Equal(t, c.X, other.X)
	assert.Equal(t, c.Y, other.Y)
	assert.Equal(t, c.PC, other.PC)
	assert.Equal(t, c.Cycles, other.Cycles)
	assert.Equal(t, c.pendingNMI, other.pendingNMI)

	assert.Equal(t, saved, other.SaveState())
}
