package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusReadClearsVBlankAndWriteToggle(t *testing.T) {
	p := New()
	p.status |= statusVBlank
	p.w = true

	value := p.ReadRegister(0x2002)

	assert.True(t, value&0x80 != 0, "VBlank bit should be set in the value returned")
	assert.Zero(t, p.status&statusVBlank, "reading PPUSTATUS clears VBlank")
	assert.False(t, p.w, "reading PPUSTATUS resets the scroll/addr write toggle")
}

func TestPaletteMirroring(t *testing.T) {
	p := New()
	p.vramWrite(0x3F00, 0x10)

	assert.Equal(t, uint8(0x10), p.vramRead(0x3F10), "$3F10 mirrors $3F00")

	p.vramWrite(0x3F04, 0x22)
	assert.Equal(t, uint8(0x22), p.vramRead(0x3F14), "$3F14 mirrors $3F04")
}

func TestNametableMirroringVertical(t *testing.T) {
	p := New()
	p.SetMirroring(MirrorVertical)

	p.vramWrite(0x2000, 0xAB)
	assert.Equal(t, uint8(0xAB), p.vramRead(0x2800), "vertical mirroring maps $2800 onto $2000")
}

func TestNametableMirroringHorizontal(t *testing.T) {
	p := New()
	p.SetMirroring(MirrorHorizontal)

	p.vramWrite(0x2000, 0xCD)
	assert.Equal(t, uint8(0xCD), p.vramRead(0x2400), "horizontal mirroring maps $2400 onto $2000")
}

func TestScrollWritesBuildT(t *testing.T) {
	p := New()
	p.WriteRegister(0x2005, 0x7D) // coarse X = 15, fine X = 5
	assert.Equal(t, uint16(0x0F), p.t&0x1F)
	assert.Equal(t, uint8(0x05), p.x)
	assert.True(t, p.w)

	p.WriteRegister(0x2005, 0x5E) // coarse Y = 11, fine Y = 6
	assert.Equal(t, uint16(11), p.t>>5&0x1F)
	assert.Equal(t, uint16(6), p.t>>12&0x07)
	assert.False(t, p.w)
}

func TestAddrWritesLoadV(t *testing.T) {
	p := New()
	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)
	assert.Equal(t, uint16(0x2108), p.v, "second $2006 write copies t into v")
}

func TestOAMDataWriteWrapsAddress(t *testing.T) {
	p := New()
	p.oamAddr = 0xFF
	p.WriteRegister(0x2004, 0x7A)
	assert.Equal(t, uint8(0x7A), p.oam[0xFF])
	assert.Equal(t, uint8(0x00), p.oamAddr, "OAMADDR wraps after a write at $FF")
}

func TestDataReadIsBufferedExceptPalette(t *testing.T) {
	p := New()
	p.vramWrite(0x2000, 0x42)
	p.vramWrite(0x3F01, 0x15)

	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	first := p.ReadRegister(0x2007)
	second := p.ReadRegister(0x2007)
	assert.NotEqual(t, uint8(0x42), first, "first VRAM read returns the stale buffer")
	assert.Equal(t, uint8(0x42), second, "second read returns the buffered byte")

	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x01)
	assert.Equal(t, uint8(0x15), p.ReadRegister(0x2007), "palette reads bypass the buffer")
}

func TestCoarseXIncrementWrapsNametable(t *testing.T) {
	p := New()
	p.v = 31 // coarse X at the last tile of nametable 0
	p.incCoarseX()
	assert.Equal(t, uint16(0x0400), p.v, "wrapping coarse X toggles the horizontal nametable")
}

func TestFineYIncrementWrapsAtRow29(t *testing.T) {
	p := New()
	p.v = 29<<5 | 7<<12 // coarse Y 29, fine Y 7
	p.incY()
	assert.Equal(t, uint16(0x0800), p.v, "row 29 with fine Y 7 wraps to row 0 of the other nametable")
}

func TestSaveStateRoundTrip(t *testing.T) {
	p := New()
	p.SetMirroring(MirrorVertical)
	p.vramWrite(0x2000, 0x42)
	p.vramWrite(0x3F00, 0x0F)
	p.oam[10] = 0x99
	p.line = 100
	p.dot = 50
	p.frame = 7

	saved := p.SaveState()

	other := New()
	other.LoadState(saved)

	require.Equal(t, p.vramRead(0x2000), other.vramRead(0x2000))
	assert.Equal(t, p.vramRead(0x3F00), other.vramRead(0x3F00))
	assert.Equal(t, p.oam[10], other.oam[10])
	assert.Equal(t, p.line, other.line)
	assert.Equal(t, p.frame, other.frame)
	assert.Equal(t, saved, other.SaveState())
}

func TestMaskAccessor(t *testing.T) {
	p := New()
	p.WriteRegister(0x2001, 0x1E)
	assert.Equal(t, uint8(0x1E), p.Mask())
}

func TestVBlankSetAtLine241(t *testing.T) {
	p := New()
	p.WriteRegister(0x2000, 0x80) // NMI enable
	p.line = 241
	p.dot = 0

	p.Step() // dot 0: idle
	assert.Zero(t, p.status&statusVBlank)
	p.Step() // dot 1: VBlank + NMI
	assert.NotZero(t, p.status&statusVBlank)
	assert.True(t, p.PollNMI())
	assert.False(t, p.PollNMI(), "NMI edge reads back once")
}

func TestPreRenderLineClearsFlags(t *testing.T) {
	p := New()
	p.status = statusVBlank | statusSpr0Hit | statusOverflow
	p.line = preRenderLine
	p.dot = 0

	p.Step()
	p.Step()
	assert.Zero(t, p.status&(statusVBlank|statusSpr0Hit|statusOverflow))
}
