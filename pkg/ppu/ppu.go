// Package ppu implements the NES Picture Processing Unit (2C02).
//
// The PPU runs at three times the CPU clock and draws one dot per Step
// call. A frame is 262 scanlines of 341 dots each: lines 0-239 are
// visible, 240 is idle, 241-260 are vertical blank, and 261 is the
// pre-render line that primes the pipeline for the next frame. Scrolling
// follows the standard v/t/x/w register model: v is the live VRAM
// address, t the latched scroll target, x the fine X offset, and w the
// shared first/second-write toggle for $2005/$2006.
package ppu

import "github.com/nescore/nescore/pkg/cartridge"

// Nametable mirroring modes. Values match the cartridge package.
const (
	MirrorHorizontal = 0
	MirrorVertical   = 1
	MirrorSingleLow  = 2
	MirrorSingleHigh = 3
	MirrorFourScreen = 4
)

const (
	ScreenWidth  = 256
	ScreenHeight = 240
)

const (
	dotsPerLine   = 341
	linesPerFrame = 262
	visibleLines  = 240
	vblankLine    = 241
	preRenderLine = 261
)

// PPUCTRL bits.
const (
	ctrlNametable  = 0x03 // base nametable select, copied into t bits 10-11
	ctrlInc32      = 0x04 // $2007 access adds 32 instead of 1
	ctrlSprTable   = 0x08 // 8x8 sprite pattern table at $1000
	ctrlBGTable    = 0x10 // background pattern table at $1000
	ctrlTallSprite = 0x20 // 8x16 sprites
	ctrlNMIEnable  = 0x80
)

// PPUMASK bits.
const (
	maskGrayscale = 0x01
	maskBGLeft    = 0x02
	maskSprLeft   = 0x04
	maskShowBG    = 0x08
	maskShowSpr   = 0x10
	maskEmphasis  = 0xE0
)

// PPUSTATUS bits.
const (
	statusOverflow = 0x20
	statusSpr0Hit  = 0x40
	statusVBlank   = 0x80
)

// lineSprite is one sprite accepted for the scanline in flight: its
// screen X, attribute byte, and the two pattern bytes for the row being
// drawn (already reversed when the sprite is horizontally flipped).
type lineSprite struct {
	x    uint8
	attr uint8
	lo   uint8
	hi   uint8
}

// PPU is the complete 2C02 state: VRAM, palette and sprite memory, the
// CPU-visible register file, the scroll registers, and the background and
// sprite pipelines for the dot currently being drawn.
type PPU struct {
	// vram backs the $2000-$2FFF nametable window. Standard carts wire up
	// only the first 2KB; four-screen carts supply the rest, which this
	// array stands in for.
	vram    [4096]uint8
	palette [32]uint8
	oam     [256]uint8
	oamAddr uint8

	ctrl   uint8
	mask   uint8
	status uint8

	v       uint16 // current VRAM address (15 bits)
	t       uint16 // temporary VRAM address / scroll latch
	x       uint8  // fine X scroll (3 bits)
	w       bool   // $2005/$2006 second-write toggle
	readBuf uint8  // $2007 buffered read

	line      int
	dot       int
	frame     uint64
	frameDone bool

	// Background fetch latches, refilled on the 8-dot cadence, and the
	// 16-bit shifters they reload into.
	ntLatch   uint8
	atLatch   uint8
	bgLoLatch uint8
	bgHiLatch uint8
	patLo     uint16
	patHi     uint16
	attLo     uint16
	attHi     uint16

	sprites     [8]lineSprite
	spriteCount int
	spriteZero  bool // sprites[0] is OAM sprite 0

	mapper cartridge.Mapper
	// headerMirror is the mirroring from the iNES header, used only when
	// no mapper is attached; a live mapper's mirroring always wins since
	// several mappers rewrite it at runtime.
	headerMirror uint8

	// A12 filter for MMC3-style IRQ clocking: the mapper is only told
	// about a low-to-high transition of PPU address line A12 after A12
	// has stayed low across a few fetches, which suppresses the rapid
	// toggling within a single tile fetch pair.
	a12Low     bool
	a12LowSpan int

	fb  [ScreenWidth * ScreenHeight]uint8
	nmi bool
}

// New returns a PPU in its power-on state.
func New() *PPU {
	return &PPU{}
}

// SetMapper attaches the cartridge mapper serving pattern-table fetches
// and live mirroring configuration.
func (p *PPU) SetMapper(m cartridge.Mapper) {
	p.mapper = m
}

// SetMirroring records the header-derived mirroring used when no mapper
// is attached.
func (p *PPU) SetMirroring(mode uint8) {
	p.headerMirror = mode
}

// Reset returns the register file and scroll state to power-on values.
// VRAM, palette, and OAM contents are left as-is, like a console reset.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.readBuf = 0
	p.line, p.dot = 0, 0
	p.nmi = false
}

func (p *PPU) renderingOn() bool {
	return p.mask&(maskShowBG|maskShowSpr) != 0
}

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	visible := p.line < visibleLines
	pre := p.line == preRenderLine

	if visible && p.dot >= 1 && p.dot <= 256 {
		p.drawDot()
	}

	if visible || pre {
		if pre && p.dot == 1 {
			p.status &^= statusVBlank | statusSpr0Hit | statusOverflow
		}

		if (p.dot >= 2 && p.dot <= 257) || (p.dot >= 321 && p.dot <= 337) {
			p.shiftBackground()
			switch (p.dot - 1) % 8 {
			case 0:
				p.reloadShifters()
				p.ntLatch = p.vramRead(0x2000 | p.v&0x0FFF)
			case 2:
				p.atLatch = p.fetchAttribute()
			case 4:
				p.bgLoLatch = p.vramRead(p.tileAddress())
			case 6:
				p.bgHiLatch = p.vramRead(p.tileAddress() + 8)
			case 7:
				if p.renderingOn() {
					p.incCoarseX()
				}
			}
		}

		if p.dot == 256 && p.renderingOn() {
			p.incY()
		}

		if p.dot == 257 {
			p.reloadShifters()
			if p.renderingOn() {
				p.copyX()
			}
			p.prepareSprites()
		}

		// Dummy nametable fetches at the end of the line.
		if p.dot == 338 || p.dot == 340 {
			p.ntLatch = p.vramRead(0x2000 | p.v&0x0FFF)
		}

		if pre && p.dot >= 280 && p.dot <= 304 && p.renderingOn() {
			p.copyY()
		}
	}

	if p.line == vblankLine && p.dot == 1 {
		p.status |= statusVBlank
		if p.ctrl&ctrlNMIEnable != 0 {
			p.nmi = true
		}
	}

	p.dot++
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.line++
		if p.line >= linesPerFrame {
			p.line = 0
			p.frame++
			p.frameDone = true
			// Odd frames drop one idle dot when rendering is enabled.
			if p.frame&1 == 1 && p.renderingOn() {
				p.dot = 1
			}
		}
	}
}

// tileAddress is the pattern-table address of the low plane of the tile
// currently latched from the nametable, for the row given by fine Y.
func (p *PPU) tileAddress() uint16 {
	base := uint16(p.ctrl&ctrlBGTable) << 8 // 0x10 -> 0x1000
	return base | uint16(p.ntLatch)<<4 | p.v>>12&7
}

// fetchAttribute reads the attribute byte covering the current tile and
// extracts the 2-bit palette for its 2x2-tile quadrant.
func (p *PPU) fetchAttribute() uint8 {
	addr := 0x23C0 | p.v&0x0C00 | p.v>>4&0x38 | p.v>>2&0x07
	at := p.vramRead(addr)
	if p.v&0x40 != 0 {
		at >>= 4
	}
	if p.v&0x02 != 0 {
		at >>= 2
	}
	return at & 3
}

// PollNMI reports and clears the pending NMI edge.
func (p *PPU) PollNMI() bool {
	nmi := p.nmi
	p.nmi = false
	return nmi
}

// FrameBuffer returns the raw frame: one palette index (0-63) per pixel,
// row-major 256x240. Conversion to RGB, including PPUMASK grayscale and
// emphasis, is the host's job.
func (p *PPU) FrameBuffer() *[ScreenWidth * ScreenHeight]uint8 {
	return &p.fb
}

// FrameComplete reports whether a full frame has been rendered since the
// last ClearFrameComplete.
func (p *PPU) FrameComplete() bool {
	return p.frameDone
}

// ClearFrameComplete rearms the frame-complete flag.
func (p *PPU) ClearFrameComplete() {
	p.frameDone = false
}

// Mask returns the raw PPUMASK value so the host framebuffer converter
// can apply grayscale and color emphasis.
func (p *PPU) Mask() uint8 {
	return p.mask
}

// vramRead reads the PPU's own 14-bit address space.
func (p *PPU) vramRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.watchA12(addr)
		if p.mapper == nil {
			return 0
		}
		return p.mapper.ReadCHR(addr)
	case addr < 0x3F00:
		return p.vram[p.ntIndex(addr)]
	default:
		return p.palette[paletteIndex(addr)]
	}
}

func (p *PPU) vramWrite(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.watchA12(addr)
		if p.mapper != nil {
			p.mapper.WriteCHR(addr, value)
		}
	case addr < 0x3F00:
		p.vram[p.ntIndex(addr)] = value
	default:
		p.palette[paletteIndex(addr)] = value
	}
}

// watchA12 reports qualifying rising edges of address line A12 to the
// mapper. The edge only counts after A12 has been low for at least three
// consecutive pattern fetches, which filters the back-to-back toggles of
// an interleaved sprite/background fetch pattern down to roughly one
// clock per scanline, matching how MMC3 sees the real address bus.
func (p *PPU) watchA12(addr uint16) {
	if addr&0x1000 == 0 {
		p.a12Low = true
		p.a12LowSpan++
		return
	}
	if p.a12Low && p.a12LowSpan >= 3 && p.mapper != nil {
		p.mapper.OnPPUA12Rise()
	}
	p.a12Low = false
	p.a12LowSpan = 0
}

func (p *PPU) mirroring() uint8 {
	if p.mapper != nil {
		return p.mapper.Mirroring()
	}
	return p.headerMirror
}

// ntIndex folds a $2000-$3EFF nametable address into the vram array per
// the active mirroring mode.
func (p *PPU) ntIndex(addr uint16) uint16 {
	addr &= 0x0FFF
	switch p.mirroring() {
	case MirrorVertical:
		return addr & 0x07FF
	case MirrorHorizontal:
		return (addr&0x0800)>>1 | addr&0x03FF
	case MirrorSingleLow:
		return addr & 0x03FF
	case MirrorSingleHigh:
		return 0x0400 | addr&0x03FF
	case MirrorFourScreen:
		return addr
	}
	return addr & 0x07FF
}

// paletteIndex folds a $3F00-$3FFF address into the 32-byte palette,
// applying the $3F10/$3F14/$3F18/$3F1C backdrop mirrors.
func paletteIndex(addr uint16) uint16 {
	addr &= 0x1F
	if addr >= 0x10 && addr&0x03 == 0 {
		addr &= 0x0F
	}
	return addr
}
