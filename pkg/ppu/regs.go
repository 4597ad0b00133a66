package ppu

// ReadRegister services a CPU read of a PPU register. addr must already be
// folded into $2000-$2007; the bus handles the every-8-bytes mirroring.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002: // PPUSTATUS
		// The low five bits are open bus; the data-port buffer is the
		// last value the PPU drove onto it.
		value := p.status&0xE0 | p.readBuf&0x1F
		p.status &^= statusVBlank
		p.w = false
		return value

	case 0x2004: // OAMDATA
		return p.oam[p.oamAddr]

	case 0x2007: // PPUDATA
		addr := p.v & 0x3FFF
		var value uint8
		if addr >= 0x3F00 {
			// Palette reads bypass the buffer, which is refilled from
			// the nametable byte underneath the palette window.
			value = p.vramRead(addr)
			p.readBuf = p.vramRead(addr - 0x1000)
		} else {
			value = p.readBuf
			p.readBuf = p.vramRead(addr)
		}
		p.v = (p.v + p.vramStep()) & 0x7FFF
		return value
	}
	return 0
}

// WriteRegister services a CPU write to a PPU register ($2000-$2007).
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr {
	case 0x2000: // PPUCTRL
		p.ctrl = value
		// t: ....BA.. ........ <- d: ......BA
		p.t = p.t&^0x0C00 | uint16(value&ctrlNametable)<<10

	case 0x2001: // PPUMASK
		p.mask = value

	case 0x2003: // OAMADDR
		p.oamAddr = value

	case 0x2004: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++

	case 0x2005: // PPUSCROLL
		if !p.w {
			// t: ....... ...ABCDE <- d: ABCDE...   x <- d: .....FGH
			p.t = p.t&^0x001F | uint16(value>>3)
			p.x = value & 0x07
		} else {
			// t: FGH..AB CDE..... <- d: ABCDEFGH
			p.t = p.t &^ 0x73E0
			p.t |= uint16(value&0x07) << 12
			p.t |= uint16(value>>3) << 5
		}
		p.w = !p.w

	case 0x2006: // PPUADDR
		if !p.w {
			// t: .CDEFGH ........ <- d: ..CDEFGH, bit 14 cleared
			p.t = p.t&0x00FF | uint16(value&0x3F)<<8
		} else {
			p.t = p.t&0xFF00 | uint16(value)
			p.v = p.t
		}
		p.w = !p.w

	case 0x2007: // PPUDATA
		p.vramWrite(p.v, value)
		p.v = (p.v + p.vramStep()) & 0x7FFF
	}
}

// vramStep is the $2007 auto-increment: 1 (across) or 32 (down).
func (p *PPU) vramStep() uint16 {
	if p.ctrl&ctrlInc32 != 0 {
		return 32
	}
	return 1
}

// Scroll register plumbing. v and t are laid out as
// yyy NN YYYYY XXXXX: fine Y, nametable select, coarse Y, coarse X.

// incCoarseX moves v one tile right, wrapping into the neighboring
// horizontal nametable at tile 31.
func (p *PPU) incCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incY moves v one scanline down. Fine Y overflows into coarse Y, which
// wraps into the neighboring vertical nametable at row 29. Rows 30-31
// address attribute-table territory and wrap back to 0 without switching
// nametables.
func (p *PPU) incY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := p.v >> 5 & 0x1F
	switch {
	case y == 29:
		y = 0
		p.v ^= 0x0800
	case y == 31:
		y = 0
	default:
		y++
	}
	p.v = p.v&^0x03E0 | y<<5
}

// copyX reloads v's horizontal bits (coarse X, nametable X) from t at the
// end of each rendered line.
func (p *PPU) copyX() {
	p.v = p.v&^0x041F | p.t&0x041F
}

// copyY reloads v's vertical bits (fine Y, nametable Y, coarse Y) from t
// during the pre-render line.
func (p *PPU) copyY() {
	p.v = p.v&^0x7BE0 | p.t&0x7BE0
}
