package ppu

// shiftBackground advances the background shifters one pixel. The top bit
// of each 16-bit shifter is the pixel currently on screen; the low byte
// holds the tile fetched ahead of it.
func (p *PPU) shiftBackground() {
	if p.mask&maskShowBG == 0 {
		return
	}
	p.patLo <<= 1
	p.patHi <<= 1
	p.attLo <<= 1
	p.attHi <<= 1
}

// reloadShifters moves the latched tile fetch into the low byte of each
// shifter. The 2-bit attribute applies to the whole tile, so each bit is
// spread across the full byte.
func (p *PPU) reloadShifters() {
	p.patLo = p.patLo&0xFF00 | uint16(p.bgLoLatch)
	p.patHi = p.patHi&0xFF00 | uint16(p.bgHiLatch)

	p.attLo &= 0xFF00
	if p.atLatch&1 != 0 {
		p.attLo |= 0x00FF
	}
	p.attHi &= 0xFF00
	if p.atLatch&2 != 0 {
		p.attHi |= 0x00FF
	}
}

// backgroundPixel returns the 2-bit background pattern value and palette
// select for screen column x, already honoring the background enable and
// left-column mask bits. A pattern value of 0 is transparent.
func (p *PPU) backgroundPixel(x int) (pix, pal uint8) {
	if p.mask&maskShowBG == 0 {
		return 0, 0
	}
	if x < 8 && p.mask&maskBGLeft == 0 {
		return 0, 0
	}

	sel := uint16(0x8000) >> p.x
	if p.patLo&sel != 0 {
		pix |= 1
	}
	if p.patHi&sel != 0 {
		pix |= 2
	}
	if p.attLo&sel != 0 {
		pal |= 1
	}
	if p.attHi&sel != 0 {
		pal |= 2
	}
	return pix, pal
}

// drawDot composes one pixel into the frame buffer from the background
// and sprite pipelines, applying the priority rules and sprite-0 hit
// detection.
func (p *PPU) drawDot() {
	x := p.dot - 1
	y := p.line

	if !p.renderingOn() {
		p.fb[y*ScreenWidth+x] = p.vramRead(0x3F00) & 0x3F
		return
	}

	bgPix, bgPal := p.backgroundPixel(x)
	spPix, spPal, inFront, isZero := p.spritePixel(x)

	var paletteAddr uint16
	switch {
	case bgPix == 0 && spPix == 0:
		paletteAddr = 0x3F00
	case bgPix == 0:
		paletteAddr = 0x3F10 + uint16(spPal)<<2 + uint16(spPix)
	case spPix == 0:
		paletteAddr = 0x3F00 + uint16(bgPal)<<2 + uint16(bgPix)
	default:
		// Both layers opaque at the same dot: the only place sprite-0
		// hit can happen. Column 255 never triggers it.
		if isZero && x < 255 {
			p.status |= statusSpr0Hit
		}
		if inFront {
			paletteAddr = 0x3F10 + uint16(spPal)<<2 + uint16(spPix)
		} else {
			paletteAddr = 0x3F00 + uint16(bgPal)<<2 + uint16(bgPix)
		}
	}

	p.fb[y*ScreenWidth+x] = p.vramRead(paletteAddr) & 0x3F
}
