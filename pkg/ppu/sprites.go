package ppu

// prepareSprites evaluates OAM for the next scanline and fetches pattern
// data for the (up to 8) accepted sprites. It runs at dot 257, between the
// last background fetch of the line and the prefetch for the next one, so
// the pattern-table reads land in the bus window MMC3's A12 counter
// expects. Sprites appear one line below their OAM Y, which falls out of
// evaluating against the current line for display on the next.
func (p *PPU) prepareSprites() {
	p.spriteCount = 0
	p.spriteZero = false

	if p.line == preRenderLine || !p.renderingOn() {
		return
	}

	height := 8
	if p.ctrl&ctrlTallSprite != 0 {
		height = 16
	}

	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4+0])
		row := p.line - y
		if row < 0 || row >= height {
			continue
		}
		if p.spriteCount == 8 {
			p.status |= statusOverflow
			break
		}

		tile := p.oam[i*4+1]
		attr := p.oam[i*4+2]

		if attr&0x80 != 0 { // vertical flip
			row = height - 1 - row
		}

		var patternAddr uint16
		if height == 16 {
			// Bit 0 of the tile index picks the pattern table; the tile
			// pair starts at the even index, bottom half one tile on.
			table := uint16(tile&1) << 12
			base := uint16(tile & 0xFE)
			if row >= 8 {
				base++
				row -= 8
			}
			patternAddr = table | base<<4 | uint16(row)
		} else {
			table := uint16(p.ctrl&ctrlSprTable) << 9 // 0x08 -> 0x1000
			patternAddr = table | uint16(tile)<<4 | uint16(row)
		}

		lo := p.vramRead(patternAddr)
		hi := p.vramRead(patternAddr + 8)
		if attr&0x40 != 0 { // horizontal flip
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.sprites[p.spriteCount] = lineSprite{
			x:    p.oam[i*4+3],
			attr: attr,
			lo:   lo,
			hi:   hi,
		}
		if i == 0 {
			p.spriteZero = true
		}
		p.spriteCount++
	}
}

// spritePixel returns the first opaque sprite pixel covering column x, in
// OAM order: pattern value, palette select, whether the sprite has
// priority over the background, and whether it is sprite 0.
func (p *PPU) spritePixel(x int) (pix, pal uint8, inFront, isZero bool) {
	if p.mask&maskShowSpr == 0 {
		return 0, 0, false, false
	}
	if x < 8 && p.mask&maskSprLeft == 0 {
		return 0, 0, false, false
	}

	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		off := x - int(s.x)
		if off < 0 || off > 7 {
			continue
		}
		shift := uint(7 - off)
		pix = (s.lo >> shift & 1) | (s.hi>>shift&1)<<1
		if pix == 0 {
			continue
		}
		return pix, s.attr & 0x03, s.attr&0x20 == 0, i == 0 && p.spriteZero
	}
	return 0, 0, false, false
}

func reverseBits(b uint8) uint8 {
	b = b>>4 | b<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return b
}
