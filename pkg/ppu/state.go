package ppu

import "encoding/binary"

// ppuStateWriter/ppuStateReader mirror the cartridge package's small
// state-serialization helper: a flat byte buffer written and read back in
// declared field order, used for save states rather than a general-purpose
// codec.
type ppuStateWriter struct{ buf []uint8 }

func (w *ppuStateWriter) u8(v uint8) { w.buf = append(w.buf, v) }
func (w *ppuStateWriter) u16(v uint16) {
	var b [2]uint8
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *ppuStateWriter) u64(v uint64) {
	var b [8]uint8
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *ppuStateWriter) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}
func (w *ppuStateWriter) bytes(b []uint8) { w.buf = append(w.buf, b...) }

type ppuStateReader struct {
	data []uint8
	pos  int
}

func (r *ppuStateReader) u8() uint8 {
	v := r.data[r.pos]
	r.pos++
	return v
}
func (r *ppuStateReader) u16() uint16 {
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v
}
func (r *ppuStateReader) u64() uint64 {
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v
}
func (r *ppuStateReader) boolean() bool { return r.u8() != 0 }
func (r *ppuStateReader) bytes(n int) []uint8 {
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

// SaveState serializes all PPU state that affects future rendering: VRAM,
// palette and OAM contents, the register file and scroll state, the
// line/dot/frame counters, and the in-flight background and sprite
// pipelines. Immutable configuration (mirroring fallback, mapper pointer)
// is not included; the host is expected to reattach the same cartridge
// before loading.
func (p *PPU) SaveState() []uint8 {
	w := &ppuStateWriter{}
	w.bytes(p.vram[:])
	w.bytes(p.palette[:])
	w.bytes(p.oam[:])
	w.u8(p.oamAddr)

	w.u8(p.ctrl)
	w.u8(p.mask)
	w.u8(p.status)
	w.u16(p.v)
	w.u16(p.t)
	w.u8(p.x)
	w.boolean(p.w)
	w.u8(p.readBuf)

	w.u16(uint16(p.line))
	w.u16(uint16(p.dot))
	w.u64(p.frame)
	w.boolean(p.frameDone)

	w.u8(p.ntLatch)
	w.u8(p.atLatch)
	w.u8(p.bgLoLatch)
	w.u8(p.bgHiLatch)
	w.u16(p.patLo)
	w.u16(p.patHi)
	w.u16(p.attLo)
	w.u16(p.attHi)

	for i := range p.sprites {
		w.u8(p.sprites[i].x)
		w.u8(p.sprites[i].attr)
		w.u8(p.sprites[i].lo)
		w.u8(p.sprites[i].hi)
	}
	w.u8(uint8(p.spriteCount))
	w.boolean(p.spriteZero)

	w.boolean(p.a12Low)
	w.u16(uint16(p.a12LowSpan))
	w.boolean(p.nmi)

	w.bytes(p.fb[:])

	return w.buf
}

// LoadState restores state written by SaveState. data must have been
// produced by the same build of this package.
func (p *PPU) LoadState(data []uint8) {
	r := &ppuStateReader{data: data}
	copy(p.vram[:], r.bytes(len(p.vram)))
	copy(p.palette[:], r.bytes(len(p.palette)))
	copy(p.oam[:], r.bytes(len(p.oam)))
	p.oamAddr = r.u8()

	p.ctrl = r.u8()
	p.mask = r.u8()
	p.status = r.u8()
	p.v = r.u16()
	p.t = r.u16()
	p.x = r.u8()
	p.w = r.boolean()
	p.readBuf = r.u8()

	p.line = int(r.u16())
	p.dot = int(r.u16())
	p.frame = r.u64()
	p.frameDone = r.boolean()

	p.ntLatch = r.u8()
	p.atLatch = r.u8()
	p.bgLoLatch = r.u8()
	p.bgHiLatch = r.u8()
	p.patLo = r.u16()
	p.patHi = r.u16()
	p.attLo = r.u16()
	p.attHi = r.u16()

	for i := range p.sprites {
		p.sprites[i].x = r.u8()
		p.sprites[i].attr = r.u8()
		p.sprites[i].lo = r.u8()
		p.sprites[i].hi = r.u8()
	}
	p.spriteCount = int(r.u8())
	p.spriteZero = r.boolean()

	p.a12Low = r.boolean()
	p.a12LowSpan = int(r.u16())
	p.nmi = r.boolean()

	copy(p.fb[:], r.bytes(len(p.fb)))
}
