package cartridge

// NROM is iNES mapper 0: no bank switching at all. 16KB PRG images are
// mirrored across both halves of $8000-$FFFF; 32KB images map directly.
// CHR is a flat 8KB, writable only when the cart ships CHR-RAM.
type NROM struct {
	prg    []uint8
	chr    []uint8
	chrRAM bool
	mirror uint8
}

// NewNROM builds an NROM cartridge. chr may be empty, in which case 8KB
// of CHR-RAM is allocated.
func NewNROM(prg, chr []uint8, mirror uint8) *NROM {
	m := &NROM{
		prg:    append([]uint8(nil), prg...),
		mirror: mirror,
	}
	if len(chr) > 0 {
		m.chr = append([]uint8(nil), chr...)
	} else {
		m.chr = make([]uint8, 0x2000)
		m.chrRAM = true
	}
	return m
}

func (m *NROM) ReadPRG(addr uint16) uint8 {
	if addr < 0x8000 || len(m.prg) == 0 {
		return 0
	}
	// The modulo handles 16KB carts, which see $C000 mirror $8000.
	return m.prg[int(addr-0x8000)%len(m.prg)]
}

// WritePRG is a no-op: NROM has no registers and no PRG-RAM.
func (m *NROM) WritePRG(addr uint16, value uint8) {}

func (m *NROM) ReadCHR(addr uint16) uint8 {
	if int(addr) >= len(m.chr) {
		return 0
	}
	return m.chr[addr]
}

func (m *NROM) WriteCHR(addr uint16, value uint8) {
	if m.chrRAM && int(addr) < len(m.chr) {
		m.chr[addr] = value
	}
}

func (m *NROM) OnPPUA12Rise() {}

func (m *NROM) IRQPending() bool { return false }

func (m *NROM) ClearIRQ() {}

func (m *NROM) Mirroring() uint8 { return m.mirror }

// SaveState serializes the only mutable thing NROM can have: CHR-RAM.
func (m *NROM) SaveState() []uint8 {
	w := &stateWriter{}
	w.boolean(m.chrRAM)
	if m.chrRAM {
		w.bytes(m.chr)
	}
	return w.bytesOut()
}

func (m *NROM) LoadState(data []uint8) {
	r := newStateReader(data)
	if r.boolean() {
		copy(m.chr, r.bytes(len(m.chr)))
	}
}
