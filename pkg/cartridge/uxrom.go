package cartridge

// UxROM is iNES mapper 2: a switchable 16KB PRG window at $8000-$BFFF
// selected by writing anywhere in $8000-$FFFF, the last 16KB bank fixed
// at $C000-$FFFF, and 8KB of CHR-RAM.
type UxROM struct {
	prg    []uint8
	chr    []uint8
	bank   int
	mirror uint8
}

// NewUxROM builds a UxROM cartridge. Any CHR-ROM in the image is ignored;
// boards of this family carry CHR-RAM.
func NewUxROM(prg, chr []uint8, mirror uint8) *UxROM {
	return &UxROM{
		prg:    append([]uint8(nil), prg...),
		chr:    make([]uint8, 0x2000),
		mirror: mirror,
	}
}

func (m *UxROM) ReadPRG(addr uint16) uint8 {
	if len(m.prg) < 0x4000 {
		return 0
	}
	switch {
	case addr >= 0xC000:
		return m.prg[bankStart(m.prg, -1, 0x4000)+int(addr-0xC000)]
	case addr >= 0x8000:
		return m.prg[bankStart(m.prg, m.bank, 0x4000)+int(addr-0x8000)]
	}
	return 0
}

func (m *UxROM) WritePRG(addr uint16, value uint8) {
	if addr >= 0x8000 {
		m.bank = int(value)
	}
}

func (m *UxROM) ReadCHR(addr uint16) uint8 {
	if int(addr) >= len(m.chr) {
		return 0
	}
	return m.chr[addr]
}

func (m *UxROM) WriteCHR(addr uint16, value uint8) {
	if int(addr) < len(m.chr) {
		m.chr[addr] = value
	}
}

func (m *UxROM) OnPPUA12Rise() {}

func (m *UxROM) IRQPending() bool { return false }

func (m *UxROM) ClearIRQ() {}

func (m *UxROM) Mirroring() uint8 { return m.mirror }

// SaveState serializes the selected PRG bank and CHR-RAM.
func (m *UxROM) SaveState() []uint8 {
	w := &stateWriter{}
	w.u8(uint8(m.bank))
	w.bytes(m.chr)
	return w.bytesOut()
}

func (m *UxROM) LoadState(data []uint8) {
	r := newStateReader(data)
	m.bank = int(r.u8())
	copy(m.chr, r.bytes(len(m.chr)))
}
