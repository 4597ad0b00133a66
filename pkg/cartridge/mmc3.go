package cartridge

// MMC3 is iNES mapper 4. Eight bank registers cover six CHR windows (two
// 2KB, four 1KB) and two switchable 8KB PRG windows; the other two PRG
// windows are fixed to the last and second-to-last banks, with the $8000
// register's mode bits deciding which arrangement applies. A scanline
// counter clocked by rising edges of PPU address line A12 drives the
// mapper IRQ games use for raster splits.
//
// Register decode is by address range and low address bit: $8000/$8001
// bank select/data, $A000/$A001 mirroring and PRG-RAM protect,
// $C000/$C001 IRQ latch and reload, $E000/$E001 IRQ disable and enable.
type MMC3 struct {
	prg    []uint8
	chr    []uint8
	ram    []uint8 // 8KB PRG-RAM at $6000-$7FFF
	chrRAM bool

	bankSelect uint8 // raw $8000 value: slot in bits 0-2, modes in bits 6-7
	banks      [8]uint8

	mirror     uint8
	ramEnabled bool
	ramProtect bool

	irqLatch    uint8
	irqCounter  uint8
	irqReload   bool
	irqEnabled  bool
	irqAsserted bool

	prgOffsets [4]int // 8KB windows from $8000
	chrOffsets [8]int // 1KB windows from $0000
}

func NewMMC3(prg, chr []uint8, mirror uint8) *MMC3 {
	m := &MMC3{
		prg:        append([]uint8(nil), prg...),
		ram:        make([]uint8, 0x2000),
		mirror:     mirror,
		ramEnabled: true,
	}
	if len(chr) > 0 {
		m.chr = append([]uint8(nil), chr...)
	} else {
		m.chr = make([]uint8, 0x2000)
		m.chrRAM = true
	}
	m.updateOffsets()
	return m
}

// updateOffsets rebuilds the window tables from the bank registers and
// the two mode bits.
func (m *MMC3) updateOffsets() {
	r6 := int(m.banks[6])
	r7 := int(m.banks[7])
	if m.bankSelect&0x40 == 0 {
		m.prgOffsets = [4]int{
			bankStart(m.prg, r6, 0x2000),
			bankStart(m.prg, r7, 0x2000),
			bankStart(m.prg, -2, 0x2000),
			bankStart(m.prg, -1, 0x2000),
		}
	} else {
		m.prgOffsets = [4]int{
			bankStart(m.prg, -2, 0x2000),
			bankStart(m.prg, r7, 0x2000),
			bankStart(m.prg, r6, 0x2000),
			bankStart(m.prg, -1, 0x2000),
		}
	}

	// The 2KB registers ignore their low bit; each occupies a pair of
	// 1KB windows.
	wide := [4]int{
		bankStart(m.chr, int(m.banks[0]&0xFE), 0x0400),
		bankStart(m.chr, int(m.banks[0]|0x01), 0x0400),
		bankStart(m.chr, int(m.banks[1]&0xFE), 0x0400),
		bankStart(m.chr, int(m.banks[1]|0x01), 0x0400),
	}
	narrow := [4]int{
		bankStart(m.chr, int(m.banks[2]), 0x0400),
		bankStart(m.chr, int(m.banks[3]), 0x0400),
		bankStart(m.chr, int(m.banks[4]), 0x0400),
		bankStart(m.chr, int(m.banks[5]), 0x0400),
	}
	if m.bankSelect&0x80 == 0 {
		m.chrOffsets = [8]int{wide[0], wide[1], wide[2], wide[3], narrow[0], narrow[1], narrow[2], narrow[3]}
	} else {
		m.chrOffsets = [8]int{narrow[0], narrow[1], narrow[2], narrow[3], wide[0], wide[1], wide[2], wide[3]}
	}
}

func (m *MMC3) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x8000:
		off := m.prgOffsets[(addr-0x8000)>>13] + int(addr&0x1FFF)
		if off < len(m.prg) {
			return m.prg[off]
		}
	case addr >= 0x6000:
		if m.ramEnabled {
			return m.ram[addr-0x6000]
		}
	}
	return 0
}

func (m *MMC3) WritePRG(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.ramEnabled && !m.ramProtect {
			m.ram[addr-0x6000] = value
		}

	case addr < 0xA000:
		if addr&1 == 0 {
			m.bankSelect = value
		} else {
			m.banks[m.bankSelect&0x07] = value
		}
		m.updateOffsets()

	case addr < 0xC000:
		if addr&1 == 0 {
			if value&0x01 == 0 {
				m.mirror = MirrorVertical
			} else {
				m.mirror = MirrorHorizontal
			}
		} else {
			m.ramProtect = value&0x40 != 0
			m.ramEnabled = value&0x80 != 0
		}

	case addr < 0xE000:
		if addr&1 == 0 {
			m.irqLatch = value
		} else {
			m.irqCounter = 0
			m.irqReload = true
		}

	default:
		if addr&1 == 0 {
			m.irqEnabled = false
			m.irqAsserted = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *MMC3) ReadCHR(addr uint16) uint8 {
	off := m.chrOffsets[addr>>10] + int(addr&0x03FF)
	if off < len(m.chr) {
		return m.chr[off]
	}
	return 0
}

func (m *MMC3) WriteCHR(addr uint16, value uint8) {
	if !m.chrRAM {
		return
	}
	off := m.chrOffsets[addr>>10] + int(addr&0x03FF)
	if off < len(m.chr) {
		m.chr[off] = value
	}
}

// OnPPUA12Rise clocks the scanline counter: reload when it hit zero or a
// reload was scheduled, decrement otherwise, and assert the IRQ line when
// the count lands on zero with IRQs enabled.
func (m *MMC3) OnPPUA12Rise() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqAsserted = true
	}
}

func (m *MMC3) IRQPending() bool { return m.irqAsserted }

func (m *MMC3) ClearIRQ() { m.irqAsserted = false }

func (m *MMC3) Mirroring() uint8 { return m.mirror }

// SaveState serializes the bank registers, mirroring, PRG-RAM protect
// bits, the IRQ unit, PRG-RAM, and CHR-RAM when present. Window offsets
// are rebuilt on load.
func (m *MMC3) SaveState() []uint8 {
	w := &stateWriter{}
	w.u8(m.bankSelect)
	w.bytes(m.banks[:])
	w.u8(m.mirror)
	w.boolean(m.ramEnabled)
	w.boolean(m.ramProtect)
	w.u8(m.irqLatch)
	w.u8(m.irqCounter)
	w.boolean(m.irqReload)
	w.boolean(m.irqEnabled)
	w.boolean(m.irqAsserted)
	w.boolean(m.chrRAM)
	w.bytes(m.ram)
	if m.chrRAM {
		w.bytes(m.chr)
	}
	return w.bytesOut()
}

func (m *MMC3) LoadState(data []uint8) {
	r := newStateReader(data)
	m.bankSelect = r.u8()
	copy(m.banks[:], r.bytes(len(m.banks)))
	m.mirror = r.u8()
	m.ramEnabled = r.boolean()
	m.ramProtect = r.boolean()
	m.irqLatch = r.u8()
	m.irqCounter = r.u8()
	m.irqReload = r.boolean()
	m.irqEnabled = r.boolean()
	m.irqAsserted = r.boolean()
	chrRAM := r.boolean()
	copy(m.ram, r.bytes(len(m.ram)))
	if chrRAM {
		copy(m.chr, r.bytes(len(m.chr)))
	}
	m.updateOffsets()
}
