// Package bus implements the NES system bus connecting CPU, PPU, APU,
// controllers, and the cartridge mapper across the $0000-$FFFF address space.
package bus

import (
	"github.com/nescore/nescore/pkg/apu"
	"github.com/nescore/nescore/pkg/cartridge"
	"github.com/nescore/nescore/pkg/controller"
	"github.com/nescore/nescore/pkg/ppu"
)

// NESBus implements the cpu.Bus interface for the NES system.
//
// CPU Memory Map:
//   $0000-$07FF: 2KB internal RAM
//   $0800-$1FFF: Mirrors of $0000-$07FF
//   $2000-$2007: PPU registers
//   $2008-$3FFF: Mirrors of $2000-$2007
//   $4000-$4017: APU and I/O registers
//   $4018-$401F: APU/IO test registers, unused
//   $4020-$FFFF: Cartridge space (PRG-ROM, PRG-RAM, mapper registers)
type NESBus struct {
	cpuRAM [2048]uint8

	ppu    *ppu.PPU
	apu    *apu.APU
	mapper cartridge.Mapper

	controller1 *controller.Controller
	controller2 *controller.Controller

	// DMA state. A $4014 write only records the source page; the whole
	// 256-byte copy then runs at once inside TakeDMACycles, which the
	// driver calls right after the writing instruction retires and which
	// also reports the cycle cost to charge the CPU.
	dmaPending bool
	dmaPage    uint8

	cpuCycles uint64
}

// NewNESBus creates a new NES system bus. apuUnit may be nil at
// construction time and attached later with SetAPU: the APU's own
// constructor takes a Bus implementation for DMC sample fetches, so the
// two must be wired together after both exist.
func NewNESBus(ppuUnit *ppu.PPU, apuUnit *apu.APU, mapper cartridge.Mapper) *NESBus {
	return &NESBus{
		ppu:         ppuUnit,
		apu:         apuUnit,
		mapper:      mapper,
		controller1: controller.New(),
		controller2: controller.New(),
	}
}

// SetAPU attaches the APU instance once it has been constructed with this
// bus as its sample-fetch source, breaking the construction-order cycle
// between bus and apu.
func (b *NESBus) SetAPU(apuUnit *apu.APU) {
	b.apu = apuUnit
}

// Read implements cpu.Bus.Read.
func (b *NESBus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.cpuRAM[addr&0x07FF]

	case addr < 0x4000:
		return b.ppu.ReadRegister(0x2000 + (addr & 0x0007))

	case addr == 0x4015:
		return b.apu.ReadStatus()

	case addr == 0x4016:
		return b.controller1.Read() | 0x40

	case addr == 0x4017:
		return b.controller2.Read() | 0x40

	case addr >= 0x4020:
		return b.mapper.ReadPRG(addr)
	}

	return 0
}

// Write implements cpu.Bus.Write.
func (b *NESBus) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		b.cpuRAM[addr&0x07FF] = data

	case addr < 0x4000:
		b.ppu.WriteRegister(0x2000+(addr&0x0007), data)

	case addr == 0x4014:
		b.dmaPending = true
		b.dmaPage = data

	case addr == 0x4016:
		// Writing 1 then 0 latches both controllers' button states.
		b.controller1.Write(data)
		b.controller2.Write(data)

	case addr == 0x4017:
		b.apu.WriteRegister(addr, data)

	case addr >= 0x4000 && addr <= 0x4013:
		b.apu.WriteRegister(addr, data)

	case addr >= 0x4020:
		b.mapper.WritePRG(addr, data)
	}
}

// TakeDMACycles performs any pending OAM DMA transfer and returns the number
// of CPU cycles it cost: 513 normally, 514 if the CPU was mid-cycle (on an
// odd total cycle count) when the transfer began, since the DMA controller
// needs one extra cycle to align its read/write phases to the CPU clock.
func (b *NESBus) TakeDMACycles() (cycles uint16, ok bool) {
	if !b.dmaPending {
		return 0, false
	}
	b.dmaPending = false

	base := uint16(0x2004)
	for i := 0; i < 256; i++ {
		addr := uint16(b.dmaPage)<<8 | uint16(i)
		b.ppu.WriteRegister(base, b.Read(addr))
	}

	cycles = 513
	if b.cpuCycles%2 == 1 {
		cycles = 514
	}
	return cycles, true
}

// AdvanceCPUCycles keeps the bus's cycle-parity counter in sync with the
// driver so DMA alignment can be computed from it.
func (b *NESBus) AdvanceCPUCycles(n uint16) {
	b.cpuCycles += uint64(n)
}

// IRQPending reports whether the mapper or the APU is asserting the shared
// IRQ line.
func (b *NESBus) IRQPending() bool {
	return b.mapper.IRQPending() || b.apu.IRQPending()
}

// GetController returns a pointer to the specified controller (0 or 1).
func (b *NESBus) GetController(num int) *controller.Controller {
	if num == 0 {
		return b.controller1
	}
	return b.controller2
}

// RAM returns the 2KB internal system RAM backing $0000-$1FFF, for save
// states and debugging.
func (b *NESBus) RAM() []uint8 {
	return b.cpuRAM[:]
}

// LoadRAM overwrites system RAM from a previously saved snapshot.
func (b *NESBus) LoadRAM(data []uint8) {
	copy(b.cpuRAM[:], data)
}

// CPUCycles returns the bus's running CPU-cycle-parity counter, used to
// decide OAM DMA's 513-vs-514-cycle alignment.
func (b *NESBus) CPUCycles() uint64 {
	return b.cpuCycles
}

// SetCPUCycles restores the cycle-parity counter from a save state.
func (b *NESBus) SetCPUCycles(n uint64) {
	b.cpuCycles = n
}
