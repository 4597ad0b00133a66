// Package nes wires the CPU, PPU, APU, cartridge mapper, and controllers
// into a complete System and drives them in lockstep: the PPU advances one
// dot at a time, the CPU retires an instruction whenever at least three
// dots of debt have accumulated, and each instruction pays back three dots
// per CPU cycle it consumed, matching the real console's 3x PPU-to-CPU
// clock ratio.
package nes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nescore/nescore/pkg/apu"
	"github.com/nescore/nescore/pkg/bus"
	"github.com/nescore/nescore/pkg/cartridge"
	"github.com/nescore/nescore/pkg/controller"
	"github.com/nescore/nescore/pkg/cpu"
	"github.com/nescore/nescore/pkg/ppu"
)

// cpuClockHz is the NTSC 2A03 clock rate, used to resample the APU's
// per-cycle output down to the host's requested audio sample rate.
const cpuClockHz = 1789773.0

const defaultSampleRate = 44100.0

// saveStateMagic versions the SaveState/LoadState wire format. Loading a
// buffer that doesn't start with this tag fails rather than silently
// misinterpreting unrelated bytes as register state.
const saveStateMagic = "NCS1"

// ErrCorruptState is returned by LoadState when the buffer doesn't start
// with the expected save-state magic, or is too short to contain it.
var ErrCorruptState = errors.New("nes: save state missing or invalid magic header")

// System is the complete emulated console: CPU, PPU, APU, system bus, and
// the loaded cartridge, advanced together one frame at a time.
type System struct {
	cpu  *cpu.CPU
	ppu  *ppu.PPU
	apu  *apu.APU
	bus  *bus.NESBus
	cart *cartridge.Cartridge

	// ppuDebt counts PPU dots owed to the CPU; a CPU instruction only runs
	// once three dots have accumulated, since the CPU clock is exactly
	// 1/3 the PPU dot rate on NTSC hardware.
	ppuDebt int

	sampleRate     float64
	cyclesPerAudio float64
	audioAcc       float64
	audioQueue     []float32

	rgba [ppu.ScreenWidth * ppu.ScreenHeight]uint32
}

// New creates a System with no cartridge loaded. Call LoadROM or
// LoadROMFile before Reset/RunFrame. sampleRate is the host's audio output
// rate in Hz (e.g. 44100); a value of 0 selects a default of 44100 Hz.
func New(sampleRate float64) *System {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	return &System{
		sampleRate:     sampleRate,
		cyclesPerAudio: cpuClockHz / sampleRate,
	}
}

// LoadROM parses an iNES ROM image from memory and attaches it to the
// system, replacing any previously loaded cartridge.
func (s *System) LoadROM(data []byte) error {
	cart, err := cartridge.LoadFromBytes(data)
	if err != nil {
		return err
	}
	s.attach(cart)
	return nil
}

// LoadROMFile parses an iNES ROM file from disk and attaches it.
func (s *System) LoadROMFile(path string) error {
	cart, err := cartridge.LoadFromFile(path)
	if err != nil {
		return err
	}
	s.attach(cart)
	return nil
}

// attach wires a freshly loaded cartridge's mapper into new PPU, APU, and
// bus instances and powers on the CPU. The APU is constructed after the
// bus because it needs the bus as its DMC sample source, and the bus is
// constructed before the APU because the APU needs it; SetAPU closes that
// loop once both exist.
func (s *System) attach(cart *cartridge.Cartridge) {
	s.cart = cart

	ppuUnit := ppu.New()
	ppuUnit.SetMapper(cart.Mapper())
	ppuUnit.SetMirroring(cart.Mirroring())

	nesBus := bus.NewNESBus(ppuUnit, nil, cart.Mapper())
	apuUnit := apu.New(nesBus)
	nesBus.SetAPU(apuUnit)

	s.ppu = ppuUnit
	s.apu = apuUnit
	s.bus = nesBus
	s.cpu = cpu.New(nesBus)

	s.ppuDebt = 0
	s.audioAcc = 0
	s.audioQueue = s.audioQueue[:0]

	s.Reset()
}

// Reset puts the CPU and PPU back into their power-on/reset state without
// discarding the loaded cartridge or its mapper's bank-switching state.
func (s *System) Reset() {
	s.cpu.Reset()
	s.ppu.Reset()
	s.apu.Reset()
	s.ppuDebt = 0
}

// RunFrame advances the system through exactly one NTSC video frame
// (262 scanlines x 341 dots, minus the skipped dot on odd frames while
// rendering is enabled), leaving a fresh picture in FrameBuffer and any
// samples generated along the way queued for AudioSamples.
func (s *System) RunFrame() {
	s.ppu.ClearFrameComplete()
	for !s.ppu.FrameComplete() {
		s.ppu.Step()
		if s.ppu.PollNMI() {
			s.cpu.TriggerNMI()
		}
		s.ppuDebt++
		for s.ppuDebt >= 3 {
			cycles := s.stepCPU()
			s.ppuDebt -= 3 * int(cycles)
		}
	}
	s.convertFrameBuffer()
}

// stepCPU retires one CPU instruction (or interrupt dispatch), folds in any
// OAM DMA or DMC sample-fetch stall cycles the bus/APU report, and steps
// the APU and audio resampler for every cycle consumed. It returns the
// total number of CPU cycles the caller should charge against the PPU dot
// debt.
func (s *System) stepCPU() uint16 {
	s.cpu.SetIRQLine(s.bus.IRQPending())

	cycles := uint16(s.cpu.Step())
	s.bus.AdvanceCPUCycles(cycles)
	s.runAPUCycles(cycles)

	if dmaCycles, ok := s.bus.TakeDMACycles(); ok {
		s.bus.AdvanceCPUCycles(dmaCycles)
		s.runAPUCycles(dmaCycles)
		cycles += dmaCycles
	}

	if stall := s.apu.TakeStall(); stall > 0 {
		s.bus.AdvanceCPUCycles(stall)
		s.runAPUCycles(stall)
		cycles += stall
	}

	return cycles
}

// runAPUCycles steps the APU n times (once per CPU cycle) and resamples
// its output down to the host's audio sample rate.
func (s *System) runAPUCycles(n uint16) {
	for i := uint16(0); i < n; i++ {
		s.apu.Step()
		s.audioAcc++
		if s.audioAcc >= s.cyclesPerAudio {
			s.audioAcc -= s.cyclesPerAudio
			s.audioQueue = append(s.audioQueue, float32(s.apu.Output()))
		}
	}
}

// convertFrameBuffer expands the PPU's raw 6-bit palette-index buffer into
// packed 0xRRGGBBAA pixels, applying the PPUMASK grayscale and color
// emphasis bits: emphasis dims every non-emphasized color channel rather
// than boosting the emphasized ones. The fixed 0.816 dimming factor is an
// approximation; real PPUs attenuate by a chip-dependent amount.
func (s *System) convertFrameBuffer() {
	mask := s.ppu.Mask()
	grayscale := mask&0x01 != 0
	emphRed := mask&0x20 != 0
	emphGreen := mask&0x40 != 0
	emphBlue := mask&0x80 != 0
	emphasize := emphRed || emphGreen || emphBlue

	buf := s.ppu.FrameBuffer()
	for i, idx := range buf {
		if grayscale {
			idx &= 0x30
		}
		c := ppu.Palette[idx&0x3F]
		r := float64(c >> 16 & 0xFF)
		g := float64(c >> 8 & 0xFF)
		b := float64(c & 0xFF)
		if emphasize {
			const dim = 0.816
			if !emphRed {
				r *= dim
			}
			if !emphGreen {
				g *= dim
			}
			if !emphBlue {
				b *= dim
			}
		}
		s.rgba[i] = uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | 0xFF
	}
}

// FrameBuffer returns the most recently rendered frame as packed
// 0xRRGGBBAA pixels, 256x240, row-major. The returned pointer is reused by
// the next RunFrame call; copy it if the caller needs to retain it.
func (s *System) FrameBuffer() *[ppu.ScreenWidth * ppu.ScreenHeight]uint32 {
	return &s.rgba
}

// AudioSamples drains and returns every audio sample generated since the
// last call, as mono float32 values in [0, 1).
func (s *System) AudioSamples() []float32 {
	out := s.audioQueue
	s.audioQueue = nil
	return out
}

// SetButton updates one button on one of the two controller ports.
// controllerNum is 0 or 1; button follows the canonical NES bit order
// (A, B, Select, Start, Up, Down, Left, Right).
func (s *System) SetButton(controllerNum int, button controller.Button, pressed bool) {
	s.bus.GetController(controllerNum).SetButton(button, pressed)
}

// StepInstruction retires exactly one CPU instruction (or interrupt
// dispatch), folding in DMA/DMC stall cycles and advancing the APU, without
// driving the PPU. It's for CPU-only conformance tooling (e.g. nestest)
// that supplies its own cycle budget rather than running real frames.
func (s *System) StepInstruction() uint16 {
	return s.stepCPU()
}

// CPU exposes the CPU core for host tooling such as conformance tests and
// trace loggers that need to force PC or read architectural state directly.
func (s *System) CPU() *cpu.CPU { return s.cpu }

// Bus exposes the system bus for host tooling that needs to read memory
// directly (e.g. a conformance test reading its result bytes from RAM).
func (s *System) Bus() *bus.NESBus { return s.bus }

// Cartridge exposes the loaded cartridge for header inspection.
func (s *System) Cartridge() *cartridge.Cartridge { return s.cart }

// BatterySRAM returns the cartridge's battery-backed save RAM, or nil if
// the cartridge has none.
func (s *System) BatterySRAM() []uint8 {
	if s.cart == nil {
		return nil
	}
	return s.cart.BatterySRAM()
}

// LoadBatterySRAM restores previously saved battery RAM contents.
func (s *System) LoadBatterySRAM(data []uint8) {
	if s.cart == nil {
		return
	}
	s.cart.LoadBatterySRAM(data)
}

func writeSection(buf *bytes.Buffer, data []uint8) {
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(data)))
	buf.Write(length[:])
	buf.Write(data)
}

func readSection(data []uint8, pos int) (section []uint8, next int, err error) {
	if pos+4 > len(data) {
		return nil, 0, ErrCorruptState
	}
	n := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
	pos += 4
	if pos+n > len(data) {
		return nil, 0, ErrCorruptState
	}
	return data[pos : pos+n], pos + n, nil
}

// SaveState serializes the entire machine: CPU and PPU and APU registers,
// system RAM, the mapper's bank-switching state, and cartridge PRG-RAM.
// The result is versioned with a leading magic tag; LoadState rejects a
// buffer that doesn't start with it.
func (s *System) SaveState() []uint8 {
	buf := bytes.NewBufferString(saveStateMagic)

	writeSection(buf, s.cpu.SaveState())
	writeSection(buf, s.ppu.SaveState())
	writeSection(buf, s.apu.SaveState())
	writeSection(buf, s.bus.RAM())
	writeSection(buf, s.cart.Mapper().SaveState())
	writeSection(buf, s.cart.PRGRAM())

	var cycles [8]byte
	binary.LittleEndian.PutUint64(cycles[:], s.bus.CPUCycles())
	buf.Write(cycles[:])

	var debt [4]byte
	binary.LittleEndian.PutUint32(debt[:], uint32(s.ppuDebt))
	buf.Write(debt[:])

	return buf.Bytes()
}

// LoadState restores a machine snapshot produced by SaveState for the same
// cartridge. The cartridge must already be loaded via LoadROM/LoadROMFile:
// LoadState only restores mutable state, not ROM contents.
func (s *System) LoadState(data []uint8) error {
	if len(data) < len(saveStateMagic) || string(data[:len(saveStateMagic)]) != saveStateMagic {
		return ErrCorruptState
	}
	pos := len(saveStateMagic)

	cpuState, pos, err := readSection(data, pos)
	if err != nil {
		return fmt.Errorf("nes: reading cpu state: %w", err)
	}
	ppuState, pos, err := readSection(data, pos)
	if err != nil {
		return fmt.Errorf("nes: reading ppu state: %w", err)
	}
	apuState, pos, err := readSection(data, pos)
	if err != nil {
		return fmt.Errorf("nes: reading apu state: %w", err)
	}
	ramState, pos, err := readSection(data, pos)
	if err != nil {
		return fmt.Errorf("nes: reading ram state: %w", err)
	}
	mapperState, pos, err := readSection(data, pos)
	if err != nil {
		return fmt.Errorf("nes: reading mapper state: %w", err)
	}
	prgRAMState, pos, err := readSection(data, pos)
	if err != nil {
		return fmt.Errorf("nes: reading prg-ram state: %w", err)
	}

	if pos+12 > len(data) {
		return ErrCorruptState
	}
	cycles := binary.LittleEndian.Uint64(data[pos : pos+8])
	debt := binary.LittleEndian.Uint32(data[pos+8 : pos+12])

	s.cpu.LoadState(cpuState)
	s.ppu.LoadState(ppuState)
	s.apu.LoadState(apuState)
	s.bus.LoadRAM(ramState)
	s.cart.Mapper().LoadState(mapperState)
	if prgRAM := s.cart.PRGRAM(); prgRAM != nil {
		copy(prgRAM, prgRAMState)
	}
	s.bus.SetCPUCycles(cycles)
	s.ppuDebt = int(debt)

	s.audioAcc = 0
	s.audioQueue = s.audioQueue[:0]

	return nil
}
