// Package cartridge loads iNES ROM images and implements the memory
// mappers that translate CPU and PPU bus addresses into PRG/CHR banks.
// Bank switching is how cartridges grew past the console's native 32KB
// program and 8KB pattern windows; each supported mapper models one of
// the common bank-switching chips.
package cartridge

import (
	"fmt"
	"os"

	"github.com/nescore/nescore"
)

const (
	headerSize  = 16
	prgBankSize = 16384
	chrBankSize = 8192
	trainerSize = 512

	inesMagic = "NES\x1a"
)

// Nametable mirroring modes, shared with the ppu package.
const (
	MirrorHorizontal = 0
	MirrorVertical   = 1
	MirrorSingleLow  = 2
	MirrorSingleHigh = 3
	MirrorFourScreen = 4
)

// Cartridge is a parsed ROM image with its mapper instantiated.
type Cartridge struct {
	mapper    Mapper
	mapperID  uint8
	prgBanks  uint8
	chrBanks  uint8
	mirroring uint8
	battery   bool
}

// header is the decoded 16-byte iNES header.
type header struct {
	prgBanks  uint8
	chrBanks  uint8
	mapperID  uint8
	mirroring uint8
	battery   bool
	trainer   bool
}

func decodeHeader(data []byte) header {
	flags6, flags7 := data[6], data[7]

	h := header{
		prgBanks: data[4],
		chrBanks: data[5],
		mapperID: flags7&0xF0 | flags6>>4,
		battery:  flags6&0x02 != 0,
		trainer:  flags6&0x04 != 0,
	}
	switch {
	case flags6&0x08 != 0:
		h.mirroring = MirrorFourScreen
	case flags6&0x01 != 0:
		h.mirroring = MirrorVertical
	default:
		h.mirroring = MirrorHorizontal
	}
	return h
}

// LoadFromFile reads and parses an iNES ROM file.
func LoadFromFile(filename string) (*Cartridge, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", nescore.ErrIO, filename, err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses an iNES image from memory: header, optional
// trainer (skipped), PRG-ROM, then CHR-ROM. A cart with no CHR-ROM gets
// CHR-RAM from its mapper instead.
func LoadFromBytes(data []byte) (*Cartridge, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: shorter than the 16-byte header", nescore.ErrTruncated)
	}
	if string(data[:4]) != inesMagic {
		return nil, fmt.Errorf("%w: expected %q, got %q", nescore.ErrBadHeader, inesMagic, string(data[:4]))
	}

	h := decodeHeader(data)

	offset := headerSize
	if h.trainer {
		offset += trainerSize
	}

	prgSize := int(h.prgBanks) * prgBankSize
	chrSize := int(h.chrBanks) * chrBankSize
	if len(data) < offset+prgSize+chrSize {
		return nil, fmt.Errorf("%w: header declares %d PRG + %d CHR banks beyond EOF",
			nescore.ErrTruncated, h.prgBanks, h.chrBanks)
	}

	prgROM := data[offset : offset+prgSize]
	chrROM := data[offset+prgSize : offset+prgSize+chrSize]

	mapper, err := newMapper(h.mapperID, prgROM, chrROM, h.mirroring)
	if err != nil {
		return nil, err
	}

	return &Cartridge{
		mapper:    mapper,
		mapperID:  h.mapperID,
		prgBanks:  h.prgBanks,
		chrBanks:  h.chrBanks,
		mirroring: h.mirroring,
		battery:   h.battery,
	}, nil
}

func newMapper(id uint8, prgROM, chrROM []byte, mirroring uint8) (Mapper, error) {
	switch id {
	case 0:
		return NewNROM(prgROM, chrROM, mirroring), nil
	case 1:
		return NewMMC1(prgROM, chrROM, mirroring), nil
	case 2:
		return NewUxROM(prgROM, chrROM, mirroring), nil
	case 3:
		return NewCNROM(prgROM, chrROM, mirroring), nil
	case 4:
		return NewMMC3(prgROM, chrROM, mirroring), nil
	case 7:
		return NewAxROM(prgROM, chrROM, mirroring), nil
	}
	return nil, fmt.Errorf("%w: %d", nescore.ErrUnsupportedMapper, id)
}

// Mapper returns the cartridge's bank-switching logic.
func (c *Cartridge) Mapper() Mapper { return c.mapper }

// MapperID returns the iNES mapper number.
func (c *Cartridge) MapperID() uint8 { return c.mapperID }

// Mirroring returns the header-declared nametable mirroring. Mappers that
// control mirroring themselves override this at runtime; the PPU asks the
// mapper, not the cartridge.
func (c *Cartridge) Mirroring() uint8 { return c.mirroring }

// PRGBankCount returns the number of 16KB PRG-ROM banks.
func (c *Cartridge) PRGBankCount() uint8 { return c.prgBanks }

// CHRBankCount returns the number of 8KB CHR-ROM banks; zero means the
// cart uses CHR-RAM.
func (c *Cartridge) CHRBankCount() uint8 { return c.chrBanks }

// HasBattery reports whether the cart's PRG-RAM is battery-backed, i.e.
// worth persisting to disk between sessions.
func (c *Cartridge) HasBattery() bool { return c.battery }

// BatterySRAM returns the battery-backed PRG-RAM contents, or nil when
// the cart has no battery or its mapper carries no PRG-RAM.
func (c *Cartridge) BatterySRAM() []uint8 {
	if !c.battery {
		return nil
	}
	return c.PRGRAM()
}

// LoadBatterySRAM restores previously persisted battery RAM.
func (c *Cartridge) LoadBatterySRAM(data []uint8) {
	if !c.battery {
		return
	}
	if ram := c.PRGRAM(); ram != nil {
		copy(ram, data)
	}
}

// PRGRAM returns the mapper's 8KB work RAM regardless of the battery bit:
// a save state must capture work RAM even on carts that never persist it
// to disk.
func (c *Cartridge) PRGRAM() []uint8 {
	switch m := c.mapper.(type) {
	case *MMC1:
		return m.ram
	case *MMC3:
		return m.ram
	}
	return nil
}
