package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildINES assembles a minimal iNES image: header, PRG-ROM banks each
// filled with a distinct byte so bank-switching tests can tell banks apart,
// and chrBanks 8KB CHR-ROM banks (or none, for CHR-RAM mappers).
func buildINES(mapperID uint8, prgBanks, chrBanks uint8, mirroring uint8) []byte {
	header := make([]byte, 16)
	copy(header[0:4], "NES\x1a")
	header[4] = prgBanks
	header[5] = chrBanks
	header[6] = (mapperID&0x0F)<<4 | (mirroring & 0x01)
	header[7] = mapperID & 0xF0

	data := append([]byte{}, header...)
	for b := uint8(0); b < prgBanks; b++ {
		bank := make([]byte, 16384)
		for i := range bank {
			bank[i] = b
		}
		data = append(data, bank...)
	}
	for b := uint8(0); b < chrBanks; b++ {
		bank := make([]byte, 8192)
		for i := range bank {
			bank[i] = 0xC0 | b
		}
		data = append(data, bank...)
	}
	return data
}

func TestLoadFromBytesParsesHeader(t *testing.T) {
	data := buildINES(0, 2, 1, MirrorVertical)

	cart, err := LoadFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), cart.MapperID())
	assert.Equal(t, uint8(2), cart.PRGBankCount())
	assert.Equal(t, uint8(1), cart.CHRBankCount())
	assert.Equal(t, uint8(MirrorVertical), cart.Mirroring())
}

func TestLoadFromBytesRejectsBadMagic(t *testing.T) {
	data := buildINES(0, 1, 1, MirrorHorizontal)
	data[0] = 'X'

	_, err := LoadFromBytes(data)
	assert.Error(t, err)
}

func TestLoadFromBytesRejectsUnsupportedMapper(t *testing.T) {
	data := buildINES(99, 1, 1, MirrorHorizontal)

	_, err := LoadFromBytes(data)
	assert.Error(t, err)
}

func TestMapper0MirrorsSingleBank(t *testing.T) {
	data := buildINES(0, 1, 1, MirrorHorizontal)
	cart, err := LoadFromBytes(data)
	require.NoError(t, err)

	m := cart.Mapper()
	assert.Equal(t, m.ReadPRG(0x8000), m.ReadPRG(0xC000), "a single 16KB bank mirrors across both PRG windows")
}

func TestMapper2BankSwitching(t *testing.T) {
	data := buildINES(2, 4, 0, MirrorHorizontal)
	cart, err := LoadFromBytes(data)
	require.NoError(t, err)

	m := cart.Mapper()
	assert.Equal(t, uint8(0), m.ReadPRG(0x8000), "bank 0 selected by default")
	assert.Equal(t, uint8(3), m.ReadPRG(0xC000), "last bank fixed at $C000")

	m.WritePRG(0x8000, 2)
	assert.Equal(t, uint8(2), m.ReadPRG(0x8000), "writing $8000 selects the switchable bank")
	assert.Equal(t, uint8(3), m.ReadPRG(0xC000), "fixed bank is unaffected by bank switches")
}

func TestMapperSaveStateRoundTrip(t *testing.T) {
	data := buildINES(2, 4, 0, MirrorHorizontal)
	cart, err := LoadFromBytes(data)
	require.NoError(t, err)

	m := cart.Mapper()
	m.WritePRG(0x8000, 3)
	saved := m.SaveState()

	cart2, err := LoadFromBytes(data)
	require.NoError(t, err)
	m2 := cart2.Mapper()
	m2.LoadState(saved)

	assert.Equal(t, m.ReadPRG(0x8000), m2.ReadPRG(0x8000))
}
