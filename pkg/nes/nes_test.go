package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nescore/nescore/pkg/controller"
	"github.com/nescore/nescore/pkg/ppu"
)

// buildINES assembles a minimal one-bank NROM image with a reset vector
// pointing at a tight self-jump, so RunFrame has well-defined, terminating
// behavior instead of free-running through a zero-filled ROM.
func buildINES() []byte {
	header := make([]byte, 16)
	copy(header[0:4], "NES\x1a")
	header[4] = 1 // 1x 16KB PRG bank
	header[5] = 1 // 1x 8KB CHR bank

	prg := make([]byte, 16384)
	// JMP $8000 at the reset vector's target, so the CPU parks instead of
	// interpreting zero-filled ROM as a stream of BRKs.
	prg[0x3FFC] = 0x00 // reset vector low byte -> $8000
	prg[0x3FFD] = 0x80 // reset vector high byte
	prg[0x0000] = 0x4C // JMP
	prg[0x0001] = 0x00
	prg[0x0002] = 0x80

	chr := make([]byte, 8192)

	data := append([]byte{}, header...)
	data = append(data, prg...)
	data = append(data, chr...)
	return data
}

func newTestSystem(t *testing.T) *System {
	t.Helper()
	s := New(44100)
	require.NoError(t, s.LoadROM(buildINES()))
	return s
}

func TestLoadROMResetsToVector(t *testing.T) {
	s := newTestSystem(t)
	assert.Equal(t, uint16(0x8000), s.CPU().PC)
}

func TestRunFrameProducesAFrame(t *testing.T) {
	s := newTestSystem(t)
	s.RunFrame()

	fb := s.FrameBuffer()
	assert.Equal(t, ppu.ScreenWidth*ppu.ScreenHeight, len(fb))
	for _, px := range fb {
		assert.Equal(t, uint32(0xFF), px&0xFF, "alpha channel is always opaque")
	}
}

func TestSetButtonReachesController(t *testing.T) {
	s := newTestSystem(t)
	s.SetButton(0, controller.ButtonA, true)
	assert.True(t, s.Bus().GetController(0).IsPressed(controller.ButtonA))
}

func TestSaveStateRoundTrip(t *testing.T) {
	s := newTestSystem(t)
	for i := 0; i < 5; i++ {
		s.RunFrame()
	}

	saved := s.SaveState()

	other := newTestSystem(t)
	require.NoError(t, other.LoadState(saved))

	assert.Equal(t, s.CPU().PC, other.CPU().PC)
	assert.Equal(t, s.CPU().Cycles, other.CPU().Cycles)
	assert.Equal(t, saved, other.SaveState())
}

func TestLoadStateRejectsBadMagic(t *testing.T) {
	s := newTestSystem(t)
	err := s.LoadState([]byte("nope"))
	assert.ErrorIs(t, err, ErrCorruptState)
}
