package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/spf13/cobra"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/nescore/nescore/pkg/controller"
	"github.com/nescore/nescore/pkg/nes"
	"github.com/nescore/nescore/pkg/ppu"
)

const (
	windowScale     = 3
	audioSampleRate = 44100
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <rom-file>",
		Short: "Play a ROM with SDL2 video and audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGame(args[0])
		},
	}
}

var keyBindings = map[sdl.Keycode]controller.Button{
	sdl.K_z:      controller.ButtonB,
	sdl.K_x:      controller.ButtonA,
	sdl.K_RSHIFT: controller.ButtonSelect,
	sdl.K_RETURN: controller.ButtonStart,
	sdl.K_UP:     controller.ButtonUp,
	sdl.K_DOWN:   controller.ButtonDown,
	sdl.K_LEFT:   controller.ButtonLeft,
	sdl.K_RIGHT:  controller.ButtonRight,
}

func runGame(path string) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("sdl init: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(
		"nescore - "+path,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		ppu.ScreenWidth*windowScale, ppu.ScreenHeight*windowScale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer renderer.Destroy()

	// RGBA32 resolves to whatever byte order makes a native uint32 read back
	// as 0xRRGGBBAA on the host's endianness, matching System.FrameBuffer.
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA32,
		sdl.TEXTUREACCESS_STREAMING,
		ppu.ScreenWidth, ppu.ScreenHeight,
	)
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}
	defer texture.Destroy()

	spec := &sdl.AudioSpec{
		Freq:     audioSampleRate,
		Format:   sdl.AUDIO_F32SYS,
		Channels: 1,
		Samples:  2048,
	}
	audioDev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	defer sdl.CloseAudioDevice(audioDev)
	sdl.PauseAudioDevice(audioDev, false)

	system := nes.New(audioSampleRate)
	if err := system.LoadROMFile(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	system.Reset()

	fmt.Println("Controls: Arrows=D-pad  Z=B  X=A  Enter=Start  RShift=Select  Esc=quit")

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Keysym.Sym == sdl.K_ESCAPE && e.Type == sdl.KEYDOWN {
					running = false
					continue
				}
				if button, ok := keyBindings[e.Keysym.Sym]; ok {
					system.SetButton(0, button, e.Type == sdl.KEYDOWN)
				}
			}
		}

		system.RunFrame()

		frame := system.FrameBuffer()
		if err := texture.Update(nil, unsafe.Pointer(&frame[0]), ppu.ScreenWidth*4); err != nil {
			return fmt.Errorf("update texture: %w", err)
		}
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		if samples := system.AudioSamples(); len(samples) > 0 {
			if err := sdl.QueueAudio(audioDev, samplesToBytes(samples)); err != nil {
				return fmt.Errorf("queue audio: %w", err)
			}
		}
	}

	return nil
}

// samplesToBytes packs float32 PCM samples into the little-endian byte
// stream sdl.QueueAudio expects for an AUDIO_F32SYS device.
func samplesToBytes(samples []float32) []byte {
	buf := make([]byte, len(samples)*4)
	for i, sample := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(sample))
	}
	return buf
}
