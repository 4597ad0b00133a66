// Package nescore holds the error taxonomy shared by the cartridge loader
// and host-facing System API. Apart from System.LoadState rejecting a
// malformed save state, ROM loading is the only place this module can
// fail; once a cartridge is loaded, every core package (cpu, ppu, apu,
// bus) runs infallibly.
package nescore

import "errors"

// Sentinel errors returned by cartridge loading. Wrap with fmt.Errorf's
// %w at the call site to add file-specific context.
var (
	// ErrBadHeader means the data does not start with the iNES "NES\x1a" magic.
	ErrBadHeader = errors.New("nescore: not a valid iNES ROM")

	// ErrTruncated means the file is shorter than its header declares.
	ErrTruncated = errors.New("nescore: ROM file truncated")

	// ErrUnsupportedMapper means the header names a mapper this module doesn't implement.
	ErrUnsupportedMapper = errors.New("nescore: unsupported mapper")

	// ErrIO wraps failures reading the ROM file from disk.
	ErrIO = errors.New("nescore: I/O error loading ROM")
)
