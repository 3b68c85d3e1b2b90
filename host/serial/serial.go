package serial

import (
	"io"
)

// Port is an open connection to the board. Implementations:
//   - tarm/serial (default)
//   - go.bug.st/serial, which can also enumerate ports
//   - simboard, for running without hardware
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Backend selects the serial library used by Open
type Backend string

const (
	BackendTarm  Backend = "tarm"
	BackendBugst Backend = "bugst"
)

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate; USB CDC ignores it
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int

	Backend Backend
}

// DefaultConfig returns the settings used by the board's USB console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
		Backend:     BackendTarm,
	}
}
