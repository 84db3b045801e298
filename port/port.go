// Package port defines the boundary to the register-level SPI driver: the
// small capability set the transfer engine in package spi depends on, plus
// the concrete driver families implementing it.
package port

import "fmt"

// Format describes the wire format a controller has to apply before
// clocking words: bits per word, clock mode (polarity/phase, 0-3) and the
// clock frequency in Hz.
type Format struct {
	Bits        int
	Mode        int
	FrequencyHz int
}

func (f Format) String() string {
	return fmt.Sprintf("%d bits, mode %d, %d Hz", f.Bits, f.Mode, f.FrequencyHz)
}

// Driver is the register-level driver for one physical SPI controller.
// Implementations are not assumed reentrant; callers serialize access.
type Driver interface {
	// Configure programs the controller registers for the given format.
	// It is synchronous and must leave the controller idle.
	Configure(f Format) error

	// Exchange shifts one word out and simultaneously shifts one word in,
	// blocking until the hardware shift completes. The word occupies the
	// low bits per the configured word width.
	Exchange(w uint16) (uint16, error)

	// Close releases the underlying hardware resources.
	Close() error
}
