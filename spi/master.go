// Package spi provides a master-side abstraction for synchronous serial
// peripheral interface buses. Any number of bus handles may be bound to
// the same physical controller through different pin sets; before a
// transfer proceeds, the handle lazily reprograms the controller only if
// another handle used it in between. The register-level work is delegated
// to a port.Driver.
package spi

import (
	"errors"
	"fmt"

	"lautenbacher.net/gospi/port"
)

var (
	ErrInvalidBits      = errors.New("bits per word out of range (4-16)")
	ErrInvalidMode      = errors.New("clock mode out of range (0-3)")
	ErrInvalidFrequency = errors.New("clock frequency must be positive")
)

// Master is one client's handle on an SPI bus, created with the default
// format of 8 bits per word, mode 0 and a 1 MHz clock.
type Master struct {
	ctrl *Controller

	mosi Pin
	miso Pin
	sclk Pin

	bits int
	mode int
	hz   int
}

// New binds a bus handle to the mosi/miso/sclk pin triple. The pins must
// resolve to a registered controller; mosi and miso may be NC for
// unidirectional operation.
func New(reg *Registry, mosi, miso, sclk Pin) (*Master, error) {
	ctrl, err := reg.Lookup(mosi, miso, sclk)
	if err != nil {
		return nil, err
	}
	return &Master{
		ctrl: ctrl,
		mosi: mosi,
		miso: miso,
		sclk: sclk,
		bits: 8,
		mode: 0,
		hz:   1000000,
	}, nil
}

// Controller returns the physical controller this handle resolved to.
func (m *Master) Controller() *Controller {
	return m.ctrl
}

// SetFormat sets the number of bits per word (4-16) and the clock mode
// (0-3, polarity and phase). The new format is not applied to hardware
// immediately; it takes effect the next time this handle performs a
// transfer.
func (m *Master) SetFormat(bits, mode int) error {
	if bits < 4 || bits > 16 {
		return fmt.Errorf("%w: %d", ErrInvalidBits, bits)
	}
	if mode < 0 || mode > 3 {
		return fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}
	m.bits = bits
	m.mode = mode
	m.relinquish()
	return nil
}

// SetFrequency sets the bus clock frequency in Hz, applied lazily like
// SetFormat.
func (m *Master) SetFrequency(hz int) error {
	if hz <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFrequency, hz)
	}
	m.hz = hz
	m.relinquish()
	return nil
}

// Write shifts a single word out to the slave and returns the word
// received in exchange.
func (m *Master) Write(value uint16) (uint16, error) {
	if err := m.acquire(); err != nil {
		return 0, err
	}
	return m.ctrl.drv.Exchange(value)
}

// Close releases the handle. If it is the current owner of the controller,
// ownership becomes undefined until the next transfer on the bus.
func (m *Master) Close() {
	m.relinquish()
}

// acquire makes sure the controller carries this handle's configuration.
// Reconfiguration only happens on a hand-off: when another handle (or
// nobody) owned the controller, or after a setter invalidated ownership.
func (m *Master) acquire() error {
	if m.ctrl.owner == m {
		return nil
	}
	f := port.Format{Bits: m.bits, Mode: m.mode, FrequencyHz: m.hz}
	if err := m.ctrl.drv.Configure(f); err != nil {
		return fmt.Errorf("configuring controller %s for %s: %w", m.ctrl.name, f, err)
	}
	m.ctrl.owner = m
	return nil
}

// relinquish drops ownership when held, forcing the next acquire by any
// handle to reprogram the controller.
func (m *Master) relinquish() {
	if m.ctrl.owner == m {
		m.ctrl.owner = nil
	}
}
