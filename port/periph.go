package port

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Periph drives a Linux spidev controller through periph.io. Configure
// reconnects the port with the requested frequency, mode and word width;
// the kernel driver reprograms the controller registers on connect.
type Periph struct {
	dev  string
	port spi.PortCloser
	conn spi.Conn
	bits int
}

var (
	hostInitOnce sync.Once
	hostInitErr  error
)

// OpenPeriph opens the spidev device, e.g. "/dev/spidev0.0".
func OpenPeriph(device string) (*Periph, error) {
	hostInitOnce.Do(func() {
		_, hostInitErr = host.Init()
	})
	if hostInitErr != nil {
		return nil, fmt.Errorf("failed to init periph: %w", hostInitErr)
	}

	p, err := spireg.Open(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi device %s: %w", device, err)
	}
	return &Periph{dev: device, port: p}, nil
}

func (p *Periph) Configure(f Format) error {
	conn, err := p.port.Connect(physic.Frequency(f.FrequencyHz)*physic.Hertz, spi.Mode(f.Mode), f.Bits)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", p.dev, err)
	}
	p.conn = conn
	p.bits = f.Bits
	return nil
}

func (p *Periph) Exchange(w uint16) (uint16, error) {
	if p.conn == nil {
		return 0, fmt.Errorf("spi device %s is not configured", p.dev)
	}
	if p.bits > 8 {
		// Words above 8 bits travel as two bytes, MSB first.
		write := []byte{byte(w >> 8), byte(w)}
		read := make([]byte, 2)
		if err := p.conn.Tx(write, read); err != nil {
			return 0, fmt.Errorf("spi transaction on %s failed: %w", p.dev, err)
		}
		return uint16(read[0])<<8 | uint16(read[1]), nil
	}
	write := []byte{byte(w)}
	read := make([]byte, 1)
	if err := p.conn.Tx(write, read); err != nil {
		return 0, fmt.Errorf("spi transaction on %s failed: %w", p.dev, err)
	}
	return uint16(read[0]), nil
}

func (p *Periph) Close() error {
	p.conn = nil
	return p.port.Close()
}
