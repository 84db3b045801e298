package port

import (
	"errors"
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// ErrUnsupportedFormat is returned by drivers whose controller family
// cannot produce the requested wire format.
var ErrUnsupportedFormat = errors.New("format not supported by this controller")

// Rpio drives the Raspberry Pi SPI controllers through memory-mapped
// registers via go-rpio. The BCM283x block shifts whole bytes, so only
// 8-bit words are supported.
type Rpio struct {
	bus rpio.SpiDev
}

// OpenRpio claims the SPI pins of the given bus (0 for SPI0, 1 and 2 for
// the aux buses) and maps the controller registers. Needs root.
func OpenRpio(bus int) (*Rpio, error) {
	dev := rpio.SpiDev(bus)
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open rpio: %w", err)
	}
	if err := rpio.SpiBegin(dev); err != nil {
		rpio.Close()
		return nil, fmt.Errorf("failed to begin spi on bus %d: %w", bus, err)
	}
	return &Rpio{bus: dev}, nil
}

func (r *Rpio) Configure(f Format) error {
	if f.Bits != 8 {
		return fmt.Errorf("%w: %d bits per word", ErrUnsupportedFormat, f.Bits)
	}
	rpio.SpiSpeed(f.FrequencyHz)
	// Mode encodes CPOL in bit 1 and CPHA in bit 0.
	rpio.SpiMode(uint8(f.Mode>>1), uint8(f.Mode&1))
	return nil
}

func (r *Rpio) Exchange(w uint16) (uint16, error) {
	data := []byte{byte(w)}
	rpio.SpiExchange(data)
	return uint16(data[0]), nil
}

func (r *Rpio) Close() error {
	rpio.SpiEnd(r.bus)
	return rpio.Close()
}
