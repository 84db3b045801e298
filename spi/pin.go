package spi

import "fmt"

// Pin identifies a GPIO pin by its number. NC marks a line as not
// connected; a bus can run without mosi or miso for unidirectional
// slaves, but never without sclk.
type Pin int

const NC Pin = -1

func (p Pin) String() string {
	if p == NC {
		return "NC"
	}
	return fmt.Sprintf("GPIO%d", int(p))
}
