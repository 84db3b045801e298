package port

import (
	"fmt"

	"lautenbacher.net/gospi/config"
)

// Open creates the register driver for one configured controller.
func Open(cfg config.ControllerConfig) (Driver, error) {
	switch cfg.Driver {
	case "periph":
		return OpenPeriph(cfg.Device)
	case "rpio":
		return OpenRpio(cfg.Bus)
	case "sim":
		return NewSim(), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}
