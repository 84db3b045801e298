package spi

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
	"lautenbacher.net/gospi/port"
)

var ErrNoController = errors.New("no controller matches pin assignment")

// PinSet lists the pins that may legally be routed to a controller's mosi,
// miso and sclk lines. Several pin sets usually multiplex onto the same
// controller block.
type PinSet struct {
	MOSI []Pin
	MISO []Pin
	SCLK []Pin
}

// Controller represents one physical SPI controller block. It pairs the
// register driver with the ownership record: the bus handle whose
// configuration is currently applied to the hardware.
type Controller struct {
	name  string
	drv   port.Driver
	pins  PinSet
	owner *Master
}

func (c *Controller) Name() string {
	return c.name
}

// Registry holds the known physical controllers and resolves pin
// assignments to them.
type Registry struct {
	controllers []*Controller
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a controller backed by the given register driver. Later
// registrations never shadow earlier ones during lookup.
func (r *Registry) Register(name string, drv port.Driver, pins PinSet) *Controller {
	ctrl := &Controller{
		name: name,
		drv:  drv,
		pins: pins,
	}
	r.controllers = append(r.controllers, ctrl)
	return ctrl
}

// Lookup resolves a mosi/miso/sclk pin triple to the controller it belongs
// to. The clock pin is mandatory; mosi and miso may be NC.
func (r *Registry) Lookup(mosi, miso, sclk Pin) (*Controller, error) {
	if sclk == NC {
		return nil, fmt.Errorf("%w: sclk must be connected", ErrNoController)
	}
	for _, ctrl := range r.controllers {
		if !slices.Contains(ctrl.pins.SCLK, sclk) {
			continue
		}
		if mosi != NC && !slices.Contains(ctrl.pins.MOSI, mosi) {
			continue
		}
		if miso != NC && !slices.Contains(ctrl.pins.MISO, miso) {
			continue
		}
		return ctrl, nil
	}
	return nil, fmt.Errorf("%w: mosi=%s miso=%s sclk=%s", ErrNoController, mosi, miso, sclk)
}

// Close closes the register drivers of all registered controllers.
func (r *Registry) Close() error {
	var firstErr error
	for _, ctrl := range r.controllers {
		if err := ctrl.drv.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing controller %s: %w", ctrl.name, err)
		}
	}
	return firstErr
}
