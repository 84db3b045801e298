package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const CONFILE = "gospi.yml"

// Config is the root of the YAML configuration: bus-wide defaults, the set
// of physical controllers with their pin legality tables, and logging.
type Config struct {
	Defaults    DefaultsConfig              `yaml:"Defaults"`
	Controllers map[string]ControllerConfig `yaml:"Controllers"`
	Logging     LoggingConfig               `yaml:"Logging"`
}

// DefaultsConfig holds the wire format applied to a freshly created bus
// handle before any SetFormat/SetFrequency call.
type DefaultsConfig struct {
	Bits        int `yaml:"Bits"`
	Mode        int `yaml:"Mode"`
	FrequencyHz int `yaml:"FrequencyHz"`
}

// ControllerConfig describes one physical SPI controller and the driver
// family used to reach it.
type ControllerConfig struct {
	Driver string     `yaml:"Driver"` // "periph", "rpio" or "sim"
	Device string     `yaml:"Device"` // spidev path (periph driver only)
	Bus    int        `yaml:"Bus"`    // bus number 0-2 (rpio driver only)
	Pins   PinsConfig `yaml:"Pins"`
}

// PinsConfig lists the pins that may legally be routed to a controller.
// Several pin sets usually multiplex onto the same controller, hence the
// slices.
type PinsConfig struct {
	MOSI []int `yaml:"MOSI"`
	MISO []int `yaml:"MISO"`
	SCLK []int `yaml:"SCLK"`
}

type LoggingConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

// DefaultConfig returns the built-in configuration: a single periph-backed
// controller on the first spidev with the Raspberry Pi SPI0 pinout.
func DefaultConfig() *Config {
	conf := &Config{
		Controllers: map[string]ControllerConfig{
			"spi0": {
				Driver: "periph",
				Device: "/dev/spidev0.0",
				Pins: PinsConfig{
					MOSI: []int{10},
					MISO: []int{9},
					SCLK: []int{11},
				},
			},
		},
	}
	conf.applyDefaults()
	return conf
}

// ReadConfig reads and validates the configuration file.
func ReadConfig(cfile string) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	var conf Config
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}

	conf.applyDefaults()
	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return &conf, nil
}

func (c *Config) applyDefaults() {
	if c.Defaults.Bits == 0 {
		c.Defaults.Bits = 8
	}
	if c.Defaults.FrequencyHz == 0 {
		c.Defaults.FrequencyHz = 1000000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Defaults.Bits < 4 || c.Defaults.Bits > 16 {
		return fmt.Errorf("Defaults.Bits must be between 4 and 16, got %d", c.Defaults.Bits)
	}
	if c.Defaults.Mode < 0 || c.Defaults.Mode > 3 {
		return fmt.Errorf("Defaults.Mode must be between 0 and 3, got %d", c.Defaults.Mode)
	}
	if c.Defaults.FrequencyHz <= 0 {
		return fmt.Errorf("Defaults.FrequencyHz must be positive, got %d", c.Defaults.FrequencyHz)
	}
	if len(c.Controllers) == 0 {
		return fmt.Errorf("no controllers configured")
	}
	for name, ctrl := range c.Controllers {
		switch ctrl.Driver {
		case "periph":
			if ctrl.Device == "" {
				return fmt.Errorf("controller %s: periph driver needs a Device", name)
			}
		case "rpio":
			if ctrl.Bus < 0 || ctrl.Bus > 2 {
				return fmt.Errorf("controller %s: rpio Bus must be 0-2, got %d", name, ctrl.Bus)
			}
		case "sim":
			// nothing to validate
		default:
			return fmt.Errorf("controller %s: unknown driver %q", name, ctrl.Driver)
		}
		if len(ctrl.Pins.SCLK) == 0 {
			return fmt.Errorf("controller %s: at least one SCLK pin is required", name)
		}
	}
	return nil
}
