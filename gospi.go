package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"lautenbacher.net/gospi/config"
	"lautenbacher.net/gospi/logging"
	"lautenbacher.net/gospi/port"
	"lautenbacher.net/gospi/spi"
)

func main() {
	cfile := flag.String("config", config.CONFILE, "Path to the config file")
	mosi := flag.Int("mosi", 10, "MOSI pin number (-1 for not connected)")
	miso := flag.Int("miso", 9, "MISO pin number (-1 for not connected)")
	sclk := flag.Int("sclk", 11, "SCLK pin number")
	bits := flag.Int("bits", 0, "Bits per word (4-16, 0 = config default)")
	mode := flag.Int("mode", -1, "Clock mode (0-3, -1 = config default)")
	speed := flag.Int("speed", 0, "Clock frequency in Hz (0 = config default)")
	read := flag.Int("read", 0, "Number of words to read instead of transferring arguments")
	interval := flag.Duration("interval", 0, "Repeat the operation at this interval, reloading the config on change")
	flag.Parse()

	if err := run(*cfile, *mosi, *miso, *sclk, *bits, *mode, *speed, *read, *interval, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfile string, mosi, miso, sclk, bits, mode, speed, read int, interval time.Duration, args []string) error {
	conf, err := loadConfig(cfile)
	if err != nil {
		return err
	}

	if err := logging.Init(conf.Logging.Level, conf.Logging.Format, conf.Logging.File); err != nil {
		return fmt.Errorf("can't initialise logging: %w", err)
	}
	defer logging.Close()

	words, err := parseWords(args)
	if err != nil {
		return err
	}
	if read > 0 && len(words) > 0 {
		return fmt.Errorf("give either -read or data words, not both")
	}
	if read == 0 && len(words) == 0 {
		return fmt.Errorf("nothing to do: give data words or -read")
	}

	registry, err := buildRegistry(conf)
	if err != nil {
		return err
	}
	defer registry.Close()

	bus, err := spi.New(registry, spi.Pin(mosi), spi.Pin(miso), spi.Pin(sclk))
	if err != nil {
		return err
	}
	defer bus.Close()
	slog.Info("Bus handle bound", "controller", bus.Controller().Name(),
		"mosi", spi.Pin(mosi), "miso", spi.Pin(miso), "sclk", spi.Pin(sclk))

	if bits == 0 {
		bits = conf.Defaults.Bits
	}
	if mode < 0 {
		mode = conf.Defaults.Mode
	}
	if speed == 0 {
		speed = conf.Defaults.FrequencyHz
	}
	if err := bus.SetFormat(bits, mode); err != nil {
		return err
	}
	if err := bus.SetFrequency(speed); err != nil {
		return err
	}

	if interval <= 0 {
		return runOnce(bus, words, read)
	}
	return runRepeating(bus, cfile, words, read, interval)
}

func runOnce(bus *spi.Master, words []uint16, read int) error {
	if read > 0 {
		buf := make([]uint16, read)
		if err := spi.ReadAll(bus, buf); err != nil {
			return err
		}
		fmt.Println(formatWords(buf))
		return nil
	}

	buf := append([]uint16(nil), words...)
	if err := spi.TransferAll(bus, buf); err != nil {
		return err
	}
	fmt.Println(formatWords(buf))
	return nil
}

// runRepeating performs the operation on a fixed interval. The config file
// is watched in the background; a change retunes format and frequency,
// which the bus applies lazily on the next round.
func runRepeating(bus *spi.Master, cfile string, words []uint16, read int, interval time.Duration) error {
	stop := make(chan struct{})
	confs, err := config.Watch(cfile, stop)
	if err != nil {
		// A missing config file is fine for a one-shot run but there is
		// nothing to watch then.
		slog.Warn("Config watching disabled", "error", err)
		confs = nil
	}
	defer close(stop)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := runOnce(bus, words, read); err != nil {
			return err
		}
		select {
		case <-sig:
			slog.Info("Shutting down")
			return nil
		case conf := <-confs:
			if err := bus.SetFormat(conf.Defaults.Bits, conf.Defaults.Mode); err != nil {
				slog.Warn("Ignoring new format", "error", err)
			}
			if err := bus.SetFrequency(conf.Defaults.FrequencyHz); err != nil {
				slog.Warn("Ignoring new frequency", "error", err)
			}
		case <-ticker.C:
		}
	}
}

func loadConfig(cfile string) (*config.Config, error) {
	if _, err := os.Stat(cfile); os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}
	return config.ReadConfig(cfile)
}

func buildRegistry(conf *config.Config) (*spi.Registry, error) {
	registry := spi.NewRegistry()
	for name, cc := range conf.Controllers {
		drv, err := port.Open(cc)
		if err != nil {
			registry.Close()
			return nil, fmt.Errorf("can't open controller %s: %w", name, err)
		}
		registry.Register(name, drv, toPinSet(cc.Pins))
	}
	return registry, nil
}

func toPinSet(pins config.PinsConfig) spi.PinSet {
	return spi.PinSet{
		MOSI: toPins(pins.MOSI),
		MISO: toPins(pins.MISO),
		SCLK: toPins(pins.SCLK),
	}
}

func toPins(nums []int) []spi.Pin {
	pins := make([]spi.Pin, 0, len(nums))
	for _, n := range nums {
		pins = append(pins, spi.Pin(n))
	}
	return pins
}

func parseWords(args []string) ([]uint16, error) {
	words := make([]uint16, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseUint(arg, 0, 16)
		if err != nil {
			return nil, fmt.Errorf("can't parse data word %q: %w", arg, err)
		}
		words = append(words, uint16(v))
	}
	return words, nil
}

func formatWords(words []uint16) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, fmt.Sprintf("0x%04X", w))
	}
	return strings.Join(parts, " ")
}
