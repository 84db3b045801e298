package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lautenbacher.net/gospi/config"
	"lautenbacher.net/gospi/spi"
)

func TestParseWords(t *testing.T) {
	words, err := parseWords([]string{"0xFF", "18", "0b1010"})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0xFF, 18, 10}, words)

	_, err = parseWords([]string{"0x1FFFF"})
	assert.Error(t, err, "words wider than 16 bits must be rejected")
	_, err = parseWords([]string{"pancake"})
	assert.Error(t, err)
}

func TestFormatWords(t *testing.T) {
	assert.Equal(t, "0x00FF 0x1234", formatWords([]uint16{0xFF, 0x1234}))
	assert.Equal(t, "", formatWords(nil))
}

func TestBuildRegistryFromSimConfig(t *testing.T) {
	conf := &config.Config{
		Controllers: map[string]config.ControllerConfig{
			"sim0": {
				Driver: "sim",
				Pins: config.PinsConfig{
					MOSI: []int{10},
					MISO: []int{9},
					SCLK: []int{11},
				},
			},
		},
	}

	registry, err := buildRegistry(conf)
	require.NoError(t, err)
	defer registry.Close()

	bus, err := spi.New(registry, 10, 9, 11)
	require.NoError(t, err)

	resp, err := bus.Write(0xA5)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), resp)
}

func TestBuildRegistryUnknownDriver(t *testing.T) {
	conf := &config.Config{
		Controllers: map[string]config.ControllerConfig{
			"x": {Driver: "uart"},
		},
	}

	_, err := buildRegistry(conf)
	assert.Error(t, err)
}

func TestLoadConfigFallsBackToDefault(t *testing.T) {
	conf, err := loadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Contains(t, conf.Controllers, "spi0")
}
