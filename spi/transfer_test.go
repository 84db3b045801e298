package spi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferPreservesOrder(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)

	// Responses deliberately out of numeric order: each must land at the
	// position of the request it answered.
	sim.Script(0x33, 0x11, 0x22)

	buf := []uint8{0xA1, 0xA2, 0xA3}
	require.NoError(t, TransferAll(bus, buf))

	assert.Equal(t, []uint16{0xA1, 0xA2, 0xA3}, sim.Sent())
	assert.Equal(t, []uint8{0x33, 0x11, 0x22}, buf)
}

func TestTransferPartialLength(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)

	sim.Script(0x01, 0x02)
	buf := []uint8{0xA1, 0xA2, 0xA3}
	require.NoError(t, Transfer(bus, buf, 2))

	assert.Equal(t, []uint16{0xA1, 0xA2}, sim.Sent())
	assert.Equal(t, []uint8{0x01, 0x02, 0xA3}, buf, "positions beyond n must stay untouched")
}

func TestWriteArrayDiscardsResponses(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)

	sim.Script(0x55, 0x66)
	buf := []uint8{0x10, 0x20}
	require.NoError(t, WriteAll(bus, buf))

	assert.Equal(t, []uint16{0x10, 0x20}, sim.Sent())
	assert.Equal(t, []uint8{0x10, 0x20}, buf, "write must not modify the buffer")
}

func TestReadArraySendsZeros(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)

	sim.Script(0x0A, 0x0B, 0x0C)
	buf := make([]uint8, 3)
	require.NoError(t, ReadAll(bus, buf))

	assert.Equal(t, []uint16{0, 0, 0}, sim.Sent())
	assert.Equal(t, []uint8{0x0A, 0x0B, 0x0C}, buf)
}

func TestZeroLengthPrewarmsController(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)

	require.NoError(t, Transfer(bus, []uint8{}, 0))
	require.NoError(t, ReadArray(bus, []uint16{}, 0))
	require.NoError(t, WriteArray(bus, []int{}, 0))

	assert.Len(t, sim.Configs(), 1, "zero-length calls still acquire the controller")
	assert.Empty(t, sim.Sent())
}

func TestNegativeLengthRejectedBeforeHardwareAccess(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)

	assert.ErrorIs(t, Transfer(bus, []uint8{1, 2}, -1), ErrBulkLength)
	assert.ErrorIs(t, WriteArray(bus, []uint8{1, 2}, -3), ErrBulkLength)
	assert.ErrorIs(t, ReadArray(bus, []uint8{1, 2}, -1), ErrBulkLength)

	assert.Empty(t, sim.Configs(), "no acquisition on a length error")
	assert.Empty(t, sim.Sent())
}

func TestLengthBeyondBufferRejected(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)

	assert.ErrorIs(t, Transfer(bus, []uint8{1, 2}, 3), ErrBulkLength)
	assert.Empty(t, sim.Configs())
}

func TestTransferWideWords(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)
	require.NoError(t, bus.SetFormat(16, 0))

	sim.Script(0xBEEF)
	buf16 := []uint16{0x1234}
	require.NoError(t, TransferAll(bus, buf16))
	assert.Equal(t, []uint16{0xBEEF}, buf16)

	sim.Script(0x0102)
	bufInt := []int{0x7FFF}
	require.NoError(t, TransferAll(bus, bufInt))
	assert.Equal(t, []int{0x0102}, bufInt)

	sim.Script(0x4321)
	buf32 := []uint32{0xABCD}
	require.NoError(t, TransferAll(bus, buf32))
	assert.Equal(t, []uint32{0x4321}, buf32)

	assert.Equal(t, []uint16{0x1234, 0x7FFF, 0xABCD}, sim.Sent())
}

func TestExchangeErrorStopsLoop(t *testing.T) {
	reg, sim := newTestRegistry()
	bus := newTestMaster(t, reg)

	// Prime ownership, then make every further exchange fail.
	_, err := bus.Write(0x00)
	require.NoError(t, err)
	sim.Reset()
	sim.ExchangeErr = assert.AnError

	buf := []uint8{0x01, 0x02, 0x03}
	require.ErrorIs(t, TransferAll(bus, buf), assert.AnError)
	assert.Equal(t, []uint8{0x01, 0x02, 0x03}, buf, "a failed exchange leaves the buffer as is")
}
