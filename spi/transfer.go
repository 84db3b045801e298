package spi

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var ErrBulkLength = errors.New("transfer length out of range")

// Word constrains the element types usable with the bulk exchange
// operations: byte and uint16 buffers for the common cases, or any other
// integer type when a device protocol is defined in wider words. On the
// wire every element is truncated to the configured word width.
type Word interface {
	constraints.Integer
}

// Transfer exchanges the first n words of values with the slave,
// overwriting each position with the response received while that word was
// shifted out. The controller is acquired once for the whole call, not per
// word. n == 0 still acquires the controller but exchanges nothing.
func Transfer[W Word](m *Master, values []W, n int) error {
	if err := checkLength(len(values), n); err != nil {
		return err
	}
	if err := m.acquire(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		resp, err := m.ctrl.drv.Exchange(uint16(values[i]))
		if err != nil {
			return err
		}
		values[i] = W(resp)
	}
	return nil
}

// WriteArray shifts the first n words of values out to the slave. The
// responses clocked in at the same time are discarded; values is never
// modified.
func WriteArray[W Word](m *Master, values []W, n int) error {
	if err := checkLength(len(values), n); err != nil {
		return err
	}
	if err := m.acquire(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if _, err := m.ctrl.drv.Exchange(uint16(values[i])); err != nil {
			return err
		}
	}
	return nil
}

// ReadArray fills the first n positions of values with responses from the
// slave, shifting out zero words.
func ReadArray[W Word](m *Master, values []W, n int) error {
	if err := checkLength(len(values), n); err != nil {
		return err
	}
	if err := m.acquire(); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		resp, err := m.ctrl.drv.Exchange(0)
		if err != nil {
			return err
		}
		values[i] = W(resp)
	}
	return nil
}

// TransferAll is Transfer over the whole slice.
func TransferAll[W Word](m *Master, values []W) error {
	return Transfer(m, values, len(values))
}

// WriteAll is WriteArray over the whole slice.
func WriteAll[W Word](m *Master, values []W) error {
	return WriteArray(m, values, len(values))
}

// ReadAll is ReadArray over the whole slice.
func ReadAll[W Word](m *Master, values []W) error {
	return ReadArray(m, values, len(values))
}

// checkLength rejects lengths with no meaningful iteration semantics
// before any ownership or hardware access happens.
func checkLength(have, n int) error {
	if n < 0 || n > have {
		return fmt.Errorf("%w: %d with %d words provided", ErrBulkLength, n, have)
	}
	return nil
}
