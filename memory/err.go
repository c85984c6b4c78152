package memory

import (
	"errors"

	"github.com/ezrec/osciemu/translate"
)

var f = translate.From

var (
	ErrOutOfBounds  = errors.New(f("out of bounds"))
	ErrUnmapped     = errors.New(f("no mapping"))
	ErrMountAlign   = errors.New(f("mount misaligned"))
	ErrMountRange   = errors.New(f("mount exceeds address space"))
	ErrTokenUnknown = errors.New(f("token unknown"))
)

// ErrAddress annotates a memory error with the address that caused it.
type ErrAddress struct {
	Addr uint32
	Err  error
}

func (err *ErrAddress) Error() string {
	return f("address 0x%08x %v", err.Addr, err.Err)
}

func (err *ErrAddress) Unwrap() error {
	return err.Err
}
