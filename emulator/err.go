package emulator

import (
	"errors"

	"github.com/ezrec/osciemu/translate"
)

var f = translate.From

var (
	ErrRegister    = errors.New(f("register out of range"))
	ErrImageOrigin = errors.New(f("image overlaps the BIOS"))
	ErrBiosOrigin  = errors.New(f("BIOS is not assembled at BIOS_START_ADDRESS"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Ip     uint32
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("ip 0x%08x %v", err.Ip, err.Err)
	}
	return f("ip 0x%08x line %v %v", err.Ip, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
