package loader

import (
	"errors"

	"github.com/ezrec/osciemu/translate"
)

var f = translate.From

var (
	ErrLoadExtension = errors.New(f("unknown file extension"))
	ErrHexDigit      = errors.New(f("word contains non-hex characters"))
	ErrHexRange      = errors.New(f("word does not fit in 32 bits"))
	ErrRawTruncated  = errors.New(f("length is not a multiple of 4 bytes"))
)

// ErrLoad indicates the location of a load error.
type ErrLoad struct {
	Name   string // File name, if known.
	LineNo int    // Line number, for text formats.
	Word   string // Offending word, if any.
	Err    error
}

func (err *ErrLoad) Error() (text string) {
	text = err.Name
	if err.LineNo != 0 {
		text += f(":%v", err.LineNo)
	}
	if len(err.Word) != 0 {
		text += f(" '%v'", err.Word)
	}
	if len(text) != 0 {
		text += ": "
	}

	return text + err.Err.Error()
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
