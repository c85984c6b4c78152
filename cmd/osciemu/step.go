package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stepper waits for a key between instructions. On a terminal a single key
// press continues, otherwise a full line is read.
type Stepper struct {
	input  *bufio.Reader
	output io.Writer

	fd       int
	oldState *term.State
}

// NewStepper creates a stepper, placing input in raw mode if it is a
// terminal.
func NewStepper(input *os.File, output io.Writer) (st *Stepper, err error) {
	st = &Stepper{
		input:  bufio.NewReader(input),
		output: output,
		fd:     int(input.Fd()),
	}

	if term.IsTerminal(st.fd) {
		st.oldState, err = term.MakeRaw(st.fd)
		if err != nil {
			return
		}
	}

	return
}

// Print writes text, translating line endings while in raw mode.
func (st *Stepper) Print(text string) {
	if st.oldState != nil {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	fmt.Fprint(st.output, text)
}

// Wait blocks until the next key or line. 'q' requests a stop.
func (st *Stepper) Wait() (quit bool, err error) {
	st.Print("-- step: any key to continue, q to quit --\n")

	var text string
	if st.oldState != nil {
		var b byte
		b, err = st.input.ReadByte()
		text = string(b)
	} else {
		text, err = st.input.ReadString('\n')
	}
	if err == io.EOF {
		err = nil
		quit = true
		return
	}
	if err != nil {
		return
	}

	// Ctrl-C is not delivered as a signal in raw mode.
	text = strings.TrimSpace(text)
	quit = text == "q" || text == "\x03"

	return
}

// Close restores the terminal. Safe to call more than once, and on a nil
// Stepper.
func (st *Stepper) Close() {
	if st == nil || st.oldState == nil {
		return
	}

	_ = term.Restore(st.fd, st.oldState)
	st.oldState = nil
}
