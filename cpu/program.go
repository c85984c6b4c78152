package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ezrec/osciemu/memory"
)

// Line is a single assembled statement.
type Line struct {
	LineNo int      // Source line number.
	Text   string   // Source text, without comments.
	Addr   uint32   // Address of the first word.
	Words  []string // Operand words.
	Codes  []uint32 // Assembled words.
}

// Program is the output of the Assembler.
type Program struct {
	Origin uint32 // Address of the first word of the image.
	Lines  []Line
}

type Debug struct {
	*Line
	Index int
}

// Debug returns the line that assembled the word at addr.
func (prog *Program) Debug(addr uint32) (dbg Debug) {
	for n, line := range prog.Lines {
		if addr >= line.Addr && uint64(addr) < uint64(line.Addr)+uint64(len(line.Codes)) {
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: int(addr - line.Addr),
			}
			break
		}
	}

	return
}

// Codes iterates over every assembled word and its address.
func (prog *Program) Codes() iter.Seq2[uint32, uint32] {
	return func(yield func(addr uint32, code uint32) bool) {
		for _, line := range prog.Lines {
			for n, code := range line.Codes {
				if !yield(line.Addr+uint32(n), code) {
					return
				}
			}
		}
	}
}

// Binary returns the image, relative to Origin. Gaps are zero filled, so
// the image holds every word up to the last assembled one, however distant.
// A trailing `.addr` with no words after it does not extend the image.
func (prog *Program) Binary() (bins []uint32) {
	var size uint32
	for _, line := range prog.Lines {
		size = max(size, line.Addr-prog.Origin+uint32(len(line.Codes)))
	}

	bins = make([]uint32, size)
	for addr, code := range prog.Codes() {
		bins[addr-prog.Origin] = code
	}

	return
}

// Memory returns the image as a store.
func (prog *Program) Memory() *memory.Slice {
	return memory.NewSliceFrom(prog.Binary())
}

// WriteRaw writes the image as big-endian words.
func (prog *Program) WriteRaw(w io.Writer) (err error) {
	return binary.Write(w, binary.BigEndian, prog.Binary())
}

// WriteHex writes the image as hex text, one statement per line.
func (prog *Program) WriteHex(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)

	here := prog.Origin
	for _, line := range prog.Lines {
		for ; here < line.Addr; here++ {
			_, err = fmt.Fprintln(bw, "0")
			if err != nil {
				return
			}
		}

		words := make([]string, len(line.Codes))
		for n, code := range line.Codes {
			words[n] = fmt.Sprintf("%X", code)
		}
		_, err = fmt.Fprintf(bw, "%v # %v: %v\n", strings.Join(words, " "), line.LineNo, line.Text)
		if err != nil {
			return
		}
		here += uint32(len(line.Codes))
	}

	return bw.Flush()
}
