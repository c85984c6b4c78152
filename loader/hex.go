package loader

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ezrec/osciemu/cpu"
	"github.com/ezrec/osciemu/memory"
)

// HEX_DIGITS is the most digits a word may have, excluding the sign.
const HEX_DIGITS = 8

// isHexWord is true for hex digits with an optional leading `-`.
func isHexWord(word string) bool {
	digits := strings.TrimPrefix(word, "-")
	if len(digits) == 0 {
		return false
	}

	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}

	return true
}

// LoadHex loads whitespace separated hexadecimal words of at most
// HEX_DIGITS digits. A `#` discards the rest of its line, and a leading `-`
// negates a word.
//
//	DEADBEEF  # numbers are hex, even without a prefix
//	1 10 100
//	-5
func LoadHex(r io.Reader) (mem *memory.Slice, err error) {
	var words []uint32

	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, cpu.MAX_LINE_SIZE)
	lineno := 0
	for scanner.Scan() {
		lineno++
		for _, word := range strings.Fields(scanner.Text()) {
			if strings.HasPrefix(word, "#") {
				break
			}

			if !isHexWord(word) {
				err = &ErrLoad{LineNo: lineno, Word: word, Err: ErrHexDigit}
				return
			}

			if len(strings.TrimPrefix(word, "-")) > HEX_DIGITS {
				err = &ErrLoad{LineNo: lineno, Word: word, Err: ErrHexRange}
				return
			}

			var value uint32
			if strings.HasPrefix(word, "-") {
				var v64 int64
				v64, err = strconv.ParseInt(word, 16, 32)
				value = uint32(v64)
			} else {
				var v64 uint64
				v64, err = strconv.ParseUint(word, 16, 32)
				value = uint32(v64)
			}
			if err != nil {
				err = &ErrLoad{LineNo: lineno, Word: word, Err: ErrHexRange}
				return
			}

			words = append(words, value)
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	mem = memory.NewSliceFrom(words)
	return
}
