package loader

import (
	"encoding/binary"
	"io"

	"github.com/ezrec/osciemu/memory"
)

// LoadRaw loads big-endian 32-bit words.
func LoadRaw(r io.Reader) (mem *memory.Slice, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}

	if len(data)%4 != 0 {
		err = &ErrLoad{Err: ErrRawTruncated}
		return
	}

	words := make([]uint32, len(data)/4)
	for n := range words {
		words[n] = binary.BigEndian.Uint32(data[n*4:])
	}

	mem = memory.NewSliceFrom(words)
	return
}
