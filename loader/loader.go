// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package loader decodes osci memory images from raw binary, hex text, or
// assembly source.
package loader

import (
	"errors"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ezrec/osciemu/cpu"
	"github.com/ezrec/osciemu/memory"
)

// Format of an image file.
type Format int

const (
	FORMAT_RAW Format = iota // Big-endian 32-bit words.
	FORMAT_HEX               // Whitespace separated hex words.
	FORMAT_ASM               // Assembly source.
)

var _formats = map[string]Format{
	"":     FORMAT_RAW,
	".img": FORMAT_RAW,
	".bin": FORMAT_RAW,
	".raw": FORMAT_RAW,
	".hex": FORMAT_HEX,
	".osc": FORMAT_ASM,
	".asm": FORMAT_ASM,
}

// SUPPORTED_FORMATS lists the recognized file extensions. A file without an
// extension is raw.
var SUPPORTED_FORMATS = slices.Sorted(maps.Keys(_formats))[1:]

// FormatOf returns the image format implied by the extension of name.
func FormatOf(name string) (format Format, err error) {
	format, ok := _formats[strings.ToLower(filepath.Ext(name))]
	if !ok {
		err = &ErrLoad{Name: name, Err: ErrLoadExtension}
	}

	return
}

// Load decodes an image from r in the given format. For assembly source,
// prog is the listing, and the image starts at the program origin.
func Load(r io.Reader, format Format) (mem *memory.Slice, prog *cpu.Program, err error) {
	switch format {
	case FORMAT_RAW:
		mem, err = LoadRaw(r)
	case FORMAT_HEX:
		mem, err = LoadHex(r)
	case FORMAT_ASM:
		asm := &cpu.Assembler{}
		prog, err = asm.Parse(r)
		if err != nil {
			var es *cpu.ErrSyntax
			if errors.As(err, &es) {
				err = &ErrLoad{LineNo: es.LineNo, Err: err}
			}
			return
		}
		mem = prog.Memory()
	default:
		err = ErrLoadExtension
	}

	return
}

// LoadFS loads the image name from filesys, selecting the format by the
// file extension.
func LoadFS(filesys fs.FS, name string) (mem *memory.Slice, prog *cpu.Program, err error) {
	format, err := FormatOf(name)
	if err != nil {
		return
	}

	file, err := filesys.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	mem, prog, err = Load(file, format)
	err = named(name, err)

	return
}

// LoadFile loads the image file name, selecting the format by the file
// extension.
func LoadFile(name string) (mem *memory.Slice, prog *cpu.Program, err error) {
	format, err := FormatOf(name)
	if err != nil {
		return
	}

	file, err := os.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	mem, prog, err = Load(file, format)
	err = named(name, err)

	return
}

// named attaches the file name to a load error.
func named(name string, err error) error {
	if err == nil {
		return nil
	}

	var el *ErrLoad
	if errors.As(err, &el) {
		el.Name = name
		return err
	}

	return &ErrLoad{Name: name, Err: err}
}
