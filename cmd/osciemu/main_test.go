package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/osciemu/cpu"
	"github.com/ezrec/osciemu/emulator"
	"github.com/ezrec/osciemu/loader"
	"github.com/ezrec/osciemu/memory"
)

const countdown = `
.org BIOS_START_ADDRESS
loop:  REGISTER0 one REGISTER0 done
       z z z loop
done:  halt z FLAGS_START_ADDRESS
one:   .word 1
z:     .word 0
halt:  .word FLAG_HALTED_MASK
`

func TestCompile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := filepath.Join(dir, "bios.osc")
	assert.NoError(os.WriteFile(source, []byte(countdown), 0644))

	assert.NoError(compile(source, "", false))
	raw, _, err := loader.LoadFile(filepath.Join(dir, "bios.img"))
	assert.NoError(err)

	output := filepath.Join(dir, "bios.hex")
	assert.NoError(compile(source, output, false))
	hex, _, err := loader.LoadFile(output)
	assert.NoError(err)

	assert.Equal(15, raw.Size())
	assert.Equal(raw.Data, hex.Data)

	err = compile(filepath.Join(dir, "missing.osc"), "", false)
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	bios, prog, err := loader.Load(bytes.NewReader([]byte(countdown)), loader.FORMAT_ASM)
	assert.NoError(err)

	emu, err := emulator.NewBiosOnly(bios)
	assert.NoError(err)
	emu.Program = listing(nil, prog)
	assert.NoError(emu.SetRegister(0, 2))

	assert.NoError(run(emu, 0, nil))
	assert.True(emu.IsHalted())
	assert.Equal(4, emu.Ticks)

	// Step ceiling.
	emu, err = emulator.NewBiosOnly(bios)
	assert.NoError(err)
	assert.NoError(emu.SetRegister(0, 2))
	assert.NoError(run(emu, 2, nil))
	assert.False(emu.IsHalted())
	assert.Equal(2, emu.Ticks)
}

func TestEmulateOrigin(t *testing.T) {
	assert := assert.New(t)

	image, image_prog, err := loader.Load(strings.NewReader(".org 0x100\nval: .word 0x1234"), loader.FORMAT_ASM)
	assert.NoError(err)

	bios, bios_prog, err := loader.Load(strings.NewReader(`
.org BIOS_START_ADDRESS
       0x100 z REGISTER0
       halt z FLAGS_START_ADDRESS
z:     .word 0
halt:  .word FLAG_HALTED_MASK
`), loader.FORMAT_ASM)
	assert.NoError(err)

	emu, err := emulate(image, image_prog, bios, bios_prog)
	assert.NoError(err)
	assert.NoError(run(emu, 0, nil))
	assert.True(emu.IsHalted())

	r0, err := emu.Register(0)
	assert.NoError(err)
	assert.Equal(uint32(0x1234), r0)

	// Hex and raw images have no origin, and mount at zero.
	emu, err = emulate(memory.NewSliceFrom([]uint32{7}), nil, bios, bios_prog)
	assert.NoError(err)
	value, err := emu.Memory.Get(0)
	assert.NoError(err)
	assert.Equal(uint32(7), value)

	// A BIOS assembled elsewhere would run with every label misplaced.
	_, err = emulate(image, image_prog, image, image_prog)
	assert.ErrorIs(err, emulator.ErrBiosOrigin)

	// An image reaching into the BIOS is rejected.
	_, err = emulate(memory.NewSlice(0x100), &cpu.Program{Origin: memory.BIOS_START_ADDRESS - 0x80}, bios, bios_prog)
	assert.ErrorIs(err, emulator.ErrImageOrigin)
}

func TestListing(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(listing(nil, nil))

	a := &cpu.Program{Lines: []cpu.Line{{LineNo: 1}}}
	b := &cpu.Program{Lines: []cpu.Line{{LineNo: 2}, {LineNo: 3}}}
	assert.Len(listing(a, nil, b).Lines, 3)
}

func TestStepper(t *testing.T) {
	assert := assert.New(t)

	r, w, err := os.Pipe()
	assert.NoError(err)
	defer r.Close()

	_, err = w.WriteString("\nq\n")
	assert.NoError(err)
	w.Close()

	var out bytes.Buffer
	st, err := NewStepper(r, &out)
	assert.NoError(err)
	defer st.Close()

	quit, err := st.Wait()
	assert.NoError(err)
	assert.False(quit)

	quit, err = st.Wait()
	assert.NoError(err)
	assert.True(quit)

	// End of input stops stepping.
	quit, err = st.Wait()
	assert.NoError(err)
	assert.True(quit)

	assert.Contains(out.String(), "any key to continue")
}
