package cpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramDebug(t *testing.T) {
	assert := assert.New(t)

	_, prog := assemble(t,
		"start: a a a",
		"a: .word 5",
	)

	dbg := prog.Debug(2)
	assert.NotNil(dbg.Line)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(4)
	assert.NotNil(dbg.Line)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(5)
	assert.Nil(dbg.Line)
}

func TestProgramCodes(t *testing.T) {
	assert := assert.New(t)

	_, prog := assemble(t,
		".org 0x100",
		".word 1 2",
		".addr 0x104",
		".word 3",
	)

	codes := map[uint32]uint32{}
	for addr, code := range prog.Codes() {
		codes[addr] = code
	}
	assert.Equal(map[uint32]uint32{0x100: 1, 0x101: 2, 0x104: 3}, codes)
	assert.Equal([]uint32{1, 2, 0, 0, 3}, prog.Binary())

	// A trailing .addr does not extend the image.
	_, prog = assemble(t,
		".word 1",
		".addr 0x1000",
	)
	assert.Equal([]uint32{1}, prog.Binary())
}

func TestProgramWriteRaw(t *testing.T) {
	assert := assert.New(t)

	_, prog := assemble(t, ".word 1 0xDEADBEEF")

	var buf bytes.Buffer
	assert.NoError(prog.WriteRaw(&buf))
	assert.Equal([]byte{0, 0, 0, 1, 0xDE, 0xAD, 0xBE, 0xEF}, buf.Bytes())
}

func TestProgramWriteHex(t *testing.T) {
	assert := assert.New(t)

	_, prog := assemble(t,
		"start: a a a",
		".addr 6",
		"a: .word 5",
	)

	var buf bytes.Buffer
	assert.NoError(prog.WriteHex(&buf))
	assert.Equal("6 6 6 4 # 1: start: a a a\n0\n0\n5 # 3: a: .word 5\n", buf.String())
}
