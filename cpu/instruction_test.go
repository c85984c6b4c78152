package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/osciemu/memory"
)

func neg(v int32) uint32 { return uint32(v) }

func TestInstruction_Execute(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		mem    []uint32
		in     Instruction
		target uint32
		result uint32
		next   uint32
	}){
		{"positive", []uint32{5, 3, 0, 0}, Instruction{0, 1, 2, 128}, 2, 2, 4},
		{"negative", []uint32{3, 5, 0, 0}, Instruction{0, 1, 2, 128}, 2, neg(-2), 128},
		{"zero", []uint32{7, 7, 9, 0}, Instruction{0, 1, 2, 128}, 2, 0, 128},
		{"self", []uint32{7, 0, 0, 0}, Instruction{0, 0, 0, 64}, 0, 0, 64},
		{"wrap_positive", []uint32{0x80000000, 1, 0, 0}, Instruction{0, 1, 2, 128}, 2, 0x7fffffff, 4},
		{"wrap_negative", []uint32{0x7fffffff, 0xffffffff, 0, 0}, Instruction{0, 1, 2, 128}, 2, 0x80000000, 128},
		{"indirect", []uint32{1, 2, 0, 0, 1, 8}, Instruction{Indirect(2), Indirect(4), Indirect(1), Indirect(5)}, 2, neg(-1), 8},
	}

	for _, entry := range table {
		mem := memory.NewSliceFrom(entry.mem)
		next, err := entry.in.Execute(mem, 0)
		assert.NoError(err, entry.name)
		assert.Equal(entry.result, mem.Data[entry.target], entry.name)
		assert.Equal(entry.next, next, entry.name)
	}
}

func TestInstruction_ExecuteAt(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewSliceFrom([]uint32{
		12, 13, 14, 15, 12, 12, 14, 15, 0, 0, 0, 0, 2, 1, 0, 0,
	})

	ip, err := ExecuteAt(mem, 0)
	assert.NoError(err)
	assert.Equal(uint32(1), mem.Data[14])
	assert.Equal(uint32(4), ip)

	ip, err = ExecuteAt(mem, ip)
	assert.NoError(err)
	assert.Equal(uint32(0), mem.Data[14])
	assert.Equal(uint32(15), ip)
}

func TestInstruction_DecodeEncode(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewSlice(8)
	in := Instruction{OpA: 1, OpB: 2, Target: 3, Jmp: 0x40000000}

	assert.NoError(in.Encode(mem, 4))
	assert.Equal([]uint32{0, 0, 0, 0, 1, 2, 3, 0x40000000}, mem.Data)

	out, err := Decode(mem, 4)
	assert.NoError(err)
	assert.Equal(in, out)

	_, err = Decode(mem, 6)
	assert.ErrorIs(err, memory.ErrOutOfBounds)

	assert.ErrorIs(in.Encode(mem, 5), memory.ErrOutOfBounds)
}

func TestInstruction_ResolveFirst(t *testing.T) {
	assert := assert.New(t)

	// target is written before jmp would be read, but jmp must see the
	// value from before execution.
	mem := memory.NewSliceFrom([]uint32{3, 5, 7, 7, 0, 0, 0, 0})
	in := Instruction{OpA: 0, OpB: 1, Target: Indirect(2), Jmp: Indirect(7)}
	mem.Data[7] = 0x40

	eff, err := in.Resolve(mem)
	assert.NoError(err)
	assert.Equal(Instruction{0, 1, 7, 0x40}, eff)

	next, err := in.Execute(mem, 0)
	assert.NoError(err)
	assert.Equal(neg(-2), mem.Data[7])
	assert.Equal(uint32(0x40), next)
}

func TestInstruction_Unmapped(t *testing.T) {
	assert := assert.New(t)

	mm := memory.NewMapped()
	_, err := mm.Mount(0, memory.NewSliceFrom([]uint32{0, 1, 0x100, 0}))
	assert.NoError(err)

	_, err = ExecuteAt(mm, 0)
	assert.ErrorIs(err, memory.ErrUnmapped)

	_, err = ExecuteAt(mm, 2)
	assert.ErrorIs(err, memory.ErrUnmapped)
}

func TestIndirect(t *testing.T) {
	assert := assert.New(t)

	assert.False(IsIndirect(0))
	assert.False(IsIndirect(0x7fffffff))
	assert.True(IsIndirect(Indirect(1)))
	assert.True(IsIndirect(Indirect(0x7fffffff)))
	assert.Equal(uint32(0xfffffffb), Indirect(5))
	assert.Equal(uint32(5), -Indirect(5))
}

func TestInstruction_String(t *testing.T) {
	assert := assert.New(t)

	in := Instruction{0x40000004, 0x40000005, 0x7FFFFFF9, 0}
	assert.Equal("40000004 40000005 7FFFFFF9 00000000", in.String())
}
