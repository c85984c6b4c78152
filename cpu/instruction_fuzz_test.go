package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/osciemu/memory"
)

func FuzzInstruction(f *testing.F) {
	f.Add(uint32(0), uint32(1), uint32(2), uint32(3), uint32(5), uint32(3))
	f.Add(Indirect(4), Indirect(5), uint32(2), uint32(3), uint32(0x80000000), uint32(1))

	f.Fuzz(func(t *testing.T, a, b, target, jmp, va, vb uint32) {
		assert := assert.New(t)

		mm := memory.NewMapped()
		_, err := mm.Mount(0, memory.Null{})
		assert.NoError(err)
		data := memory.NewSlice(32)
		_, err = mm.Mount(0x1000, data)
		assert.NoError(err)

		// Keep operands, and indirect pointers, inside the data window.
		fix := func(op uint32) uint32 {
			if IsIndirect(op) {
				return Indirect(0x1000 + (-op)%16)
			}
			return 0x1000 + op%16
		}
		if IsIndirect(jmp) {
			jmp = fix(jmp)
		}
		data.Data[0] = va
		data.Data[1] = vb
		in := Instruction{fix(a), fix(b), fix(target), jmp}
		assert.NoError(in.Encode(mm, 0x1010))

		eff, err := in.Resolve(mm)
		assert.NoError(err)
		va, erra := mm.Get(eff.OpA)
		vb, errb := mm.Get(eff.OpB)

		next, err := ExecuteAt(mm, 0x1010)
		if err != nil {
			// An indirect operand can point past the end of memory.
			assert.ErrorIs(err, memory.ErrUnmapped)
			return
		}
		assert.NoError(erra)
		assert.NoError(errb)

		result := va - vb
		if int32(result) <= 0 {
			assert.Equal(eff.Jmp, next)
		} else {
			assert.Equal(uint32(0x1014), next)
		}
	})
}
