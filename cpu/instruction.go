// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"

	"github.com/ezrec/osciemu/memory"
)

const (
	INSTRUCTION_SIZE = 4 // Words per instruction.
)

var _cpu_defines = map[string]string{
	"INSTRUCTION_SIZE": fmt.Sprintf("%v", INSTRUCTION_SIZE),
}

// Instruction is the single osci instruction.
//
//	if op_a < 0 { op_a = *(-op_a) }     ; likewise for op_b, target, jmp
//	*target = *op_a - *op_b
//	if *target <= 0 { goto jmp }
//
// A negative operand is indirect: the word at its negation holds the
// effective address.
type Instruction struct {
	OpA    uint32 // Address of operand A.
	OpB    uint32 // Address of operand B.
	Target uint32 // Address that receives A - B.
	Jmp    uint32 // Next instruction when the result is not positive.
}

// Decode reads the instruction at addr.
func Decode(mem memory.Memory, addr uint32) (in Instruction, err error) {
	var words [INSTRUCTION_SIZE]uint32
	for n := range words {
		words[n], err = mem.Get(addr + uint32(n))
		if err != nil {
			return
		}
	}

	in = Instruction{
		OpA:    words[0],
		OpB:    words[1],
		Target: words[2],
		Jmp:    words[3],
	}

	return
}

// Encode writes the instruction at addr.
func (in Instruction) Encode(mem memory.Memory, addr uint32) (err error) {
	for n, word := range in.Words() {
		err = mem.Set(addr+uint32(n), word)
		if err != nil {
			return
		}
	}

	return
}

// Words returns the operands in memory order.
func (in Instruction) Words() [INSTRUCTION_SIZE]uint32 {
	return [INSTRUCTION_SIZE]uint32{in.OpA, in.OpB, in.Target, in.Jmp}
}

// IsIndirect returns true if the operand word selects indirect addressing.
func IsIndirect(operand uint32) bool {
	return int32(operand) < 0
}

// Indirect encodes addr as an indirect operand.
func Indirect(addr uint32) uint32 {
	return -addr
}

// Resolve replaces every indirect operand by the effective address it
// refers to. All operands are resolved before any of them is used.
func (in Instruction) Resolve(mem memory.Memory) (out Instruction, err error) {
	ops := [INSTRUCTION_SIZE](*uint32){&out.OpA, &out.OpB, &out.Target, &out.Jmp}
	for n, word := range in.Words() {
		if IsIndirect(word) {
			word, err = mem.Get(-word)
			if err != nil {
				return
			}
		}
		*ops[n] = word
	}

	return
}

// Execute runs the instruction fetched from ip against mem, and returns the
// next instruction pointer. The subtraction wraps silently.
func (in Instruction) Execute(mem memory.Memory, ip uint32) (next uint32, err error) {
	eff, err := in.Resolve(mem)
	if err != nil {
		return
	}

	a, err := mem.Get(eff.OpA)
	if err != nil {
		return
	}

	b, err := mem.Get(eff.OpB)
	if err != nil {
		return
	}

	result := a - b
	err = mem.Set(eff.Target, result)
	if err != nil {
		return
	}

	if int32(result) <= 0 {
		next = eff.Jmp
	} else {
		next = ip + INSTRUCTION_SIZE
	}

	return
}

// ExecuteAt decodes and executes the instruction at ip.
func ExecuteAt(mem memory.Memory, ip uint32) (next uint32, err error) {
	in, err := Decode(mem, ip)
	if err != nil {
		return
	}

	return in.Execute(mem, ip)
}

func (in Instruction) String() string {
	return fmt.Sprintf("%08X %08X %08X %08X", in.OpA, in.OpB, in.Target, in.Jmp)
}
