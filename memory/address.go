package memory

import (
	"fmt"
	"iter"
	"maps"
)

// osci address layout. The control block occupies the top of the address
// space, partitioned top-down into flag words, IVT entries, general
// registers and the stack pointer.
//
//	+----------------------+ 0
//	| image                |
//	+----------------------+ BIOS_START_ADDRESS
//	| BIOS (until bD set)  |
//	+----------------------+ STACK_POINTER_ADDRESS (CONTROLS_ADDRESS)
//	| stack pointer        |
//	+----------------------+ REGISTERS_START_ADDRESS
//	| r0 .. r3             |
//	+----------------------+ IVT_START_ADDRESS
//	| IVT (reserved)       |
//	+----------------------+ FLAGS_START_ADDRESS
//	| flag words           |
//	+----------------------+ MAX_ADDRESS
const (
	MAX_ADDRESS        = uint32(0x7FFFFFFF) // Highest address in osci memory.
	NULL_SIZE          = int(MAX_ADDRESS)   // Words covered by the Null store.
	BIOS_START_ADDRESS = uint32(0x40000000) // Lowest address of the BIOS window.

	NUM_REGISTERS   = 4 // General purpose registers.
	NUM_IVT_ENTRIES = 1 // Interrupt vector entries (unused).
	NUM_FLAGS       = 1 // Flag words.

	FLAGS_START_ADDRESS     = MAX_ADDRESS - NUM_FLAGS
	IVT_START_ADDRESS       = FLAGS_START_ADDRESS - NUM_IVT_ENTRIES
	REGISTERS_START_ADDRESS = IVT_START_ADDRESS - NUM_REGISTERS
	STACK_POINTER_ADDRESS   = REGISTERS_START_ADDRESS - 1
	CONTROLS_ADDRESS        = STACK_POINTER_ADDRESS
	CONTROLS_SIZE           = int(MAX_ADDRESS-CONTROLS_ADDRESS) + 1

	FLAG_HALTED    = 0 // Bit of the halt (H) flag in flag word 0.
	FLAG_BIOS_DONE = 1 // Bit of the BIOS done (bD) flag in flag word 0.
)

var _address_defines = map[string]string{
	"MAX_ADDRESS":             fmt.Sprintf("0x%X", MAX_ADDRESS),
	"BIOS_START_ADDRESS":      fmt.Sprintf("0x%X", BIOS_START_ADDRESS),
	"FLAGS_START_ADDRESS":     fmt.Sprintf("0x%X", FLAGS_START_ADDRESS),
	"IVT_START_ADDRESS":       fmt.Sprintf("0x%X", IVT_START_ADDRESS),
	"IVT0":                    fmt.Sprintf("0x%X", IVT_START_ADDRESS),
	"REGISTERS_START_ADDRESS": fmt.Sprintf("0x%X", REGISTERS_START_ADDRESS),
	"REGISTER0":               fmt.Sprintf("0x%X", REGISTERS_START_ADDRESS+0),
	"REGISTER1":               fmt.Sprintf("0x%X", REGISTERS_START_ADDRESS+1),
	"REGISTER2":               fmt.Sprintf("0x%X", REGISTERS_START_ADDRESS+2),
	"REGISTER3":               fmt.Sprintf("0x%X", REGISTERS_START_ADDRESS+3),
	"STACK_POINTER_ADDRESS":   fmt.Sprintf("0x%X", STACK_POINTER_ADDRESS),
	"FLAG_HALTED_MASK":        fmt.Sprintf("0x%X", 1<<FLAG_HALTED),
	"FLAG_BIOS_DONE_MASK":     fmt.Sprintf("0x%X", 1<<FLAG_BIOS_DONE),
}

// Defines returns the address layout as assembler equates.
func Defines() iter.Seq2[string, string] {
	return maps.All(_address_defines)
}
