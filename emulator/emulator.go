// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/osciemu/cpu"
	"github.com/ezrec/osciemu/internal"
	"github.com/ezrec/osciemu/memory"
)

const (
	IMAGE_START_ADDRESS = uint32(0) // Base of the guest image.

	flagsOffset     = memory.FLAGS_START_ADDRESS - memory.CONTROLS_ADDRESS
	registersOffset = memory.REGISTERS_START_ADDRESS - memory.CONTROLS_ADDRESS
)

var _emulator_defines = map[string]string{
	"IMAGE_START_ADDRESS": fmt.Sprintf("0x%X", IMAGE_START_ADDRESS),
}

//go:generate go tool stringer -linecomment -type=State

// State is derived from the flag word, never stored.
type State int

const (
	STATE_RUNNING State = iota // running
	STATE_HALTED               // halted
)

// Emulator state. Composed address space + instruction pointer.
type Emulator struct {
	Verbose bool           // If set, enables verbose logging.
	Ip      uint32         // Current instruction pointer.
	Ticks   int            // Instructions executed.
	Memory  *memory.Mapped // Composed address space.
	Program *cpu.Program   // Optional listing of the image, for line numbers.

	// OnFlags, if set, is called synchronously on every write to the flag
	// word, before the write lands.
	OnFlags func(old, new uint32)

	ImageToken   memory.Token // Mount of the guest image.
	BiosToken    memory.Token // Mount of the boot ROM.
	ControlToken memory.Token // Mount of the control block.

	controls *memory.Slice
}

// New creates an emulator running bios over image.
//
// The Null store is mounted first, then the image at IMAGE_START_ADDRESS,
// the read-only BIOS at BIOS_START_ADDRESS, and the control block at
// CONTROLS_ADDRESS. Execution starts at BIOS_START_ADDRESS.
func New(image memory.Memory, bios memory.Memory) (emu *Emulator, err error) {
	return NewAt(image, IMAGE_START_ADDRESS, bios)
}

// NewAt creates an emulator running bios over image, with the image
// mounted at base. The image must end at or before BIOS_START_ADDRESS.
func NewAt(image memory.Memory, base uint32, bios memory.Memory) (emu *Emulator, err error) {
	if uint64(base)+uint64(image.Size()) > uint64(memory.BIOS_START_ADDRESS) {
		err = &memory.ErrAddress{Addr: base, Err: ErrImageOrigin}
		return
	}

	mm := memory.NewMapped()
	mm.Align = cpu.INSTRUCTION_SIZE

	emu = &Emulator{
		Ip:       memory.BIOS_START_ADDRESS,
		Memory:   mm,
		controls: memory.NewSlice(memory.CONTROLS_SIZE),
	}

	control := memory.NewHook(emu.controls)
	control.Write = emu.watch

	_, err = mm.Mount(0, memory.Null{})
	if err != nil {
		return
	}

	emu.ImageToken, err = mm.Mount(base, image)
	if err != nil {
		return
	}

	emu.BiosToken, err = mm.Mount(memory.BIOS_START_ADDRESS, memory.NewReadOnly(bios))
	if err != nil {
		return
	}

	emu.ControlToken, err = mm.Mount(memory.CONTROLS_ADDRESS, control)
	if err != nil {
		return
	}

	return
}

// NewBiosOnly creates an emulator with an empty image.
func NewBiosOnly(bios memory.Memory) (emu *Emulator, err error) {
	return New(memory.NewSlice(0), bios)
}

// watch observes writes to the control block.
func (emu *Emulator) watch(addr uint32, value uint32) (uint32, uint32) {
	if addr == flagsOffset {
		old := emu.controls.Data[flagsOffset]
		if emu.Verbose && old != value {
			log.Printf("emulator: flags 0x%08x -> 0x%08x", old, value)
		}
		if emu.OnFlags != nil {
			emu.OnFlags(old, value)
		}
	}

	return addr, value
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		memory.Defines(),
		cpu.Defines(),
	)
}

// Flags returns the flag word.
func (emu *Emulator) Flags() uint32 {
	return emu.controls.Data[flagsOffset]
}

// IsFlagSet returns true if bit flag of the flag word is set.
func (emu *Emulator) IsFlagSet(flag int) bool {
	return emu.Flags()&(1<<flag) != 0
}

// IsHalted returns true if the guest has set the halt flag.
func (emu *Emulator) IsHalted() bool {
	return emu.IsFlagSet(memory.FLAG_HALTED)
}

// State returns the run state.
func (emu *Emulator) State() State {
	if emu.IsHalted() {
		return STATE_HALTED
	}

	return STATE_RUNNING
}

// Register returns the value of general register n.
func (emu *Emulator) Register(n int) (value uint32, err error) {
	if n < 0 || n >= memory.NUM_REGISTERS {
		err = ErrRegister
		return
	}

	return emu.Memory.Get(memory.REGISTERS_START_ADDRESS + uint32(n))
}

// SetRegister sets general register n.
func (emu *Emulator) SetRegister(n int, value uint32) (err error) {
	if n < 0 || n >= memory.NUM_REGISTERS {
		err = ErrRegister
		return
	}

	return emu.Memory.Set(memory.REGISTERS_START_ADDRESS+uint32(n), value)
}

// StackPointer returns the stack pointer cell.
func (emu *Emulator) StackPointer() (value uint32, err error) {
	return emu.Memory.Get(memory.STACK_POINTER_ADDRESS)
}

// LineNo returns the source line of the instruction at Ip, or 0 if there
// is no listing for it.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Ip)
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// Step executes a single instruction, then shadows out the BIOS once the
// guest has set the BIOS done flag.
func (emu *Emulator) Step() (err error) {
	ip := emu.Ip
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: emu.LineNo(), Err: err}
		}
	}()

	if emu.Verbose {
		in, _ := cpu.Decode(emu.Memory, ip)
		log.Printf("emulator: %08x: %v", ip, in)
	}

	next, err := cpu.ExecuteAt(emu.Memory, ip)
	if err != nil {
		return
	}

	emu.Ip = next
	emu.Ticks++

	if emu.IsFlagSet(memory.FLAG_BIOS_DONE) {
		var enabled bool
		enabled, err = emu.Memory.IsEnabled(emu.BiosToken)
		if err != nil {
			return
		}
		if enabled {
			if emu.Verbose {
				log.Printf("emulator: bios done, unmapping")
			}
			err = emu.Memory.Disable(emu.BiosToken)
			if err != nil {
				return
			}
		}
	}

	return
}

// Tick performs a single step of the emulator, and reports if the guest
// has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	err = emu.Step()
	if err != nil {
		return
	}

	done = emu.IsHalted()
	return
}

// Run steps until the guest halts, or maxSteps instructions have been
// executed. A maxSteps of 0 is unbounded.
func (emu *Emulator) Run(maxSteps int) (steps int, err error) {
	for !emu.IsHalted() && (maxSteps == 0 || steps < maxSteps) {
		err = emu.Step()
		if err != nil {
			return
		}
		steps++
	}

	if emu.Verbose {
		log.Printf("emulator: %v after %v steps", emu.State(), steps)
	}

	return
}

// String returns the current emulator state as a string.
func (emu *Emulator) String() (text string) {
	regs := []string{
		"ip",
		"r0", "r1", "r2", "r3",
		"sp",
		"flags",
		"state",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "ip":
			strval = fmt.Sprintf("%04X_%04X", emu.Ip>>16, emu.Ip&0xffff)
		case "r0", "r1", "r2", "r3":
			val := emu.controls.Data[registersOffset+uint32(reg[1]-'0')]
			strval = fmt.Sprintf("%04X_%04X", val>>16, val&0xffff)
		case "sp":
			val := emu.controls.Data[0]
			strval = fmt.Sprintf("%04X_%04X", val>>16, val&0xffff)
		case "flags":
			val := emu.Flags()
			strval = fmt.Sprintf("%04X_%04X", val>>16, val&0xffff)
		case "state":
			strval = emu.State().String()
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}
