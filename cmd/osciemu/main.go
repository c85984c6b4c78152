// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/osciemu/cpu"
	"github.com/ezrec/osciemu/emulator"
	"github.com/ezrec/osciemu/internal"
	"github.com/ezrec/osciemu/loader"
	"github.com/ezrec/osciemu/memory"
)

// compile assembles source into output, as hex if output ends in .hex and
// as raw words otherwise.
func compile(source string, output string, verbose bool) (err error) {
	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	prog, err := asm.Parse(inf)
	if err != nil {
		return
	}

	if len(output) == 0 {
		output = strings.TrimSuffix(source, filepath.Ext(source)) + ".img"
	}

	ouf, err := os.Create(output)
	if err != nil {
		return
	}
	defer ouf.Close()

	if strings.ToLower(filepath.Ext(output)) == ".hex" {
		err = prog.WriteHex(ouf)
	} else {
		err = prog.WriteRaw(ouf)
	}

	return
}

// listing merges the listings of the image and the BIOS.
func listing(progs ...*cpu.Program) (prog *cpu.Program) {
	for _, p := range progs {
		if p == nil {
			continue
		}
		if prog == nil {
			prog = &cpu.Program{}
		}
		prog.Lines = append(prog.Lines, p.Lines...)
	}

	return
}

// emulate creates the emulator, mounting an assembled image at its origin.
// An assembled BIOS must originate at BIOS_START_ADDRESS.
func emulate(image memory.Memory, image_prog *cpu.Program, bios memory.Memory, bios_prog *cpu.Program) (emu *emulator.Emulator, err error) {
	if bios_prog != nil && bios_prog.Origin != memory.BIOS_START_ADDRESS {
		err = &memory.ErrAddress{Addr: bios_prog.Origin, Err: emulator.ErrBiosOrigin}
		return
	}

	base := emulator.IMAGE_START_ADDRESS
	if image_prog != nil {
		base = image_prog.Origin
	}

	emu, err = emulator.NewAt(image, base, bios)
	if err != nil {
		return
	}

	emu.Program = listing(image_prog, bios_prog)

	return
}

func main() {
	var image string
	var bios string
	var source string
	var output string
	var maxSteps int
	var step bool
	var defines bool
	var verbose bool

	flag.StringVar(&image, "i", "", "Image to load into memory")
	flag.StringVar(&bios, "b", "", "BIOS to load")
	flag.StringVar(&source, "c", "", "Assembly file to compile")
	flag.StringVar(&output, "o", "", "Compiled output (.hex or raw)")
	flag.IntVar(&maxSteps, "maxstep", 0, "Maximum number of CPU cycles (0 means infinite)")
	flag.BoolVar(&step, "step", false, "Walk through in stepping mode")
	flag.BoolVar(&defines, "defines", false, "List the predefined assembler symbols")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [options]\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Image formats: %v\n", strings.Join(loader.SUPPORTED_FORMATS, " "))
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if defines {
		emu, err := emulator.NewBiosOnly(memory.NewSlice(0))
		if err != nil {
			log.Fatal(err)
		}
		for name, value := range internal.IterSeq2Sorted(emu.Defines()) {
			fmt.Printf("%v = %v\n", name, value)
		}
		return
	}

	if len(source) != 0 {
		err := compile(source, output, verbose)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}
		return
	}

	if len(bios) == 0 {
		flag.Usage()
		log.Fatalf("%v: -b is required", os.Args[0])
	}

	bios_mem, bios_prog, err := loader.LoadFile(bios)
	if err != nil {
		log.Fatalf("Could not load bios: %v", err)
	}

	var image_mem memory.Memory = memory.NewSlice(0)
	var image_prog *cpu.Program
	if len(image) != 0 {
		image_mem, image_prog, err = loader.LoadFile(image)
		if err != nil {
			log.Fatalf("Could not load image: %v", err)
		}
	}

	emu, err := emulate(image_mem, image_prog, bios_mem, bios_prog)
	if err != nil {
		log.Fatal(err)
	}
	emu.Verbose = verbose

	if verbose {
		log.Printf("FLAGS_START_ADDRESS = 0x%08X", memory.FLAGS_START_ADDRESS)
		log.Printf("IVT_START_ADDRESS = 0x%08X", memory.IVT_START_ADDRESS)
		log.Printf("REGISTERS_START_ADDRESS = 0x%08X", memory.REGISTERS_START_ADDRESS)
		log.Printf("STACK_POINTER_ADDRESS = 0x%08X", memory.STACK_POINTER_ADDRESS)
	}

	var stepper *Stepper
	if step {
		stepper, err = NewStepper(os.Stdin, os.Stdout)
		if err != nil {
			log.Fatal(err)
		}
		defer stepper.Close()
	}

	err = run(emu, maxSteps, stepper)
	if err != nil {
		stepper.Close()
		log.Fatal(err)
	}

	if !emu.IsHalted() {
		stepper.Close()
		os.Exit(1)
	}
}

// run steps the emulator until it halts, or maxSteps is reached.
func run(emu *emulator.Emulator, maxSteps int, stepper *Stepper) (err error) {
	for count := 0; maxSteps == 0 || count < maxSteps; count++ {
		if emu.IsHalted() {
			break
		}

		if stepper != nil {
			stepper.Print(emu.String())
		} else if emu.Verbose {
			log.Printf("emulator: ip 0x%08X line %v", emu.Ip, emu.LineNo())
		}

		err = emu.Step()
		if err != nil {
			return
		}

		if stepper != nil {
			var quit bool
			quit, err = stepper.Wait()
			if err != nil || quit {
				return
			}
		}
	}

	return
}
