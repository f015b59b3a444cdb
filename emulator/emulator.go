// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	"io"
	"iter"
	"maps"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/asurkis/risc-emulator/cpu"
	"github.com/asurkis/risc-emulator/internal"
	rvio "github.com/asurkis/risc-emulator/io"
)

const (
	STEP_LIMIT = 1_000_000 // Default number of steps in a run.
)

var _emulator_defines = map[string]string{
	"STEP_LIMIT": fmt.Sprintf("%v", STEP_LIMIT),
}

// Emulator state. Machine + program listing + IO channels.
type Emulator struct {
	Verbose      bool         // If set, enables verbose logging.
	*cpu.Machine              // Reference to the machine simulation.
	Program      *cpu.Program // Reference to the currently running program listing.
	StepLimit    int          // Steps allowed in Run, or unlimited if not positive.

	Tape rvio.Tape // Tape IO channel.
	Rom  rvio.Rom  // Boot image of the program.
}

// NewEmulator creates a new emulator with memorySize slots of memory, or
// cpu.MEMORY_SIZE slots if memorySize is not positive.
func NewEmulator(memorySize int) (emu *Emulator) {
	emu = &Emulator{
		Machine:   cpu.NewMachine(memorySize),
		Program:   &cpu.Program{},
		StepLimit: STEP_LIMIT,
	}

	emu.Machine.Channel = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Machine.Defines(),
		emu.Tape.Defines(),
	)
}

// Assemble source into the emulator program, with every emulator define
// visible to $() expressions. The machine is reset to the new program.
func (emu *Emulator) Assemble(source io.Reader, defines iter.Seq2[string, string]) (err error) {
	asm := &cpu.Assembler{
		Verbose:  emu.Verbose,
		MaxSlots: emu.Machine.Memory.Len(),
	}

	for key, value := range internal.IterSeq2Concat(emu.Defines(), defines) {
		asm.Predefine(key, value)
	}

	prog, err := asm.Parse(source)
	if err != nil {
		return
	}

	emu.Program = prog

	err = emu.Reset()

	return
}

// Load assembles source text with no extra defines.
func (emu *Emulator) Load(source string) (err error) {
	err = emu.Assemble(strings.NewReader(source), maps.All(map[string]string{}))
	return
}

// Reset the machine to the start of the current program.
func (emu *Emulator) Reset() (err error) {
	emu.Machine.Verbose = emu.Verbose

	emu.Rom.Data = emu.Program.Binary()

	err = emu.Machine.LoadProgram(emu.Program)

	return
}

// Boot resets the machine from the boot image. There is no source listing
// for a boot image, so line numbers are unknown.
func (emu *Emulator) Boot() (err error) {
	emu.Machine.Verbose = emu.Verbose

	emu.Program = &cpu.Program{}

	err = emu.Machine.LoadBinary(emu.Rom.Data)

	return
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return int(emu.Machine.Pc)
}

// Code returns the current instruction code, as it is in memory.
func (emu *Emulator) Code() (code cpu.Code) {
	cell, ok := emu.Machine.Memory.Cell(int64(emu.Machine.Pc))
	if !ok {
		return
	}

	code = cpu.Code{
		Word: uint32(cell.Word),
		Data: cell.Data,
	}
	if cell.Valid {
		code.Inst = cell.Inst
	}

	return
}

// LineNo returns the current line number for the executing opcode, or -1
// if the instruction pointer is outside of the program listing.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Ip())
	if dbg.Opcode == nil {
		return -1
	}

	return dbg.LineNo
}

// Tick performs a single step of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set machine verbosity
	emu.Machine.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.Verbose {
		fields := logrus.Fields{"pc": emu.Ip(), "line": lineno}
		if lineno >= 0 {
			fields["source"] = strings.Join(emu.Program.Debug(emu.Ip()).Words, " ")
		}
		logrus.WithFields(fields).Info("emulator: tick")
	}

	outcome, err := emu.Machine.Step()
	if err != nil {
		return
	}

	done = outcome != cpu.OUTCOME_CONTINUED

	return
}

// Run ticks the emulator until it halts, traps, runs out of steps or the
// context is done.
func (emu *Emulator) Run(ctx context.Context) (steps int, err error) {
	for done := false; !done; steps++ {
		if emu.StepLimit > 0 && steps >= emu.StepLimit {
			err = ErrStepLimit(emu.StepLimit)
			return
		}

		if steps%1024 == 0 {
			err = ctx.Err()
			if err != nil {
				return
			}
		}

		done, err = emu.Tick()
		if err != nil {
			steps++
			return
		}
	}

	return
}

// Listing writes the disassembly of the loaded program image: address,
// hex word, instruction and its description, with labels interleaved.
func (emu *Emulator) Listing(w io.Writer) (err error) {
	labels := map[int][]string{}
	for _, label := range emu.Program.Labels() {
		ip := emu.Program.Label[label]
		labels[ip] = append(labels[ip], label)
	}

	for ip := range len(emu.Rom.Data) {
		for _, label := range labels[ip] {
			_, err = fmt.Fprintf(w, "%s:\n", label)
			if err != nil {
				return
			}
		}

		cell, _ := emu.Machine.Memory.Cell(int64(ip))
		code := cpu.Code{Word: uint32(cell.Word), Data: cell.Data}
		var description string
		if cell.Valid {
			code.Inst = cell.Inst
			if !cell.Data {
				description = cell.Inst.Description()
			}
		}

		line := fmt.Sprintf("%04x: %08x  %-20s", ip, code.Word, code.String())
		if len(description) != 0 {
			line += " # " + description
		}

		_, err = fmt.Fprintln(w, strings.TrimRight(line, " "))
		if err != nil {
			return
		}
	}

	return
}
