package cpu

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/asurkis/risc-emulator/io"
)

// Channel is the character I/O channel used by the environment calls.
type Channel io.Channel

// Outcome is the machine state after a step.
type Outcome int

//go:generate go tool stringer -linecomment -type=Outcome
const (
	OUTCOME_CONTINUED = Outcome(0) // continued
	OUTCOME_HALTED    = Outcome(1) // halted
	OUTCOME_TRAPPED   = Outcome(2) // trapped
	OUTCOME_LIMIT     = Outcome(3) // limit
)

// Machine is the architectural state of the interpreter. A machine is
// owned by one goroutine at a time.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Pc      uint32  // Program counter, in slots.
	Halted  bool    // Set once the machine stops.
	Trap    error   // Reason for the last trap, if any.
	Memory  *Memory // Word memory with decode cache.
	Channel Channel // Character I/O for eread and ewrite.

	Ticks     int // Steps executed since reset.
	ReadCount int // Characters consumed from the input.

	register [REGISTER_COUNT]int32
}

// NewMachine creates a machine with memorySize slots of memory, or
// MEMORY_SIZE slots if memorySize is not positive.
func NewMachine(memorySize int) (m *Machine) {
	if memorySize <= 0 {
		memorySize = MEMORY_SIZE
	}

	m = &Machine{
		Memory: NewMemory(memorySize),
	}

	return
}

// Defines for the machine
func (m *Machine) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MEMORY_SIZE":    fmt.Sprintf("%d", m.Memory.Len()),
		"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	})
}

// String returns the program counter and registers as text.
func (m *Machine) String() string {
	var text strings.Builder
	fmt.Fprintf(&text, "% 5s: %04x\n", "pc", m.Pc)
	for n := range REGISTER_COUNT {
		fmt.Fprintf(&text, "% 5s: %d\n", fmt.Sprintf("x%d", n), m.register[n])
	}
	return text.String()
}

// Reset the machine state.
// - Clears the registers and memory.
// - Zeros the program counter and counters.
// - Rewinds the I/O channel.
func (m *Machine) Reset() {
	if m.Verbose {
		logrus.Info("machine: reset")
	}

	clear(m.register[:])
	m.Memory.Reset()
	m.Pc = 0
	m.Halted = false
	m.Trap = nil
	m.Ticks = 0
	m.ReadCount = 0

	if m.Channel != nil {
		m.Channel.Rewind()
	}
}

// Load resets the machine and assembles source into memory. On error the
// machine is left reset.
func (m *Machine) Load(source string) (prog *Program, err error) {
	m.Reset()

	asm := &Assembler{Verbose: m.Verbose, MaxSlots: m.Memory.Len()}
	for key, value := range m.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	err = m.LoadProgram(prog)
	if err != nil {
		prog = nil
	}

	return
}

// LoadProgram resets the machine and writes an assembled program into
// memory from slot zero.
func (m *Machine) LoadProgram(prog *Program) (err error) {
	m.Reset()

	if prog.Len() > m.Memory.Len() {
		err = ErrProgramTooLarge
		return
	}

	for ip, code := range prog.Codes() {
		if code.Data {
			err = m.Memory.SetData(int64(ip), int32(code.Word))
		} else {
			err = m.Memory.Set(int64(ip), int32(code.Word))
		}
		if err != nil {
			m.Memory.Reset()
			return
		}
	}

	return
}

// LoadBinary resets the machine and writes raw words into memory from
// slot zero.
func (m *Machine) LoadBinary(words []uint32) (err error) {
	m.Reset()

	if len(words) > m.Memory.Len() {
		err = ErrImageTooLarge
		return
	}

	for ip, word := range words {
		err = m.Memory.Set(int64(ip), int32(word))
		if err != nil {
			m.Memory.Reset()
			return
		}
	}

	return
}

// Reg returns the value of a register. Register zero always reads zero.
func (m *Machine) Reg(n uint8) int32 {
	if n == 0 || n >= REGISTER_COUNT {
		return 0
	}
	return m.register[n]
}

// SetReg writes a register. Writes to register zero are discarded.
func (m *Machine) SetReg(n uint8, value int32) {
	if n == 0 || n >= REGISTER_COUNT {
		return
	}
	m.register[n] = value
}

// Registers returns a copy of the register file.
func (m *Machine) Registers() (regs [REGISTER_COUNT]int32) {
	regs = m.register
	return
}

// Step executes a single instruction.
//
// Fetching from an empty slot, or from outside memory, halts the machine.
// A trapped instruction leaves the program counter on itself, halts the
// machine and returns the reason.
func (m *Machine) Step() (outcome Outcome, err error) {
	if m.Halted {
		outcome = OUTCOME_HALTED
		return
	}

	pc := m.Pc
	inst, ok := m.Memory.Fetch(int64(pc))
	if !ok {
		if m.Verbose {
			logrus.WithFields(logrus.Fields{"pc": pc}).Info("machine: no instruction")
		}
		m.Halted = true
		outcome = OUTCOME_HALTED
		return
	}

	if m.Verbose {
		logrus.WithFields(logrus.Fields{"pc": pc, "tick": m.Ticks}).Info(inst)
	}

	m.Pc++
	m.Ticks++

	err = m.Execute(inst)
	if err != nil {
		m.Pc = pc
		m.Halted = true
		m.Trap = err
		outcome = OUTCOME_TRAPPED
		return
	}

	if m.Halted {
		outcome = OUTCOME_HALTED
		return
	}

	outcome = OUTCOME_CONTINUED
	return
}

// Run steps the machine until it stops, limit steps have run, or ctx is
// done. A limit that is not positive means no limit.
func (m *Machine) Run(ctx context.Context, limit int) (steps int, outcome Outcome, err error) {
	for {
		if m.Halted {
			outcome = OUTCOME_HALTED
			if m.Trap != nil {
				outcome = OUTCOME_TRAPPED
				err = m.Trap
			}
			return
		}

		if limit > 0 && steps >= limit {
			outcome = OUTCOME_LIMIT
			return
		}

		if steps%1024 == 0 {
			err = ctx.Err()
			if err != nil {
				return
			}
		}

		outcome, err = m.Step()
		steps++
		if outcome != OUTCOME_CONTINUED {
			return
		}
	}
}

// Execute applies a decoded instruction to the machine state. The program
// counter must already point past the instruction.
func (m *Machine) Execute(inst Instruction) (err error) {
	op := inst.Op

	switch op.Format() {
	case FORMAT_R:
		value, _ := Alu(op, m.Reg(inst.Rs1), m.Reg(inst.Rs2))
		m.SetReg(inst.Rd, value)
	case FORMAT_I:
		switch op {
		case OP_LW:
			var value int32
			value, err = m.Memory.Get(int64(m.Reg(inst.Rs1)) + int64(inst.Imm))
			if err != nil {
				return
			}
			m.SetReg(inst.Rd, value)
		case OP_JALR:
			target := m.Reg(inst.Rs1) + inst.Imm
			m.SetReg(inst.Rd, int32(m.Pc))
			m.Pc = uint32(target)
		default:
			value, _ := Alu(op, m.Reg(inst.Rs1), inst.Imm)
			m.SetReg(inst.Rd, value)
		}
	case FORMAT_S:
		err = m.Memory.Set(int64(m.Reg(inst.Rs1))+int64(inst.Imm), m.Reg(inst.Rs2))
	case FORMAT_B:
		if branching[op](m.Reg(inst.Rs1), m.Reg(inst.Rs2)) {
			m.Pc = uint32(int64(m.Pc) + int64(inst.Imm))
		}
	case FORMAT_U:
		switch op {
		case OP_LUI:
			m.SetReg(inst.Rd, int32(uint32(inst.Imm)<<12))
		case OP_JAL:
			m.SetReg(inst.Rd, int32(m.Pc))
			m.Pc = uint32(int64(m.Pc) + int64(inst.Imm))
		}
	case FORMAT_E:
		switch op {
		case OP_EBREAK:
			m.Halted = true
		case OP_EREAD:
			var value int32
			if m.Channel != nil {
				input, ok := m.Channel.Receive()
				if ok {
					value = input
					m.ReadCount++
				}
			}
			m.SetReg(inst.Rd, value)
		case OP_EWRITE:
			if m.Channel == nil {
				err = ErrChannelInvalid
				return
			}
			err = m.Channel.Send(m.Reg(inst.Rs1))
		}
	default:
		err = ErrInstructionInvalid
	}

	return
}
