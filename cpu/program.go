package cpu

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Opcode represents a line of assembled code with its source location and generated slots.
type Opcode struct {
	LineNo    int      // Source line, 0-based.
	Ip        int      // First slot.
	Words     []string // Source operands, mnemonic first.
	Codes     []Code   // One per slot.
	LinkLabel string   // Label resolved in the second pass, if any.
}

// Code is a single memory slot of an assembled program.
type Code struct {
	Word uint32
	Inst Instruction // Decoded form of Word.
	Data bool        // Set for data literals.
}

// makeCode encodes an instruction into a slot.
func makeCode(inst Instruction) (code Code, err error) {
	word, err := inst.Encode()
	if err != nil {
		return
	}

	code = Code{Word: word, Inst: inst}
	return
}

// makeData creates a data literal slot.
func makeData(value int32) Code {
	inst, _ := Decode(uint32(value))
	return Code{Word: uint32(value), Inst: inst, Data: true}
}

// String returns the assembly text of the slot.
func (code Code) String() string {
	if code.Data || !code.Inst.Valid() {
		return fmt.Sprintf("data %d * 1", int32(code.Word))
	}
	return code.Inst.String()
}

// Program is an assembled machine image.
type Program struct {
	Opcodes []Opcode
	Label   map[string]int // Label to slot, for diagnostics.
}

// Debug locates a slot in the program source.
type Debug struct {
	*Opcode
	Index int // Slot within the opcode.
}

// Debug returns the opcode covering slot ip. Slots outside the program
// return a Debug with a nil Opcode.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Len returns the number of slots in the program.
func (prog *Program) Len() (size int) {
	for _, op := range prog.Opcodes {
		size = max(size, op.Ip+len(op.Codes))
	}
	return
}

// Binary returns the memory image of the program, from slot zero.
func (prog *Program) Binary() (bins []uint32) {
	bins = make([]uint32, prog.Len())
	for ip, code := range prog.Codes() {
		bins[ip] = code.Word
	}

	return
}

// Codes iterates over every slot of the program.
func (prog *Program) Codes() iter.Seq2[uint32, Code] {
	return func(yield func(ip uint32, code Code) bool) {
		for _, op := range prog.Opcodes {
			ip := uint32(op.Ip)
			for n, code := range op.Codes {
				if !yield(ip+uint32(n), code) {
					return
				}
			}
		}
	}
}

// Labels returns the label names in slot order.
func (prog *Program) Labels() []string {
	return slices.SortedFunc(maps.Keys(prog.Label), func(a, b string) int {
		if diff := prog.Label[a] - prog.Label[b]; diff != 0 {
			return diff
		}
		return strings.Compare(a, b)
	})
}
