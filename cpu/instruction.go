package cpu

import (
	"fmt"

	"github.com/asurkis/risc-emulator/bitfield"
)

// Instruction is a decoded instruction: the mnemonic plus its operands.
// Operands a mnemonic does not use are zero.
type Instruction struct {
	Op  Op
	Rd  uint8
	Rs1 uint8
	Rs2 uint8
	Imm int32
}

// Valid returns true if the instruction has a known mnemonic.
func (inst Instruction) Valid() bool {
	_, ok := inst.Op.Encoding()
	return ok
}

// Encode packs the instruction into a machine word. Registers and
// immediates out of range are errors, never truncated.
func (inst Instruction) Encode() (word uint32, err error) {
	enc, ok := inst.Op.Encoding()
	if !ok {
		err = ErrInstructionInvalid
		return
	}

	for _, reg := range []uint8{inst.Rd, inst.Rs1, inst.Rs2} {
		if reg >= REGISTER_COUNT {
			err = ErrRegisterInvalid
			return
		}
	}

	imm := int64(inst.Imm)
	rd := uint32(inst.Rd)
	rs1 := uint32(inst.Rs1)
	rs2 := uint32(inst.Rs2)

	word = fieldOpcode.Put(0, enc.Opcode)

	switch enc.Format {
	case FORMAT_R:
		word = fieldRd.Put(word, rd)
		word = fieldFunct3.Put(word, enc.Funct3)
		word = fieldRs1.Put(word, rs1)
		word = fieldRs2.Put(word, rs2)
		word = fieldFunct7.Put(word, enc.Funct7)
	case FORMAT_I:
		if !bitfield.FitsSigned(imm, immI.Width()) {
			err = ErrImmediateRange(imm)
			return
		}
		word = fieldRd.Put(word, rd)
		word = fieldFunct3.Put(word, enc.Funct3)
		word = fieldRs1.Put(word, rs1)
		word = immI.Scatter(word, uint32(inst.Imm))
	case FORMAT_S:
		if !bitfield.FitsSigned(imm, immS.Width()) {
			err = ErrImmediateRange(imm)
			return
		}
		word = fieldFunct3.Put(word, enc.Funct3)
		word = fieldRs1.Put(word, rs1)
		word = fieldRs2.Put(word, rs2)
		word = immS.Scatter(word, uint32(inst.Imm))
	case FORMAT_B:
		if !bitfield.FitsSigned(imm, immB.Width()) {
			err = ErrImmediateRange(imm)
			return
		}
		word = fieldFunct3.Put(word, enc.Funct3)
		word = fieldRs1.Put(word, rs1)
		word = fieldRs2.Put(word, rs2)
		word = immB.Scatter(word, uint32(inst.Imm))
	case FORMAT_U:
		fits := bitfield.FitsSigned(imm, immU.Width())
		if inst.Op == OP_LUI {
			fits = bitfield.FitsUnsigned(imm, immU.Width())
		}
		if !fits {
			err = ErrImmediateRange(imm)
			return
		}
		word = fieldRd.Put(word, rd)
		word = immU.Scatter(word, uint32(inst.Imm))
	case FORMAT_E:
		word = fieldECode.Put(word, enc.Funct7)
		switch inst.Op {
		case OP_EREAD:
			word = fieldRd.Put(word, rd)
		case OP_EWRITE:
			word = fieldRs1.Put(word, rs1)
		}
	}

	return
}

// String returns the canonical assembly text of the instruction.
func (inst Instruction) String() string {
	op := inst.Op
	switch op.Format() {
	case FORMAT_R:
		return fmt.Sprintf("%v x%d, x%d, x%d", op, inst.Rd, inst.Rs1, inst.Rs2)
	case FORMAT_I:
		return fmt.Sprintf("%v x%d, x%d, %d", op, inst.Rd, inst.Rs1, inst.Imm)
	case FORMAT_S:
		return fmt.Sprintf("%v x%d, %d, x%d", op, inst.Rs1, inst.Imm, inst.Rs2)
	case FORMAT_B:
		return fmt.Sprintf("%v x%d, x%d, %d", op, inst.Rs1, inst.Rs2, inst.Imm)
	case FORMAT_U:
		return fmt.Sprintf("%v x%d, %d", op, inst.Rd, inst.Imm)
	case FORMAT_E:
		switch op {
		case OP_EREAD:
			return fmt.Sprintf("%v x%d", op, inst.Rd)
		case OP_EWRITE:
			return fmt.Sprintf("%v x%d", op, inst.Rs1)
		}
		return op.String()
	}

	return OP_INVALID.String()
}

// textReg names a register operand, with x0 shown as its value.
func textReg(reg uint8) string {
	if reg == 0 {
		return "0"
	}
	return fmt.Sprintf("x%d", reg)
}

func textImm(imm int32) string {
	if imm < 0 {
		return fmt.Sprintf("(%d)", imm)
	}
	return fmt.Sprintf("%d", imm)
}

// textOffset renders base plus a signed offset.
func textOffset(base string, imm int32) string {
	switch {
	case base == "0":
		return fmt.Sprintf("%d", imm)
	case imm < 0:
		return fmt.Sprintf("%v - %d", base, -int64(imm))
	case imm > 0:
		return fmt.Sprintf("%v + %d", base, imm)
	}
	return base
}

func assign(rd string, expr string) string {
	if rd == "0" {
		return "<nop>"
	}
	return fmt.Sprintf("%v := %v", rd, expr)
}

// link describes saving the return address, if any.
func link(rd uint8) string {
	if rd == 0 {
		return ""
	}
	return fmt.Sprintf("x%d := pc; ", rd)
}

// Description returns a human readable account of what the instruction does.
func (inst Instruction) Description() string {
	op := inst.Op
	rd := textReg(inst.Rd)
	switch op {
	case OP_LUI:
		return assign(rd, fmt.Sprintf("%d * 2^12", inst.Imm))
	case OP_JAL:
		return link(inst.Rd) + assign("pc", textOffset("pc", inst.Imm))
	case OP_JALR:
		return link(inst.Rd) + assign("pc", textOffset(textReg(inst.Rs1), inst.Imm))
	case OP_LW:
		return assign(rd, fmt.Sprintf("[%v]", textOffset(textReg(inst.Rs1), inst.Imm)))
	case OP_SW:
		return fmt.Sprintf("[%v] := %v", textOffset(textReg(inst.Rs1), inst.Imm), textReg(inst.Rs2))
	case OP_EBREAK:
		return "HALT"
	case OP_EREAD:
		return "READ " + rd
	case OP_EWRITE:
		return "WRITE " + textReg(inst.Rs1)
	}

	switch op.Format() {
	case FORMAT_R:
		return assign(rd, fmt.Sprintf("%v %v %v", textReg(inst.Rs1), symbols[op], textReg(inst.Rs2)))
	case FORMAT_I:
		return assign(rd, fmt.Sprintf("%v %v %v", textReg(inst.Rs1), symbols[immediateBase[op]], textImm(inst.Imm)))
	case FORMAT_B:
		return fmt.Sprintf("if %v %v %v then %v", textReg(inst.Rs1), symbols[op], textReg(inst.Rs2), assign("pc", textOffset("pc", inst.Imm)))
	}

	return ""
}
