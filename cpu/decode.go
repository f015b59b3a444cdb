package cpu

import (
	"github.com/asurkis/risc-emulator/bitfield"
)

// Decode classifies a machine word. Words that no mnemonic recognizes
// return ok == false.
func Decode(word uint32) (inst Instruction, ok bool) {
	opcode := fieldOpcode.Get(word)
	format, ok := formatOf[opcode]
	if !ok {
		return
	}

	key := decodeKey{opcode: opcode}
	switch format {
	case FORMAT_R:
		key.funct3 = fieldFunct3.Get(word)
		key.funct7 = fieldFunct7.Get(word)
	case FORMAT_I, FORMAT_S, FORMAT_B:
		key.funct3 = fieldFunct3.Get(word)
	case FORMAT_E:
		key.funct7 = fieldECode.Get(word)
	}

	op, ok := decodeMap[key]
	if !ok {
		return
	}

	rd := uint8(fieldRd.Get(word))
	rs1 := uint8(fieldRs1.Get(word))
	rs2 := uint8(fieldRs2.Get(word))

	inst.Op = op
	switch format {
	case FORMAT_R:
		inst.Rd, inst.Rs1, inst.Rs2 = rd, rs1, rs2
	case FORMAT_I:
		inst.Rd, inst.Rs1 = rd, rs1
		inst.Imm = bitfield.SignExtend(immI.Gather(word), immI.Width())
	case FORMAT_S:
		inst.Rs1, inst.Rs2 = rs1, rs2
		inst.Imm = bitfield.SignExtend(immS.Gather(word), immS.Width())
	case FORMAT_B:
		inst.Rs1, inst.Rs2 = rs1, rs2
		inst.Imm = bitfield.SignExtend(immB.Gather(word), immB.Width())
	case FORMAT_U:
		inst.Rd = rd
		if op == OP_LUI {
			inst.Imm = int32(immU.Gather(word))
		} else {
			inst.Imm = bitfield.SignExtend(immU.Gather(word), immU.Width())
		}
	case FORMAT_E:
		switch op {
		case OP_EREAD:
			inst.Rd = rd
		case OP_EWRITE:
			inst.Rs1 = rs1
		}
	}

	return
}

// Disassemble returns the mnemonic text and description of a machine word,
// for memory viewers.
func Disassemble(word uint32) (mnemonic string, description string, ok bool) {
	inst, ok := Decode(word)
	if !ok {
		return
	}

	mnemonic = inst.String()
	description = inst.Description()
	return
}
