package cpu

import (
	"strings"

	"github.com/asurkis/risc-emulator/bitfield"
)

const (
	REGISTER_COUNT = 32      // Number of general purpose registers.
	MEMORY_SIZE    = 1 << 16 // Default number of memory slots.
)

// Format is an instruction encoding format.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_NONE = Format(0) // -
	FORMAT_R    = Format(1) // R
	FORMAT_I    = Format(2) // I
	FORMAT_S    = Format(3) // S
	FORMAT_B    = Format(4) // B
	FORMAT_U    = Format(5) // U
	FORMAT_E    = Format(6) // E
)

// Op is an instruction mnemonic.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_INVALID = Op(0)  // invalid
	OP_ADD     = Op(1)  // add
	OP_SUB     = Op(2)  // sub
	OP_SLL     = Op(3)  // sll
	OP_SLT     = Op(4)  // slt
	OP_SEQ     = Op(5)  // seq
	OP_SNE     = Op(6)  // sne
	OP_SGE     = Op(7)  // sge
	OP_XOR     = Op(8)  // xor
	OP_SRL     = Op(9)  // srl
	OP_SRA     = Op(10) // sra
	OP_OR      = Op(11) // or
	OP_AND     = Op(12) // and
	OP_MUL     = Op(13) // mul
	OP_DIV     = Op(14) // div
	OP_REM     = Op(15) // rem
	OP_ADDI    = Op(16) // addi
	OP_SLTI    = Op(17) // slti
	OP_XORI    = Op(18) // xori
	OP_ORI     = Op(19) // ori
	OP_ANDI    = Op(20) // andi
	OP_LW      = Op(21) // lw
	OP_SW      = Op(22) // sw
	OP_JALR    = Op(23) // jalr
	OP_BEQ     = Op(24) // beq
	OP_BNE     = Op(25) // bne
	OP_BLT     = Op(26) // blt
	OP_BGE     = Op(27) // bge
	OP_LUI     = Op(28) // lui
	OP_JAL     = Op(29) // jal
	OP_EBREAK  = Op(30) // ebreak
	OP_EREAD   = Op(31) // eread
	OP_EWRITE  = Op(32) // ewrite
)

// Major opcodes, bits [0,7) of every instruction.
const (
	OPCODE_LOAD   = uint32(0b0000011)
	OPCODE_IMM    = uint32(0b0010011)
	OPCODE_STORE  = uint32(0b0100011)
	OPCODE_OP     = uint32(0b0110011)
	OPCODE_LUI    = uint32(0b0110111)
	OPCODE_BRANCH = uint32(0b1100011)
	OPCODE_JALR   = uint32(0b1100111)
	OPCODE_JAL    = uint32(0b1101111)
	OPCODE_SYSTEM = uint32(0b1110011)
)

// Environment call codes, in the rs2 position of an E format word.
const (
	ECODE_HALT  = uint32(1)
	ECODE_READ  = uint32(2)
	ECODE_WRITE = uint32(4)
)

var (
	fieldOpcode = bitfield.Field{Lo: 0, Width: 7}
	fieldRd     = bitfield.Field{Lo: 7, Width: 5}
	fieldFunct3 = bitfield.Field{Lo: 12, Width: 3}
	fieldRs1    = bitfield.Field{Lo: 15, Width: 5}
	fieldRs2    = bitfield.Field{Lo: 20, Width: 5}
	fieldFunct7 = bitfield.Field{Lo: 25, Width: 7}
	fieldECode  = bitfield.Field{Lo: 20, Width: 5}
)

var (
	immI = bitfield.Layout{
		{Field: bitfield.Field{Lo: 20, Width: 12}, Shift: 0},
	}
	immS = bitfield.Layout{
		{Field: bitfield.Field{Lo: 7, Width: 5}, Shift: 0},
		{Field: bitfield.Field{Lo: 25, Width: 7}, Shift: 5},
	}
	immB = bitfield.Layout{
		{Field: bitfield.Field{Lo: 7, Width: 1}, Shift: 10},
		{Field: bitfield.Field{Lo: 8, Width: 4}, Shift: 0},
		{Field: bitfield.Field{Lo: 25, Width: 6}, Shift: 4},
		{Field: bitfield.Field{Lo: 31, Width: 1}, Shift: 11},
	}
	immU = bitfield.Layout{
		{Field: bitfield.Field{Lo: 12, Width: 20}, Shift: 0},
	}
)

// Encoding is the fixed part of an instruction word for a mnemonic.
type Encoding struct {
	Format Format
	Opcode uint32
	Funct3 uint32
	Funct7 uint32 // funct7 for R format, environment code for E format.
}

var encodings = [...]Encoding{
	OP_ADD: {FORMAT_R, OPCODE_OP, 0b000, 0b0000000},
	OP_SUB: {FORMAT_R, OPCODE_OP, 0b000, 0b0100000},
	OP_SLL: {FORMAT_R, OPCODE_OP, 0b001, 0b0000000},
	OP_SLT: {FORMAT_R, OPCODE_OP, 0b010, 0b0000000},
	OP_SEQ: {FORMAT_R, OPCODE_OP, 0b010, 0b0000001},
	OP_SNE: {FORMAT_R, OPCODE_OP, 0b010, 0b0000011},
	OP_SGE: {FORMAT_R, OPCODE_OP, 0b010, 0b0000010},
	OP_XOR: {FORMAT_R, OPCODE_OP, 0b100, 0b0000000},
	OP_SRL: {FORMAT_R, OPCODE_OP, 0b101, 0b0000000},
	OP_SRA: {FORMAT_R, OPCODE_OP, 0b101, 0b0100000},
	OP_OR:  {FORMAT_R, OPCODE_OP, 0b110, 0b0000000},
	OP_AND: {FORMAT_R, OPCODE_OP, 0b111, 0b0000000},
	OP_MUL: {FORMAT_R, OPCODE_OP, 0b000, 0b0000001},
	OP_DIV: {FORMAT_R, OPCODE_OP, 0b100, 0b0000001},
	OP_REM: {FORMAT_R, OPCODE_OP, 0b110, 0b0000001},

	OP_ADDI: {FORMAT_I, OPCODE_IMM, 0b000, 0},
	OP_SLTI: {FORMAT_I, OPCODE_IMM, 0b010, 0},
	OP_XORI: {FORMAT_I, OPCODE_IMM, 0b100, 0},
	OP_ORI:  {FORMAT_I, OPCODE_IMM, 0b110, 0},
	OP_ANDI: {FORMAT_I, OPCODE_IMM, 0b111, 0},
	OP_LW:   {FORMAT_I, OPCODE_LOAD, 0b010, 0},
	OP_JALR: {FORMAT_I, OPCODE_JALR, 0b000, 0},

	OP_SW: {FORMAT_S, OPCODE_STORE, 0b010, 0},

	OP_BEQ: {FORMAT_B, OPCODE_BRANCH, 0b000, 0},
	OP_BNE: {FORMAT_B, OPCODE_BRANCH, 0b001, 0},
	OP_BLT: {FORMAT_B, OPCODE_BRANCH, 0b100, 0},
	OP_BGE: {FORMAT_B, OPCODE_BRANCH, 0b101, 0},

	OP_LUI: {FORMAT_U, OPCODE_LUI, 0, 0},
	OP_JAL: {FORMAT_U, OPCODE_JAL, 0, 0},

	OP_EBREAK: {FORMAT_E, OPCODE_SYSTEM, 0, ECODE_HALT},
	OP_EREAD:  {FORMAT_E, OPCODE_SYSTEM, 0, ECODE_READ},
	OP_EWRITE: {FORMAT_E, OPCODE_SYSTEM, 0, ECODE_WRITE},
}

// decodeKey selects a mnemonic from the fields that distinguish it.
type decodeKey struct {
	opcode uint32
	funct3 uint32
	funct7 uint32
}

var (
	formatOf  = map[uint32]Format{} // Opcode to format.
	decodeMap = map[decodeKey]Op{}  // Distinguishing fields to mnemonic.
	opMap     = map[string]Op{}     // Lower case mnemonic to Op.
)

func init() {
	for n, enc := range encodings {
		if enc.Format == FORMAT_NONE {
			continue
		}
		op := Op(n)
		formatOf[enc.Opcode] = enc.Format
		decodeMap[enc.key()] = op
		opMap[op.String()] = op
	}
}

// key returns the lookup key of the encoding.
func (enc Encoding) key() (key decodeKey) {
	key.opcode = enc.Opcode
	switch enc.Format {
	case FORMAT_R:
		key.funct3 = enc.Funct3
		key.funct7 = enc.Funct7
	case FORMAT_I, FORMAT_S, FORMAT_B:
		key.funct3 = enc.Funct3
	case FORMAT_E:
		key.funct7 = enc.Funct7
	}
	return
}

// Encoding returns the encoding of the mnemonic.
func (op Op) Encoding() (enc Encoding, ok bool) {
	if op <= OP_INVALID || int(op) >= len(encodings) {
		return
	}

	enc = encodings[op]
	ok = enc.Format != FORMAT_NONE
	return
}

// Format returns the encoding format of the mnemonic.
func (op Op) Format() Format {
	enc, _ := op.Encoding()
	return enc.Format
}

// LookupOp finds a mnemonic by name, ignoring case.
func LookupOp(name string) (op Op, ok bool) {
	op, ok = opMap[strings.ToLower(name)]
	return
}

// Ops returns all valid mnemonics in encoding table order.
func Ops() (ops []Op) {
	for n, enc := range encodings {
		if enc.Format != FORMAT_NONE {
			ops = append(ops, Op(n))
		}
	}
	return
}
