package cpu

import (
	"math"
)

// arithmetic maps a base mnemonic to its operation. Register-register and
// register-immediate forms share the same entry.
var arithmetic = map[Op]func(a, b int32) int32{
	OP_ADD: func(a, b int32) int32 { return a + b },
	OP_SUB: func(a, b int32) int32 { return a - b },
	OP_SLL: func(a, b int32) int32 { return a << (uint32(b) & 0x1f) },
	OP_SRL: func(a, b int32) int32 { return int32(uint32(a) >> (uint32(b) & 0x1f)) },
	OP_SRA: func(a, b int32) int32 { return a >> (uint32(b) & 0x1f) },
	OP_SLT: func(a, b int32) int32 { return flag(a < b) },
	OP_SEQ: func(a, b int32) int32 { return flag(a == b) },
	OP_SNE: func(a, b int32) int32 { return flag(a != b) },
	OP_SGE: func(a, b int32) int32 { return flag(a >= b) },
	OP_XOR: func(a, b int32) int32 { return a ^ b },
	OP_OR:  func(a, b int32) int32 { return a | b },
	OP_AND: func(a, b int32) int32 { return a & b },
	OP_MUL: mul,
	OP_DIV: div,
	OP_REM: rem,
}

// immediateBase maps register-immediate mnemonics to their base mnemonic.
var immediateBase = map[Op]Op{
	OP_ADDI: OP_ADD,
	OP_SLTI: OP_SLT,
	OP_XORI: OP_XOR,
	OP_ORI:  OP_OR,
	OP_ANDI: OP_AND,
}

// branching maps a branch mnemonic to its predicate.
var branching = map[Op]func(a, b int32) bool{
	OP_BEQ: func(a, b int32) bool { return a == b },
	OP_BNE: func(a, b int32) bool { return a != b },
	OP_BLT: func(a, b int32) bool { return a < b },
	OP_BGE: func(a, b int32) bool { return a >= b },
}

// symbols are the operator symbols used in instruction descriptions.
var symbols = map[Op]string{
	OP_ADD: "+",
	OP_SUB: "-",
	OP_SLL: "<<",
	OP_SRL: ">>>",
	OP_SRA: ">>",
	OP_SLT: "<",
	OP_SEQ: "==",
	OP_SNE: "!=",
	OP_SGE: ">=",
	OP_XOR: "xor",
	OP_OR:  "or",
	OP_AND: "and",
	OP_MUL: "*",
	OP_DIV: "/",
	OP_REM: "%",
	OP_BEQ: "==",
	OP_BNE: "!=",
	OP_BLT: "<",
	OP_BGE: ">=",
}

// Alu applies the arithmetic of op, or of its base mnemonic for
// register-immediate forms.
func Alu(op Op, a, b int32) (value int32, ok bool) {
	if base, is_imm := immediateBase[op]; is_imm {
		op = base
	}

	fn, ok := arithmetic[op]
	if !ok {
		return
	}

	value = fn(a, b)
	return
}

func flag(cond bool) int32 {
	if cond {
		return 1
	}
	return 0
}

// mul multiplies modulo 2^32 from 16-bit halves.
func mul(a, b int32) int32 {
	al := uint32(a) & 0xffff
	ah := uint32(a) >> 16
	bl := uint32(b) & 0xffff
	bh := uint32(b) >> 16

	lo := al * bl
	mid := al*bh + ah*bl

	return int32(lo + (mid << 16))
}

// div is signed division. Division by zero yields -1, and the single
// overflowing case yields the dividend.
func div(a, b int32) int32 {
	switch {
	case b == 0:
		return -1
	case a == math.MinInt32 && b == -1:
		return a
	}
	return a / b
}

// rem is the signed remainder matching div. Remainder by zero yields the
// dividend.
func rem(a, b int32) int32 {
	switch {
	case b == 0:
		return a
	case a == math.MinInt32 && b == -1:
		return 0
	}
	return a % b
}
