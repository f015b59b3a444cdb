// Package cpu implements the machine and assembler for a reduced
// RISC-V style instruction set.
//
// The machine has 32 signed 32-bit registers (x0 reads as zero), a program
// counter counting word sized slots, and word addressed memory whose
// decoded instruction cache follows every write. Environment calls halt
// the machine or move characters through a Channel.
//
// The assembler is two pass: the first pass matches each line against a
// fixed list of line shapes and records label references, the second
// resolves them into slot relative offsets. Immediates may be computed
// at assembly time with $(...) expressions.
package cpu
