// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/asurkis/risc-emulator/bitfield"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"MEMORY_SIZE":    fmt.Sprintf("%d", MEMORY_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
}

type patchKind int

const (
	patchJump   = patchKind(iota) // jal rd, label
	patchBranch                   // bxx rs1, rs2, label
	patchLoad                     // li rd, label
)

// patch is a label reference waiting for the second pass.
type patch struct {
	kind   patchKind
	opcode int // Index in Assembler.Opcode.
	line   string
	inst   Instruction // Operands captured in the first pass.
	label  string
}

// Assembler is a two pass assembler for the machine.
type Assembler struct {
	Verbose  bool           // If set, verbosely logs the assembler actions.
	Opcode   []Opcode       // List of generated opcodes.
	Label    map[string]int // Map of labels to slots.
	MaxSlots int            // Slot capacity of the target memory, MEMORY_SIZE if zero.

	predefine map[string]string // Predefines
	equate    map[string]string // Names visible to $() expressions.
	patches   []patch
	errors    []*ErrSyntax
}

// Assemble assembles source text with a default assembler.
func Assemble(source string) (prog *Program, err error) {
	asm := &Assembler{}
	prog, err = asm.Parse(strings.NewReader(source))
	return
}

// Predefine defines a name for $() expressions, or redefines it.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// maxSlots returns the slot capacity.
func (asm *Assembler) maxSlots() int {
	if asm.MaxSlots > 0 {
		return asm.MaxSlots
	}
	return MEMORY_SIZE
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + len(last.Codes)
}

// fail records an error against a source line.
func (asm *Assembler) fail(lineno int, line string, err error) {
	if asm.Verbose {
		logrus.WithFields(logrus.Fields{"line": lineno}).Info(err)
	}
	asm.errors = append(asm.errors, &ErrSyntax{LineNo: lineno, Line: strings.TrimSpace(line), Err: err})
}

// Parse assembles an input stream into a Program. Every error found in
// either pass is returned together in an *ErrAssembly.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	asm.Opcode = asm.Opcode[:0]
	asm.Label = map[string]int{}
	asm.patches = asm.patches[:0]
	asm.errors = nil
	asm.equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.equate[attr] = val
	}

	lineno := 0
	for scanner.Scan() {
		text := scanner.Text()

		if asm.Verbose {
			logrus.WithFields(logrus.Fields{"line": lineno, "ip": asm.currentIp()}).Info(text)
		}

		line_err := asm.parseLine(text, lineno)
		if line_err != nil {
			asm.fail(lineno, text, line_err)
		}

		lineno++
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	asm.link()

	if len(asm.errors) != 0 {
		err = &ErrAssembly{Errors: slices.Clone(asm.errors)}
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Label:   maps.Clone(asm.Label),
	}

	return
}

// emit appends an opcode at the current slot, returning its index.
func (asm *Assembler) emit(lineno int, words []string, codes []Code, label string) int {
	opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: words, Codes: codes, LinkLabel: label}
	asm.Opcode = append(asm.Opcode, opcode)
	return len(asm.Opcode) - 1
}

// operands decodes statement arguments, keeping the first error.
type operands struct {
	asm  *Assembler
	args []string
	err  error
}

func (ops *operands) reg(n int) (reg uint8) {
	reg, err := register(ops.args[n])
	if err != nil && ops.err == nil {
		ops.err = err
	}
	return
}

func (ops *operands) imm(n int) (imm int32) {
	value, err := ops.asm.valueOf(ops.args[n])
	if err == nil && !bitfield.FitsSigned(value, 32) {
		err = ErrImmediateRange(value)
	}
	if err != nil && ops.err == nil {
		ops.err = err
	}
	imm = int32(value)
	return
}

// word accepts any value representable in 32 bits, signed or not.
func (ops *operands) word(n int) (word int32) {
	value, err := ops.asm.valueOf(ops.args[n])
	if err == nil && !bitfield.FitsSigned(value, 32) && !bitfield.FitsUnsigned(value, 32) {
		err = ErrImmediateRange(value)
	}
	if err != nil && ops.err == nil {
		ops.err = err
	}
	word = int32(uint32(value))
	return
}

// parseLine runs the first pass over a single source line.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	asm.equate["LINENO"] = strconv.Itoa(lineno)

	stmt, err := ParseStatement(line)
	if err != nil {
		return
	}

	ops := &operands{asm: asm, args: stmt.Args}
	words := append([]string{stmt.Mnemonic}, stmt.Args...)
	op, _ := LookupOp(stmt.Mnemonic)

	var insts []Instruction
	var pending *patch
	slots := 1

	switch stmt.Shape {
	case SHAPE_EMPTY:
		return
	case SHAPE_LABEL:
		label := stmt.Args[0]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.currentIp()
		return
	case SHAPE_DATA:
		value := ops.word(0)
		count := ops.imm(1)
		if ops.err != nil {
			err = ops.err
			return
		}
		if count < 0 {
			err = ErrImmediateRange(count)
			return
		}
		if asm.currentIp()+int(count) > asm.maxSlots() {
			err = ErrProgramTooLarge
			return
		}
		codes := make([]Code, count)
		for n := range codes {
			codes[n] = makeData(value)
		}
		if len(codes) != 0 {
			asm.emit(lineno, []string{"data", stmt.Args[0], stmt.Args[1]}, codes, "")
		}
		return
	case SHAPE_R:
		insts = []Instruction{{Op: op, Rd: ops.reg(0), Rs1: ops.reg(1), Rs2: ops.reg(2)}}
	case SHAPE_I:
		inst := Instruction{Op: op, Imm: ops.imm(2)}
		if op.Format() == FORMAT_B {
			inst.Rs1, inst.Rs2 = ops.reg(0), ops.reg(1)
		} else {
			inst.Rd, inst.Rs1 = ops.reg(0), ops.reg(1)
		}
		insts = []Instruction{inst}
	case SHAPE_S:
		insts = []Instruction{{Op: op, Rs1: ops.reg(0), Imm: ops.imm(1), Rs2: ops.reg(2)}}
	case SHAPE_U:
		if stmt.Mnemonic == "li" {
			rd := ops.reg(0)
			imm := ops.word(1)
			insts = loadImmediate(rd, imm)
			slots = len(insts)
		} else {
			insts = []Instruction{{Op: op, Rd: ops.reg(0), Imm: ops.imm(1)}}
		}
	case SHAPE_B_LABEL:
		pending = &patch{
			kind:  patchBranch,
			inst:  Instruction{Op: op, Rs1: ops.reg(0), Rs2: ops.reg(1)},
			label: stmt.Args[2],
		}
	case SHAPE_U_LABEL:
		pending = &patch{
			kind:  patchJump,
			inst:  Instruction{Op: OP_JAL, Rd: ops.reg(0)},
			label: stmt.Args[1],
		}
		if stmt.Mnemonic == "li" {
			pending.kind = patchLoad
			slots = 2
		}
	case SHAPE_NO_ARG:
		insts = []Instruction{{Op: op}}
	case SHAPE_ENV:
		inst := Instruction{Op: op}
		if op == OP_EREAD {
			inst.Rd = ops.reg(0)
		} else {
			inst.Rs1 = ops.reg(0)
		}
		insts = []Instruction{inst}
	}

	if asm.currentIp()+slots > asm.maxSlots() {
		err = ErrProgramTooLarge
		return
	}

	// Failed lines still take their slots, so later labels keep their place.
	codes := make([]Code, slots)
	defer func() {
		index := asm.emit(lineno, words, codes, "")
		if pending != nil && err == nil {
			asm.Opcode[index].LinkLabel = pending.label
			pending.opcode = index
			pending.line = line
			asm.patches = append(asm.patches, *pending)
		}
	}()

	err = ops.err
	if err != nil {
		return
	}

	for n, inst := range insts {
		codes[n], err = makeCode(inst)
		if err != nil {
			return
		}
	}

	return
}

// splitImmediate splits a value into the sign extended low 12 bits and
// the upper 20 bits that make it up again.
func splitImmediate(imm int32) (lo, hi int32) {
	lo = bitfield.SignExtend(uint32(imm)&0xfff, 12)
	hi = int32(uint32(imm-lo) >> 12)
	return
}

// loadImmediate expands 'li rd, imm' into one or two instructions.
func loadImmediate(rd uint8, imm int32) (insts []Instruction) {
	if bitfield.FitsSigned(int64(imm), 12) {
		insts = []Instruction{{Op: OP_ADDI, Rd: rd, Imm: imm}}
		return
	}

	lo, hi := splitImmediate(imm)
	insts = []Instruction{{Op: OP_LUI, Rd: rd, Imm: hi}}
	if lo != 0 {
		insts = append(insts, Instruction{Op: OP_ADDI, Rd: rd, Rs1: rd, Imm: lo})
	}

	return
}

// link runs the second pass, resolving every patch in order.
func (asm *Assembler) link() {
	for _, pt := range asm.patches {
		op := &asm.Opcode[pt.opcode]

		target, ok := asm.Label[pt.label]
		if !ok {
			asm.fail(op.LineNo, pt.line, ErrLabelMissing(pt.label))
			continue
		}

		var insts []Instruction
		switch pt.kind {
		case patchLoad:
			lo, hi := splitImmediate(int32(target))
			rd := pt.inst.Rd
			insts = []Instruction{
				{Op: OP_LUI, Rd: rd, Imm: hi},
				{Op: OP_ADDI, Rd: rd, Rs1: rd, Imm: lo},
			}
		case patchJump, patchBranch:
			inst := pt.inst
			inst.Imm = int32(target - op.Ip - 1)
			insts = []Instruction{inst}
		}

		if asm.Verbose {
			logrus.WithFields(logrus.Fields{"line": op.LineNo, "ip": op.Ip, "label": pt.label}).Info(insts)
		}

		for n, inst := range insts {
			code, err := makeCode(inst)
			if err != nil {
				asm.fail(op.LineNo, pt.line, err)
				break
			}
			op.Codes[n] = code
		}
	}
}

// valueOf returns the value of an immediate word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	switch {
	case strings.HasPrefix(word, "'"):
		var r rune
		r, err = charValue(word)
		value = int64(r)
	case strings.HasPrefix(word, "$("):
		value, err = asm.parenEval(word[2 : len(word)-1])
	default:
		value, err = parseNumber(word)
	}

	return
}

// parseNumber parses decimal, or 0x, 0b and 0o prefixed numbers with an
// optional sign.
func parseNumber(word string) (value int64, err error) {
	digits := strings.TrimLeft(word, "+-")
	base := 10
	if len(digits) > 1 && digits[0] == '0' && strings.ContainsRune("xXbBoO", rune(digits[1])) {
		base = 0
	}

	value, err = strconv.ParseInt(word, base, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}

	return
}

// charValue returns the code point of a quoted character.
func charValue(word string) (value rune, err error) {
	body := word[1 : len(word)-1]
	if len(body) == 2 && body[0] == '\\' {
		switch body[1] {
		case 'n':
			value = '\n'
		case 't':
			value = '\t'
		case 'r':
			value = '\r'
		case 'e':
			value = '\033'
		case '0':
			value = 0
		case '\\', '\'':
			value = rune(body[1])
		default:
			err = ErrParseCharacter(body)
		}
		return
	}

	value, size := utf8.DecodeRuneInString(body)
	if size == 0 || size != len(body) || (value == utf8.RuneError && size == 1) {
		err = ErrParseCharacter(body)
	}

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.equate {
		value64, err := parseNumber(str)
		if err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}
