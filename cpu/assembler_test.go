package cpu

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal(0, prog.Len())

	assert.Equal("65536", asm.equate["MEMORY_SIZE"])
	assert.Equal("32", asm.equate["REGISTER_COUNT"])
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func mustCode(t *testing.T, inst Instruction) Code {
	code, err := makeCode(inst)
	if err != nil {
		t.Fatal(err)
	}
	return code
}

func TestAssemblerOpcodes(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"# sum two numbers",
		"addi x1, x0, 5",
		"",
		"ADDI x2, x0, 3   # mixed case",
		"add x3, x1, x2",
		"ebreak",
	}

	prog, err := Assemble(strings.Join(program, "\n"))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	expected := []Opcode{
		{1, 0, []string{"addi", "x1", "x0", "5"}, []Code{mustCode(t, Instruction{Op: OP_ADDI, Rd: 1, Imm: 5})}, ""},
		{3, 1, []string{"addi", "x2", "x0", "3"}, []Code{mustCode(t, Instruction{Op: OP_ADDI, Rd: 2, Imm: 3})}, ""},
		{4, 2, []string{"add", "x3", "x1", "x2"}, []Code{mustCode(t, Instruction{Op: OP_ADD, Rd: 3, Rs1: 1, Rs2: 2})}, ""},
		{5, 3, []string{"ebreak"}, []Code{mustCode(t, Instruction{Op: OP_EBREAK})}, ""},
	}

	opEqual(t, expected, prog.Opcodes)

	assert.Equal([]uint32{0x00500093, 0x00300113, 0x002081B3, 0x00100073}, prog.Binary())
}

func TestAssemblerLabelSelf(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble("label:\njal x1, label")
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(map[string]int{"label": 0}, prog.Label)
	assert.Equal(1, prog.Len())

	op := prog.Opcodes[0]
	assert.Equal("label", op.LinkLabel)
	assert.Equal(Instruction{Op: OP_JAL, Rd: 1, Imm: -1}, op.Codes[0].Inst)
	assert.Equal(uint32(0xFFFFF0EF), op.Codes[0].Word)
}

func TestAssemblerForwardBackward(t *testing.T) {
	assert := assert.New(t)

	for distance := 1; distance <= 4; distance++ {
		filler := strings.Repeat("addi x1, x1, 1\n", distance-1)

		// Branch at slot 0, label at slot distance.
		forward := "beq x0, x0, there\n" + filler + "there:\nebreak"
		// Label at slot 0, branch at slot distance.
		backward := "there:\n" + filler + "addi x0, x0, 0\nbeq x0, x0, there"

		fwd, err := Assemble(forward)
		assert.NoError(err)
		bwd, err := Assemble(backward)
		assert.NoError(err)
		if fwd == nil || bwd == nil {
			continue
		}

		fwdBranch := fwd.Opcodes[0]
		bwdBranch := bwd.Opcodes[len(bwd.Opcodes)-1]

		fwdImm := fwdBranch.Codes[0].Inst.Imm
		bwdImm := bwdBranch.Codes[0].Inst.Imm

		// Both resolve as label - slot - 1.
		assert.Equal(int32(fwd.Label["there"]-fwdBranch.Ip-1), fwdImm)
		assert.Equal(int32(bwd.Label["there"]-bwdBranch.Ip-1), bwdImm)
		assert.Equal(int32(distance-1), fwdImm)
		assert.Equal(int32(-distance-1), bwdImm)

		// And land on the label once pc has moved past the branch.
		assert.Equal(fwd.Label["there"], fwdBranch.Ip+1+int(fwdImm))
		assert.Equal(bwd.Label["there"], bwdBranch.Ip+1+int(bwdImm))
	}
}

func TestAssemblerLoadImmediate(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		insts  []Instruction
	}){
		{"li x5, 5", []Instruction{{Op: OP_ADDI, Rd: 5, Imm: 5}}},
		{"li x5, -2048", []Instruction{{Op: OP_ADDI, Rd: 5, Imm: -2048}}},
		{"li x5, 2047", []Instruction{{Op: OP_ADDI, Rd: 5, Imm: 2047}}},
		{"li x5, 2048", []Instruction{{Op: OP_LUI, Rd: 5, Imm: 1}, {Op: OP_ADDI, Rd: 5, Rs1: 5, Imm: -2048}}},
		{"li x5, 5000", []Instruction{{Op: OP_LUI, Rd: 5, Imm: 1}, {Op: OP_ADDI, Rd: 5, Rs1: 5, Imm: 904}}},
		{"li x5, -5000", []Instruction{{Op: OP_LUI, Rd: 5, Imm: 0xFFFFF}, {Op: OP_ADDI, Rd: 5, Rs1: 5, Imm: -904}}},
		{"li x5, 4096", []Instruction{{Op: OP_LUI, Rd: 5, Imm: 1}}},
		{"li x5, 0xFFFFFFFF", []Instruction{{Op: OP_ADDI, Rd: 5, Imm: -1}}},
		{"li x5, 0x12345678", []Instruction{{Op: OP_LUI, Rd: 5, Imm: 0x12345}, {Op: OP_ADDI, Rd: 5, Rs1: 5, Imm: 0x678}}},
	}

	for _, entry := range table {
		prog, err := Assemble(entry.source)
		if !assert.NoError(err, entry.source) {
			continue
		}

		var insts []Instruction
		for _, code := range prog.Codes() {
			insts = append(insts, code.Inst)
		}
		assert.Equal(entry.insts, insts, entry.source)
	}
}

func TestAssemblerLoadImmediateRun(t *testing.T) {
	assert := assert.New(t)

	for _, value := range []int64{0, 1, -1, 2047, -2048, 2048, -2049, 5000, -5000, 4096, 0x7FFFF800, math.MaxInt32, math.MinInt32} {
		m := NewMachine(16)
		prog, err := m.Load("li x5, " + strconv.FormatInt(value, 10) + "\nebreak")
		if !assert.NoError(err, value) {
			continue
		}

		steps, outcome, err := m.Run(t.Context(), 10)
		assert.NoError(err)
		assert.Equal(OUTCOME_HALTED, outcome)
		assert.Equal(prog.Len(), steps)
		assert.Equal(int32(value), m.Reg(5), value)
	}
}

func TestAssemblerLoadLabel(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"li x5, target", // 0, 1
		"lw x6, x5, 0",  // 2
		"ebreak",        // 3
		"data 0 * 3",    // 4, 5, 6
		"target:",
		"data 42 * 1", // 7
	}

	m := NewMachine(0)
	prog, err := m.Load(strings.Join(program, "\n"))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(7, prog.Label["target"])
	assert.Len(prog.Opcodes[0].Codes, 2)

	_, outcome, err := m.Run(t.Context(), 0)
	assert.NoError(err)
	assert.Equal(OUTCOME_HALTED, outcome)
	assert.Equal(int32(7), m.Reg(5))
	assert.Equal(int32(42), m.Reg(6))
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble("data 7 * 3\ndata -1 * 1\ndata 0xFFFFFFFE * 1\ndata 9 * 0\nend:")
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(5, prog.Len())
	assert.Equal(5, prog.Label["end"])
	assert.Equal([]uint32{7, 7, 7, 0xFFFFFFFF, 0xFFFFFFFE}, prog.Binary())
	for _, code := range prog.Codes() {
		assert.True(code.Data)
	}
	assert.Equal("data 7 * 1", prog.Opcodes[0].Codes[0].String())
	assert.Equal("data -1 * 1", prog.Opcodes[1].Codes[0].String())
}

func TestAssemblerImmediates(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text  string
		value int32
	}){
		{"12", 12},
		{"+12", 12},
		{"-12", -12},
		{"010", 10},
		{"0x10", 16},
		{"-0x10", -16},
		{"0b101", 5},
		{"'A'", 'A'},
		{"'#'", '#'},
		{"','", ','},
		{`'\n'`, '\n'},
		{`'\0'`, 0},
		{`'\\'`, '\\'},
		{`'\''`, '\''},
		{"$(6 * 7)", 42},
		{"$(LINENO + 1)", 1},
		{"$(REGISTER_COUNT - 1)", 31},
		{"$(max(3, 9) - 10)", -1},
	}

	for _, entry := range table {
		prog, err := Assemble("addi x1, x0, " + entry.text)
		if !assert.NoError(err, entry.text) {
			continue
		}
		assert.Equal(entry.value, prog.Opcodes[0].Codes[0].Inst.Imm, entry.text)
	}
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x10")
	asm.Predefine("NAME", "not a number")

	prog, err := asm.Parse(strings.NewReader("\n\naddi x1, x0, $(BASE + LINENO)"))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	assert.Equal(int32(18), prog.Opcodes[0].Codes[0].Inst.Imm)

	_, err = asm.Parse(strings.NewReader("addi x1, x0, $(NAME)"))
	assert.ErrorIs(err, ErrParseExpression("NAME"))
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"addi x1, x0, 1",      // 0
		"bogus line here",     // 1
		"jal x1, nowhere",     // 2
		"addi x1, x0, 2048",   // 3
		"frob x1",             // 4
		"beq x1, x2, missing", // 5
		"add x32, x1, x2",     // 6
		"addi x1, x0, 'ab'",   // 7
		"addi x1, x0, 12z",    // 8
		"dup:",                // 9
		"dup:",                // 10
		"jal x0, dup",         // 11
	}

	prog, err := Assemble(strings.Join(program, "\n"))
	assert.Nil(prog)
	assert.Error(err)

	var asm_err *ErrAssembly
	if !assert.True(errors.As(err, &asm_err)) {
		return
	}

	var lines []int
	for _, e := range asm_err.Errors {
		lines = append(lines, e.LineNo)
	}
	assert.Equal([]int{1, 3, 4, 6, 7, 8, 10, 2, 5}, lines)

	assert.ErrorIs(asm_err.Errors[0], ErrOperatorFormat)
	assert.Equal("bogus line here", asm_err.Errors[0].Line)
	assert.ErrorIs(asm_err.Errors[1], ErrImmediateRange(2048))
	assert.ErrorIs(asm_err.Errors[2], ErrOperatorFormat)
	assert.ErrorIs(asm_err.Errors[3], ErrRegisterInvalid)
	assert.ErrorIs(asm_err.Errors[4], ErrParseCharacter("ab"))
	assert.ErrorIs(asm_err.Errors[5], ErrParseNumber("12z"))
	assert.ErrorIs(asm_err.Errors[6], ErrLabelDuplicate)
	assert.ErrorIs(asm_err.Errors[7], ErrLabelMissing("nowhere"))
	assert.ErrorIs(asm_err.Errors[8], ErrLabelMissing("missing"))

	assert.ErrorIs(err, ErrLabelMissing("nowhere"))
	assert.Contains(err.Error(), "label 'missing' missing")
	assert.Contains(err.Error(), "line 1 'bogus line here'")
	assert.Equal(len(program)-3, len(strings.Split(err.Error(), "\n")))
}

func TestAssemblerBranchRange(t *testing.T) {
	assert := assert.New(t)

	// A branch reaches 2047 slots forward; the label here is one further.
	source := "beq x0, x0, far\ndata 0 * 2048\nfar:\nebreak"

	_, err := Assemble(source)
	assert.ErrorIs(err, ErrImmediateRange(2048))

	source = "beq x0, x0, far\ndata 0 * 2047\nfar:\nebreak"
	prog, err := Assemble(source)
	assert.NoError(err)
	if prog != nil {
		assert.Equal(int32(2047), prog.Opcodes[0].Codes[0].Inst.Imm)
	}
}

func TestAssemblerTooLarge(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{MaxSlots: 4}

	_, err := asm.Parse(strings.NewReader("data 0 * 5"))
	assert.ErrorIs(err, ErrProgramTooLarge)

	_, err = asm.Parse(strings.NewReader("data 0 * 3\nli x1, 5000"))
	assert.ErrorIs(err, ErrProgramTooLarge)

	prog, err := asm.Parse(strings.NewReader("data 0 * 2\nli x1, 5000"))
	assert.NoError(err)
	if prog != nil {
		assert.Equal(4, prog.Len())
	}
}

func TestAssemblerReuse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	_, err := asm.Parse(strings.NewReader("a:\njal x0, b"))
	assert.Error(err)

	prog, err := asm.Parse(strings.NewReader("b:\njal x0, b"))
	assert.NoError(err)
	if prog != nil {
		assert.Equal(map[string]int{"b": 0}, prog.Label)
		assert.Equal(1, prog.Len())
	}
}

func TestProgramDebug(t *testing.T) {
	assert := assert.New(t)

	prog, err := Assemble("start:\nli x5, 5000\nebreak\nend:")
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
		return
	}

	dbg := prog.Debug(1)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(2)
	assert.Equal(2, dbg.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(3)
	assert.Nil(dbg.Opcode)

	assert.Equal([]string{"start", "end"}, prog.Labels())
}
