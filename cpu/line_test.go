package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert := assert.New(t)

	w := func(text string) Token { return Token{Kind: TOKEN_WORD, Text: text} }
	i := func(text string) Token { return Token{Kind: TOKEN_IMM, Text: text} }
	p := func(text string) Token { return Token{Kind: TOKEN_PUNCT, Text: text} }

	table := [](struct {
		line   string
		tokens []Token
	}){
		{"", nil},
		{"   # just a comment", nil},
		{"add x1, x2, x3 # sum", []Token{w("add"), w("x1"), p(","), w("x2"), p(","), w("x3")}},
		{"add x1,x2,x3", []Token{w("add"), w("x1"), p(","), w("x2"), p(","), w("x3")}},
		{"\taddi x1, x0, -5", []Token{w("addi"), w("x1"), p(","), w("x0"), p(","), i("-5")}},
		{"data +3 * 2", []Token{w("data"), i("+3"), p("*"), i("2")}},
		{"loop:", []Token{w("loop"), p(":")}},
		{"addi x1, x0, '#' # hash", []Token{w("addi"), w("x1"), p(","), w("x0"), p(","), i("'#'")}},
		{"addi x1, x0, ','", []Token{w("addi"), w("x1"), p(","), w("x0"), p(","), i("','")}},
		{`addi x1, x0, '\''`, []Token{w("addi"), w("x1"), p(","), w("x0"), p(","), i(`'\''`)}},
		{"li x1, $(max(1, 2) * 3)", []Token{w("li"), w("x1"), p(","), i("$(max(1, 2) * 3)")}},
	}

	for _, entry := range table {
		tokens, err := Tokenize(entry.line)
		assert.NoError(err, entry.line)
		assert.Equal(entry.tokens, tokens, entry.line)
	}
}

func TestTokenize_Errors(t *testing.T) {
	assert := assert.New(t)

	_, err := Tokenize("addi x1, x0, 'a")
	assert.ErrorIs(err, ErrParseCharacter("'a"))

	_, err = Tokenize("addi x1, x0, ''")
	assert.Error(err)

	_, err = Tokenize("addi x1, x0, $(1 + (2)")
	assert.ErrorIs(err, ErrParseExpression("1 + (2)"))

	_, err = Tokenize("addi x1, x0, $x")
	assert.Error(err)
}

func TestParseStatement(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line     string
		shape    Shape
		mnemonic string
		args     []string
	}){
		{"", SHAPE_EMPTY, "", nil},
		{"  # comment", SHAPE_EMPTY, "", nil},
		{"add x3, x1, x2", SHAPE_R, "add", []string{"x3", "x1", "x2"}},
		{"ADD X3, x1, X2", SHAPE_R, "add", []string{"X3", "x1", "X2"}},
		{"addi x5, x0, 5", SHAPE_I, "addi", []string{"x5", "x0", "5"}},
		{"beq x1, x2, 3", SHAPE_I, "beq", []string{"x1", "x2", "3"}},
		{"beq x1, x2, end", SHAPE_B_LABEL, "beq", []string{"x1", "x2", "end"}},
		{"beq x1, x2, x3", SHAPE_B_LABEL, "beq", []string{"x1", "x2", "x3"}},
		{"sw x1, 4, x2", SHAPE_S, "sw", []string{"x1", "4", "x2"}},
		{"lui x5, 1", SHAPE_U, "lui", []string{"x5", "1"}},
		{"li x5, 5000", SHAPE_U, "li", []string{"x5", "5000"}},
		{"jal x1, -1", SHAPE_U, "jal", []string{"x1", "-1"}},
		{"jal x1, loop", SHAPE_U_LABEL, "jal", []string{"x1", "loop"}},
		{"li x5, table", SHAPE_U_LABEL, "li", []string{"x5", "table"}},
		{"ebreak", SHAPE_NO_ARG, "ebreak", nil},
		{"EBREAK # stop", SHAPE_NO_ARG, "ebreak", nil},
		{"eread x5", SHAPE_ENV, "eread", []string{"x5"}},
		{"ewrite x5", SHAPE_ENV, "ewrite", []string{"x5"}},
		{"data 7 * 3", SHAPE_DATA, "", []string{"7", "3"}},
		{"DATA -1 * 1", SHAPE_DATA, "", []string{"-1", "1"}},
		{"loop:", SHAPE_LABEL, "", []string{"loop"}},
		{"  _end_2: # here", SHAPE_LABEL, "", []string{"_end_2"}},
	}

	for _, entry := range table {
		stmt, err := ParseStatement(entry.line)
		if !assert.NoError(err, entry.line) {
			continue
		}
		assert.Equal(entry.shape, stmt.Shape, entry.line)
		assert.Equal(entry.mnemonic, stmt.Mnemonic, entry.line)
		assert.Equal(entry.args, stmt.Args, entry.line)
	}
}

func TestParseStatement_Errors(t *testing.T) {
	assert := assert.New(t)

	for _, line := range []string{
		"bogus",
		"add x1, x2",         // shape exists, mnemonic not allowed in it
		"sw x1, x2, x3",      // sw is not register-register
		"addi x1, x2, label", // no immediate label shape for addi
		"lui x1, label",
		"jalr x1, label",
		"add x1, x2, x3, x4",
		"x1 x2",
		"1abc:",
		"loop: addi x1, x0, 1",
		"data 1 2",
		"ebreak x1",
	} {
		_, err := ParseStatement(line)
		assert.ErrorIs(err, ErrOperatorFormat, line)
	}
}

func TestIsRegister(t *testing.T) {
	assert := assert.New(t)

	for _, word := range []string{"x0", "x31", "X7", "x99"} {
		assert.True(isRegister(word), word)
	}
	for _, word := range []string{"x", "xa", "y1", "x1a", ""} {
		assert.False(isRegister(word), word)
	}

	reg, err := register("x31")
	assert.NoError(err)
	assert.Equal(uint8(31), reg)

	_, err = register("x32")
	assert.ErrorIs(err, ErrRegisterInvalid)

	_, err = register("x999")
	assert.ErrorIs(err, ErrRegisterInvalid)
}
