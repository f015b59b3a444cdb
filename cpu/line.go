package cpu

import (
	"slices"
	"strconv"
	"strings"
)

// TokenKind classifies a source token.
type TokenKind int

const (
	TOKEN_WORD  = TokenKind(iota) // Mnemonics, registers and labels.
	TOKEN_IMM                     // Numbers, character literals and $(...) expressions.
	TOKEN_PUNCT                   // One of , : *
)

// Token is a lexical unit of a source line.
type Token struct {
	Kind TokenKind
	Text string
}

// Tokenize splits a source line into tokens, dropping any comment.
func Tokenize(line string) (tokens []Token, err error) {
	n := 0
	for n < len(line) {
		c := line[n]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f':
			n++
		case c == '#':
			return
		case c == ',' || c == ':' || c == '*':
			tokens = append(tokens, Token{Kind: TOKEN_PUNCT, Text: line[n : n+1]})
			n++
		case c == '\'':
			end := quoteEnd(line, n)
			if end < 0 {
				err = ErrParseCharacter(line[n:])
				return
			}
			tokens = append(tokens, Token{Kind: TOKEN_IMM, Text: line[n:end]})
			n = end
		case c == '$':
			end := parenEnd(line, n)
			if end < 0 {
				err = ErrParseExpression(strings.TrimPrefix(line[n:], "$("))
				return
			}
			tokens = append(tokens, Token{Kind: TOKEN_IMM, Text: line[n:end]})
			n = end
		default:
			end := n
			for end < len(line) && !strings.ContainsRune(" \t\r\v\f#,:*'", rune(line[end])) {
				end++
			}
			text := line[n:end]
			kind := TOKEN_WORD
			if c == '-' || c == '+' || (c >= '0' && c <= '9') {
				kind = TOKEN_IMM
			}
			tokens = append(tokens, Token{Kind: kind, Text: text})
			n = end
		}
	}

	return
}

// quoteEnd returns the index just past the character literal at start,
// or -1 if it is not terminated.
func quoteEnd(line string, start int) int {
	for n := start + 1; n < len(line); n++ {
		switch line[n] {
		case '\\':
			n++
		case '\'':
			if n == start+1 {
				return -1
			}
			return n + 1
		}
	}
	return -1
}

// parenEnd returns the index just past the $(...) expression at start,
// or -1 if the parentheses do not balance.
func parenEnd(line string, start int) int {
	if !strings.HasPrefix(line[start:], "$(") {
		return -1
	}

	depth := 0
	for n := start + 1; n < len(line); n++ {
		switch line[n] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return n + 1
			}
		}
	}
	return -1
}

// isRegister returns true if the word names a register, x0 through x31
// or beyond; the number is range checked when encoding.
func isRegister(word string) bool {
	if len(word) < 2 || (word[0] != 'x' && word[0] != 'X') {
		return false
	}
	for _, c := range word[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// isLabel returns true if the word can name a label.
func isLabel(word string) bool {
	if len(word) == 0 {
		return false
	}
	for n, c := range word {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case n > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// register parses a register word.
func register(word string) (reg uint8, err error) {
	value, err := strconv.ParseUint(word[1:], 10, 8)
	if err != nil || value >= REGISTER_COUNT {
		err = ErrRegisterInvalid
		return
	}

	reg = uint8(value)
	return
}

// Shape is a line grammar: an operand pattern and the mnemonics that may
// use it.
type Shape int

const (
	SHAPE_NONE    = Shape(iota) // No shape matched.
	SHAPE_R                     // op xA, xB, xC
	SHAPE_I                     // op xA, xB, IMM
	SHAPE_S                     // op xA, IMM, xB
	SHAPE_U                     // op xA, IMM
	SHAPE_B_LABEL               // op xA, xB, LABEL
	SHAPE_U_LABEL               // op xA, LABEL
	SHAPE_NO_ARG                // op
	SHAPE_ENV                   // op xA
	SHAPE_DATA                  // data V * N
	SHAPE_LABEL                 // LABEL:
	SHAPE_EMPTY                 // Blank or comment only.
)

// Pattern elements. Anything else is literal punctuation.
const (
	patMnemonic = "OP"
	patReg      = "REG"
	patImm      = "IMM"
	patLabel    = "LABEL"
	patData     = "data"
)

type shapeRule struct {
	shape   Shape
	pattern []string
	allow   []string // Lower case mnemonics; nil when the pattern has none.
}

// shapeRules are tried in order. The first rule whose pattern matches and
// whose allow list holds the mnemonic wins.
var shapeRules = []shapeRule{
	{SHAPE_R, []string{patMnemonic, patReg, ",", patReg, ",", patReg},
		[]string{"add", "sub", "sll", "slt", "seq", "sne", "sge", "xor", "srl", "sra", "or", "and", "mul", "div", "rem"}},
	{SHAPE_I, []string{patMnemonic, patReg, ",", patReg, ",", patImm},
		[]string{"jalr", "lw", "addi", "slti", "xori", "ori", "andi", "beq", "bne", "blt", "bge"}},
	{SHAPE_S, []string{patMnemonic, patReg, ",", patImm, ",", patReg},
		[]string{"sw"}},
	{SHAPE_U, []string{patMnemonic, patReg, ",", patImm},
		[]string{"li", "lui", "jal"}},
	{SHAPE_B_LABEL, []string{patMnemonic, patReg, ",", patReg, ",", patLabel},
		[]string{"beq", "bne", "blt", "bge"}},
	{SHAPE_U_LABEL, []string{patMnemonic, patReg, ",", patLabel},
		[]string{"li", "jal"}},
	{SHAPE_NO_ARG, []string{patMnemonic},
		[]string{"ebreak"}},
	{SHAPE_ENV, []string{patMnemonic, patReg},
		[]string{"eread", "ewrite"}},
	{SHAPE_DATA, []string{patData, patImm, "*", patImm}, nil},
	{SHAPE_LABEL, []string{patLabel, ":"}, nil},
	{SHAPE_EMPTY, []string{}, nil},
}

// Statement is a source line matched to its shape. Args holds the
// operand tokens in source order, without punctuation.
type Statement struct {
	Shape    Shape
	Mnemonic string // Lower case.
	Args     []string
}

// match returns true if the tokens fit the pattern.
func (rule *shapeRule) match(tokens []Token) bool {
	if len(tokens) != len(rule.pattern) {
		return false
	}

	for n, pat := range rule.pattern {
		tok := tokens[n]
		switch pat {
		case patMnemonic:
			if tok.Kind != TOKEN_WORD {
				return false
			}
		case patReg:
			if tok.Kind != TOKEN_WORD || !isRegister(tok.Text) {
				return false
			}
		case patImm:
			if tok.Kind != TOKEN_IMM {
				return false
			}
		case patLabel:
			if tok.Kind != TOKEN_WORD || !isLabel(tok.Text) {
				return false
			}
		case patData:
			if tok.Kind != TOKEN_WORD || !strings.EqualFold(tok.Text, patData) {
				return false
			}
		default:
			if tok.Kind != TOKEN_PUNCT || tok.Text != pat {
				return false
			}
		}
	}

	return true
}

// ParseStatement matches a source line against the line shapes.
func ParseStatement(line string) (stmt Statement, err error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return
	}

	for _, rule := range shapeRules {
		if !rule.match(tokens) {
			continue
		}

		var mnemonic string
		if rule.allow != nil {
			mnemonic = strings.ToLower(tokens[0].Text)
			if !slices.Contains(rule.allow, mnemonic) {
				continue
			}
		}

		stmt.Shape = rule.shape
		stmt.Mnemonic = mnemonic
		for n, pat := range rule.pattern {
			switch pat {
			case patReg, patImm, patLabel:
				stmt.Args = append(stmt.Args, tokens[n].Text)
			}
		}
		return
	}

	err = ErrOperatorFormat
	return
}
