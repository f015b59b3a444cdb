package cpu

import (
	"errors"
	"strings"

	"github.com/asurkis/risc-emulator/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrChannelInvalid = errors.New(f("channel invalid"))
	ErrImageTooLarge  = errors.New(f("image larger than memory"))

	// Instruction encode errors
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))

	// Assembler errors
	ErrOperatorFormat  = errors.New(f("unknown operator format"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrProgramTooLarge = errors.New(f("program larger than memory"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label '%v' missing", string(el))
}

type ErrImmediateRange int64

func (err ErrImmediateRange) Error() string {
	return f("immediate %d out of range", int64(err))
}

type ErrMemoryRange int64

func (err ErrMemoryRange) Error() string {
	return f("memory address %d out of range", int64(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrSyntax locates an assembly error. LineNo is 0-based.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrAssembly is every error found while assembling, in the order found.
type ErrAssembly struct {
	Errors []*ErrSyntax
}

func (err *ErrAssembly) Error() string {
	lines := make([]string, len(err.Errors))
	for n, e := range err.Errors {
		lines[n] = e.Error()
	}
	return strings.Join(lines, "\n")
}

func (err *ErrAssembly) Unwrap() (errs []error) {
	for _, e := range err.Errors {
		errs = append(errs, e)
	}
	return
}
