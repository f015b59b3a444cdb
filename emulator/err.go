package emulator

import (
	"github.com/asurkis/risc-emulator/translate"
)

var f = translate.From

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo < 0 {
		return err.Err.Error()
	}
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrStepLimit indicates a run that did not finish within its steps.
type ErrStepLimit int

func (err ErrStepLimit) Error() string {
	return f("no halt within %d steps", int(err))
}
