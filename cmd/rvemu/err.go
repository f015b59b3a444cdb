package main

import (
	"github.com/asurkis/risc-emulator/translate"
)

var f = translate.From

type ErrConfigKey string

func (err ErrConfigKey) Error() string {
	return f("unknown configuration key '%v'", string(err))
}
