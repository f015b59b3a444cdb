package io

import (
	"errors"

	"github.com/asurkis/risc-emulator/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull    = errors.New(f("channel full"))
	ErrChannelClosed  = errors.New(f("channel has no output"))
	ErrImageTruncated = errors.New(f("image is not a whole number of words"))
)
