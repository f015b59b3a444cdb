package io

import (
	"strings"
)

// Buffer keeps a channel's input and output in memory.
type Buffer struct {
	Capacity int // Output capacity in characters, or 0 for unlimited.

	Input     []int32
	ReadIndex int
	Data      []int32
}

var _ Channel = (*Buffer)(nil)

// NewBuffer creates a buffer whose input is the characters of text.
func NewBuffer(text string) (buf *Buffer) {
	buf = &Buffer{}
	buf.SetInput(text)
	return
}

// SetInput replaces the input and rewinds it.
func (buf *Buffer) SetInput(text string) {
	buf.Input = buf.Input[:0]
	for _, r := range text {
		buf.Input = append(buf.Input, int32(r))
	}
	buf.ReadIndex = 0
}

// Rewind resets the input cursor. Output is kept; it belongs to the
// consumer of the buffer.
func (buf *Buffer) Rewind() {
	buf.ReadIndex = 0
}

// Receive returns the next input character.
func (buf *Buffer) Receive() (value int32, ok bool) {
	if buf.ReadIndex >= len(buf.Input) {
		return
	}

	value = buf.Input[buf.ReadIndex]
	buf.ReadIndex++
	ok = true
	return
}

// Send appends a character to the output.
// Returns ErrChannelFull if the buffer has reached capacity.
func (buf *Buffer) Send(value int32) (err error) {
	if buf.Capacity > 0 && len(buf.Data) >= buf.Capacity {
		err = ErrChannelFull
		return
	}

	buf.Data = append(buf.Data, value)
	return
}

// Output returns the output written so far as text.
func (buf *Buffer) Output() string {
	var sb strings.Builder
	for _, value := range buf.Data {
		sb.WriteRune(rune(value))
	}
	return sb.String()
}

// Clear discards the output.
func (buf *Buffer) Clear() {
	buf.Data = buf.Data[:0]
}
