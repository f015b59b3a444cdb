package io

import (
	"bufio"
	"io"
	"iter"
	"maps"
	"unicode/utf8"
)

// Tape provides sequential character I/O over byte streams. Input is
// decoded as UTF-8, output is encoded as UTF-8.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
	source io.Reader
	ended  bool
}

var _ Channel = (*Tape)(nil)

// Defines returns an iter of defines for the channel.
func (tc *Tape) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"EOF": "0",
	})
}

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// Receive reads the next character from the input stream. A missing input,
// a read error or the end of the stream all end the input for good.
func (tc *Tape) Receive() (value int32, ok bool) {
	if tc.ended || tc.Input == nil {
		return
	}

	if tc.reader == nil || tc.source != tc.Input {
		tc.reader = bufio.NewReader(tc.Input)
		tc.source = tc.Input
	}

	r, _, err := tc.reader.ReadRune()
	if err != nil {
		tc.ended = true
		return
	}

	value = int32(r)
	ok = true
	return
}

// Send writes a character to the output stream. Values that are not valid
// code points are written as the replacement character.
func (tc *Tape) Send(value int32) (err error) {
	if tc.Output == nil {
		err = ErrChannelClosed
		return
	}

	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], rune(value))
	_, err = tc.Output.Write(buf[:n])

	return
}
