// Package io provides the character streams a machine reads from and
// writes to. Characters are Unicode code points carried as int32 values,
// the width of a machine register.
//
// Tape streams characters from an io.Reader to an io.Writer, Buffer keeps
// both directions in memory, and Rom holds a boot image of machine words.
package io

// Channel defines the interface for machine character I/O.
type Channel interface {
	// Rewind moves the input cursor back to the start, if the channel can.
	Rewind()
	// Receive returns the next input character. At the end of the input it
	// returns ok == false, and keeps doing so.
	Receive() (value int32, ok bool)
	// Send appends a character to the output.
	Send(value int32) error
}
