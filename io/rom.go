package io

import (
	"encoding/binary"
	"io"
)

// Rom holds a boot image: the machine words placed in memory from
// address zero at reset.
type Rom struct {
	Data []uint32
}

// Unmarshal loads rom data from a reader of little-endian 32-bit words,
// replacing any existing data.
func (rc *Rom) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	if len(data)%4 != 0 {
		err = ErrImageTruncated
		return
	}

	rc.Data = make([]uint32, len(data)/4)
	for n := range rc.Data {
		rc.Data[n] = binary.LittleEndian.Uint32(data[n*4:])
	}

	return
}

// Marshal writes the rom data to a writer as little-endian 32-bit words.
func (rc *Rom) Marshal(file io.Writer) (err error) {
	data := make([]byte, 0, len(rc.Data)*4)
	for _, word := range rc.Data {
		data = binary.LittleEndian.AppendUint32(data, word)
	}

	_, err = file.Write(data)

	return
}
