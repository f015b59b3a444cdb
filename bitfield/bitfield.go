// Package bitfield packs and unpacks bit ranges of 32-bit instruction words.
//
// Every instruction format in the cpu package is described in terms of
// Field and Layout values; no encoder or decoder touches the bits directly.
package bitfield

// SignExtend interprets the low width bits of value as a two's complement
// number. Width must be in [1, 32].
func SignExtend(value uint32, width uint) int32 {
	high := int64(1) << width
	mid := high >> 1
	v := int64(value) & (high - 1)
	return int32((v+mid)%high - mid)
}

// FitsSigned returns true if value is representable as a width-bit two's
// complement number.
func FitsSigned(value int64, width uint) bool {
	mid := int64(1) << (width - 1)
	return value >= -mid && value < mid
}

// FitsUnsigned returns true if value is representable as a width-bit
// unsigned number.
func FitsUnsigned(value int64, width uint) bool {
	return value >= 0 && value < int64(1)<<width
}

// Field is the bit range [Lo, Lo+Width) of a word.
type Field struct {
	Lo    uint
	Width uint
}

// Mask returns the in-place mask of the field.
func (fd Field) Mask() uint32 {
	return uint32((uint64(1)<<fd.Width)-1) << fd.Lo
}

// Get extracts the field from word, right aligned.
func (fd Field) Get(word uint32) uint32 {
	return (word & fd.Mask()) >> fd.Lo
}

// Put replaces the field in word with the low bits of value.
func (fd Field) Put(word uint32, value uint32) uint32 {
	mask := fd.Mask()
	return (word &^ mask) | ((value << fd.Lo) & mask)
}

// Segment maps immediate bits [Shift, Shift+Width) onto the word field.
type Segment struct {
	Field
	Shift uint
}

// Layout is an immediate value scattered over several word fields.
type Layout []Segment

// Width is the total number of immediate bits covered by the layout.
func (lay Layout) Width() (width uint) {
	for _, seg := range lay {
		width = max(width, seg.Shift+seg.Width)
	}
	return
}

// Gather collects the immediate bits from word.
func (lay Layout) Gather(word uint32) (value uint32) {
	for _, seg := range lay {
		value |= seg.Get(word) << seg.Shift
	}
	return
}

// Scatter places the immediate bits of value into word.
func (lay Layout) Scatter(word uint32, value uint32) uint32 {
	for _, seg := range lay {
		word = seg.Put(word, value>>seg.Shift)
	}
	return word
}
