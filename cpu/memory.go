package cpu

// Cell is a memory slot: the raw word and its decoded instruction.
type Cell struct {
	Word  int32       // Raw word.
	Inst  Instruction // Decoded instruction, valid only if Valid is set.
	Valid bool        // Word decodes to an instruction.
	Data  bool        // Word was placed as a data literal.
}

// Memory is word addressed storage whose decode cache always follows
// the raw words.
type Memory struct {
	cell []Cell
}

// NewMemory creates a zeroed memory of size slots.
func NewMemory(size int) (mem *Memory) {
	mem = &Memory{
		cell: make([]Cell, size),
	}

	mem.Reset()

	return
}

// Reset sets every slot to zero.
func (mem *Memory) Reset() {
	empty := Cell{}
	empty.Inst, empty.Valid = Decode(0)
	for n := range mem.cell {
		mem.cell[n] = empty
	}
}

// Len returns the number of slots.
func (mem *Memory) Len() int {
	return len(mem.cell)
}

// Contains returns true if addr is a valid slot address.
func (mem *Memory) Contains(addr int64) bool {
	return addr >= 0 && addr < int64(len(mem.cell))
}

// Get returns the raw word at addr.
func (mem *Memory) Get(addr int64) (value int32, err error) {
	if !mem.Contains(addr) {
		err = ErrMemoryRange(addr)
		return
	}

	value = mem.cell[addr].Word
	return
}

// Cell returns a copy of the slot at addr.
func (mem *Memory) Cell(addr int64) (cell Cell, ok bool) {
	if !mem.Contains(addr) {
		return
	}

	cell = mem.cell[addr]
	ok = true
	return
}

// Set stores a word and re-derives its decoded instruction.
func (mem *Memory) Set(addr int64, value int32) (err error) {
	if !mem.Contains(addr) {
		err = ErrMemoryRange(addr)
		return
	}

	cell := &mem.cell[addr]
	cell.Word = value
	cell.Inst, cell.Valid = Decode(uint32(value))
	cell.Data = false

	return
}

// SetData stores a data literal. The decoded cache is still derived, so
// data may be executed like any other word.
func (mem *Memory) SetData(addr int64, value int32) (err error) {
	err = mem.Set(addr, value)
	if err != nil {
		return
	}

	mem.cell[addr].Data = true
	return
}

// Fetch returns the decoded instruction at addr. Slots out of range or
// holding no valid instruction return ok == false.
func (mem *Memory) Fetch(addr int64) (inst Instruction, ok bool) {
	cell, ok := mem.Cell(addr)
	if !ok || !cell.Valid {
		ok = false
		return
	}

	inst = cell.Inst
	return
}

// Words returns a copy of the raw words in [from, to).
func (mem *Memory) Words(from, to int) (words []int32) {
	from = max(from, 0)
	to = min(to, len(mem.cell))
	for n := from; n < to; n++ {
		words = append(words, mem.cell[n].Word)
	}
	return
}
