package cpu

import (
	"testing"
)

func FuzzDecode(f *testing.F) {
	for _, word := range []uint32{
		0,
		0x00500293,
		0x002081B3,
		0x000012B7,
		0x0020A223,
		0xFFFFF0EF,
		0x00208363,
		0xFE000FE3,
		0x00100073,
		0x002002F3,
		0x00428073,
		0xFFFFFFFF,
	} {
		f.Add(word)
	}

	f.Fuzz(func(t *testing.T, word uint32) {
		inst, ok := Decode(word)
		if !ok {
			if inst.Valid() {
				t.Fatalf("%#08x: invalid word decoded as %v", word, inst)
			}
			return
		}

		encoded, err := inst.Encode()
		if err != nil {
			t.Fatalf("%#08x: %v: %v", word, inst, err)
		}

		again, ok := Decode(encoded)
		if !ok || again != inst {
			t.Fatalf("%#08x: %v re-encoded as %#08x, decodes to %v", word, inst, encoded, again)
		}
	})
}
