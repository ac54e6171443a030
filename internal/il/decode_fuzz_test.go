package il

import "testing"

// Decoding arbitrary bytes must never panic and must keep its invariants.
func FuzzDecodeNoPanic(f *testing.F) {
	seeds := [][]byte{
		{},
		{0x2A},
		placeholderThrow,
		{0x45, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x2A},
		{0xFE},
		{0xFE, 0x09, 0x01},
		[]byte("garbage-but-should-not-panic"),
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		facts := Decoder{NotImplementedCtors: []uint32{0x0A000012}}.Decode(data)
		if facts.Length != len(data) {
			t.Fatalf("length %d, want %d", facts.Length, len(data))
		}
		if facts.IsEmpty != (len(data) <= 3) {
			t.Fatalf("isEmpty=%v for %d bytes", facts.IsEmpty, len(data))
		}
		if s := facts.Score(); s < 0 || s > 1 {
			t.Fatalf("score out of range: %v", s)
		}
	})
}
