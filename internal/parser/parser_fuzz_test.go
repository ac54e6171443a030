package parser

import "testing"

// Decoding arbitrary manifests must never panic, and decoded bodies must
// never panic the instruction decoder either.
func FuzzDecodeNoPanic(f *testing.F) {
	seeds := []string{
		"unit: A.dll\ntypes: [{name: T, members: [{name: M, body: '73 12 00 00 0A 7A'}]}]\n",
		"types: [{name: T, members: [{name: P, kind: property, getter: M}, {name: M, body: '2A'}]}]\n",
		`{"types": [{"name": "T", "kind": "enum"}]}`,
		"garbage-but-should-not-panic\n",
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		u, err := Decode(data, "fuzz.unit.yaml", Options{ExemptionMarker: "StoryIgnore"})
		if err != nil {
			return
		}
		for _, typ := range u.Types {
			for _, m := range typ.Members {
				_, _ = m.Facts()
			}
		}
	})
}
