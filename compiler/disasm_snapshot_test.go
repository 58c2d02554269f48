package compiler

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestDisassembleSnapshots pins the full disassembly listing for each
// end-to-end scenario named in §8, so a change to the code generator's
// output shape shows up as a reviewable snapshot diff rather than a
// silent drift.
func TestDisassembleSnapshots(t *testing.T) {
	scenarios := []struct {
		name string
		src  string
	}{
		{"identity_function", "U64 id(U64 a) { return a; }"},
		{"xor_deobfuscate", "U64 deobf(U64 v, U64 k) { return v ^ k; }"},
		{"add_function", "U64 add(U64 a, U64 b) { return a + b; }"},
		{"if_else_skeleton", "U64 f(U64 a) { if (a) { return 1; } else { return 2; } }"},
		{"hex_literal", "U64 k() { return 0xdeadbeef; }"},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			code := compileSource(t, sc.src)
			listing, err := Disassemble(code)
			if err != nil {
				t.Fatalf("Disassemble() error: %v", err)
			}
			snaps.MatchSnapshot(t, sc.name, listing)
		})
	}
}
