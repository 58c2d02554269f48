package compiler

import "testing"

func TestInstructionEncodeDecodeRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
	}{
		{"mov imm", Instruction{Op: MovImm, Dst: R1, Imm: 42}},
		{"mov imm negative", Instruction{Op: MovImm, Dst: R0, Imm: -1}},
		{"add reg", Instruction{Op: AddReg, Dst: R3, Src: R4}},
		{"ldxdw negative offset", Instruction{Op: Ldxdw, Dst: R6, Src: R10, Offset: -16}},
		{"stxdw", Instruction{Op: Stxdw, Dst: R10, Src: R6, Offset: -8}},
		{"call", Instruction{Op: Call, Imm: 1}},
		{"exit", Instruction{Op: Exit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := tt.in.Encode()
			if len(enc) != 8 {
				t.Fatalf("encoded length = %d, want 8", len(enc))
			}
			got := Decode(enc[:])
			if got != tt.in {
				t.Errorf("Decode(Encode(%+v)) = %+v", tt.in, got)
			}
		})
	}
}

func TestEncodePacksSrcDstIntoOneByte(t *testing.T) {
	in := Instruction{Op: AddReg, Dst: R3, Src: R7}
	enc := in.Encode()
	if enc[1] != (byte(R7)<<4)|byte(R3) {
		t.Errorf("packed src/dst byte = %#02x, want %#02x", enc[1], (byte(R7)<<4)|byte(R3))
	}
}

func TestAssembleConcatenatesEightByteInstructions(t *testing.T) {
	instrs := []Instruction{
		{Op: MovImm, Dst: R1, Imm: 1},
		{Op: MovImm, Dst: R2, Imm: 2},
		{Op: Exit},
	}
	out := Assemble(instrs)
	if len(out) != len(instrs)*8 {
		t.Fatalf("Assemble length = %d, want %d", len(out), len(instrs)*8)
	}
	if len(out)%8 != 0 {
		t.Errorf("Assemble length %d is not a multiple of 8", len(out))
	}
	for i, want := range instrs {
		got := Decode(out[i*8 : i*8+8])
		if got != want {
			t.Errorf("instruction %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestAssembleEmptyIsEmpty(t *testing.T) {
	out := Assemble(nil)
	if len(out) != 0 {
		t.Errorf("Assemble(nil) length = %d, want 0", len(out))
	}
}

func TestExitOpcodeIsFixed(t *testing.T) {
	if Exit != 0x95 {
		t.Errorf("Exit opcode = %#02x, want 0x95", byte(Exit))
	}
}

func TestXorRegOpcodeIsFixed(t *testing.T) {
	if XorReg != 0xbf {
		t.Errorf("XorReg opcode = %#02x, want 0xbf", byte(XorReg))
	}
}

func TestAddRegOpcodeIsFixed(t *testing.T) {
	if AddReg != 0x0f {
		t.Errorf("AddReg opcode = %#02x, want 0x0f", byte(AddReg))
	}
}

func TestJeqOpcodeIsFixed(t *testing.T) {
	if Jeq != 0x15 {
		t.Errorf("Jeq opcode = %#02x, want 0x15", byte(Jeq))
	}
}

func TestOpcodeStringIsHumanReadable(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{MovImm, "mov64"},
		{AddReg, "add64"},
		{XorReg, "xor64"},
		{Exit, "exit"},
		{Call, "call"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%#02x.String() = %q, want %q", byte(tt.op), got, tt.want)
		}
	}
}
