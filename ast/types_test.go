package ast

import "testing"

func TestSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want int
	}{
		{"u8", Primitive(KindU8), 1},
		{"i8", Primitive(KindI8), 1},
		{"u16", Primitive(KindU16), 2},
		{"u32", Primitive(KindU32), 4},
		{"u64", Primitive(KindU64), 8},
		{"i64", Primitive(KindI64), 8},
		{"f64", Primitive(KindF64), 8},
		{"bool", Primitive(KindBool), 1},
		{"void", Primitive(KindVoid), 0},
		{"pointer", PointerTo(Primitive(KindU8)), 8},
		{"custom", Custom("Point"), 8},
		{"sized array", ArrayOf(Primitive(KindU64), intPtr(4)), 32},
		{"unsized array", ArrayOf(Primitive(KindU64), nil), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.SizeBytes(); got != tt.want {
				t.Errorf("SizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassLayoutSize(t *testing.T) {
	// class Point { U64 x; U64 y; }; sizeof(Point) conceptually == 16.
	fields := []VarDecl{
		{Type: Primitive(KindU64)},
		{Type: Primitive(KindU64)},
	}
	total := 0
	for _, f := range fields {
		total += f.Type.SizeBytes()
	}
	if total != 16 {
		t.Errorf("Point layout size = %d, want 16", total)
	}
}

func TestIsIntegerAndUnsigned(t *testing.T) {
	if !Primitive(KindU32).IsInteger() {
		t.Error("U32 should be integer")
	}
	if !Primitive(KindU32).IsUnsigned() {
		t.Error("U32 should be unsigned")
	}
	if Primitive(KindI32).IsUnsigned() {
		t.Error("I32 should not be unsigned")
	}
	if Primitive(KindF64).IsInteger() {
		t.Error("F64 should not be integer")
	}
}

func TestIsVoid(t *testing.T) {
	if !Primitive(KindVoid).IsVoid() {
		t.Error("Void should report IsVoid")
	}
	if Primitive(KindU8).IsVoid() {
		t.Error("U8 should not report IsVoid")
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Primitive(KindU64), "U64"},
		{PointerTo(Primitive(KindU8)), "U8*"},
		{ArrayOf(Primitive(KindU64), intPtr(4)), "U64[4]"},
		{ArrayOf(Primitive(KindU64), nil), "U64[]"},
		{Custom("Point"), "Point"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func intPtr(n int) *int { return &n }
