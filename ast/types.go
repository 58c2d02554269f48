package ast

import "fmt"

// Kind tags the primitive or structural category of a Type.
type Kind int

const (
	KindU8 Kind = iota
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF64
	KindBool
	KindVoid
	KindPointer
	KindArray
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "U8"
	case KindU16:
		return "U16"
	case KindU32:
		return "U32"
	case KindU64:
		return "U64"
	case KindI8:
		return "I8"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindF64:
		return "F64"
	case KindBool:
		return "Bool"
	case KindVoid:
		return "Void"
	case KindPointer:
		return "Pointer"
	case KindArray:
		return "Array"
	case KindCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Type is the recursive tagged variant over primitive, pointer, array, and
// custom (class) types described in §3.2. Pointer and Array carry an Elem;
// Array additionally carries a Len (nil means unsized, `T[]`); Custom
// carries a Name.
type Type struct {
	Kind Kind
	Elem *Type
	Len  *int
	Name string
}

func Primitive(k Kind) Type { return Type{Kind: k} }

func PointerTo(elem Type) Type { return Type{Kind: KindPointer, Elem: &elem} }

func ArrayOf(elem Type, length *int) Type { return Type{Kind: KindArray, Elem: &elem, Len: length} }

func Custom(name string) Type { return Type{Kind: KindCustom, Name: name} }

// SizeBytes returns the size, in bytes, of a value of this type, per §3.2:
// 1/2/4/8 for primitives by width, 1 for Bool, 0 for Void, 8 for any
// pointer or custom handle, size(inner)*length for sized arrays, and 8 for
// unsized arrays.
func (t Type) SizeBytes() int {
	switch t.Kind {
	case KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32:
		return 4
	case KindU64, KindI64, KindF64:
		return 8
	case KindBool:
		return 1
	case KindVoid:
		return 0
	case KindPointer, KindCustom:
		return 8
	case KindArray:
		if t.Len != nil {
			return t.Elem.SizeBytes() * (*t.Len)
		}
		return 8
	default:
		return 0
	}
}

// IsInteger reports whether the type is one of U8..I64.
func (t Type) IsInteger() bool {
	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64, KindI8, KindI16, KindI32, KindI64:
		return true
	default:
		return false
	}
}

// IsUnsigned reports whether the type is one of the unsigned integer kinds.
func (t Type) IsUnsigned() bool {
	switch t.Kind {
	case KindU8, KindU16, KindU32, KindU64:
		return true
	default:
		return false
	}
}

func (t Type) IsVoid() bool { return t.Kind == KindVoid }

func (t Type) String() string {
	switch t.Kind {
	case KindPointer:
		return fmt.Sprintf("%s*", t.Elem.String())
	case KindArray:
		if t.Len != nil {
			return fmt.Sprintf("%s[%d]", t.Elem.String(), *t.Len)
		}
		return fmt.Sprintf("%s[]", t.Elem.String())
	case KindCustom:
		return t.Name
	default:
		return t.Kind.String()
	}
}
