// code.go defines the 8-byte instruction encoding the code generator emits,
// per §4.3: opcode byte, packed src/dst register nibble, signed 16-bit
// little-endian offset, signed 32-bit little-endian immediate.
package compiler

import (
	"encoding/binary"
	"fmt"
)

// Reg identifies one of the eleven general-purpose BPF registers.
type Reg byte

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
)

func (r Reg) String() string { return fmt.Sprintf("r%d", byte(r)) }

// Opcode is the single byte identifying an instruction's operation.
type Opcode byte

// ALU64 opcodes, exhaustive per §4.3.
const (
	MovImm Opcode = 0xd7
	MovReg Opcode = 0xdf
	AddImm Opcode = 0x07
	AddReg Opcode = 0x0f
	SubReg Opcode = 0x1f
	MulReg Opcode = 0x2f
	DivReg Opcode = 0x3f
	ModReg Opcode = 0xaf
	AndReg Opcode = 0x5f
	OrReg  Opcode = 0x4f
	XorReg Opcode = 0xbf
	LshReg Opcode = 0x7f
	RshReg Opcode = 0x8f
	LshImm Opcode = 0x77
	OrImm  Opcode = 0x47
)

// Memory opcodes.
const (
	Ldxdw Opcode = 0x79
	Stxdw Opcode = 0x7b
)

// Branch and control opcodes.
const (
	Ja   Opcode = 0x05
	Jeq  Opcode = 0x15
	Jne  Opcode = 0x55
	Call Opcode = 0x85
	Exit Opcode = 0x95
)

// Extension branch opcodes, not in §4.3's exhaustive ALU/mem/control list
// but permitted by its "more may be emitted as extensions" clause for
// branches. These follow the same CODE|SOURCE|CLASS bit layout the spec's
// own Ja/Jeq/Jne/Call/Exit already use (JMP class 0x05), with the 0x08
// source bit set to mark the register (rather than immediate) operand
// form. See DESIGN.md for the full derivation.
const (
	JeqReg Opcode = 0x1d
	JneReg Opcode = 0x5d
	JgtReg Opcode = 0x2d
	JgeReg Opcode = 0x3d
	JltReg Opcode = 0xad
	JleReg Opcode = 0xbd
)

func (op Opcode) String() string {
	switch op {
	case MovImm:
		return "mov64"
	case MovReg:
		return "mov64"
	case AddImm:
		return "add64"
	case AddReg:
		return "add64"
	case SubReg:
		return "sub64"
	case MulReg:
		return "mul64"
	case DivReg:
		return "div64"
	case ModReg:
		return "mod64"
	case AndReg:
		return "and64"
	case OrReg:
		return "or64"
	case XorReg:
		return "xor64"
	case LshReg:
		return "lsh64"
	case RshReg:
		return "rsh64"
	case LshImm:
		return "lsh64"
	case OrImm:
		return "or64"
	case Ldxdw:
		return "ldxdw"
	case Stxdw:
		return "stxdw"
	case Ja:
		return "ja"
	case Jeq:
		return "jeq"
	case Jne:
		return "jne"
	case JeqReg:
		return "jeq"
	case JneReg:
		return "jne"
	case JgtReg:
		return "jgt"
	case JgeReg:
		return "jge"
	case JltReg:
		return "jlt"
	case JleReg:
		return "jle"
	case Call:
		return "call"
	case Exit:
		return "exit"
	default:
		return fmt.Sprintf("op(%#02x)", byte(op))
	}
}

// isImmediateForm reports whether op's right-hand operand is carried in the
// 32-bit immediate field rather than the src register nibble.
func (op Opcode) isImmediateForm() bool {
	switch op {
	case MovImm, AddImm, LshImm, OrImm, Jeq, Jne:
		return true
	default:
		return false
	}
}

// Instruction is one decoded 8-byte BPF instruction, per the layout table
// in §4.3.
type Instruction struct {
	Op     Opcode
	Dst    Reg
	Src    Reg
	Offset int16
	Imm    int32
}

// Encode lays out the instruction into its fixed 8-byte, little-endian
// wire form.
func (in Instruction) Encode() [8]byte {
	var b [8]byte
	b[0] = byte(in.Op)
	b[1] = (byte(in.Src) << 4) | (byte(in.Dst) & 0x0f)
	binary.LittleEndian.PutUint16(b[2:4], uint16(in.Offset))
	binary.LittleEndian.PutUint32(b[4:8], uint32(in.Imm))
	return b
}

// Decode reads one 8-byte instruction out of b.
func Decode(b []byte) Instruction {
	return Instruction{
		Op:     Opcode(b[0]),
		Src:    Reg(b[1] >> 4),
		Dst:    Reg(b[1] & 0x0f),
		Offset: int16(binary.LittleEndian.Uint16(b[2:4])),
		Imm:    int32(binary.LittleEndian.Uint32(b[4:8])),
	}
}

// Assemble concatenates a slice of instructions into the flat byte vector
// described in §6.2: no headers, no relocations, a straight multiple-of-8
// concatenation.
func Assemble(instrs []Instruction) []byte {
	out := make([]byte, 0, len(instrs)*8)
	for _, in := range instrs {
		enc := in.Encode()
		out = append(out, enc[:]...)
	}
	return out
}
