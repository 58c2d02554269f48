package compiler

import (
	"fmt"
	"strings"
)

// Disassemble renders a flat instruction stream as one line per
// instruction, grounded in the teacher's DiassembleInstruction /
// DiassembleBytecode pair: an index column, the mnemonic, and its
// operands in assembler order. It is exercised by the compile subcommand's
// -S flag and backs the compiler package's golden-file disassembly tests.
func Disassemble(code []byte) (string, error) {
	if len(code)%8 != 0 {
		return "", fmt.Errorf("💥 Disassemble: code length %d is not a multiple of 8", len(code))
	}
	var b strings.Builder
	for i := 0; i*8 < len(code); i++ {
		in := Decode(code[i*8 : i*8+8])
		fmt.Fprintf(&b, "%4d: %s\n", i, disassembleOne(in))
	}
	return b.String(), nil
}

func disassembleOne(in Instruction) string {
	switch in.Op {
	case MovImm, AddImm, LshImm, OrImm:
		return fmt.Sprintf("%s %s, %d", in.Op, in.Dst, in.Imm)
	case MovReg, AddReg, SubReg, MulReg, DivReg, ModReg, AndReg, OrReg, XorReg, LshReg, RshReg:
		return fmt.Sprintf("%s %s, %s", in.Op, in.Dst, in.Src)
	case Ldxdw:
		return fmt.Sprintf("%s %s, [%s%+d]", in.Op, in.Dst, in.Src, in.Offset)
	case Stxdw:
		return fmt.Sprintf("%s [%s%+d], %s", in.Op, in.Dst, in.Offset, in.Src)
	case Ja:
		return fmt.Sprintf("%s %+d", in.Op, in.Offset)
	case Jeq, Jne:
		return fmt.Sprintf("%s %s, %d, %+d", in.Op, in.Dst, in.Imm, in.Offset)
	case JeqReg, JneReg, JgtReg, JgeReg, JltReg, JleReg:
		return fmt.Sprintf("%s %s, %s, %+d", in.Op, in.Dst, in.Src, in.Offset)
	case Call:
		return fmt.Sprintf("%s %d", in.Op, in.Imm)
	case Exit:
		return in.Op.String()
	default:
		return fmt.Sprintf("%s dst=%s src=%s off=%d imm=%d", in.Op, in.Dst, in.Src, in.Offset, in.Imm)
	}
}
