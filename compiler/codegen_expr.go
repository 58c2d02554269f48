package compiler

import (
	"math"

	"github.com/idlhub/holyc-bpf-compiler/ast"
)

// loadUint64 materializes a compile-time-known 64-bit constant into a fresh
// scratch register. Values that fit a signed 32-bit immediate load in one
// MovImm; wider values need the three-instruction mov/lsh/or idiom §4.3
// describes for 64-bit literals, since every immediate field in the
// instruction encoding is only 32 bits wide.
func (fc *funcCompiler) loadUint64(val uint64) Reg {
	reg := fc.nextScratch()
	if val <= math.MaxInt32 {
		fc.emit(Instruction{Op: MovImm, Dst: reg, Imm: int32(val)})
		return reg
	}
	hi := int32(val >> 32)
	lo := int32(val & 0xffffffff)
	fc.emit(Instruction{Op: MovImm, Dst: reg, Imm: hi})
	fc.emit(Instruction{Op: LshImm, Dst: reg, Imm: 32})
	fc.emit(Instruction{Op: OrImm, Dst: reg, Imm: lo})
	return reg
}

func (fc *funcCompiler) VisitIntLiteral(lit ast.IntLiteral) any  { return fc.loadUint64(lit.Value) }
func (fc *funcCompiler) VisitCharLiteral(lit ast.CharLiteral) any {
	return fc.loadUint64(uint64(lit.Value))
}

func (fc *funcCompiler) VisitBoolLiteral(lit ast.BoolLiteral) any {
	if lit.Value {
		return fc.loadUint64(1)
	}
	return fc.loadUint64(0)
}

func (fc *funcCompiler) VisitNull(lit ast.Null) any { return fc.loadUint64(0) }

func (fc *funcCompiler) VisitFloatLiteral(lit ast.FloatLiteral) any {
	panic(newError(UnsupportedExpression, lit.Tok.Start, lit.Tok.End,
		"floating-point values have no register representation in this target"))
}

func (fc *funcCompiler) VisitStringLiteral(lit ast.StringLiteral) any {
	panic(newError(UnsupportedExpression, lit.Tok.Start, lit.Tok.End,
		"string constants require a data segment, which this program model does not have"))
}

func (fc *funcCompiler) VisitIdent(ident ast.Ident) any {
	name := ident.Name.Lexeme
	if loc, ok := fc.env[name]; ok {
		reg := fc.nextScratch()
		fc.emit(Instruction{Op: Ldxdw, Dst: reg, Src: R10, Offset: int16(-(loc.slot + 8))})
		return reg
	}
	if v, ok := fc.comp.globals[name]; ok {
		return fc.loadUint64(v)
	}
	panic(newError(UndefinedVariable, ident.Name.Start, ident.Name.End, "undefined variable '%s'", name))
}

var arithOpcodes = map[ast.BinaryOp]Opcode{
	ast.Add:    AddReg,
	ast.Sub:    SubReg,
	ast.Mul:    MulReg,
	ast.Div:    DivReg,
	ast.Mod:    ModReg,
	ast.BitAnd: AndReg,
	ast.BitOr:  OrReg,
	ast.BitXor: XorReg,
	ast.Shl:    LshReg,
	ast.Shr:    RshReg,
}

var compareOpcodes = map[ast.BinaryOp]Opcode{
	ast.Eq: JeqReg,
	ast.Ne: JneReg,
	ast.Gt: JgtReg,
	ast.Ge: JgeReg,
	ast.Lt: JltReg,
	ast.Le: JleReg,
}

func (fc *funcCompiler) VisitBinary(b ast.Binary) any {
	switch {
	case b.Op.IsAssignment():
		return fc.lowerCompoundAssign(b)
	case b.Op.IsComparison():
		return fc.lowerComparison(b)
	case b.Op == ast.LogicalAnd || b.Op == ast.LogicalOr:
		return fc.lowerLogical(b)
	}

	l := fc.lowerExpr(b.Left)
	r := fc.lowerExpr(b.Right)
	op, ok := arithOpcodes[b.Op]
	if !ok {
		panic(newError(UnsupportedExpression, b.Tok.Start, b.Tok.End, "unsupported binary operator '%s'", b.Op))
	}
	fc.emit(Instruction{Op: op, Dst: l, Src: r})
	return l
}

// lowerCompoundAssign lowers "x op= y" as load-current, apply, store-back,
// returning the register holding the new value (so "a = (b += 1)" chains).
func (fc *funcCompiler) lowerCompoundAssign(b ast.Binary) Reg {
	ident, ok := b.Left.(ast.Ident)
	if !ok {
		panic(newError(InvalidAssignmentTarget, b.Tok.Start, b.Tok.End, "compound assignment target must be a variable"))
	}
	loc, ok := fc.env[ident.Name.Lexeme]
	if !ok {
		panic(newError(UndefinedVariable, ident.Name.Start, ident.Name.End, "undefined variable '%s'", ident.Name.Lexeme))
	}
	rhs := fc.lowerExpr(b.Right)
	cur := fc.nextScratch()
	fc.emit(Instruction{Op: Ldxdw, Dst: cur, Src: R10, Offset: int16(-(loc.slot + 8))})
	op, ok := arithOpcodes[b.Op.UnderlyingOp()]
	if !ok {
		panic(newError(UnsupportedExpression, b.Tok.Start, b.Tok.End, "unsupported compound assignment '%s'", b.Op))
	}
	fc.emit(Instruction{Op: op, Dst: cur, Src: rhs})
	fc.emit(Instruction{Op: Stxdw, Dst: R10, Src: cur, Offset: int16(-(loc.slot + 8))})
	return cur
}

// lowerComparison materializes a register-register comparison's 0/1 result
// using the JMP-class extension opcodes (see code.go), since none of
// spec's literal opcodes compute a comparison as a value rather than a
// branch.
func (fc *funcCompiler) lowerComparison(b ast.Binary) Reg {
	l := fc.lowerExpr(b.Left)
	r := fc.lowerExpr(b.Right)
	op, ok := compareOpcodes[b.Op]
	if !ok {
		panic(newError(UnsupportedExpression, b.Tok.Start, b.Tok.End, "unsupported comparison operator '%s'", b.Op))
	}
	res := fc.nextScratch()
	fc.emit(Instruction{Op: MovImm, Dst: res, Imm: 0})
	jTrue := fc.emit(Instruction{Op: op, Dst: l, Src: r})
	jEnd := fc.emit(Instruction{Op: Ja})
	fc.patchJump(jTrue, fc.pos())
	fc.emit(Instruction{Op: MovImm, Dst: res, Imm: 1})
	fc.patchJump(jEnd, fc.pos())
	return res
}

// lowerLogical short-circuits && and || using the imm-0 test Jeq already
// provides, plus Jne for the "is truthy" side of ||.
func (fc *funcCompiler) lowerLogical(b ast.Binary) Reg {
	res := fc.nextScratch()
	l := fc.lowerExpr(b.Left)
	switch b.Op {
	case ast.LogicalAnd:
		shortCircuit := fc.emit(Instruction{Op: Jeq, Dst: l, Imm: 0})
		r := fc.lowerExpr(b.Right)
		alsoFalse := fc.emit(Instruction{Op: Jeq, Dst: r, Imm: 0})
		fc.emit(Instruction{Op: MovImm, Dst: res, Imm: 1})
		end := fc.emit(Instruction{Op: Ja})
		fc.patchJump(shortCircuit, fc.pos())
		fc.patchJump(alsoFalse, fc.pos())
		fc.emit(Instruction{Op: MovImm, Dst: res, Imm: 0})
		fc.patchJump(end, fc.pos())
	case ast.LogicalOr:
		shortCircuit := fc.emit(Instruction{Op: Jne, Dst: l, Imm: 0})
		r := fc.lowerExpr(b.Right)
		alsoTrue := fc.emit(Instruction{Op: Jne, Dst: r, Imm: 0})
		fc.emit(Instruction{Op: MovImm, Dst: res, Imm: 0})
		end := fc.emit(Instruction{Op: Ja})
		fc.patchJump(shortCircuit, fc.pos())
		fc.patchJump(alsoTrue, fc.pos())
		fc.emit(Instruction{Op: MovImm, Dst: res, Imm: 1})
		fc.patchJump(end, fc.pos())
	}
	return res
}

func (fc *funcCompiler) VisitUnary(u ast.Unary) any {
	switch u.Op {
	case ast.Neg:
		r := fc.lowerExpr(u.Operand)
		tmp := fc.nextScratch()
		fc.emit(Instruction{Op: MovImm, Dst: tmp, Imm: 0})
		fc.emit(Instruction{Op: SubReg, Dst: tmp, Src: r})
		return tmp
	case ast.Not:
		r := fc.lowerExpr(u.Operand)
		res := fc.nextScratch()
		jz := fc.emit(Instruction{Op: Jeq, Dst: r, Imm: 0})
		fc.emit(Instruction{Op: MovImm, Dst: res, Imm: 0})
		end := fc.emit(Instruction{Op: Ja})
		fc.patchJump(jz, fc.pos())
		fc.emit(Instruction{Op: MovImm, Dst: res, Imm: 1})
		fc.patchJump(end, fc.pos())
		return res
	case ast.BitNot:
		r := fc.lowerExpr(u.Operand)
		mask := fc.nextScratch()
		fc.emit(Instruction{Op: MovImm, Dst: mask, Imm: -1})
		fc.emit(Instruction{Op: XorReg, Dst: r, Src: mask})
		return r
	case ast.Deref:
		p := fc.lowerExpr(u.Operand)
		res := fc.nextScratch()
		fc.emit(Instruction{Op: Ldxdw, Dst: res, Src: p, Offset: 0})
		return res
	case ast.AddressOf:
		ident, ok := u.Operand.(ast.Ident)
		if !ok {
			panic(newError(UnsupportedExpression, u.Tok.Start, u.Tok.End, "address-of requires a named variable"))
		}
		loc, ok := fc.env[ident.Name.Lexeme]
		if !ok {
			panic(newError(UndefinedVariable, ident.Name.Start, ident.Name.End, "undefined variable '%s'", ident.Name.Lexeme))
		}
		reg := fc.nextScratch()
		fc.emit(Instruction{Op: MovReg, Dst: reg, Src: R10})
		fc.emit(Instruction{Op: AddImm, Dst: reg, Imm: int32(-(loc.slot + 8))})
		return reg
	case ast.PreIncrement, ast.PreDecrement, ast.PostIncrement, ast.PostDecrement:
		return fc.lowerIncDec(u)
	default:
		panic(newError(UnsupportedExpression, u.Tok.Start, u.Tok.End, "unsupported unary operator '%s'", u.Op))
	}
}

func (fc *funcCompiler) lowerIncDec(u ast.Unary) Reg {
	ident, ok := u.Operand.(ast.Ident)
	if !ok {
		panic(newError(InvalidAssignmentTarget, u.Tok.Start, u.Tok.End, "increment/decrement target must be a variable"))
	}
	loc, ok := fc.env[ident.Name.Lexeme]
	if !ok {
		panic(newError(UndefinedVariable, ident.Name.Start, ident.Name.End, "undefined variable '%s'", ident.Name.Lexeme))
	}
	delta := int32(1)
	if u.Op == ast.PreDecrement || u.Op == ast.PostDecrement {
		delta = -1
	}
	off := int16(-(loc.slot + 8))
	switch u.Op {
	case ast.PreIncrement, ast.PreDecrement:
		reg := fc.nextScratch()
		fc.emit(Instruction{Op: Ldxdw, Dst: reg, Src: R10, Offset: off})
		fc.emit(Instruction{Op: AddImm, Dst: reg, Imm: delta})
		fc.emit(Instruction{Op: Stxdw, Dst: R10, Src: reg, Offset: off})
		return reg
	default:
		old := fc.nextScratch()
		fc.emit(Instruction{Op: Ldxdw, Dst: old, Src: R10, Offset: off})
		updated := fc.nextScratch()
		fc.emit(Instruction{Op: MovReg, Dst: updated, Src: old})
		fc.emit(Instruction{Op: AddImm, Dst: updated, Imm: delta})
		fc.emit(Instruction{Op: Stxdw, Dst: R10, Src: updated, Offset: off})
		return old
	}
}

func (fc *funcCompiler) VisitAssign(a ast.Assign) any {
	ident, ok := a.Target.(ast.Ident)
	if !ok {
		panic(newError(InvalidAssignmentTarget, a.Tok.Start, a.Tok.End, "assignment target must be a variable"))
	}
	loc, ok := fc.env[ident.Name.Lexeme]
	if !ok {
		panic(newError(UndefinedVariable, ident.Name.Start, ident.Name.End, "undefined variable '%s'", ident.Name.Lexeme))
	}
	reg := fc.lowerExpr(a.Value)
	fc.emit(Instruction{Op: Stxdw, Dst: R10, Src: reg, Offset: int16(-(loc.slot + 8))})
	return reg
}

func (fc *funcCompiler) VisitCall(call ast.Call) any {
	ident, ok := call.Callee.(ast.Ident)
	if !ok {
		panic(newError(UndefinedFunction, call.Tok.Start, call.Tok.End, "call target must be a named function"))
	}
	if len(call.Args) > 5 {
		panic(newError(TooManyArguments, call.Tok.Start, call.Tok.End,
			"call to '%s' has %d arguments, maximum is 5", ident.Name.Lexeme, len(call.Args)))
	}
	id, ok := fc.comp.resolveCallTarget(ident.Name.Lexeme)
	if !ok {
		panic(newError(UndefinedFunction, ident.Name.Start, ident.Name.End, "undefined function '%s'", ident.Name.Lexeme))
	}
	for i, arg := range call.Args {
		reg := fc.lowerExpr(arg)
		want := paramReg(i)
		if reg != want {
			fc.emit(Instruction{Op: MovReg, Dst: want, Src: reg})
		}
	}
	fc.emit(Instruction{Op: Call, Imm: id})
	return R0
}

// inferType recovers the static type of an lvalue-shaped expression chain
// (Ident, Member, Arrow, Index, *ptr) well enough to resolve field offsets
// and element sizes. There is no general type checker in this pipeline
// (§9 open questions), so anything outside this chain reports unknown.
func (fc *funcCompiler) inferType(e ast.Expression) (ast.Type, bool) {
	switch v := e.(type) {
	case ast.Ident:
		if loc, ok := fc.env[v.Name.Lexeme]; ok {
			return loc.typ, true
		}
		return ast.Type{}, false
	case ast.Member:
		return fc.inferFieldType(v.Target, v.Field.Lexeme)
	case ast.Arrow:
		return fc.inferFieldType(v.Target, v.Field.Lexeme)
	case ast.Index:
		baseType, ok := fc.inferType(v.Target)
		if !ok {
			return ast.Type{}, false
		}
		if baseType.Kind == ast.KindArray || baseType.Kind == ast.KindPointer {
			return *baseType.Elem, true
		}
		return ast.Type{}, false
	case ast.Unary:
		if v.Op == ast.Deref {
			baseType, ok := fc.inferType(v.Operand)
			if ok && baseType.Kind == ast.KindPointer {
				return *baseType.Elem, true
			}
		}
		return ast.Type{}, false
	default:
		return ast.Type{}, false
	}
}

func (fc *funcCompiler) inferFieldType(target ast.Expression, field string) (ast.Type, bool) {
	baseType, ok := fc.inferType(target)
	if !ok {
		return ast.Type{}, false
	}
	cls, ok := fc.classOf(baseType)
	if !ok {
		return ast.Type{}, false
	}
	f, ok := cls.field(field)
	if !ok {
		return ast.Type{}, false
	}
	return f.typ, true
}

func (fc *funcCompiler) classOf(t ast.Type) (classLayout, bool) {
	var name string
	switch t.Kind {
	case ast.KindCustom:
		name = t.Name
	case ast.KindPointer:
		if t.Elem.Kind != ast.KindCustom {
			return classLayout{}, false
		}
		name = t.Elem.Name
	default:
		return classLayout{}, false
	}
	cls, ok := fc.comp.classes[name]
	return cls, ok
}

func (fc *funcCompiler) lowerFieldAccess(target ast.Expression, field string) Reg {
	baseType, ok := fc.inferType(target)
	if !ok {
		panic(newError(UnsupportedExpression, 0, 0, "cannot determine the type of this field access's target"))
	}
	cls, ok := fc.classOf(baseType)
	if !ok {
		panic(newError(UnsupportedExpression, 0, 0, "field access target is not a class or class pointer"))
	}
	f, ok := cls.field(field)
	if !ok {
		panic(newError(UnsupportedExpression, 0, 0, "class '%s' has no field '%s'", cls.name, field))
	}
	base := fc.lowerExpr(target)
	res := fc.nextScratch()
	fc.emit(Instruction{Op: Ldxdw, Dst: res, Src: base, Offset: int16(f.offset)})
	return res
}

func (fc *funcCompiler) VisitMember(m ast.Member) any {
	return fc.lowerFieldAccess(m.Target, m.Field.Lexeme)
}

func (fc *funcCompiler) VisitArrow(a ast.Arrow) any {
	return fc.lowerFieldAccess(a.Target, a.Field.Lexeme)
}

func (fc *funcCompiler) VisitIndex(idx ast.Index) any {
	baseType, ok := fc.inferType(idx.Target)
	if !ok {
		panic(newError(UnsupportedExpression, idx.Tok.Start, idx.Tok.End, "cannot determine the element type of this index expression"))
	}
	var elem ast.Type
	switch baseType.Kind {
	case ast.KindArray, ast.KindPointer:
		elem = *baseType.Elem
	default:
		panic(newError(UnsupportedExpression, idx.Tok.Start, idx.Tok.End, "indexed value is not an array or pointer"))
	}
	elemSize := elem.SizeBytes()
	base := fc.lowerExpr(idx.Target)

	if lit, ok := idx.Idx.(ast.IntLiteral); ok {
		res := fc.nextScratch()
		fc.emit(Instruction{Op: Ldxdw, Dst: res, Src: base, Offset: int16(int(lit.Value) * elemSize)})
		return res
	}

	iReg := fc.lowerExpr(idx.Idx)
	scale := fc.nextScratch()
	fc.emit(Instruction{Op: MovImm, Dst: scale, Imm: int32(elemSize)})
	fc.emit(Instruction{Op: MulReg, Dst: iReg, Src: scale})
	fc.emit(Instruction{Op: AddReg, Dst: base, Src: iReg})
	res := fc.nextScratch()
	fc.emit(Instruction{Op: Ldxdw, Dst: res, Src: base, Offset: 0})
	return res
}

func (fc *funcCompiler) VisitCast(c ast.Cast) any {
	reg := fc.lowerExpr(c.Value)
	if c.Target.IsInteger() && c.Target.SizeBytes() < 8 {
		mask := int32((uint64(1) << (uint(c.Target.SizeBytes()) * 8)) - 1)
		maskReg := fc.nextScratch()
		fc.emit(Instruction{Op: MovImm, Dst: maskReg, Imm: mask})
		fc.emit(Instruction{Op: AndReg, Dst: reg, Src: maskReg})
	}
	return reg
}

func (fc *funcCompiler) resolveSize(t ast.Type) int {
	if t.Kind == ast.KindCustom {
		if cls, ok := fc.comp.classes[t.Name]; ok {
			return cls.size
		}
	}
	return t.SizeBytes()
}

func (fc *funcCompiler) VisitSizeof(s ast.Sizeof) any {
	return fc.loadUint64(uint64(fc.resolveSize(s.Arg)))
}
