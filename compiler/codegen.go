// codegen.go implements funcCompiler, the per-function lowering pass. It
// implements ast.StmtVisitor and ast.ExpressionVisitor so the Accept/Visit
// dispatch from the ast package drives code generation directly, the way
// the teacher's ASTCompiler drove its stack-VM bytecode emission.
package compiler

import (
	"github.com/idlhub/holyc-bpf-compiler/ast"
)

// local records where a parameter or local variable lives in the current
// function's stack frame, and its declared type (needed for Member/Index
// element-size and offset resolution).
type local struct {
	slot int
	typ  ast.Type
}

// loopFrame tracks the backpatch state for one enclosing loop. continueTarget
// is non-nil as soon as the jump-back target is known (immediately, for a
// while loop); continuePatches collects placeholder `continue` jumps emitted
// before the target is known (inside a for loop's body, ahead of its post
// clause).
type loopFrame struct {
	continueTarget *int
	continuePatches []int
	breakPatches    []int
}

// funcCompiler lowers a single FunctionDef's body into its slice of the
// overall instruction stream. Its environment, slot cursor, and scratch
// register cursor are reset for every function, per §4.3's "environment
// mapping name -> (slot, type) cleared at each function boundary".
type funcCompiler struct {
	comp *Compiler
	fn   ast.FunctionDef

	env        map[string]local
	slotCursor int
	scratch    int

	instrs    []Instruction
	loopStack []*loopFrame
}

func newFuncCompiler(c *Compiler, fn ast.FunctionDef) *funcCompiler {
	return &funcCompiler{comp: c, fn: fn, env: map[string]local{}}
}

func (fc *funcCompiler) compile() {
	if len(fc.fn.Params) > 5 {
		panic(newError(TooManyParameters, fc.fn.Name.Start, fc.fn.Name.End,
			"function '%s' has %d parameters, maximum is 5", fc.fn.Name.Lexeme, len(fc.fn.Params)))
	}
	for i, p := range fc.fn.Params {
		slot := fc.slotCursor
		fc.env[p.Name.Lexeme] = local{slot: slot, typ: p.Type}
		fc.emit(Instruction{Op: Stxdw, Dst: R10, Src: paramReg(i), Offset: int16(-(slot + 8))})
		fc.slotCursor += p.Type.SizeBytes()
	}

	fc.lowerStmt(fc.fn.Body)

	if !endsInReturn(fc.fn.Body) {
		if !fc.fn.ReturnType.IsVoid() {
			fc.emit(Instruction{Op: MovImm, Dst: R0, Imm: 0})
		}
		fc.emit(Instruction{Op: Exit})
	}
}

func endsInReturn(block ast.BlockStmt) bool {
	if len(block.Statements) == 0 {
		return false
	}
	_, ok := block.Statements[len(block.Statements)-1].(ast.ReturnStmt)
	return ok
}

func (fc *funcCompiler) emit(in Instruction) int {
	idx := len(fc.instrs)
	fc.instrs = append(fc.instrs, in)
	return idx
}

func (fc *funcCompiler) pos() int { return len(fc.instrs) }

// patchJump rewrites instrs[idx]'s Offset field so that, per §4.3, pc <-
// pc+1+offset lands on target once the branch at idx executes.
func (fc *funcCompiler) patchJump(idx, target int) {
	fc.instrs[idx].Offset = int16(target - (idx + 1))
}

// nextScratch rotates through R6-R9, per §4.3's "scratch-register cursor in
// the range [6..9]" — intentionally naive, with no liveness tracking (see
// DESIGN.md's discussion of spec.md §9 open question 1).
func (fc *funcCompiler) nextScratch() Reg {
	r := Reg(int(R6) + fc.scratch%4)
	fc.scratch++
	return r
}

func (fc *funcCompiler) lowerStmt(s ast.Stmt) { s.Accept(fc) }

func (fc *funcCompiler) lowerExpr(e ast.Expression) Reg { return e.Accept(fc).(Reg) }

// --- ast.StmtVisitor ---

func (fc *funcCompiler) VisitVarDeclStmt(stmt ast.VarDeclStmt) any {
	slot := fc.slotCursor
	fc.env[stmt.Name.Lexeme] = local{slot: slot, typ: stmt.VarType}
	fc.slotCursor += stmt.VarType.SizeBytes()
	if stmt.Initializer != nil {
		reg := fc.lowerExpr(stmt.Initializer)
		fc.emit(Instruction{Op: Stxdw, Dst: R10, Src: reg, Offset: int16(-(slot + 8))})
	}
	return nil
}

func (fc *funcCompiler) VisitExprStmt(stmt ast.ExprStmt) any {
	fc.lowerExpr(stmt.Expr)
	return nil
}

func (fc *funcCompiler) VisitIfStmt(stmt ast.IfStmt) any {
	cond := fc.lowerExpr(stmt.Cond)
	elsePatch := fc.emit(Instruction{Op: Jeq, Dst: cond, Imm: 0})
	fc.lowerStmt(stmt.Then)
	if stmt.Else != nil {
		endPatch := fc.emit(Instruction{Op: Ja})
		fc.patchJump(elsePatch, fc.pos())
		fc.lowerStmt(stmt.Else)
		fc.patchJump(endPatch, fc.pos())
	} else {
		fc.patchJump(elsePatch, fc.pos())
	}
	return nil
}

func (fc *funcCompiler) VisitWhileStmt(stmt ast.WhileStmt) any {
	start := fc.pos()
	frame := &loopFrame{continueTarget: &start}
	fc.loopStack = append(fc.loopStack, frame)

	cond := fc.lowerExpr(stmt.Cond)
	exitPatch := fc.emit(Instruction{Op: Jeq, Dst: cond, Imm: 0})
	fc.lowerStmt(stmt.Body)
	jaIdx := fc.pos()
	fc.emit(Instruction{Op: Ja, Offset: int16(start - (jaIdx + 1))})
	end := fc.pos()
	fc.patchJump(exitPatch, end)
	for _, p := range frame.breakPatches {
		fc.patchJump(p, end)
	}

	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
	return nil
}

func (fc *funcCompiler) VisitForStmt(stmt ast.ForStmt) any {
	if stmt.Init != nil {
		fc.lowerStmt(stmt.Init)
	}
	start := fc.pos()
	frame := &loopFrame{}
	fc.loopStack = append(fc.loopStack, frame)

	var exitPatch int
	haveExit := false
	if stmt.Cond != nil {
		cond := fc.lowerExpr(stmt.Cond)
		exitPatch = fc.emit(Instruction{Op: Jeq, Dst: cond, Imm: 0})
		haveExit = true
	}
	fc.lowerStmt(stmt.Body)

	postPos := fc.pos()
	for _, p := range frame.continuePatches {
		fc.patchJump(p, postPos)
	}
	if stmt.Post != nil {
		fc.lowerExpr(stmt.Post)
	}
	jaIdx := fc.pos()
	fc.emit(Instruction{Op: Ja, Offset: int16(start - (jaIdx + 1))})
	end := fc.pos()
	if haveExit {
		fc.patchJump(exitPatch, end)
	}
	for _, p := range frame.breakPatches {
		fc.patchJump(p, end)
	}

	fc.loopStack = fc.loopStack[:len(fc.loopStack)-1]
	return nil
}

func (fc *funcCompiler) VisitReturnStmt(stmt ast.ReturnStmt) any {
	if stmt.Value != nil {
		reg := fc.lowerExpr(stmt.Value)
		if reg != R0 {
			fc.emit(Instruction{Op: MovReg, Dst: R0, Src: reg})
		}
	}
	fc.emit(Instruction{Op: Exit})
	return nil
}

func (fc *funcCompiler) VisitBreakStmt(stmt ast.BreakStmt) any {
	if len(fc.loopStack) == 0 {
		panic(newError(UnsupportedStatement, stmt.Tok.Start, stmt.Tok.End, "break outside of a loop"))
	}
	top := fc.loopStack[len(fc.loopStack)-1]
	idx := fc.emit(Instruction{Op: Ja})
	top.breakPatches = append(top.breakPatches, idx)
	return nil
}

func (fc *funcCompiler) VisitContinueStmt(stmt ast.ContinueStmt) any {
	if len(fc.loopStack) == 0 {
		panic(newError(UnsupportedStatement, stmt.Tok.Start, stmt.Tok.End, "continue outside of a loop"))
	}
	top := fc.loopStack[len(fc.loopStack)-1]
	if top.continueTarget != nil {
		idx := fc.pos()
		fc.emit(Instruction{Op: Ja, Offset: int16(*top.continueTarget - (idx + 1))})
		return nil
	}
	idx := fc.emit(Instruction{Op: Ja})
	top.continuePatches = append(top.continuePatches, idx)
	return nil
}

func (fc *funcCompiler) VisitBlockStmt(stmt ast.BlockStmt) any {
	for _, s := range stmt.Statements {
		fc.lowerStmt(s)
	}
	return nil
}
