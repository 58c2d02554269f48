package compiler

import (
	"testing"

	"github.com/idlhub/holyc-bpf-compiler/ast"
	"github.com/idlhub/holyc-bpf-compiler/lexer"
	"github.com/idlhub/holyc-bpf-compiler/parser"
)

func compileSource(t *testing.T, src string) []byte {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() raised an error: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parser.Parse() raised an error: %v", err)
	}
	out, err := Compile(program, Options{})
	if err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}
	return out
}

func decodeAll(code []byte) []Instruction {
	out := make([]Instruction, len(code)/8)
	for i := range out {
		out[i] = Decode(code[i*8 : i*8+8])
	}
	return out
}

func containsOp(instrs []Instruction, op Opcode) bool {
	for _, in := range instrs {
		if in.Op == op {
			return true
		}
	}
	return false
}

func indexOfOp(instrs []Instruction, op Opcode) int {
	for i, in := range instrs {
		if in.Op == op {
			return i
		}
	}
	return -1
}

// TestIdentityFunction grounds spec.md §8 end-to-end scenario 1: a function
// that stores its single parameter to its stack slot and returns it
// unchanged compiles to a short stxdw/ldxdw/exit skeleton.
func TestIdentityFunction(t *testing.T) {
	out := compileSource(t, "U64 id(U64 a) { return a; }")
	if len(out)%8 != 0 {
		t.Fatalf("length %d is not a multiple of 8", len(out))
	}
	if len(out) > 32 {
		t.Fatalf("length %d exceeds the expected 32-byte budget", len(out))
	}
	instrs := decodeAll(out)
	if instrs[0].Op != Stxdw || instrs[0].Dst != R10 || instrs[0].Src != R1 || instrs[0].Offset != -8 {
		t.Fatalf("first instruction = %+v, want stxdw R10, R1, -8", instrs[0])
	}
	if instrs[1].Op != Ldxdw || instrs[1].Src != R10 || instrs[1].Offset != -8 {
		t.Fatalf("second instruction = %+v, want ldxdw _, R10, -8", instrs[1])
	}
	last := instrs[len(instrs)-1]
	if last.Op != Exit {
		t.Fatalf("last instruction = %+v, want exit", last)
	}
}

// TestXorDeobfuscateEmitsXorReg grounds scenario 2.
func TestXorDeobfuscateEmitsXorReg(t *testing.T) {
	out := compileSource(t, "U64 deobf(U64 v, U64 k) { return v ^ k; }")
	if !containsOp(decodeAll(out), XorReg) {
		t.Fatalf("expected an XorReg (%#02x) instruction in the output", byte(XorReg))
	}
}

// TestAddFunctionEmitsAddRegBeforeExit grounds scenario 3.
func TestAddFunctionEmitsAddRegBeforeExit(t *testing.T) {
	out := compileSource(t, "U64 add(U64 a, U64 b) { return a + b; }")
	instrs := decodeAll(out)
	addIdx := indexOfOp(instrs, AddReg)
	exitIdx := indexOfOp(instrs, Exit)
	if addIdx < 0 {
		t.Fatalf("expected an AddReg instruction")
	}
	if exitIdx < 0 || addIdx >= exitIdx {
		t.Fatalf("expected AddReg (at %d) before the first exit (at %d)", addIdx, exitIdx)
	}
}

// TestIfElseSkeletonHasSingleJeqIntoElse grounds scenario 4: exactly one
// jeq, branching into the else branch, with the then branch ending in exit.
func TestIfElseSkeletonHasSingleJeqIntoElse(t *testing.T) {
	out := compileSource(t, "U64 f(U64 a) { if (a) { return 1; } else { return 2; } }")
	instrs := decodeAll(out)

	jeqCount := 0
	var jeqIdx int
	for i, in := range instrs {
		if in.Op == Jeq {
			jeqCount++
			jeqIdx = i
		}
	}
	if jeqCount != 1 {
		t.Fatalf("expected exactly one jeq, got %d", jeqCount)
	}

	target := jeqIdx + 1 + int(instrs[jeqIdx].Offset)
	if target < 0 || target > len(instrs) {
		t.Fatalf("jeq target %d out of bounds (len=%d)", target, len(instrs))
	}
	// The branch must land on an instruction reachable only via the else
	// path: everything between the jeq and its target belongs to "then",
	// which must itself end in exit (the then-branch's own Return).
	foundExitBeforeTarget := false
	for i := jeqIdx + 1; i < target; i++ {
		if instrs[i].Op == Exit {
			foundExitBeforeTarget = true
		}
	}
	if !foundExitBeforeTarget {
		t.Fatalf("expected the then branch (before index %d) to end in exit", target)
	}
}

// TestHexLiteralImmediateRoundTrips grounds scenario 5.
func TestHexLiteralImmediateRoundTrips(t *testing.T) {
	out := compileSource(t, "U64 k() { return 0xdeadbeef; }")
	instrs := decodeAll(out)
	idx := indexOfOp(instrs, MovImm)
	if idx < 0 {
		t.Fatalf("expected a MovImm instruction")
	}
	if uint32(instrs[idx].Imm) != 0xdeadbeef {
		t.Fatalf("MovImm immediate = %#x, want %#x", uint32(instrs[idx].Imm), uint32(0xdeadbeef))
	}
}

// TestClassLayoutFieldsInDeclarationOrder grounds scenario 6: field offsets
// assigned in source order, and sizeof agreeing with the sum of field sizes.
func TestClassLayoutFieldsInDeclarationOrder(t *testing.T) {
	toks, err := lexer.New("class Point { U64 x; U64 y; };").Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() error: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parser.Parse() error: %v", err)
	}
	class := program.Items[0].(ast.ClassDef)
	if class.Fields[0].Name.Lexeme != "x" || class.Fields[1].Name.Lexeme != "y" {
		t.Fatalf("expected fields in order x, y; got %v", class.Fields)
	}
	layout := buildClassLayout(class)
	if layout.size != 16 {
		t.Fatalf("sizeof(Point) = %d, want 16", layout.size)
	}
	xField, ok := layout.field("x")
	if !ok || xField.offset != 0 {
		t.Fatalf("field x = %+v, want offset 0", xField)
	}
	yField, ok := layout.field("y")
	if !ok || yField.offset != 8 {
		t.Fatalf("field y = %+v, want offset 8", yField)
	}
}

// TestZeroParameterFunctionHasNoStackPrologue covers the boundary behavior
// "function with 0 parameters: compiles; no store-to-stack prologue".
func TestZeroParameterFunctionHasNoStackPrologue(t *testing.T) {
	out := compileSource(t, "U64 f() { return 1; }")
	instrs := decodeAll(out)
	if instrs[0].Op == Stxdw {
		t.Fatalf("expected no stack-store prologue for a 0-parameter function, got %+v first", instrs[0])
	}
}

// TestFiveParametersCompileSixFails covers the boundary behavior "5
// parameters compiles; 6 fails with TooManyParameters".
func TestFiveParametersCompileSixFails(t *testing.T) {
	five := "U64 f(U64 a, U64 b, U64 c, U64 d, U64 e) { return a; }"
	if out := compileSource(t, five); len(out) == 0 {
		t.Fatalf("expected a non-empty compile of a 5-parameter function")
	}

	toks, err := lexer.New("U64 f(U64 a, U64 b, U64 c, U64 d, U64 e, U64 g) { return a; }").Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() error: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parser.Parse() error: %v", err)
	}
	_, err = Compile(program, Options{})
	semErr, ok := err.(SemanticError)
	if !ok {
		t.Fatalf("expected SemanticError, got %T (%v)", err, err)
	}
	if semErr.Kind != TooManyParameters {
		t.Fatalf("expected TooManyParameters, got %v", semErr.Kind)
	}
}

// TestEmptyBodyNonVoidReturnMaterializesZero covers "empty function body
// with non-void return: emits Mov64Imm R0, 0; exit".
func TestEmptyBodyNonVoidReturnMaterializesZero(t *testing.T) {
	out := compileSource(t, "U64 f() { }")
	instrs := decodeAll(out)
	if len(instrs) != 2 {
		t.Fatalf("expected exactly 2 instructions, got %d", len(instrs))
	}
	if instrs[0].Op != MovImm || instrs[0].Dst != R0 || instrs[0].Imm != 0 {
		t.Fatalf("first instruction = %+v, want mov64 R0, 0", instrs[0])
	}
	if instrs[1].Op != Exit {
		t.Fatalf("second instruction = %+v, want exit", instrs[1])
	}
}

// TestWhileZeroStillEmitsBody covers "while(0) { ... } : body is still
// emitted; exit-branch skips it".
func TestWhileZeroStillEmitsBody(t *testing.T) {
	out := compileSource(t, "U0 f() { U64 a; while (0) { a = 1; } }")
	instrs := decodeAll(out)
	if !containsOp(instrs, Stxdw) {
		t.Fatalf("expected the loop body's assignment to still be emitted")
	}
	jeqIdx := indexOfOp(instrs, Jeq)
	if jeqIdx < 0 {
		t.Fatalf("expected a jeq guarding the loop entry")
	}
	target := jeqIdx + 1 + int(instrs[jeqIdx].Offset)
	if target <= jeqIdx {
		t.Fatalf("expected the while-guard to jump forward, got target %d from %d", target, jeqIdx)
	}
}

// TestEveryFunctionEndsInExit is a broader sweep of the "every emitted
// function ends with exit" invariant across several shapes.
func TestEveryFunctionEndsInExit(t *testing.T) {
	sources := []string{
		"U64 f() { return 1; }",
		"U0 f() { }",
		"U64 f(U64 a) { if (a) { return 1; } return 0; }",
		"U0 f(U64 n) { while (n) { n = n - 1; } }",
	}
	for _, src := range sources {
		out := compileSource(t, src)
		instrs := decodeAll(out)
		if len(instrs) == 0 {
			t.Fatalf("%q: expected at least one instruction", src)
		}
		if instrs[len(instrs)-1].Op != Exit {
			t.Errorf("%q: last instruction = %+v, want exit", src, instrs[len(instrs)-1])
		}
	}
}

// TestEveryBranchOffsetStaysInBounds sweeps the branch-bound invariant
// "0 <= i+1+offset <= instruction_count" over a program exercising every
// branch-emitting construct.
func TestEveryBranchOffsetStaysInBounds(t *testing.T) {
	src := `
		U64 f(U64 a, U64 b) {
			U64 total;
			total = 0;
			if (a) {
				total = total + 1;
			} else {
				total = total + 2;
			}
			while (b) {
				b = b - 1;
				if (b == 5) {
					break;
				}
				continue;
			}
			return total;
		}
	`
	out := compileSource(t, src)
	instrs := decodeAll(out)
	for i, in := range instrs {
		switch in.Op {
		case Ja, Jeq, Jne, JeqReg, JneReg, JgtReg, JgeReg, JltReg, JleReg:
			target := i + 1 + int(in.Offset)
			if target < 0 || target > len(instrs) {
				t.Errorf("instruction %d (%+v) branches to %d, outside [0, %d]", i, in, target, len(instrs))
			}
		}
	}
}

// TestEveryRegisterFieldInRange sweeps the "every register field is in
// 0..=10" invariant.
func TestEveryRegisterFieldInRange(t *testing.T) {
	src := `
		class Point { U64 x; U64 y; };
		U64 sum(Point *p) {
			U64 total;
			total = p->x + p->y;
			return total;
		}
	`
	out := compileSource(t, src)
	for _, in := range decodeAll(out) {
		if in.Dst > R10 {
			t.Errorf("Dst register %d out of range", in.Dst)
		}
		if in.Src > R10 {
			t.Errorf("Src register %d out of range", in.Src)
		}
	}
}

// TestLargeLiteralHiLoEncodingRoundTrips grounds the large-literal
// round-trip law: (hi << 32) | lo == n for a literal too wide for a single
// 32-bit immediate.
func TestLargeLiteralHiLoEncodingRoundTrips(t *testing.T) {
	const n uint64 = 0x1_0000_0001
	out := compileSource(t, "U64 f() { return 4294967297; }") // 0x1_0000_0001
	instrs := decodeAll(out)

	movIdx := indexOfOp(instrs, MovImm)
	if movIdx < 0 || movIdx+2 >= len(instrs) {
		t.Fatalf("expected a mov/lsh/or large-literal sequence, got %+v", instrs)
	}
	if instrs[movIdx+1].Op != LshImm || instrs[movIdx+1].Imm != 32 {
		t.Fatalf("expected LshImm 32 following the hi load, got %+v", instrs[movIdx+1])
	}
	if instrs[movIdx+2].Op != OrImm {
		t.Fatalf("expected OrImm following the shift, got %+v", instrs[movIdx+2])
	}

	hi := uint64(uint32(instrs[movIdx].Imm))
	lo := uint64(uint32(instrs[movIdx+2].Imm))
	if (hi<<32)|lo != n {
		t.Fatalf("(hi<<32)|lo = %#x, want %#x", (hi<<32)|lo, n)
	}
}

// TestUndefinedVariableIsSemanticError covers §7's "undefined variable"
// taxonomy entry.
func TestUndefinedVariableIsSemanticError(t *testing.T) {
	toks, err := lexer.New("U64 f() { return missing; }").Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() error: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parser.Parse() error: %v", err)
	}
	_, err = Compile(program, Options{})
	semErr, ok := err.(SemanticError)
	if !ok {
		t.Fatalf("expected SemanticError, got %T", err)
	}
	if semErr.Kind != UndefinedVariable {
		t.Fatalf("expected UndefinedVariable, got %v", semErr.Kind)
	}
}

// TestCallToUndefinedFunctionIsSemanticError covers the "undefined
// function" taxonomy entry.
func TestCallToUndefinedFunctionIsSemanticError(t *testing.T) {
	toks, err := lexer.New("U64 f() { return nosuch(1); }").Scan()
	if err != nil {
		t.Fatalf("lexer.Scan() error: %v", err)
	}
	program, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("parser.Parse() error: %v", err)
	}
	_, err = Compile(program, Options{})
	semErr, ok := err.(SemanticError)
	if !ok {
		t.Fatalf("expected SemanticError, got %T", err)
	}
	if semErr.Kind != UndefinedFunction {
		t.Fatalf("expected UndefinedFunction, got %v", semErr.Kind)
	}
}

// TestCallResolvesHostHelperByName grounds §6.3: a call to a recognized
// helper name (not defined in-program) resolves to its host-ABI id rather
// than failing as undefined.
func TestCallResolvesHostHelperByName(t *testing.T) {
	out := compileSource(t, "U64 f(U64 ptr, U64 len) { return log(ptr, len); }")
	instrs := decodeAll(out)
	idx := indexOfOp(instrs, Call)
	if idx < 0 {
		t.Fatalf("expected a call instruction")
	}
	if instrs[idx].Imm != 1 {
		t.Fatalf("call immediate = %d, want 1 (log's helper id)", instrs[idx].Imm)
	}
}

// TestCompileIsDeterministic grounds "codegen is deterministic: same AST
// => byte-identical bytecode".
func TestCompileIsDeterministic(t *testing.T) {
	src := "U64 add(U64 a, U64 b) { return a + b; }"
	first := compileSource(t, src)
	second := compileSource(t, src)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("byte %d differs: %#02x vs %#02x", i, first[i], second[i])
		}
	}
}
