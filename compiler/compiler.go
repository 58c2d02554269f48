// Package compiler lowers a parsed Program into a flat stream of 8-byte
// eBPF instructions, per §4.3. It implements ast.ExpressionVisitor and
// ast.StmtVisitor, mirroring the teacher's ASTCompiler visitor shape:
// errors are signaled by panicking with a SemanticError and recovered at
// the top-level Compile call, so the public contract stays error-value
// based even though the internal walk does not thread an error return
// through every Accept call.
package compiler

import (
	"fmt"

	"github.com/idlhub/holyc-bpf-compiler/ast"
	"github.com/idlhub/holyc-bpf-compiler/internal/hostabi"
)

// Options mirrors the `options` record from §6.1. OptLevel is accepted but
// ignored: no optimization passes are implemented.
type Options struct {
	EmitAsm  bool
	EmitAST  bool
	OptLevel int
	Verbose  bool
}

// classLayout is the field-offset table for one ClassDef, built once per
// compile so Member/Arrow/Sizeof lowering and the §6.4 account-layout
// contract can resolve field offsets without re-walking the class.
type classLayout struct {
	name   string
	fields []fieldInfo
	size   int
}

type fieldInfo struct {
	name   string
	offset int
	typ    ast.Type
}

func (c classLayout) field(name string) (fieldInfo, bool) {
	for _, f := range c.fields {
		if f.name == name {
			return f, true
		}
	}
	return fieldInfo{}, false
}

func buildClassLayout(def ast.ClassDef) classLayout {
	layout := classLayout{name: def.Name.Lexeme}
	offset := 0
	for _, f := range def.Fields {
		layout.fields = append(layout.fields, fieldInfo{name: f.Name.Lexeme, offset: offset, typ: f.Type})
		offset += f.Type.SizeBytes()
	}
	layout.size = offset
	return layout
}

// Compiler holds the whole-program state shared across functions: the
// name->id table §4.3's call lowering resolves against, and the class
// layouts Member/Arrow/Sizeof need.
type Compiler struct {
	opts      Options
	funcIndex map[string]int32
	funcOrder []string
	classes   map[string]classLayout
	globals   map[string]uint64
}

// Compile is the package's entry point, matching §6.1's `compile(source,
// options)` surface one level down (it takes an already-parsed Program;
// lex+parse live in their own packages).
func Compile(program ast.Program, opts Options) (out []byte, err error) {
	c := &Compiler{
		opts:      opts,
		funcIndex: map[string]int32{},
		classes:   map[string]classLayout{},
		globals:   map[string]uint64{},
	}

	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case SemanticError:
				err = v
			default:
				panic(r)
			}
		}
	}()

	var nextID int32
	for _, item := range program.Items {
		switch it := item.(type) {
		case ast.FunctionDef:
			name := it.Name.Lexeme
			c.funcIndex[name] = nextID
			c.funcOrder = append(c.funcOrder, name)
			nextID++
		case ast.ClassDef:
			c.classes[it.Name.Lexeme] = buildClassLayout(it)
		case ast.GlobalVar:
			if v, ok := foldConstant(it.Initializer); ok {
				c.globals[it.Decl.Name.Lexeme] = v
			}
		}
	}

	var instrs []Instruction
	for _, item := range program.Items {
		fn, ok := item.(ast.FunctionDef)
		if !ok {
			continue
		}
		fc := newFuncCompiler(c, fn)
		fc.compile()
		instrs = append(instrs, fc.instrs...)
		if opts.Verbose {
			fmt.Printf("compiled %s: %d instructions\n", fn.Name.Lexeme, len(fc.instrs))
		}
	}

	return Assemble(instrs), nil
}

// foldConstant evaluates an initializer expression that is itself a
// compile-time constant (an integer, bool, char, or NULL literal), for inlining
// at global-variable use sites. There is no addressable data segment in
// this program model (§6.2: "no headers, no relocations, no symbol
// table"), so a global can only be made visible to codegen by folding it;
// anything else referencing a global is UndefinedVariable.
func foldConstant(e ast.Expression) (uint64, bool) {
	switch v := e.(type) {
	case ast.IntLiteral:
		return v.Value, true
	case ast.BoolLiteral:
		if v.Value {
			return 1, true
		}
		return 0, true
	case ast.CharLiteral:
		return uint64(v.Value), true
	case ast.Null:
		return 0, true
	default:
		return 0, false
	}
}

// paramReg returns the argument register (R1..R5) for the i'th (0-based)
// call argument or function parameter.
func paramReg(i int) Reg { return Reg(int(R1) + i) }

// resolveCallTarget resolves a callee name to its `call <id>` immediate: a
// function defined in this program first, otherwise the host-runtime helper
// table (§6.3); this lets a compiled program call `log`, `memcpy`, and
// friends the same way it calls its own functions, since both use the same
// `call <id>` opcode.
func (c *Compiler) resolveCallTarget(name string) (int32, bool) {
	if id, ok := c.funcIndex[name]; ok {
		return id, true
	}
	if id, ok := hostabi.ID(name); ok {
		return id, true
	}
	return 0, false
}
