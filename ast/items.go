// items.go contains the top-level Item AST nodes (functions, classes,
// globals, and preprocessor directives) and the Program they compose into.

package ast

import "github.com/idlhub/holyc-bpf-compiler/token"

// Param is a single function parameter: a name paired with a type.
type Param struct {
	Name token.Token
	Type Type
}

// VarDecl is a single declared variable, used for ClassDef field entries
// and GlobalVar declarations.
type VarDecl struct {
	Name token.Token
	Type Type
}

// FunctionDef represents a top-level function definition, including its
// signature and body. IsPublic mirrors the "public" modifier.
type FunctionDef struct {
	Name       token.Token
	ReturnType Type
	Params     []Param
	Body       BlockStmt
	IsPublic   bool
}

func (item FunctionDef) Accept(v ItemVisitor) any { return v.VisitFunctionDef(item) }

// ClassDef represents a class/struct definition: a name and its fields in
// declaration order. The parser does not reject duplicate field names.
type ClassDef struct {
	Name   token.Token
	Fields []VarDecl
}

func (item ClassDef) Accept(v ItemVisitor) any { return v.VisitClassDef(item) }

// GlobalVar represents a file-scope variable declaration.
type GlobalVar struct {
	Decl        VarDecl
	Initializer Expression
}

func (item GlobalVar) Accept(v ItemVisitor) any { return v.VisitGlobalVar(item) }

// Define represents a "#define NAME rest-of-line" preprocessor directive,
// passed through rather than macro-expanded.
type Define struct {
	Name  string
	Value string
	Tok   token.Token
}

func (item Define) Accept(v ItemVisitor) any { return v.VisitDefine(item) }

// Include represents a "#include ..." preprocessor directive, captured
// whole as raw text.
type Include struct {
	Raw string
	Tok token.Token
}

func (item Include) Accept(v ItemVisitor) any { return v.VisitInclude(item) }

// Program is the root AST node: an ordered sequence of top-level items.
type Program struct {
	Items []Item
}
