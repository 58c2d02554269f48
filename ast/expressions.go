// expressions.go contains all the expression AST nodes. An expression node
// always evaluates to a value.

package ast

import (
	"github.com/idlhub/holyc-bpf-compiler/token"
)

// IntLiteral represents a decimal, hex, or binary integer constant. All
// three token kinds fold into this single node; Value already holds the
// resolved uint64, so codegen never needs to know which base the source
// used.
type IntLiteral struct {
	Value uint64
	Tok   token.Token
}

func (lit IntLiteral) Accept(v ExpressionVisitor) any { return v.VisitIntLiteral(lit) }

// FloatLiteral represents a floating-point constant.
type FloatLiteral struct {
	Value float64
	Tok   token.Token
}

func (lit FloatLiteral) Accept(v ExpressionVisitor) any { return v.VisitFloatLiteral(lit) }

// StringLiteral represents a double-quoted string constant. Value holds the
// raw, unescaped source text between the quotes.
type StringLiteral struct {
	Value string
	Tok   token.Token
}

func (lit StringLiteral) Accept(v ExpressionVisitor) any { return v.VisitStringLiteral(lit) }

// CharLiteral represents a single-quoted character constant.
type CharLiteral struct {
	Value byte
	Tok   token.Token
}

func (lit CharLiteral) Accept(v ExpressionVisitor) any { return v.VisitCharLiteral(lit) }

// BoolLiteral represents the TRUE / FALSE keywords.
type BoolLiteral struct {
	Value bool
	Tok   token.Token
}

func (lit BoolLiteral) Accept(v ExpressionVisitor) any { return v.VisitBoolLiteral(lit) }

// Null represents the NULL keyword.
type Null struct {
	Tok token.Token
}

func (lit Null) Accept(v ExpressionVisitor) any { return v.VisitNull(lit) }

// Ident represents a reference to a previously declared variable,
// parameter, function, or class name.
type Ident struct {
	Name token.Token
}

func (ident Ident) Accept(v ExpressionVisitor) any { return v.VisitIdent(ident) }

// Binary represents a binary operation expression (e.g., "a + b"), including
// the compound-assign forms ("a += b"), which the parser lowers directly
// into a Binary node carrying an assignment BinaryOp rather than a separate
// node kind.
type Binary struct {
	Left  Expression
	Op    BinaryOp
	Right Expression
	Tok   token.Token
}

func (binary Binary) Accept(v ExpressionVisitor) any { return v.VisitBinary(binary) }

// Unary represents a prefix or postfix unary expression (e.g., "-a", "!a",
// "*p", "&x", "++i", "i++").
type Unary struct {
	Op      UnaryOp
	Operand Expression
	Tok     token.Token
}

func (unary Unary) Accept(v ExpressionVisitor) any { return v.VisitUnary(unary) }

// Assign represents a plain "=" assignment. The parser accepts any
// expression as Target; codegen supports only Ident targets and rejects
// anything else with InvalidAssignmentTarget.
type Assign struct {
	Target Expression
	Value  Expression
	Tok    token.Token
}

func (assign Assign) Accept(v ExpressionVisitor) any { return v.VisitAssign(assign) }

// Call represents a function call expression, e.g. "add(1, 2)".
type Call struct {
	Callee Expression
	Args   []Expression
	Tok    token.Token
}

func (call Call) Accept(v ExpressionVisitor) any { return v.VisitCall(call) }

// Index represents an array subscript expression, e.g. "buf[i]".
type Index struct {
	Target Expression
	Idx    Expression
	Tok    token.Token
}

func (index Index) Accept(v ExpressionVisitor) any { return v.VisitIndex(index) }

// Member represents a "." field access on a value, e.g. "acc.lamports".
type Member struct {
	Target Expression
	Field  token.Token
}

func (member Member) Accept(v ExpressionVisitor) any { return v.VisitMember(member) }

// Arrow represents a "->" field access through a pointer, e.g. "acc->key".
type Arrow struct {
	Target Expression
	Field  token.Token
}

func (arrow Arrow) Accept(v ExpressionVisitor) any { return v.VisitArrow(arrow) }

// Cast represents an explicit type cast, e.g. "(U64)ptr".
type Cast struct {
	Target Type
	Value  Expression
	Tok    token.Token
}

func (cast Cast) Accept(v ExpressionVisitor) any { return v.VisitCast(cast) }

// Sizeof represents "sizeof(T)". The operand is always parsed as a type:
// an identifier operand is read as a custom type name, and any other
// expression operand is a parse error.
type Sizeof struct {
	Arg Type
	Tok token.Token
}

func (sizeof Sizeof) Accept(v ExpressionVisitor) any { return v.VisitSizeof(sizeof) }
