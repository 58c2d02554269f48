// interfaces.go contains all visitor interfaces that any code traversing
// item, statement, and expression AST nodes must implement, and the base
// interfaces that every node in those three families must satisfy.

package ast

// ExpressionVisitor is the interface for operating on all Expression AST
// nodes. Any type that wants to perform an operation on expressions (code
// generation, an AST printer) must implement this interface. Each Visit
// method corresponds to exactly one Expr variant from §3.2.
type ExpressionVisitor interface {
	VisitIntLiteral(lit IntLiteral) any
	VisitFloatLiteral(lit FloatLiteral) any
	VisitStringLiteral(lit StringLiteral) any
	VisitCharLiteral(lit CharLiteral) any
	VisitBoolLiteral(lit BoolLiteral) any
	VisitNull(lit Null) any
	VisitIdent(ident Ident) any
	VisitBinary(binary Binary) any
	VisitUnary(unary Unary) any
	VisitAssign(assign Assign) any
	VisitCall(call Call) any
	VisitIndex(index Index) any
	VisitMember(member Member) any
	VisitArrow(arrow Arrow) any
	VisitCast(cast Cast) any
	VisitSizeof(sizeof Sizeof) any
}

// StmtVisitor is the interface for operating on all Stmt AST nodes. Like
// ExpressionVisitor, it defines one Visit method per statement variant.
type StmtVisitor interface {
	VisitVarDeclStmt(stmt VarDeclStmt) any
	VisitExprStmt(stmt ExprStmt) any
	VisitIfStmt(stmt IfStmt) any
	VisitWhileStmt(stmt WhileStmt) any
	VisitForStmt(stmt ForStmt) any
	VisitReturnStmt(stmt ReturnStmt) any
	VisitBreakStmt(stmt BreakStmt) any
	VisitContinueStmt(stmt ContinueStmt) any
	VisitBlockStmt(stmt BlockStmt) any
}

// ItemVisitor is the interface for operating on top-level Item nodes.
type ItemVisitor interface {
	VisitFunctionDef(item FunctionDef) any
	VisitClassDef(item ClassDef) any
	VisitGlobalVar(item GlobalVar) any
	VisitDefine(item Define) any
	VisitInclude(item Include) any
}

// Expression is the core interface for all expression nodes. The Accept
// method dispatches to the matching Visit method without the node needing
// to know what the visitor does with it.
type Expression interface {
	Accept(v ExpressionVisitor) any
}

// Stmt is the base interface for all statement nodes.
type Stmt interface {
	Accept(v StmtVisitor) any
}

// Item is the base interface for all top-level items (functions, classes,
// globals, and preprocessor directives).
type Item interface {
	Accept(v ItemVisitor) any
}
