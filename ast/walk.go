// walk.go implements a generic, depth-first traversal over a Program.
// It supplements the Accept/Visitor pattern in interfaces.go with a
// lighter-weight callback form for passes that only care about a handful
// of node kinds (e.g. a symbol collector), mirroring the default-method
// Visitor trait the original implementation walked the tree with.

package ast

// Walker holds optional callbacks invoked as Walk descends the tree. Any
// field left nil is simply skipped; Walk always recurses into children
// regardless of whether a callback was supplied for the parent.
type Walker struct {
	Program  func(p *Program)
	Item     func(item Item)
	Function func(fn FunctionDef)
	Class    func(cls ClassDef)
	VarDecl  func(v VarDecl)
	Stmt     func(s Stmt)
	Expr     func(e Expression)
}

// Walk performs a depth-first traversal of program, invoking the matching
// Walker callback at each node before descending into its children.
func Walk(program *Program, w Walker) {
	if w.Program != nil {
		w.Program(program)
	}
	for _, item := range program.Items {
		walkItem(item, w)
	}
}

func walkItem(item Item, w Walker) {
	if w.Item != nil {
		w.Item(item)
	}
	switch it := item.(type) {
	case FunctionDef:
		if w.Function != nil {
			w.Function(it)
		}
		for _, p := range it.Params {
			walkVarDecl(VarDecl{Name: p.Name, Type: p.Type}, w)
		}
		walkStmt(it.Body, w)
	case ClassDef:
		if w.Class != nil {
			w.Class(it)
		}
		for _, f := range it.Fields {
			walkVarDecl(f, w)
		}
	case GlobalVar:
		walkVarDecl(it.Decl, w)
		if it.Initializer != nil {
			walkExpr(it.Initializer, w)
		}
	case Define, Include:
		// No children to descend into.
	}
}

func walkVarDecl(v VarDecl, w Walker) {
	if w.VarDecl != nil {
		w.VarDecl(v)
	}
}

func walkStmt(stmt Stmt, w Walker) {
	if stmt == nil {
		return
	}
	if w.Stmt != nil {
		w.Stmt(stmt)
	}
	switch s := stmt.(type) {
	case VarDeclStmt:
		walkVarDecl(VarDecl{Name: s.Name, Type: s.VarType}, w)
		if s.Initializer != nil {
			walkExpr(s.Initializer, w)
		}
	case ExprStmt:
		walkExpr(s.Expr, w)
	case IfStmt:
		walkExpr(s.Cond, w)
		walkStmt(s.Then, w)
		walkStmt(s.Else, w)
	case WhileStmt:
		walkExpr(s.Cond, w)
		walkStmt(s.Body, w)
	case ForStmt:
		walkStmt(s.Init, w)
		if s.Cond != nil {
			walkExpr(s.Cond, w)
		}
		if s.Post != nil {
			walkExpr(s.Post, w)
		}
		walkStmt(s.Body, w)
	case ReturnStmt:
		if s.Value != nil {
			walkExpr(s.Value, w)
		}
	case BreakStmt, ContinueStmt:
		// Leaf statements.
	case BlockStmt:
		for _, inner := range s.Statements {
			walkStmt(inner, w)
		}
	}
}

func walkExpr(expr Expression, w Walker) {
	if expr == nil {
		return
	}
	if w.Expr != nil {
		w.Expr(expr)
	}
	switch e := expr.(type) {
	case Binary:
		walkExpr(e.Left, w)
		walkExpr(e.Right, w)
	case Unary:
		walkExpr(e.Operand, w)
	case Assign:
		walkExpr(e.Target, w)
		walkExpr(e.Value, w)
	case Call:
		walkExpr(e.Callee, w)
		for _, arg := range e.Args {
			walkExpr(arg, w)
		}
	case Index:
		walkExpr(e.Target, w)
		walkExpr(e.Idx, w)
	case Member:
		walkExpr(e.Target, w)
	case Arrow:
		walkExpr(e.Target, w)
	case Cast:
		walkExpr(e.Value, w)
	case IntLiteral, FloatLiteral, StringLiteral, CharLiteral, BoolLiteral, Null, Ident, Sizeof:
		// Leaf expressions.
	}
}
