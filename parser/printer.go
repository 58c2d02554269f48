package parser

import (
	"encoding/json"

	"github.com/idlhub/holyc-bpf-compiler/ast"
)

// astPrinter implements ast.ItemVisitor, ast.StmtVisitor, and
// ast.ExpressionVisitor, building a JSON-friendly representation out of
// maps and slices, the way the teacher's printer walked its own AST.
type astPrinter struct{}

// PrintJSON renders a Program as indented JSON, for the parse subcommand's
// --json flag and the compile subcommand's --emit-ast flag.
func PrintJSON(program ast.Program) (string, error) {
	p := astPrinter{}
	items := make([]any, 0, len(program.Items))
	for _, item := range program.Items {
		items = append(items, item.Accept(p))
	}
	tree := map[string]any{"type": "Program", "items": items}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func typeToMap(t ast.Type) any {
	return map[string]any{"kind": t.Kind.String(), "name": t.String()}
}

func nilOrAccept[T any](e ast.Expression, v ast.ExpressionVisitor) any {
	if e == nil {
		return nil
	}
	return e.Accept(v)
}

func nilOrStmt(s ast.Stmt, v ast.StmtVisitor) any {
	if s == nil {
		return nil
	}
	return s.Accept(v)
}

// --- ItemVisitor ---

func (p astPrinter) VisitFunctionDef(item ast.FunctionDef) any {
	params := make([]any, 0, len(item.Params))
	for _, param := range item.Params {
		params = append(params, map[string]any{"name": param.Name.Lexeme, "type": typeToMap(param.Type)})
	}
	return map[string]any{
		"type":        "FunctionDef",
		"name":        item.Name.Lexeme,
		"return_type": typeToMap(item.ReturnType),
		"params":      params,
		"is_public":   item.IsPublic,
		"body":        item.Body.Accept(p),
	}
}

func (p astPrinter) VisitClassDef(item ast.ClassDef) any {
	fields := make([]any, 0, len(item.Fields))
	for _, f := range item.Fields {
		fields = append(fields, map[string]any{"name": f.Name.Lexeme, "type": typeToMap(f.Type)})
	}
	return map[string]any{"type": "ClassDef", "name": item.Name.Lexeme, "fields": fields}
}

func (p astPrinter) VisitGlobalVar(item ast.GlobalVar) any {
	return map[string]any{
		"type":        "GlobalVar",
		"name":        item.Decl.Name.Lexeme,
		"var_type":    typeToMap(item.Decl.Type),
		"initializer": nilOrAccept[ast.Expression](item.Initializer, p),
	}
}

func (p astPrinter) VisitDefine(item ast.Define) any {
	return map[string]any{"type": "Define", "name": item.Name, "value": item.Value}
}

func (p astPrinter) VisitInclude(item ast.Include) any {
	return map[string]any{"type": "Include", "raw": item.Raw}
}

// --- StmtVisitor ---

func (p astPrinter) VisitVarDeclStmt(stmt ast.VarDeclStmt) any {
	return map[string]any{
		"type":        "VarDeclStmt",
		"name":        stmt.Name.Lexeme,
		"var_type":    typeToMap(stmt.VarType),
		"initializer": nilOrAccept[ast.Expression](stmt.Initializer, p),
	}
}

func (p astPrinter) VisitExprStmt(stmt ast.ExprStmt) any {
	return map[string]any{"type": "ExprStmt", "expr": stmt.Expr.Accept(p)}
}

func (p astPrinter) VisitIfStmt(stmt ast.IfStmt) any {
	return map[string]any{
		"type": "IfStmt",
		"cond": stmt.Cond.Accept(p),
		"then": stmt.Then.Accept(p),
		"else": nilOrStmt(stmt.Else, p),
	}
}

func (p astPrinter) VisitWhileStmt(stmt ast.WhileStmt) any {
	return map[string]any{"type": "WhileStmt", "cond": stmt.Cond.Accept(p), "body": stmt.Body.Accept(p)}
}

func (p astPrinter) VisitForStmt(stmt ast.ForStmt) any {
	return map[string]any{
		"type": "ForStmt",
		"init": nilOrStmt(stmt.Init, p),
		"cond": nilOrAccept[ast.Expression](stmt.Cond, p),
		"post": nilOrAccept[ast.Expression](stmt.Post, p),
		"body": stmt.Body.Accept(p),
	}
}

func (p astPrinter) VisitReturnStmt(stmt ast.ReturnStmt) any {
	return map[string]any{"type": "ReturnStmt", "value": nilOrAccept[ast.Expression](stmt.Value, p)}
}

func (p astPrinter) VisitBreakStmt(stmt ast.BreakStmt) any {
	return map[string]any{"type": "BreakStmt"}
}

func (p astPrinter) VisitContinueStmt(stmt ast.ContinueStmt) any {
	return map[string]any{"type": "ContinueStmt"}
}

func (p astPrinter) VisitBlockStmt(stmt ast.BlockStmt) any {
	stmts := make([]any, 0, len(stmt.Statements))
	for _, s := range stmt.Statements {
		stmts = append(stmts, s.Accept(p))
	}
	return map[string]any{"type": "BlockStmt", "statements": stmts}
}

// --- ExpressionVisitor ---

func (p astPrinter) VisitIntLiteral(lit ast.IntLiteral) any {
	return map[string]any{"type": "IntLiteral", "value": lit.Value}
}

func (p astPrinter) VisitFloatLiteral(lit ast.FloatLiteral) any {
	return map[string]any{"type": "FloatLiteral", "value": lit.Value}
}

func (p astPrinter) VisitStringLiteral(lit ast.StringLiteral) any {
	return map[string]any{"type": "StringLiteral", "value": lit.Value}
}

func (p astPrinter) VisitCharLiteral(lit ast.CharLiteral) any {
	return map[string]any{"type": "CharLiteral", "value": lit.Value}
}

func (p astPrinter) VisitBoolLiteral(lit ast.BoolLiteral) any {
	return map[string]any{"type": "BoolLiteral", "value": lit.Value}
}

func (p astPrinter) VisitNull(lit ast.Null) any {
	return map[string]any{"type": "Null"}
}

func (p astPrinter) VisitIdent(ident ast.Ident) any {
	return map[string]any{"type": "Ident", "name": ident.Name.Lexeme}
}

func (p astPrinter) VisitBinary(b ast.Binary) any {
	return map[string]any{
		"type":  "Binary",
		"op":    b.Op.String(),
		"left":  b.Left.Accept(p),
		"right": b.Right.Accept(p),
	}
}

func (p astPrinter) VisitUnary(u ast.Unary) any {
	return map[string]any{"type": "Unary", "op": u.Op.String(), "operand": u.Operand.Accept(p)}
}

func (p astPrinter) VisitAssign(a ast.Assign) any {
	return map[string]any{"type": "Assign", "target": a.Target.Accept(p), "value": a.Value.Accept(p)}
}

func (p astPrinter) VisitCall(call ast.Call) any {
	args := make([]any, 0, len(call.Args))
	for _, arg := range call.Args {
		args = append(args, arg.Accept(p))
	}
	return map[string]any{"type": "Call", "callee": call.Callee.Accept(p), "args": args}
}

func (p astPrinter) VisitIndex(idx ast.Index) any {
	return map[string]any{"type": "Index", "target": idx.Target.Accept(p), "index": idx.Idx.Accept(p)}
}

func (p astPrinter) VisitMember(m ast.Member) any {
	return map[string]any{"type": "Member", "target": m.Target.Accept(p), "field": m.Field.Lexeme}
}

func (p astPrinter) VisitArrow(a ast.Arrow) any {
	return map[string]any{"type": "Arrow", "target": a.Target.Accept(p), "field": a.Field.Lexeme}
}

func (p astPrinter) VisitCast(c ast.Cast) any {
	return map[string]any{"type": "Cast", "target_type": typeToMap(c.Target), "value": c.Value.Accept(p)}
}

func (p astPrinter) VisitSizeof(s ast.Sizeof) any {
	return map[string]any{"type": "Sizeof", "arg_type": typeToMap(s.Arg)}
}
