// Package parser implements the recursive-descent, precedence-climbing
// parser from §4.2: token sequence in, Program AST out, aborting with a
// ParseError on the first discrepancy between what the grammar expects and
// what it finds.
package parser

import (
	"strings"

	"github.com/idlhub/holyc-bpf-compiler/ast"
	"github.com/idlhub/holyc-bpf-compiler/token"
)

// Parser walks a fixed token slice left to right. knownTypes records every
// class name seen so far, which is the only lookahead a single-pass,
// recursive-descent grammar needs to tell "Ident starts a VarDecl of a
// custom type" apart from "Ident starts an expression statement" — a class
// must be declared textually before any function that declares a variable
// of it, the same restriction HolyC-style single-pass compilers accept.
type Parser struct {
	tokens     []token.Token
	pos        int
	knownTypes map[string]bool
}

// New creates a Parser over a complete token slice (as produced by
// lexer.Scan), including its trailing EOF token.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, knownTypes: map[string]bool{}}
}

// Parse runs a Parser to completion and returns the resulting Program.
func Parse(tokens []token.Token) (ast.Program, error) {
	return New(tokens).ParseProgram()
}

// ParseProgram parses `Item*` until EOF, per §4.2's top-level grammar.
func (p *Parser) ParseProgram() (ast.Program, error) {
	var items []ast.Item
	for !p.isAtEnd() {
		item, err := p.parseItem()
		if err != nil {
			return ast.Program{}, err
		}
		items = append(items, item)
	}
	return ast.Program{Items: items}, nil
}

// --- token cursor ---

func (p *Parser) peek() token.Token { return p.tokens[p.pos] }

func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }

func (p *Parser) isAtEnd() bool { return p.peek().TokenType == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(tt token.TokenType) bool { return p.peek().TokenType == tt }

func (p *Parser) match(tt token.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt token.TokenType) (token.Token, error) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorAt(tt)
}

func (p *Parser) errorAt(expected ...token.TokenType) error {
	actual := p.peek()
	if actual.TokenType == token.EOF {
		return newUnexpectedEOF(actual, expected...)
	}
	return newUnexpectedToken(actual, expected...)
}

// --- items ---

func (p *Parser) parseItem() (ast.Item, error) {
	switch {
	case p.check(token.DEFINE):
		return buildDefine(p.advance()), nil
	case p.check(token.INCLUDE):
		tok := p.advance()
		return ast.Include{Raw: tok.Lexeme, Tok: tok}, nil
	case p.check(token.CLASS):
		return p.parseClassDef()
	}

	isPublic := false
	for p.check(token.PUBLIC) || p.check(token.STATIC) || p.check(token.EXTERN) || p.check(token.CONST) {
		if p.check(token.PUBLIC) {
			isPublic = true
		}
		p.advance()
	}

	declType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if p.check(token.LPAREN) {
		return p.parseFunctionDef(declType, nameTok, isPublic)
	}
	return p.parseGlobalVar(declType, nameTok)
}

// buildDefine splits a raw "#define NAME rest..." lexeme into its name and
// value, per §3.1's Define(name, value-string) shape.
func buildDefine(tok token.Token) ast.Define {
	fields := strings.Fields(tok.Lexeme)
	var name, value string
	if len(fields) >= 2 {
		name = fields[1]
	}
	if len(fields) >= 3 {
		value = strings.Join(fields[2:], " ")
	}
	return ast.Define{Name: name, Value: value, Tok: tok}
}

func (p *Parser) parseClassDef() (ast.Item, error) {
	p.advance() // 'class'
	nameTok, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var fields []ast.VarDecl
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		fieldType, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fieldName, err := p.expect(token.IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		fields = append(fields, ast.VarDecl{Name: fieldName, Type: fieldType})
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	p.knownTypes[nameTok.Lexeme] = true
	return ast.ClassDef{Name: nameTok, Fields: fields}, nil
}

func (p *Parser) parseFunctionDef(returnType ast.Type, nameTok token.Token, isPublic bool) (ast.Item, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			paramType, err := p.parseType()
			if err != nil {
				return nil, err
			}
			paramName, err := p.expect(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: paramName, Type: paramType})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.FunctionDef{Name: nameTok, ReturnType: returnType, Params: params, Body: body, IsPublic: isPublic}, nil
}

func (p *Parser) parseGlobalVar(declType ast.Type, nameTok token.Token) (ast.Item, error) {
	var init ast.Expression
	if p.match(token.ASSIGN) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		init = e
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.GlobalVar{Decl: ast.VarDecl{Name: nameTok, Type: declType}, Initializer: init}, nil
}

// --- types ---

var primitiveKinds = map[token.TokenType]ast.Kind{
	token.U0:   ast.KindVoid,
	token.VOID: ast.KindVoid,
	token.U8:   ast.KindU8,
	token.U16:  ast.KindU16,
	token.U32:  ast.KindU32,
	token.U64:  ast.KindU64,
	token.I8:   ast.KindI8,
	token.I16:  ast.KindI16,
	token.I32:  ast.KindI32,
	token.I64:  ast.KindI64,
	token.F64:  ast.KindF64,
	token.BOOL: ast.KindBool,
}

func (p *Parser) parseType() (ast.Type, error) {
	tok := p.peek()
	var base ast.Type
	if kind, ok := primitiveKinds[tok.TokenType]; ok {
		p.advance()
		base = ast.Primitive(kind)
	} else if tok.TokenType == token.IDENTIFIER {
		p.advance()
		base = ast.Custom(tok.Lexeme)
	} else {
		return ast.Type{}, p.errorAt(
			token.U0, token.U8, token.U16, token.U32, token.U64,
			token.I8, token.I16, token.I32, token.I64,
			token.F64, token.BOOL, token.VOID, token.IDENTIFIER)
	}

	for p.check(token.STAR) {
		p.advance()
		base = ast.PointerTo(base)
	}

	if p.check(token.LBRACKET) {
		p.advance()
		var length *int
		if p.check(token.INT_LITERAL) || p.check(token.HEX_LITERAL) || p.check(token.BIN_LITERAL) {
			lenTok := p.advance()
			n := int(lenTok.Literal.(uint64))
			length = &n
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return ast.Type{}, err
		}
		base = ast.ArrayOf(base, length)
	}

	return base, nil
}

// nextStartsType reports whether the upcoming tokens can begin a Type,
// which per §4.2's statement grammar is what distinguishes a local
// VarDecl from an expression statement.
func (p *Parser) nextStartsType() bool {
	tok := p.peek()
	if _, ok := primitiveKinds[tok.TokenType]; ok {
		return true
	}
	if tok.TokenType == token.IDENTIFIER {
		return p.knownTypes[tok.Lexeme]
	}
	return false
}

// --- statements ---

func (p *Parser) parseBlock() (ast.BlockStmt, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return ast.BlockStmt{}, err
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt, err := p.parseStmt()
		if err != nil {
			return ast.BlockStmt{}, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return ast.BlockStmt{}, err
	}
	return ast.BlockStmt{Statements: stmts}, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.check(token.RETURN):
		return p.parseReturn()
	case p.check(token.BREAK):
		tok := p.advance()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.BreakStmt{Tok: tok}, nil
	case p.check(token.CONTINUE):
		tok := p.advance()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return ast.ContinueStmt{Tok: tok}, nil
	case p.check(token.IF):
		return p.parseIf()
	case p.check(token.WHILE):
		return p.parseWhile()
	case p.check(token.FOR):
		return p.parseFor()
	case p.check(token.LBRACE):
		return p.parseBlock()
	case p.nextStartsType():
		return p.parseVarDeclStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	tok := p.advance()
	var val ast.Expression
	if !p.check(token.SEMICOLON) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		val = e
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Value: val, Tok: tok}, nil
}

func (p *Parser) parseVarDeclStmt() (ast.Stmt, error) {
	declType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	var init ast.Expression
	if p.match(token.ASSIGN) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		init = e
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.VarDeclStmt{Name: nameTok, VarType: declType, Initializer: init}, nil
}

func (p *Parser) parseExprStmt() (ast.Stmt, error) {
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ast.ExprStmt{Expr: e}, nil
}

func (p *Parser) parseIf() (ast.Stmt, error) {
	p.advance() // 'if'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Stmt
	if p.match(token.ELSE) {
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		elseStmt = elseBlock
	}
	return ast.IfStmt{Cond: cond, Then: then, Else: elseStmt}, nil
}

func (p *Parser) parseWhile() (ast.Stmt, error) {
	p.advance() // 'while'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (ast.Stmt, error) {
	p.advance() // 'for'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var init ast.Stmt
	if p.check(token.SEMICOLON) {
		p.advance()
	} else if p.nextStartsType() {
		s, err := p.parseVarDeclStmt() // consumes its own ';'
		if err != nil {
			return nil, err
		}
		init = s
	} else {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		init = ast.ExprStmt{Expr: e}
	}

	var cond ast.Expression
	if !p.check(token.SEMICOLON) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		cond = e
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	var post ast.Expression
	if !p.check(token.RPAREN) {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		post = e
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body}, nil
}

// --- expressions ---

func (p *Parser) parseExpression() (ast.Expression, error) { return p.parseAssignment() }

var assignOps = map[token.TokenType]ast.BinaryOp{
	token.PLUS_ASSIGN:    ast.AddAssign,
	token.MINUS_ASSIGN:   ast.SubAssign,
	token.STAR_ASSIGN:    ast.MulAssign,
	token.SLASH_ASSIGN:   ast.DivAssign,
	token.PERCENT_ASSIGN: ast.ModAssign,
	token.AMP_ASSIGN:     ast.AndAssign,
	token.PIPE_ASSIGN:    ast.OrAssign,
	token.CARET_ASSIGN:   ast.XorAssign,
	token.SHL_ASSIGN:     ast.ShlAssign,
	token.SHR_ASSIGN:     ast.ShrAssign,
}

// parseAssignment is the lowest-precedence, right-associative level:
// "=" and every compound-assign operator.
func (p *Parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}

	if p.check(token.ASSIGN) {
		tok := p.advance()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return ast.Assign{Target: left, Value: right, Tok: tok}, nil
	}
	if op, ok := assignOps[p.peek().TokenType]; ok {
		tok := p.advance()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return ast.Binary{Left: left, Op: op, Right: right, Tok: tok}, nil
	}
	return left, nil
}

// parseBinaryLevel implements one left-associative precedence level: parse
// one operand with next, then fold in as many (op, operand) pairs from ops
// as match.
func (p *Parser) parseBinaryLevel(next func() (ast.Expression, error), ops map[token.TokenType]ast.BinaryOp) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().TokenType]
		if !ok {
			return left, nil
		}
		tok := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Left: left, Op: op, Right: right, Tok: tok}
	}
}

func (p *Parser) parseLogicalOr() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, map[token.TokenType]ast.BinaryOp{token.OR_OR: ast.LogicalOr})
}

func (p *Parser) parseLogicalAnd() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseBitOr, map[token.TokenType]ast.BinaryOp{token.AND_AND: ast.LogicalAnd})
}

func (p *Parser) parseBitOr() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseBitXor, map[token.TokenType]ast.BinaryOp{token.PIPE: ast.BitOr})
}

func (p *Parser) parseBitXor() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseBitAnd, map[token.TokenType]ast.BinaryOp{token.CARET: ast.BitXor})
}

func (p *Parser) parseBitAnd() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseEquality, map[token.TokenType]ast.BinaryOp{token.AMP: ast.BitAnd})
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseRelational, map[token.TokenType]ast.BinaryOp{
		token.EQ_EQ: ast.Eq, token.NOT_EQ: ast.Ne,
	})
}

func (p *Parser) parseRelational() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseShift, map[token.TokenType]ast.BinaryOp{
		token.LESS: ast.Lt, token.LESS_EQ: ast.Le, token.GREATER: ast.Gt, token.GREATER_EQ: ast.Ge,
	})
}

func (p *Parser) parseShift() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseAdditive, map[token.TokenType]ast.BinaryOp{token.SHL: ast.Shl, token.SHR: ast.Shr})
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, map[token.TokenType]ast.BinaryOp{token.PLUS: ast.Add, token.MINUS: ast.Sub})
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseBinaryLevel(p.parseUnary, map[token.TokenType]ast.BinaryOp{
		token.STAR: ast.Mul, token.SLASH: ast.Div, token.PERCENT: ast.Mod,
	})
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.TokenType {
	case token.MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: ast.Neg, Operand: operand, Tok: tok}, nil
	case token.BANG:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: ast.Not, Operand: operand, Tok: tok}, nil
	case token.TILDE:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: ast.BitNot, Operand: operand, Tok: tok}, nil
	case token.STAR:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: ast.Deref, Operand: operand, Tok: tok}, nil
	case token.AMP:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: ast.AddressOf, Operand: operand, Tok: tok}, nil
	case token.INCREMENT:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: ast.PreIncrement, Operand: operand, Tok: tok}, nil
	case token.DECREMENT:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: ast.PreDecrement, Operand: operand, Tok: tok}, nil
	case token.LPAREN:
		if castType, ok, err := p.tryParseCast(); err != nil {
			return nil, err
		} else if ok {
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return ast.Cast{Target: castType, Value: operand, Tok: tok}, nil
		}
	}
	return p.parsePostfix()
}

// tryParseCast speculatively parses a "(Type)" prefix, rewinding if what
// follows "(" doesn't resolve to a complete, closed type.
func (p *Parser) tryParseCast() (ast.Type, bool, error) {
	start := p.pos
	p.advance() // '('
	if !p.nextStartsType() {
		p.pos = start
		return ast.Type{}, false, nil
	}
	t, err := p.parseType()
	if err != nil {
		p.pos = start
		return ast.Type{}, false, nil
	}
	if !p.check(token.RPAREN) {
		p.pos = start
		return ast.Type{}, false, nil
	}
	p.advance() // ')'
	return t, true, nil
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(token.LPAREN):
			tok := p.advance()
			var args []ast.Expression
			if !p.check(token.RPAREN) {
				for {
					arg, err := p.parseAssignment()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.match(token.COMMA) {
						break
					}
				}
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			expr = ast.Call{Callee: expr, Args: args, Tok: tok}
		case p.check(token.LBRACKET):
			tok := p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = ast.Index{Target: expr, Idx: idx, Tok: tok}
		case p.check(token.DOT):
			p.advance()
			field, err := p.expect(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = ast.Member{Target: expr, Field: field}
		case p.check(token.ARROW):
			p.advance()
			field, err := p.expect(token.IDENTIFIER)
			if err != nil {
				return nil, err
			}
			expr = ast.Arrow{Target: expr, Field: field}
		case p.check(token.INCREMENT):
			tok := p.advance()
			expr = ast.Unary{Op: ast.PostIncrement, Operand: expr, Tok: tok}
		case p.check(token.DECREMENT):
			tok := p.advance()
			expr = ast.Unary{Op: ast.PostDecrement, Operand: expr, Tok: tok}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.TokenType {
	case token.INT_LITERAL, token.HEX_LITERAL, token.BIN_LITERAL:
		p.advance()
		return ast.IntLiteral{Value: tok.Literal.(uint64), Tok: tok}, nil
	case token.FLOAT_LITERAL:
		p.advance()
		return ast.FloatLiteral{Value: tok.Literal.(float64), Tok: tok}, nil
	case token.STRING_LITERAL:
		p.advance()
		return ast.StringLiteral{Value: tok.Literal.(string), Tok: tok}, nil
	case token.CHAR_LITERAL:
		p.advance()
		return ast.CharLiteral{Value: tok.Literal.(byte), Tok: tok}, nil
	case token.TRUE:
		p.advance()
		return ast.BoolLiteral{Value: true, Tok: tok}, nil
	case token.FALSE:
		p.advance()
		return ast.BoolLiteral{Value: false, Tok: tok}, nil
	case token.NULL:
		p.advance()
		return ast.Null{Tok: tok}, nil
	case token.SIZEOF:
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return ast.Sizeof{Arg: t, Tok: tok}, nil
	case token.IDENTIFIER:
		p.advance()
		return ast.Ident{Name: tok}, nil
	case token.LPAREN:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.errorAt()
	}
}
