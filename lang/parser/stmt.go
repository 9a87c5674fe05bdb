package parser

import (
	"github.com/mna/corelang/lang/ast"
	"github.com/mna/corelang/lang/token"
)

// parseStmtSequence parses statements until it sees end (token.EOF for a
// function body at top level, token.RBRACE for a `{ ... }` block), without
// consuming end.
func (p *Parser) parseStmtSequence(end token.Token) *ast.StmtSequence {
	pos := p.pos()
	var stmts []ast.Stmt
	for p.tok != end && p.tok != token.EOF {
		stmts = append(stmts, p.parseStmt())
	}
	return ast.NewStmtSequence(pos, stmts)
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.LBRACE:
		return p.parseCompoundStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.DO:
		return p.parseDoWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.FOREACH:
		pos := p.pos()
		p.errorf(pos, "foreach is reserved and not implemented")
		p.synchronize()
		return ast.NewExpressionStmt(pos, nil)
	case token.RETURN, token.YIELD:
		return p.parseReturnStmt()
	case token.BREAK, token.CONTINUE:
		return p.parseJumpStmt()
	case token.LOCAL:
		return p.parseLocalStmt()
	case token.SEMI:
		pos := p.pos()
		p.next()
		return ast.NewExpressionStmt(pos, nil)
	default:
		return p.parseExpressionStmt()
	}
}

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	pos := p.pos()
	p.expect(token.LBRACE)
	body := p.parseStmtSequence(token.RBRACE)
	p.expect(token.RBRACE)
	return ast.NewCompoundStmt(pos, body)
}

func (p *Parser) parseIfStmt() *ast.IfElseStmt {
	pos := p.pos()
	p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseStmt()
	var els ast.Stmt
	if p.accept(token.ELSE) {
		els = p.parseStmt()
	}
	return ast.NewIfElseStmt(pos, cond, then, els)
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	pos := p.pos()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return ast.NewWhileStmt(pos, cond, body)
}

func (p *Parser) parseDoWhileStmt() *ast.DoWhileStmt {
	pos := p.pos()
	p.expect(token.DO)
	body := p.parseStmt()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.expect(token.SEMI)
	return ast.NewDoWhileStmt(pos, body, cond)
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	pos := p.pos()
	p.expect(token.FOR)
	p.expect(token.LPAREN)

	var init ast.Stmt
	if p.tok == token.LOCAL {
		init = p.parseLocalStmt()
	} else if p.tok != token.SEMI {
		init = ast.NewExpressionStmt(p.pos(), p.parseExpr())
		p.expect(token.SEMI)
	} else {
		p.expect(token.SEMI)
	}

	var cond ast.Expr
	if p.tok != token.SEMI {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	var post ast.Expr
	if p.tok != token.RPAREN {
		post = p.parseExpr()
	}
	p.expect(token.RPAREN)

	body := p.parseStmt()
	return ast.NewForStmt(pos, init, cond, post, body)
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.pos()
	kind := ast.RETURN
	if p.tok == token.YIELD {
		kind = ast.YIELD
		p.errorf(pos, "yield is reserved for future coroutine support")
	}
	p.next()

	var value ast.Expr
	if p.tok != token.SEMI {
		value = p.parseExpr()
	}
	p.expect(token.SEMI)
	return ast.NewReturnStmt(pos, kind, value)
}

func (p *Parser) parseJumpStmt() *ast.JumpStmt {
	pos := p.pos()
	kind := ast.BREAK
	if p.tok == token.CONTINUE {
		kind = ast.CONTINUE
	}
	p.next()
	p.expect(token.SEMI)
	return ast.NewJumpStmt(pos, kind)
}

// parseLocalStmt parses `local function name(...) { ... }` (as a single
// VariableStmt whose Init is a FunctionExpr) or `local name [= expr] (,
// name [= expr])*;`, wrapped in a StmtSequence acting as a declaration
// group when there's more than one declarator.
func (p *Parser) parseLocalStmt() ast.Stmt {
	pos := p.pos()
	p.expect(token.LOCAL)

	if p.tok == token.FUNCTION {
		fnPos := p.pos()
		p.next()
		name := p.expect(token.IDENT).Raw
		def := p.parseFunctionTail(fnPos, name)
		return ast.NewVariableStmt(pos, name, ast.NewFunctionExpr(fnPos, def))
	}

	var decls []ast.Stmt
	for {
		namePos := p.pos()
		name := p.expect(token.IDENT).Raw
		var init ast.Expr
		if p.accept(token.ASSIGN) {
			init = p.parseAssignExpr()
		}
		decls = append(decls, ast.NewVariableStmt(namePos, name, init))
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.SEMI)

	if len(decls) == 1 {
		return decls[0]
	}
	return ast.NewStmtSequence(pos, decls)
}

func (p *Parser) parseExpressionStmt() *ast.ExpressionStmt {
	pos := p.pos()
	x := p.parseExpr()
	p.expect(token.SEMI)
	return ast.NewExpressionStmt(pos, x)
}
