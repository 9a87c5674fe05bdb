package parser

import (
	"github.com/mna/corelang/lang/ast"
	"github.com/mna/corelang/lang/token"
)

// parseExpr parses a full expression, starting at the assignment level (the
// lowest-precedence level).
func (p *Parser) parseExpr() ast.Expr { return p.parseAssignExpr() }

// parseAssignExpr implements right-associative (compound) assignment. It
// builds a downward-growing BinaryExpr chain whose *second* operand is the
// assignment destination and whose *first* operand is the value, which
// drives the code generator's evaluation order (see lang/compiler).
func (p *Parser) parseAssignExpr() ast.Expr {
	dest := p.parseConditionalExpr()
	if !p.tok.IsAssignOp() {
		return dest
	}
	pos := p.pos()
	op := p.tok
	p.next()
	value := p.parseAssignExpr()
	return ast.NewBinaryExpr(pos, op, value, dest)
}

// parseConditionalExpr implements the right-associative `cond ? then : else`
// ternary.
func (p *Parser) parseConditionalExpr() ast.Expr {
	cond := p.parseLogicalOrExpr()
	if p.tok != token.QUESTION {
		return cond
	}
	pos := p.pos()
	p.next()
	then := p.parseAssignExpr()
	p.expect(token.COLON)
	els := p.parseConditionalExpr()
	return ast.NewTrinaryExpr(pos, cond, then, els)
}

// binaryLevel is one left-associative precedence level: it parses one
// operand with next, then folds in any run of operators from ops.
func (p *Parser) binaryLevel(next func() ast.Expr, ops ...token.Token) ast.Expr {
	x := next()
	for matchAny(p.tok, ops) {
		pos := p.pos()
		op := p.tok
		p.next()
		y := next()
		x = ast.NewBinaryExpr(pos, op, x, y)
	}
	return x
}

func matchAny(tok token.Token, ops []token.Token) bool {
	for _, o := range ops {
		if tok == o {
			return true
		}
	}
	return false
}

func (p *Parser) parseLogicalOrExpr() ast.Expr {
	return p.binaryLevel(p.parseLogicalAndExpr, token.OR)
}

func (p *Parser) parseLogicalAndExpr() ast.Expr {
	return p.binaryLevel(p.parseBitOrExpr, token.AND)
}

func (p *Parser) parseBitOrExpr() ast.Expr {
	return p.binaryLevel(p.parseBitXorExpr, token.PIPE)
}

func (p *Parser) parseBitXorExpr() ast.Expr {
	return p.binaryLevel(p.parseBitAndExpr, token.CARET)
}

func (p *Parser) parseBitAndExpr() ast.Expr {
	return p.binaryLevel(p.parseEqualityExpr, token.AMP)
}

func (p *Parser) parseEqualityExpr() ast.Expr {
	return p.binaryLevel(p.parseRelationalExpr, token.EQ, token.NEQ)
}

func (p *Parser) parseRelationalExpr() ast.Expr {
	return p.binaryLevel(p.parseShiftExpr, token.LT, token.LE, token.GT, token.GE)
}

func (p *Parser) parseShiftExpr() ast.Expr {
	return p.binaryLevel(p.parseAdditiveExpr, token.LTLT, token.GTGT)
}

func (p *Parser) parseAdditiveExpr() ast.Expr {
	return p.binaryLevel(p.parseMultiplicativeExpr, token.PLUS, token.MINUS)
}

func (p *Parser) parseMultiplicativeExpr() ast.Expr {
	return p.binaryLevel(p.parseUnaryExpr, token.STAR, token.SLASH, token.PERCENT)
}

// parseUnaryExpr handles prefix `+ - ++ -- ~ !`.
func (p *Parser) parseUnaryExpr() ast.Expr {
	switch p.tok {
	case token.PLUS, token.MINUS, token.INC, token.DEC, token.TILDE, token.BANG:
		pos := p.pos()
		op := p.tok
		p.next()
		x := p.parseUnaryExpr()
		return ast.NewUnaryExpr(pos, op, x, false)
	default:
		return p.parsePostfixExpr()
	}
}

// parsePostfixExpr handles table/array indexing `[ ]`, calls `( )` and
// postfix `++`/`--`, all left-associative and chainable (e.g. `a[0](1)++`).
func (p *Parser) parsePostfixExpr() ast.Expr {
	x := p.parsePrimaryExpr()
	for {
		switch p.tok {
		case token.LBRACK:
			pos := p.pos()
			p.next()
			key := p.parseExpr()
			p.expect(token.RBRACK)
			x = ast.NewBinaryExpr(pos, token.LBRACK, x, key)
		case token.LPAREN:
			pos := p.pos()
			p.next()
			var args []ast.Expr
			if p.tok != token.RPAREN {
				args = append(args, p.parseAssignExpr())
				for p.accept(token.COMMA) {
					args = append(args, p.parseAssignExpr())
				}
			}
			p.expect(token.RPAREN)
			x = ast.NewCallExpr(pos, x, args)
		case token.INC, token.DEC:
			pos := p.pos()
			op := p.tok
			p.next()
			x = ast.NewUnaryExpr(pos, op, x, true)
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	pos := p.pos()
	switch p.tok {
	case token.IDENT:
		name := p.val.Raw
		p.next()
		e := ast.NewTerminalExpr(pos, ast.Identifier)
		e.Name = name
		return e

	case token.INT:
		v := p.val.Int
		p.next()
		e := ast.NewTerminalExpr(pos, ast.Int)
		e.IntValue = v
		return e

	case token.HEX:
		v := p.val.Int
		p.next()
		e := ast.NewTerminalExpr(pos, ast.Hex)
		e.IntValue = v
		return e

	case token.FLOAT:
		v := p.val.Float
		p.next()
		e := ast.NewTerminalExpr(pos, ast.Float)
		e.FloatValue = v
		return e

	case token.STRING:
		v := p.val.Str
		p.next()
		e := ast.NewTerminalExpr(pos, ast.String)
		e.StringValue = v
		return e

	case token.NULL:
		p.next()
		return ast.NewTerminalExpr(pos, ast.Null)

	case token.TRUE:
		p.next()
		e := ast.NewTerminalExpr(pos, ast.Int)
		e.IntValue = 1
		return e

	case token.FALSE:
		p.next()
		e := ast.NewTerminalExpr(pos, ast.Int)
		e.IntValue = 0
		return e

	case token.LPAREN:
		p.next()
		x := p.parseExpr()
		p.expect(token.RPAREN)
		return x

	case token.TABLE:
		p.next()
		return p.parseTableLiteral(pos, ast.Table)

	case token.ARRAY:
		p.next()
		return p.parseTableLiteral(pos, ast.Array)

	case token.LBRACE:
		return p.parseTableLiteral(pos, ast.Unknown)

	case token.FUNCTION:
		p.next()
		def := p.parseFunctionTail(pos, "")
		return ast.NewFunctionExpr(pos, def)

	default:
		p.errorf(pos, "expected expression, found %s %q", p.tok.GoString(), p.val.Raw)
		p.next()
		return ast.NewTerminalExpr(pos, ast.Null)
	}
}

// parseTableLiteral parses the body of `{ ... }`, `table { ... }` or
// `array { ... }`. Entries are `expr` or `expr : expr`; unkeyed entries
// receive an auto-incrementing integer key starting at 0.
func (p *Parser) parseTableLiteral(pos token.Pos, shape ast.TableShape) *ast.TableExpr {
	p.expect(token.LBRACE)

	var inits []*ast.TableInitializer
	var autoKey int64
	for p.tok != token.RBRACE && p.tok != token.EOF {
		initPos := p.pos()
		first := p.parseAssignExpr()

		var key, value ast.Expr
		if p.accept(token.COLON) {
			key = first
			value = p.parseAssignExpr()
		} else {
			value = first
		}

		ak := autoKey
		if key == nil {
			autoKey++
		}
		inits = append(inits, ast.NewTableInitializer(initPos, key, value, ak))

		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE)
	return ast.NewTableExpr(pos, shape, inits)
}

// parseFunctionTail parses `( paramlist ) { body }`, the common suffix of a
// function literal and a `local function name(...)` declaration.
func (p *Parser) parseFunctionTail(pos token.Pos, name string) *ast.FunctionDefinition {
	p.expect(token.LPAREN)

	argsPos := p.pos()
	var params []ast.Stmt
	if p.tok != token.RPAREN {
		for {
			paramPos := p.pos()
			pname := p.expect(token.IDENT).Raw
			params = append(params, ast.NewVariableStmt(paramPos, pname, nil))
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN)
	args := ast.NewStmtSequence(argsPos, params)

	p.expect(token.LBRACE)
	body := p.parseStmtSequence(token.RBRACE)
	p.expect(token.RBRACE)

	return ast.NewFunctionDefinition(pos, name, args, body)
}
