// Package parser implements a recursive-descent, precedence-climbing parser
// that turns a lang/scanner token stream into a lang/ast tree.
package parser

import (
	"fmt"

	"github.com/mna/corelang/lang/ast"
	"github.com/mna/corelang/lang/scanner"
	"github.com/mna/corelang/lang/token"
)

// Parser holds the state of one parse: the scanner feeding it tokens, a
// one-token lookahead buffer, and the aggregated error list.
type Parser struct {
	file *token.File
	s    scanner.Scanner
	errs scanner.ErrorList

	tok token.Token
	val token.Value
}

// Parse parses src (named file, for diagnostics) and returns the synthetic
// top-level FunctionDefinition wrapping the whole program: the entry rule
// wraps the file body in a function with empty arguments. Non-nil err is a
// scanner.ErrorList.
func Parse(filename string, src []byte) (*ast.FunctionDefinition, error) {
	p := &Parser{file: token.NewFile(filename)}
	p.s.Init(p.file, src, func(pos token.Position, msg string) {
		p.errs.Add(pos, msg)
	})
	p.next()

	pos := token.NoPos
	body := p.parseStmtSequence(token.EOF)
	if len(p.errs) == 0 {
		pos = body.Pos()
	}

	args := ast.NewStmtSequence(pos, nil)
	def := ast.NewFunctionDefinition(pos, "", args, body)

	p.errs.Sort()
	if len(p.errs) > 0 {
		return def, p.errs.Err()
	}
	return def, nil
}

func (p *Parser) next() {
	p.tok = p.s.Scan(&p.val)
}

func (p *Parser) pos() token.Pos { return p.val.Pos }

func (p *Parser) position(pos token.Pos) token.Position { return p.file.Position(pos) }

func (p *Parser) errorf(pos token.Pos, format string, args ...any) {
	p.errs.Add(p.position(pos), fmt.Sprintf(format, args...))
}

// expect consumes the current token if it matches tok, reporting an error
// and leaving the token stream unconsumed otherwise.
func (p *Parser) expect(tok token.Token) token.Value {
	v := p.val
	if p.tok != tok {
		p.errorf(p.pos(), "expected %s, found %s %q", tok.GoString(), p.tok.GoString(), p.val.Raw)
		return v
	}
	p.next()
	return v
}

func (p *Parser) accept(tok token.Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// synchronize skips tokens until a statement boundary, for error recovery
// so one malformed statement doesn't cascade into spurious errors for the
// rest of the file.
func (p *Parser) synchronize() {
	for p.tok != token.EOF && p.tok != token.SEMI && p.tok != token.RBRACE {
		p.next()
	}
	p.accept(token.SEMI)
}
