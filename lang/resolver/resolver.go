// Package resolver implements the semantic analyzer: a single AST
// traversal that resolves identifiers to local/upvalue/global bindings,
// links break/continue to their enclosing loop, flags l-values for the
// code generator, and infers table/array literal shape.
package resolver

import (
	"fmt"

	"github.com/mna/corelang/lang/ast"
	"github.com/mna/corelang/lang/scanner"
	"github.com/mna/corelang/lang/token"
)

// Resolver carries the state of one analysis pass.
type Resolver struct {
	file   *token.File
	scopes *scopeManager
	errs   scanner.ErrorList
}

// Resolve analyzes the synthetic top-level FunctionDefinition produced by
// lang/parser, mutating its AST in place with the flags and bindings
// lang/compiler depends on. file is used only to render error positions.
func Resolve(file *token.File, top *ast.FunctionDefinition) error {
	r := &Resolver{file: file, scopes: newScopeManager()}
	r.resolveFunction(top)

	r.errs.Sort()
	if len(r.errs) > 0 {
		return r.errs.Err()
	}
	return nil
}

func (r *Resolver) errorf(pos token.Pos, format string, args ...any) {
	r.errs.Add(r.file.Position(pos), fmt.Sprintf(format, args...))
}

// resolveFunction implements "entering a function": push function frame;
// open a new scope; recurse into arguments then body; close scope; record
// numVariable and functionLevel; pop.
func (r *Resolver) resolveFunction(def *ast.FunctionDefinition) {
	r.scopes.pushFunc(def)
	r.scopes.enterScope()

	for _, s := range def.Arguments.Stmts {
		v := s.(*ast.VariableStmt)
		r.scopes.declare(v)
	}
	for _, s := range def.Body.Stmts {
		r.resolveStmt(s)
	}

	r.scopes.leaveScope()
	r.scopes.popFunc()
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.StmtSequence:
		for _, c := range s.Stmts {
			r.resolveStmt(c)
		}

	case *ast.CompoundStmt:
		r.enterCompound(s)

	case *ast.ForStmt:
		r.resolveFor(s)

	case *ast.WhileStmt:
		r.resolveWhile(s)

	case *ast.DoWhileStmt:
		r.resolveDoWhile(s)

	case *ast.IfElseStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.ReturnStmt:
		if s.Value != nil {
			r.resolveExpr(s.Value)
		}

	case *ast.JumpStmt:
		loop := r.scopes.innermostLoop()
		if loop == nil {
			r.errorf(s.Pos(), "%s used outside of a loop", s.Kind)
			*s.Flags() |= ast.ERROR
			return
		}
		s.CorrespondingLoop = loop

	case *ast.VariableStmt:
		// `local function name` is declared before its body is resolved, so
		// the body can refer to itself by name.
		if fe, ok := s.Init.(*ast.FunctionExpr); ok && fe.Def.Name != "" {
			r.scopes.declare(s)
			r.resolveExpr(s.Init)
			break
		}
		if s.Init != nil {
			r.resolveExpr(s.Init)
		}
		r.scopes.declare(s)

	case *ast.ExpressionStmt:
		if s.X != nil {
			r.resolveExpr(s.X)
		}
	}
}

// enterCompound implements "entering a compound/loop scope": increment
// scope level; visit; decrement, popping all variables declared within.
func (r *Resolver) enterCompound(s *ast.CompoundStmt) {
	lvl := r.scopes.enterScope()
	s.ScopeLevel = u32(lvl)
	before := r.scopes.currentFunc().numVars

	for _, c := range s.Body.Stmts {
		r.resolveStmt(c)
	}

	s.NumVariable = u32(r.scopes.currentFunc().numVars - before)
	r.scopes.leaveScope()
}

func (r *Resolver) resolveFor(s *ast.ForStmt) {
	lvl := r.scopes.enterScope()
	_ = lvl
	if s.Init != nil {
		r.resolveStmt(s.Init)
	}
	if s.Cond != nil {
		r.resolveExpr(s.Cond)
	}
	if s.Post != nil {
		r.resolveExpr(s.Post)
	}

	r.scopes.pushLoop(s)
	r.resolveStmt(s.Body)
	r.scopes.popLoop()

	r.scopes.leaveScope()
}

func (r *Resolver) resolveWhile(s *ast.WhileStmt) {
	r.resolveExpr(s.Cond)
	r.scopes.pushLoop(s)
	r.resolveStmt(s.Body)
	r.scopes.popLoop()
}

func (r *Resolver) resolveDoWhile(s *ast.DoWhileStmt) {
	r.scopes.pushLoop(s)
	r.resolveStmt(s.Body)
	r.scopes.popLoop()
	r.resolveExpr(s.Cond)
}

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.TerminalExpr:
		r.resolveTerminal(e)

	case *ast.UnaryExpr:
		r.resolveExpr(e.X)
		if e.Op == token.INC || e.Op == token.DEC {
			r.requireLvalue(e.X)
			*e.X.Flags() |= ast.STORE
		}

	case *ast.BinaryExpr:
		r.resolveBinary(e)

	case *ast.TrinaryExpr:
		r.resolveExpr(e.Cond)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)

	case *ast.CallExpr:
		r.resolveExpr(e.Func)
		*e.Func.Flags() |= ast.LOAD
		for _, a := range e.Args {
			r.resolveExpr(a)
			*a.Flags() |= ast.LOAD
		}

	case *ast.FunctionExpr:
		r.resolveFunction(e.Def)

	case *ast.TableExpr:
		r.resolveTable(e)
	}
}

func (r *Resolver) resolveTerminal(e *ast.TerminalExpr) {
	switch e.Kind {
	case ast.Identifier:
		r.resolveIdentifier(e)
	case ast.Int, ast.Hex:
		*e.Flags() |= ast.INTVALUE
	}
}

func (r *Resolver) resolveBinary(e *ast.BinaryExpr) {
	if e.Op == token.LBRACK {
		r.resolveExpr(e.X)
		r.resolveExpr(e.Y)
		*e.Flags() |= ast.LVALUE | ast.TABLE
		return
	}

	if e.Op.IsAssignOp() {
		// X is the value (evaluated first at codegen time), Y is the
		// destination.
		r.resolveExpr(e.X)
		r.resolveExpr(e.Y)
		r.requireLvalue(e.Y)
		*e.Y.Flags() |= ast.STORE
		if e.Op == token.ASSIGN {
			*e.Y.Flags() |= ast.NOLOAD
		}
		return
	}

	r.resolveExpr(e.X)
	r.resolveExpr(e.Y)
}

func (r *Resolver) requireLvalue(e ast.Expr) {
	if !e.Flags().Has(ast.LVALUE) {
		r.errorf(e.Pos(), "invalid assignment target")
		*e.Flags() |= ast.ERROR
	}
}

func (r *Resolver) resolveTable(e *ast.TableExpr) {
	allArray := true
	for _, init := range e.Initializers {
		if init.Key != nil {
			r.resolveExpr(init.Key)
		}
		r.resolveExpr(init.Value)

		isArrayEntry := init.Key == nil || init.Key.Flags().Has(ast.INTVALUE)
		if isArrayEntry {
			*init.Flags() |= ast.ARRAY
		} else {
			allArray = false
		}
	}

	switch e.Shape {
	case ast.Array:
		if !allArray {
			r.errorf(e.Pos(), "array literal requires all-integer keys")
			*e.Flags() |= ast.ERROR
		}
	case ast.Unknown:
		if allArray {
			e.Shape = ast.Array
		} else {
			e.Shape = ast.Table
		}
	}
}
