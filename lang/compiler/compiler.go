package compiler

import (
	"fmt"

	"github.com/mna/corelang/lang/ast"
)

// Compile lowers a resolved top-level FunctionDefinition (as produced by
// lang/parser and annotated by lang/resolver) into a Prototype tree. The
// AST must already be free of resolver errors.
func Compile(top *ast.FunctionDefinition) (proto *Prototype, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ierr, ok := r.(internalError); ok {
				err = fmt.Errorf("compiler: %s", string(ierr))
				return
			}
			panic(r)
		}
	}()

	c := &compilerState{}
	proto = c.compileFunction(top, nil)
	return proto, nil
}

// internalError marks a panic raised for an invariant violation (a bug in
// the compiler itself, not a user-facing error) so Compile's recover can
// distinguish it from any other panic.
type internalError string

func fail(format string, args ...any) {
	panic(internalError(fmt.Sprintf(format, args...)))
}

// compilerState threads no real state of its own; it exists so
// compileFunction can recurse without every helper needing a free
// function. The interesting state lives on funcState, one per nested
// function.
type compilerState struct{}

func (c *compilerState) compileFunction(def *ast.FunctionDefinition, parent *funcState) *Prototype {
	level := 0
	if parent != nil {
		level = parent.proto.FunctionLevel + 1
	}
	fs := newFuncState(parent, level, len(def.Arguments.Stmts))

	for _, s := range def.Arguments.Stmts {
		v := s.(*ast.VariableStmt)
		reg := fs.regs.alloc()
		fs.localReg[v] = reg
		off := uint32(reg)
		v.RegisterOffset = &off
	}

	c.compileStmtSequence(fs, def.Body)

	// Every prototype ends with a trailing RETURN so control never falls off
	// the end.
	fs.emit(Instruction{Op: RETURN, A: 0, B: 0})

	fs.labels.resolve(fs.proto.Code)
	fs.proto.LocalSize = int(fs.regs.maxSize)
	if fs.proto.LocalSize < fs.proto.NumArgs {
		fs.proto.LocalSize = fs.proto.NumArgs
	}
	return fs.proto
}

func (c *compilerState) compileStmtSequence(fs *funcState, seq *ast.StmtSequence) {
	for _, s := range seq.Stmts {
		c.compileStmt(fs, s)
	}
}

func (c *compilerState) compileStmt(fs *funcState, stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.StmtSequence:
		c.compileStmtSequence(fs, s)

	case *ast.CompoundStmt:
		c.compileCompound(fs, s)

	case *ast.ForStmt:
		c.compileFor(fs, s)

	case *ast.WhileStmt:
		c.compileWhile(fs, s)

	case *ast.DoWhileStmt:
		c.compileDoWhile(fs, s)

	case *ast.IfElseStmt:
		c.compileIfElse(fs, s)

	case *ast.ReturnStmt:
		c.compileReturn(fs, s)

	case *ast.JumpStmt:
		c.compileJump(fs, s)

	case *ast.VariableStmt:
		c.compileVariableStmt(fs, s)

	case *ast.ExpressionStmt:
		if s.X != nil {
			result := c.compileExpr(fs, s.X)
			fs.regs.release(s.X)
			_ = result
		}

	default:
		fail("unhandled statement type %T", stmt)
	}
}

func (c *compilerState) compileCompound(fs *funcState, s *ast.CompoundStmt) {
	savedTop := fs.regs.top
	c.compileStmtSequence(fs, s.Body)
	fs.regs.top = savedTop
}

func (c *compilerState) compileVariableStmt(fs *funcState, s *ast.VariableStmt) {
	reg := fs.regs.alloc()
	fs.localReg[s] = reg
	off := uint32(reg)
	s.RegisterOffset = &off
	if s.Init != nil {
		c.compileExprInto(fs, s.Init, reg)
	}
}

func (c *compilerState) compileIfElse(fs *funcState, s *ast.IfElseStmt) {
	condReg := c.compileExpr(fs, s.Cond)
	fs.regs.release(s.Cond)

	elseLabel := fs.labels.openLabel()
	idx := fs.emit(Instruction{Op: BRANCHNOT, A: condReg})
	fs.labels.reserve(idx, 1, elseLabel)

	c.compileStmt(fs, s.Then)

	if s.Else != nil {
		endLabel := fs.labels.openLabel()
		jidx := fs.emit(Instruction{Op: JUMP})
		fs.labels.reserve(jidx, 0, endLabel)

		fs.labels.defineLabel(elseLabel, fs.offset())
		c.compileStmt(fs, s.Else)
		fs.labels.defineLabel(endLabel, fs.offset())
	} else {
		fs.labels.defineLabel(elseLabel, fs.offset())
	}
}

func (c *compilerState) compileWhile(fs *funcState, s *ast.WhileStmt) {
	condLabel := fs.labels.openLabel()
	fs.labels.defineLabel(condLabel, fs.offset())

	breakLabel := fs.labels.openLabel()
	condReg := c.compileExpr(fs, s.Cond)
	fs.regs.release(s.Cond)
	bidx := fs.emit(Instruction{Op: BRANCHNOT, A: condReg})
	fs.labels.reserve(bidx, 1, breakLabel)

	fs.loopLabels[s] = &loopLabelPair{cont: condLabel, brk: breakLabel}

	c.compileStmt(fs, s.Body)

	jidx := fs.emit(Instruction{Op: JUMP})
	fs.labels.reserve(jidx, 0, condLabel)
	fs.labels.defineLabel(breakLabel, fs.offset())

	s.ContinueLabel = i32ptr(condLabel.offset)
	s.BreakLabel = i32ptr(breakLabel.offset)
}

func (c *compilerState) compileDoWhile(fs *funcState, s *ast.DoWhileStmt) {
	bodyLabel := fs.labels.openLabel()
	fs.labels.defineLabel(bodyLabel, fs.offset())

	continueLabel := fs.labels.openLabel()
	breakLabel := fs.labels.openLabel()
	fs.loopLabels[s] = &loopLabelPair{cont: continueLabel, brk: breakLabel}

	c.compileStmt(fs, s.Body)

	fs.labels.defineLabel(continueLabel, fs.offset())
	condReg := c.compileExpr(fs, s.Cond)
	fs.regs.release(s.Cond)
	bidx := fs.emit(Instruction{Op: BRANCH, A: condReg})
	fs.labels.reserve(bidx, 1, bodyLabel)

	fs.labels.defineLabel(breakLabel, fs.offset())

	s.ContinueLabel = i32ptr(continueLabel.offset)
	s.BreakLabel = i32ptr(breakLabel.offset)
}

func (c *compilerState) compileFor(fs *funcState, s *ast.ForStmt) {
	savedTop := fs.regs.top

	if s.Init != nil {
		c.compileStmt(fs, s.Init)
	}

	condLabel := fs.labels.openLabel()
	fs.labels.defineLabel(condLabel, fs.offset())

	breakLabel := fs.labels.openLabel()
	if s.Cond != nil {
		condReg := c.compileExpr(fs, s.Cond)
		fs.regs.release(s.Cond)
		bidx := fs.emit(Instruction{Op: BRANCHNOT, A: condReg})
		fs.labels.reserve(bidx, 1, breakLabel)
	}

	continueLabel := fs.labels.openLabel()
	fs.loopLabels[s] = &loopLabelPair{cont: continueLabel, brk: breakLabel}

	c.compileStmt(fs, s.Body)

	fs.labels.defineLabel(continueLabel, fs.offset())
	if s.Post != nil {
		c.compileExpr(fs, s.Post)
		fs.regs.release(s.Post)
	}

	jidx := fs.emit(Instruction{Op: JUMP})
	fs.labels.reserve(jidx, 0, condLabel)
	fs.labels.defineLabel(breakLabel, fs.offset())

	s.ContinueLabel = i32ptr(continueLabel.offset)
	s.BreakLabel = i32ptr(breakLabel.offset)

	fs.regs.top = savedTop
}

func (c *compilerState) compileJump(fs *funcState, s *ast.JumpStmt) {
	pair, ok := fs.loopLabels[s.CorrespondingLoop]
	if !ok {
		fail("break/continue with no resolved loop label")
	}
	idx := fs.emit(Instruction{Op: JUMP})
	if s.Kind == ast.BREAK {
		fs.labels.reserve(idx, 0, pair.brk)
	} else {
		fs.labels.reserve(idx, 0, pair.cont)
	}
}

func (c *compilerState) compileReturn(fs *funcState, s *ast.ReturnStmt) {
	if s.Kind == ast.YIELD {
		fs.emit(Instruction{Op: YIELD})
		return
	}
	if s.Value == nil {
		fs.emit(Instruction{Op: RETURN, A: 0, B: 0})
		return
	}
	reg := c.compileExpr(fs, s.Value)
	fs.emit(Instruction{Op: RETURN, A: reg, B: 1})
	fs.regs.release(s.Value)
}

func i32ptr(v int32) *int32 { return &v }
