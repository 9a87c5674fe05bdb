package ast

import "github.com/mna/corelang/lang/token"

func (*StmtSequence) stmtNode()  {}
func (*CompoundStmt) stmtNode()  {}
func (*ForStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()     {}
func (*DoWhileStmt) stmtNode()   {}
func (*IfElseStmt) stmtNode()    {}
func (*ReturnStmt) stmtNode()    {}
func (*JumpStmt) stmtNode()      {}
func (*VariableStmt) stmtNode()  {}
func (*ExpressionStmt) stmtNode() {}

// StmtSequence is an ordered list of statements, used for blocks, function
// bodies and the top-level program.
type StmtSequence struct {
	base
	Stmts []Stmt
}

func NewStmtSequence(pos token.Pos, stmts []Stmt) *StmtSequence {
	return &StmtSequence{base: base{pos: pos}, Stmts: stmts}
}

// CompoundStmt is a `{ ... }` block introducing a new lexical scope.
type CompoundStmt struct {
	base
	Body *StmtSequence

	// ScopeLevel and NumVariable are stamped by the resolver: the scope
	// depth this block opens at, and how many locals it declares directly.
	ScopeLevel  unset
	NumVariable unset
}

func NewCompoundStmt(pos token.Pos, body *StmtSequence) *CompoundStmt {
	return &CompoundStmt{base: base{pos: pos}, Body: body}
}

// loopLabels holds the analyzer/codegen-assigned labels shared by every loop
// statement variant.
type loopLabels struct {
	ContinueLabel Label
	BreakLabel    Label
}

// ForStmt is a C-style `for (init; cond; post) body` loop.
type ForStmt struct {
	base
	loopLabels
	Init Stmt // ExpressionStmt, VariableStmt or nil
	Cond Expr // nil means "always true"
	Post Expr // nil means no post-expression
	Body Stmt
}

func NewForStmt(pos token.Pos, init Stmt, cond, post Expr, body Stmt) *ForStmt {
	return &ForStmt{base: base{pos: pos}, Init: init, Cond: cond, Post: post, Body: body}
}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	base
	loopLabels
	Cond Expr
	Body Stmt
}

func NewWhileStmt(pos token.Pos, cond Expr, body Stmt) *WhileStmt {
	return &WhileStmt{base: base{pos: pos}, Cond: cond, Body: body}
}

// DoWhileStmt is `do body while (cond);`.
type DoWhileStmt struct {
	base
	loopLabels
	Body Stmt
	Cond Expr
}

func NewDoWhileStmt(pos token.Pos, body Stmt, cond Expr) *DoWhileStmt {
	return &DoWhileStmt{base: base{pos: pos}, Body: body, Cond: cond}
}

// IfElseStmt is `if (cond) then [else else_]`.
type IfElseStmt struct {
	base
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else clause
}

func NewIfElseStmt(pos token.Pos, cond Expr, then, els Stmt) *IfElseStmt {
	return &IfElseStmt{base: base{pos: pos}, Cond: cond, Then: then, Else: els}
}

// ReturnKind distinguishes `return` from the reserved `yield`.
type ReturnKind uint8

const (
	RETURN ReturnKind = iota
	YIELD
)

// ReturnStmt is `return [expr];` or the reserved `yield [expr];`.
type ReturnStmt struct {
	base
	Kind  ReturnKind
	Value Expr // nil for a bare return
}

func NewReturnStmt(pos token.Pos, kind ReturnKind, value Expr) *ReturnStmt {
	return &ReturnStmt{base: base{pos: pos}, Kind: kind, Value: value}
}

// JumpKind distinguishes `break` from `continue`.
type JumpKind uint8

const (
	BREAK JumpKind = iota
	CONTINUE
)

// JumpStmt is `break;` or `continue;`.
type JumpStmt struct {
	base
	Kind JumpKind

	// CorrespondingLoop is set by the resolver to the innermost enclosing
	// loop statement of the current function; it is a resolver error for
	// this to remain unset after analysis.
	CorrespondingLoop Stmt
}

func NewJumpStmt(pos token.Pos, kind JumpKind) *JumpStmt {
	return &JumpStmt{base: base{pos: pos}, Kind: kind}
}

// VariableStmt declares one local, optionally with an initializer; it is
// also used to represent a function parameter (with Init == nil).
type VariableStmt struct {
	base
	Name string
	Init Expr // nil if uninitialized

	// ScopeLevel and FunctionLevel are stamped by the resolver,
	// RegisterOffset by the compiler.
	ScopeLevel    unset
	FunctionLevel unset
	RegisterOffset unset
}

func NewVariableStmt(pos token.Pos, name string, init Expr) *VariableStmt {
	return &VariableStmt{base: base{pos: pos}, Name: name, Init: init}
}

// ExpressionStmt is an expression evaluated for its side effects.
type ExpressionStmt struct {
	base
	X Expr
}

func NewExpressionStmt(pos token.Pos, x Expr) *ExpressionStmt {
	return &ExpressionStmt{base: base{pos: pos}, X: x}
}
