package ast

import "github.com/mna/corelang/lang/token"

func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*TrinaryExpr) exprNode()  {}
func (*TerminalExpr) exprNode() {}
func (*CallExpr) exprNode()     {}
func (*FunctionExpr) exprNode() {}
func (*TableExpr) exprNode()    {}

// exprFields holds the codegen-assigned fields shared by every expression
// variant: the register holding the expression's value once compiled, and
// up to two l-value registers (e.g. a table index needs a value register
// and a key register).
type exprFields struct {
	RegisterOffset unset
	Lvalue1        unset
	Lvalue2        unset
}

func (f *exprFields) Reg() unset        { return f.RegisterOffset }
func (f *exprFields) SetReg(v uint32)   { f.RegisterOffset = &v }
func (f *exprFields) Lv1() unset        { return f.Lvalue1 }
func (f *exprFields) SetLv1(v uint32)   { f.Lvalue1 = &v }
func (f *exprFields) Lv2() unset        { return f.Lvalue2 }
func (f *exprFields) SetLv2(v uint32)   { f.Lvalue2 = &v }

// UnaryExpr is a prefix or postfix unary operation: `-x`, `++x`, `x--`, `~x`,
// `!x`.
type UnaryExpr struct {
	base
	exprFields
	Op      token.Token
	X       Expr
	Postfix bool
}

func NewUnaryExpr(pos token.Pos, op token.Token, x Expr, postfix bool) *UnaryExpr {
	return &UnaryExpr{base: base{pos: pos}, Op: op, X: x, Postfix: postfix}
}

// BinaryExpr is a two-operand operation: arithmetic, bitwise, comparison,
// logical, assignment (incl. compound assignment) and table indexing
// (Op == token.LBRACK).
//
// For assignment operators, X is the value and Y is the destination — the
// parser builds assignment as a downward-growing chain whose second operand
// is the destination, which drives code-gen evaluation order.
type BinaryExpr struct {
	base
	exprFields
	Op   token.Token
	X, Y Expr
}

func NewBinaryExpr(pos token.Pos, op token.Token, x, y Expr) *BinaryExpr {
	return &BinaryExpr{base: base{pos: pos}, Op: op, X: x, Y: y}
}

// TrinaryExpr is the conditional `cond ? then : else` expression.
type TrinaryExpr struct {
	base
	exprFields
	Cond, Then, Else Expr
}

func NewTrinaryExpr(pos token.Pos, cond, then, els Expr) *TrinaryExpr {
	return &TrinaryExpr{base: base{pos: pos}, Cond: cond, Then: then, Else: els}
}

// TerminalKind distinguishes the kinds of leaf expression.
type TerminalKind uint8

const (
	Null TerminalKind = iota
	Int
	Hex
	Float
	String
	Identifier
)

// TerminalExpr is a leaf expression: a literal or an identifier reference.
type TerminalExpr struct {
	base
	exprFields
	Kind TerminalKind

	IntValue    int64
	FloatValue  float64
	StringValue string
	Name        string // set when Kind == Identifier

	// CorrespondingVar is set by the resolver when Kind == Identifier and
	// the name resolves to a local or upvalue; nil for globals.
	CorrespondingVar *VariableStmt
}

func NewTerminalExpr(pos token.Pos, kind TerminalKind) *TerminalExpr {
	return &TerminalExpr{base: base{pos: pos}, Kind: kind}
}

// CallExpr is a function call `fn(args...)`.
type CallExpr struct {
	base
	exprFields
	Func Expr
	Args []Expr
}

func NewCallExpr(pos token.Pos, fn Expr, args []Expr) *CallExpr {
	return &CallExpr{base: base{pos: pos}, Func: fn, Args: args}
}

// FunctionExpr wraps a function literal so it can appear as an expression
// (e.g. the right-hand side of an assignment, or a call argument).
type FunctionExpr struct {
	base
	exprFields
	Def *FunctionDefinition
}

func NewFunctionExpr(pos token.Pos, def *FunctionDefinition) *FunctionExpr {
	return &FunctionExpr{base: base{pos: pos}, Def: def}
}

// TableShape distinguishes the three spellings of a brace literal.
type TableShape uint8

const (
	// Unknown means no keyword was used; the resolver infers Table or Array
	// shape from the initializer keys.
	Unknown TableShape = iota
	Table
	Array
)

// TableExpr is a `{ ... }`, `table { ... }` or `array { ... }` literal.
type TableExpr struct {
	base
	exprFields
	Shape        TableShape
	Initializers []*TableInitializer
}

func NewTableExpr(pos token.Pos, shape TableShape, inits []*TableInitializer) *TableExpr {
	return &TableExpr{base: base{pos: pos}, Shape: shape, Initializers: inits}
}
