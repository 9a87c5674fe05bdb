// Package ast defines the abstract syntax tree produced by lang/parser and
// annotated in place by lang/resolver and lang/compiler.
package ast

import "github.com/mna/corelang/lang/token"

// Flag is a bitset of attributes attached to an AST node by the analyzer and
// code generator. Multiple flags may be set on a single node: e.g. a table
// index used as an assignment destination carries LVALUE|TABLE|STORE.
type Flag uint32

const (
	ERROR Flag = 1 << iota
	LVALUE
	STORE
	LOAD
	NOLOAD
	TABLE
	GLOBAL
	UPVALUE
	INTVALUE
	ARRAY
	TEMP
	TEMPTABLE
)

// Has reports whether all of want's bits are set in f.
func (f Flag) Has(want Flag) bool { return f&want == want }

// Node is implemented by every AST node: statements, expressions and the
// support nodes (TableInitializer, FunctionDefinition).
type Node interface {
	Pos() token.Pos
	// Flags returns a pointer to the node's flag word, so later phases can
	// mutate it in place without re-walking the tree to find the node.
	Flags() *Flag
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node. Reg/Lv1/Lv2 expose the
// codegen-assigned register fields common to every variant (see
// exprFields), so lang/compiler's register allocator can release an
// expression's registers without a type switch over every Expr variant.
type Expr interface {
	Node
	exprNode()

	Reg() unset
	SetReg(v uint32)
	Lv1() unset
	SetLv1(v uint32)
	Lv2() unset
	SetLv2(v uint32)
}

// base is embedded in every concrete node; it supplies Pos/Flags.
type base struct {
	pos   token.Pos
	flags Flag
}

func (b *base) Pos() token.Pos { return b.pos }
func (b *base) Flags() *Flag   { return &b.flags }

// unset is the sentinel value for analyzer/codegen-assigned uint32 fields
// that begin unset and are populated by the phase responsible for them.
// Modeled as *uint32 rather than a magic constant, so a nil pointer is a
// type-enforced "not yet assigned".
type unset = *uint32

func setU32(v uint32) unset { return &v }

// Label is a back-patchable code offset assigned by lang/compiler. Like
// unset fields, it starts nil and is filled in once the compiler resolves
// the corresponding jump target.
type Label = *int32
