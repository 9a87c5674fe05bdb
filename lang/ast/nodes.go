package ast

import "github.com/mna/corelang/lang/token"

// TableInitializer is one `[key:] value` entry of a table/array literal.
// Key is nil for entries that receive an auto-incrementing integer key
// starting at 0.
type TableInitializer struct {
	base
	Key   Expr // nil if the entry has no explicit key
	Value Expr

	// AutoKey is the auto-incrementing integer key assigned by the parser
	// when Key is nil.
	AutoKey int64
}

func NewTableInitializer(pos token.Pos, key, value Expr, autoKey int64) *TableInitializer {
	return &TableInitializer{base: base{pos: pos}, Key: key, Value: value, AutoKey: autoKey}
}

// FunctionDefinition is a function literal: its parameter list, body, and
// the bookkeeping the resolver and compiler attach to it.
type FunctionDefinition struct {
	base
	Name      string // empty for anonymous function literals
	Arguments *StmtSequence // sequence of VariableStmt
	Body      *StmtSequence

	// Upvalues lists, in capture order, the outer-function variables this
	// function closes over.
	Upvalues []*VariableStmt

	// Stamped by the resolver.
	NumVariable   unset
	FunctionLevel unset
	FunctionNum   unset
}

func NewFunctionDefinition(pos token.Pos, name string, args, body *StmtSequence) *FunctionDefinition {
	return &FunctionDefinition{base: base{pos: pos}, Name: name, Arguments: args, Body: body}
}
