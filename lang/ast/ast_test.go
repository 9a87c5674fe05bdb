package ast_test

import (
	"testing"

	"github.com/mna/corelang/lang/ast"
	"github.com/mna/corelang/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagHas(t *testing.T) {
	f := ast.LVALUE | ast.TABLE
	assert.True(t, f.Has(ast.LVALUE))
	assert.True(t, f.Has(ast.LVALUE|ast.TABLE))
	assert.False(t, f.Has(ast.STORE))
}

func TestWalkVisitsEveryNode(t *testing.T) {
	pos := token.MakePos(1, 1)
	lhs := ast.NewTerminalExpr(pos, ast.Identifier)
	lhs.Name = "x"
	rhs := ast.NewTerminalExpr(pos, ast.Int)
	rhs.IntValue = 1
	bin := ast.NewBinaryExpr(pos, token.ASSIGN, rhs, lhs)
	exprStmt := ast.NewExpressionStmt(pos, bin)
	seq := ast.NewStmtSequence(pos, []ast.Stmt{exprStmt})

	var visited int
	ast.Inspect(seq, func(n ast.Node) bool {
		if n != nil {
			visited++
		}
		return true
	})
	// StmtSequence, ExpressionStmt, BinaryExpr, rhs, lhs = 5 nodes.
	assert.Equal(t, 5, visited)
}

func TestSprintIsStable(t *testing.T) {
	pos := token.MakePos(2, 3)
	id := ast.NewTerminalExpr(pos, ast.Identifier)
	id.Name = "y"
	stmt := ast.NewExpressionStmt(pos, id)
	seq := ast.NewStmtSequence(pos, []ast.Stmt{stmt})

	out1 := ast.Sprint(seq)
	out2 := ast.Sprint(seq)
	require.Equal(t, out1, out2)
	assert.Contains(t, out1, `name="y"`)
}

func TestAnalyzerFieldsStartUnset(t *testing.T) {
	v := ast.NewVariableStmt(token.NoPos, "x", nil)
	assert.Nil(t, v.ScopeLevel)
	assert.Nil(t, v.FunctionLevel)
	assert.Nil(t, v.RegisterOffset)

	fd := ast.NewFunctionDefinition(token.NoPos, "f", ast.NewStmtSequence(token.NoPos, nil), ast.NewStmtSequence(token.NoPos, nil))
	assert.Nil(t, fd.NumVariable)
	assert.Nil(t, fd.FunctionLevel)
	assert.Nil(t, fd.FunctionNum)
}
