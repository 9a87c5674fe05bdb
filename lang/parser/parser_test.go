package parser_test

import (
	"testing"

	"github.com/mna/corelang/internal/corpus"
	"github.com/mna/corelang/lang/ast"
	"github.com/mna/corelang/lang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProgramWrapsSyntheticFunction(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(`local x = 1;`))
	require.NoError(t, err)
	assert.Equal(t, "", def.Name)
	assert.Empty(t, def.Arguments.Stmts)
	require.Len(t, def.Body.Stmts, 1)

	v, ok := def.Body.Stmts[0].(*ast.VariableStmt)
	require.True(t, ok)
	assert.Equal(t, "x", v.Name)
}

func TestParseAssignmentIsRightAssociativeWithSwappedOperands(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(`a = b = 1;`))
	require.NoError(t, err)
	stmt := def.Body.Stmts[0].(*ast.ExpressionStmt)
	outer, ok := stmt.X.(*ast.BinaryExpr)
	require.True(t, ok)

	// outer.Y is the destination ("a"); outer.X is the value, itself the
	// inner assignment "b = 1".
	dest, ok := outer.Y.(*ast.TerminalExpr)
	require.True(t, ok)
	assert.Equal(t, "a", dest.Name)

	inner, ok := outer.X.(*ast.BinaryExpr)
	require.True(t, ok)
	innerDest := inner.Y.(*ast.TerminalExpr)
	assert.Equal(t, "b", innerDest.Name)
}

func TestParsePrecedence(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(`x = 1 + 2 * 3;`))
	require.NoError(t, err)
	stmt := def.Body.Stmts[0].(*ast.ExpressionStmt)
	assign := stmt.X.(*ast.BinaryExpr)
	add := assign.X.(*ast.BinaryExpr)
	assert.Equal(t, "+", add.Op.String())
	mul := add.Y.(*ast.BinaryExpr)
	assert.Equal(t, "*", mul.Op.String())
}

func TestParseConditional(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(`x = a ? b : c;`))
	require.NoError(t, err)
	stmt := def.Body.Stmts[0].(*ast.ExpressionStmt)
	assign := stmt.X.(*ast.BinaryExpr)
	_, ok := assign.X.(*ast.TrinaryExpr)
	assert.True(t, ok)
}

func TestParseTableLiteralAutoKeys(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(`x = { 10, 20, k: 30 };`))
	require.NoError(t, err)
	stmt := def.Body.Stmts[0].(*ast.ExpressionStmt)
	assign := stmt.X.(*ast.BinaryExpr)
	tbl := assign.X.(*ast.TableExpr)
	require.Len(t, tbl.Initializers, 3)
	assert.Equal(t, int64(0), tbl.Initializers[0].AutoKey)
	assert.Nil(t, tbl.Initializers[0].Key)
	assert.Equal(t, int64(1), tbl.Initializers[1].AutoKey)
	assert.NotNil(t, tbl.Initializers[2].Key)
}

func TestParseArrayShape(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(`x = array { 1, 2, 3 };`))
	require.NoError(t, err)
	stmt := def.Body.Stmts[0].(*ast.ExpressionStmt)
	assign := stmt.X.(*ast.BinaryExpr)
	tbl := assign.X.(*ast.TableExpr)
	assert.Equal(t, ast.Array, tbl.Shape)
}

func TestParseFunctionLiteral(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(`f = function(a, b) { return a + b; };`))
	require.NoError(t, err)
	stmt := def.Body.Stmts[0].(*ast.ExpressionStmt)
	assign := stmt.X.(*ast.BinaryExpr)
	fn := assign.X.(*ast.FunctionExpr)
	require.Len(t, fn.Def.Arguments.Stmts, 2)
	require.Len(t, fn.Def.Body.Stmts, 1)
}

func TestParseLocalFunction(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(`local function add(a, b) { return a + b; }`))
	require.NoError(t, err)
	v := def.Body.Stmts[0].(*ast.VariableStmt)
	assert.Equal(t, "add", v.Name)
	_, ok := v.Init.(*ast.FunctionExpr)
	assert.True(t, ok)
}

func TestParseForWhileDoWhile(t *testing.T) {
	src := `
	for (local i = 0; i < 10; i++) { }
	while (1) { break; }
	do { continue; } while (1);
	`
	def, err := parser.Parse("t.cm", []byte(src))
	require.NoError(t, err)
	require.Len(t, def.Body.Stmts, 3)
	_, ok := def.Body.Stmts[0].(*ast.ForStmt)
	assert.True(t, ok)
	_, ok = def.Body.Stmts[1].(*ast.WhileStmt)
	assert.True(t, ok)
	_, ok = def.Body.Stmts[2].(*ast.DoWhileStmt)
	assert.True(t, ok)
}

func TestParseYieldIsError(t *testing.T) {
	_, err := parser.Parse("t.cm", []byte(`yield 1;`))
	require.Error(t, err)
}

func TestParseErrorOnMalformedExpr(t *testing.T) {
	_, err := parser.Parse("t.cm", []byte(`x = ;`))
	require.Error(t, err)
}

func TestParseFactorialHasOneLocalFunctionDecl(t *testing.T) {
	def, err := parser.Parse("t.cm", []byte(corpus.Factorial))
	require.NoError(t, err)
	_, ok := def.Body.Stmts[0].(*ast.VariableStmt)
	assert.True(t, ok, "local function fact(...) parses as a VariableStmt binding a FunctionExpr")
}
