package resolver_test

import (
	"testing"

	"github.com/mna/corelang/internal/corpus"
	"github.com/mna/corelang/lang/ast"
	"github.com/mna/corelang/lang/parser"
	"github.com/mna/corelang/lang/resolver"
	"github.com/mna/corelang/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAndResolve(t *testing.T, src string) (*ast.FunctionDefinition, error) {
	t.Helper()
	def, err := parser.Parse("t.cm", []byte(src))
	require.NoError(t, err)
	err = resolver.Resolve(token.NewFile("t.cm"), def)
	return def, err
}

func TestResolveGlobalVsLocal(t *testing.T) {
	def, err := parseAndResolve(t, `local x = 1; y = x;`)
	require.NoError(t, err)

	assignStmt := def.Body.Stmts[1].(*ast.ExpressionStmt)
	assign := assignStmt.X.(*ast.BinaryExpr)

	dest := assign.Y.(*ast.TerminalExpr) // y
	assert.True(t, dest.Flags().Has(ast.LVALUE|ast.GLOBAL))
	assert.True(t, dest.Flags().Has(ast.STORE|ast.NOLOAD))

	value := assign.X.(*ast.TerminalExpr) // x
	assert.True(t, value.Flags().Has(ast.LVALUE))
	assert.False(t, value.Flags().Has(ast.GLOBAL))
	assert.NotNil(t, value.CorrespondingVar)
}

func TestResolveUpvalue(t *testing.T) {
	def, err := parseAndResolve(t, `
		local x = 1;
		f = function() { return x; };
	`)
	require.NoError(t, err)

	assignStmt := def.Body.Stmts[1].(*ast.ExpressionStmt)
	assign := assignStmt.X.(*ast.BinaryExpr)
	fn := assign.X.(*ast.FunctionExpr)
	ret := fn.Def.Body.Stmts[0].(*ast.ReturnStmt)
	id := ret.Value.(*ast.TerminalExpr)

	assert.True(t, id.Flags().Has(ast.UPVALUE))
	require.Len(t, fn.Def.Upvalues, 1)
	assert.Equal(t, "x", fn.Def.Upvalues[0].Name)
}

func TestResolveBreakOutsideLoopIsError(t *testing.T) {
	_, err := parseAndResolve(t, `break;`)
	require.Error(t, err)
}

func TestResolveBreakLinksToLoop(t *testing.T) {
	def, err := parseAndResolve(t, `while (1) { break; }`)
	require.NoError(t, err)
	while := def.Body.Stmts[0].(*ast.WhileStmt)
	body := while.Body.(*ast.CompoundStmt)
	brk := body.Body.Stmts[0].(*ast.JumpStmt)
	assert.Same(t, while, brk.CorrespondingLoop)
}

func TestResolveInvalidAssignTarget(t *testing.T) {
	_, err := parseAndResolve(t, `1 = 2;`)
	require.Error(t, err)
}

func TestResolveTableShapeInference(t *testing.T) {
	def, err := parseAndResolve(t, `
		x = { 1, 2, 3 };
		y = { a: 1 };
	`)
	require.NoError(t, err)

	xAssign := def.Body.Stmts[0].(*ast.ExpressionStmt).X.(*ast.BinaryExpr)
	xTable := xAssign.X.(*ast.TableExpr)
	assert.Equal(t, ast.Array, xTable.Shape)

	yAssign := def.Body.Stmts[1].(*ast.ExpressionStmt).X.(*ast.BinaryExpr)
	yTable := yAssign.X.(*ast.TableExpr)
	assert.Equal(t, ast.Table, yTable.Shape)
}

func TestResolveArrayShapeRejectsNonIntKeys(t *testing.T) {
	_, err := parseAndResolve(t, `x = array { a: 1 };`)
	require.Error(t, err)
}

func TestResolveClosureCounterUpvalueIsMutable(t *testing.T) {
	def, err := parseAndResolve(t, corpus.ClosureCounter)
	require.NoError(t, err)

	makeCounter := def.Body.Stmts[0].(*ast.VariableStmt)
	fn := makeCounter.Init.(*ast.FunctionExpr)
	next := fn.Def.Body.Stmts[1].(*ast.VariableStmt)
	nextFn := next.Init.(*ast.FunctionExpr)
	require.Len(t, nextFn.Def.Upvalues, 1)
	assert.Equal(t, "n", nextFn.Def.Upvalues[0].Name)
}

func TestResolveCallArgsFlaggedLoad(t *testing.T) {
	def, err := parseAndResolve(t, `local f = function() { }; f(1, 2);`)
	require.NoError(t, err)
	stmt := def.Body.Stmts[1].(*ast.ExpressionStmt)
	call := stmt.X.(*ast.CallExpr)
	assert.True(t, call.Func.Flags().Has(ast.LOAD))
	for _, a := range call.Args {
		assert.True(t, a.Flags().Has(ast.LOAD))
	}
}
