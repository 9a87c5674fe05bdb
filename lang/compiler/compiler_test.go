package compiler_test

import (
	"testing"

	"github.com/mna/corelang/internal/corpus"
	"github.com/mna/corelang/lang/compiler"
	"github.com/mna/corelang/lang/parser"
	"github.com/mna/corelang/lang/resolver"
	"github.com/mna/corelang/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileSrc(t *testing.T, src string) *compiler.Prototype {
	t.Helper()
	def, err := parser.Parse("t.cm", []byte(src))
	require.NoError(t, err)
	require.NoError(t, resolver.Resolve(token.NewFile("t.cm"), def))
	proto, err := compiler.Compile(def)
	require.NoError(t, err)
	return proto
}

// opNames extracts just the opcodes from a code slice, for shape assertions
// that don't want to hardcode every operand.
func opNames(code []compiler.Instruction) []string {
	names := make([]string, len(code))
	for i, instr := range code {
		names[i] = instr.Op.String()
	}
	return names
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	proto := compileSrc(t, `local x = 1 + 2 * 3;`)
	assert.Contains(t, opNames(proto.Code), "MUL")
	assert.Contains(t, opNames(proto.Code), "ADD")
	// the multiplication's operands must be computed before the addition
	// combines them: MUL must appear before the ADD that consumes it.
	ops := opNames(proto.Code)
	mulAt, addAt := -1, -1
	for i, n := range ops {
		if n == "MUL" && mulAt == -1 {
			mulAt = i
		}
		if n == "ADD" && addAt == -1 {
			addAt = i
		}
	}
	assert.Greater(t, addAt, mulAt)
}

func TestCompileGlobalAssignment(t *testing.T) {
	proto := compileSrc(t, `y = 1;`)
	assert.Contains(t, opNames(proto.Code), "SETGLOBAL")
	assert.NotContains(t, opNames(proto.Code), "GETGLOBAL")
}

func TestCompileCompoundAssignmentOnGlobal(t *testing.T) {
	proto := compileSrc(t, `y += 1;`)
	ops := opNames(proto.Code)
	assert.Contains(t, ops, "GETGLOBAL")
	assert.Contains(t, ops, "ADD")
	assert.Contains(t, ops, "SETGLOBAL")
}

func TestCompileTableIndexAssignment(t *testing.T) {
	proto := compileSrc(t, `local t = {}; t[1] = 2;`)
	assert.Contains(t, opNames(proto.Code), "SETTABLE")
	assert.NotContains(t, opNames(proto.Code), "GETTABLE")
}

func TestCompileTableIndexCompoundAssignment(t *testing.T) {
	proto := compileSrc(t, `local t = {}; t[1] += 2;`)
	ops := opNames(proto.Code)
	assert.Contains(t, ops, "GETTABLE")
	assert.Contains(t, ops, "SETTABLE")
}

func TestCompileIncrementDecrement(t *testing.T) {
	proto := compileSrc(t, `local x = 0; x++; x--;`)
	ops := opNames(proto.Code)
	addCount, subCount := 0, 0
	for _, n := range ops {
		if n == "ADD" {
			addCount++
		}
		if n == "SUB" {
			subCount++
		}
	}
	assert.Equal(t, 1, addCount)
	assert.Equal(t, 1, subCount)
}

func TestCompileComparisonSwap(t *testing.T) {
	proto := compileSrc(t, `local x = 1 > 2; local y = 1 >= 2;`)
	ops := opNames(proto.Code)
	assert.Contains(t, ops, "LT")
	assert.Contains(t, ops, "LE")
}

func TestCompileShortCircuit(t *testing.T) {
	proto := compileSrc(t, `local x = 1 && 2;`)
	ops := opNames(proto.Code)
	assert.Contains(t, ops, "BRANCHNOT")
}

func TestCompileWhileLoop(t *testing.T) {
	proto := compileSrc(t, `local i = 0; while (i < 10) { i++; }`)
	ops := opNames(proto.Code)
	assert.Contains(t, ops, "BRANCHNOT")
	assert.Contains(t, ops, "JUMP")
}

func TestCompileForLoopBreakContinue(t *testing.T) {
	proto := compileSrc(t, `
		for (local i = 0; i < 10; i++) {
			if (i == 5) { break; }
			continue;
		}
	`)
	ops := opNames(proto.Code)
	assert.Contains(t, ops, "EQ")
	jumps := 0
	for _, n := range ops {
		if n == "JUMP" {
			jumps++
		}
	}
	assert.GreaterOrEqual(t, jumps, 3) // loop back-edge, break, continue
}

func TestCompileFunctionCall(t *testing.T) {
	proto := compileSrc(t, `
		local f = function(a, b) { return a + b; };
		local r = f(1, 2);
	`)
	assert.Len(t, proto.Nested, 1)
	assert.Contains(t, opNames(proto.Code), "NEWFUNC")
	assert.Contains(t, opNames(proto.Code), "CALL")

	nested := proto.Nested[0]
	assert.Equal(t, 2, nested.NumArgs)
	assert.Contains(t, opNames(nested.Code), "RETURN")
}

func TestCompileClosureUpvalue(t *testing.T) {
	proto := compileSrc(t, `
		local x = 1;
		local f = function() { return x; };
	`)
	require.Len(t, proto.Nested, 1)
	assert.Contains(t, opNames(proto.Nested[0].Code), "GETUPVAL")
}

func TestCompileTrinary(t *testing.T) {
	proto := compileSrc(t, `local x = 1 ? 2 : 3;`)
	ops := opNames(proto.Code)
	assert.Contains(t, ops, "BRANCHNOT")
	assert.Contains(t, ops, "JUMP")
}

func TestCompileArrayLiteral(t *testing.T) {
	proto := compileSrc(t, `local a = array { 1, 2, 3 };`)
	ops := opNames(proto.Code)
	assert.Contains(t, ops, "NEWARRAY")
	assert.Contains(t, ops, "SETTABLE")
}

func TestCompileConstantPoolDedup(t *testing.T) {
	proto := compileSrc(t, `local x = 1; local y = 1; local z = "a"; local w = "a";`)
	intCount, strCount := 0, 0
	for _, c := range proto.Constants {
		if c.Kind == compiler.ConstInt && c.Int == 1 {
			intCount++
		}
		if c.Kind == compiler.ConstString && c.Str == "a" {
			strCount++
		}
	}
	assert.Equal(t, 1, intCount)
	assert.Equal(t, 1, strCount)
}

func TestCompileRegisterBalance(t *testing.T) {
	// A long sequence of nested expressions should never panic on the
	// compiler's internal "deallocation out of stack order" invariant; if
	// register release ordering is wrong anywhere in the expression or
	// statement compilers, compileSrc's require.NoError (inside Compile)
	// fails loudly instead of silently corrupting later allocations.
	compileSrc(t, `
		local t = {};
		t[1] = 2;
		t[2] += 3;
		local a = (1 + 2) * (3 - 4) / 5 % 6;
		local b = a > 1 && a < 10 || a == 0;
		for (local i = 0; i < 5; i++) {
			if (i % 2 == 0) { t[i] = i * i; } else { continue; }
		}
		local f = function(x, y) {
			local z = x + y;
			return z ? z-- : ++z;
		};
		local r = f(a, b);
	`)
}

func TestCompileFactorialEmitsRecursiveCall(t *testing.T) {
	proto := compileSrc(t, corpus.Factorial)
	// fact's own body is a nested Prototype, not inline in the top-level code.
	require.Len(t, proto.Nested, 1)
	assert.Contains(t, opNames(proto.Nested[0].Code), "CALL")
}
