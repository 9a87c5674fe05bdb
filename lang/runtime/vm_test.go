package runtime_test

import (
	"testing"

	"github.com/mna/corelang/lang/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticIntIntStaysInt(t *testing.T) {
	c := runSrc(t, `return 7 / 2;`, 1)
	tag, err := c.Type(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.TagInt, tag)
	v, _ := c.Int(0)
	assert.EqualValues(t, 3, v)
}

func TestArithmeticAnyFloatOperandPromotes(t *testing.T) {
	c := runSrc(t, `return 7 / 2.0;`, 1)
	tag, err := c.Type(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.TagFloat, tag)
	v, _ := c.Float(0)
	assert.InDelta(t, 3.5, v, 1e-9)
}

func TestBitwiseOpsRejectFloatOperand(t *testing.T) {
	c := runtime.NewContext()
	require.NoError(t, c.Load("t.cm", []byte(`return 1 & 2.0;`)))
	err := c.Run(0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-integer")
}

func TestBitwiseOpsOnInts(t *testing.T) {
	c := runSrc(t, `return (6 & 3) + (6 | 1) * 10 + (5 ^ 1);`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	// (6&3)=2, (6|1)=7*10=70, (5^1)=4 => 2+70+4=76
	assert.EqualValues(t, 76, v)
}

func TestShiftOps(t *testing.T) {
	c := runSrc(t, `return (1 << 4) + (256 >> 4);`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, 16+16, v)
}

func TestUnaryMinusIntAndFloat(t *testing.T) {
	c := runSrc(t, `return -5;`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, -5, v)

	c2 := runSrc(t, `return -2.5;`, 1)
	f, err := c2.Float(0)
	require.NoError(t, err)
	assert.InDelta(t, -2.5, f, 1e-9)
}

// Negation followed by BITNOT must give the complement of the negated value.
// The compiler lowers unary minus to SUB from a zero constant, so this source
// never reaches the VM's UNM case; it exercises SUB and then BITNOT.
func TestUnaryMinusDoesNotFallThroughToBitnot(t *testing.T) {
	c := runSrc(t, `local x = -5; return ~x;`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, ^int64(-5), v)
}

func TestBitnotRejectsFloat(t *testing.T) {
	c := runtime.NewContext()
	require.NoError(t, c.Load("t.cm", []byte(`return ~1.5;`)))
	err := c.Run(0, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-integer")
}

func TestStrictEqualityNeverConflatesDistinctTags(t *testing.T) {
	c := runSrc(t, `return 0 == null;`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v) // false, despite both being "falsy"
}

func TestStrictEqualityIntVsFloatSameValue(t *testing.T) {
	// distinct tags (Int vs Float) must compare unequal even with equal
	// numeric value, per the strict (tag, payload) rule.
	c := runSrc(t, `return 1 == 1.0;`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
}

func TestStrictEqualityStringsByContent(t *testing.T) {
	c := runSrc(t, `return ("a" + "b") == "ab";`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
}

func TestArrayOutOfRangeGetReturnsNull(t *testing.T) {
	c := runtime.NewContext()
	require.NoError(t, c.Load("t.cm", []byte(`local a = array{1,2,3}; return a[10];`)))
	require.NoError(t, c.Run(0, 1))
	tag, err := c.Type(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.TagNull, tag)
}

func TestArraySetExtendsWithNullPadding(t *testing.T) {
	c := runtime.NewContext()
	require.NoError(t, c.Load("t.cm", []byte(`
		local a = array{};
		a[3] = 9;
		return a[1];
	`)))
	require.NoError(t, c.Run(0, 1))
	tag, err := c.Type(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.TagNull, tag)
}

func TestTableMissingKeyReturnsNull(t *testing.T) {
	c := runtime.NewContext()
	require.NoError(t, c.Load("t.cm", []byte(`local t = table{}; return t["missing"];`)))
	require.NoError(t, c.Run(0, 1))
	tag, err := c.Type(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.TagNull, tag)
}

func TestTableAssigningNullRemovesKey(t *testing.T) {
	c := runtime.NewContext()
	require.NoError(t, c.Load("t.cm", []byte(`
		local t = table{"k": 1};
		t["k"] = null;
		return t["k"];
	`)))
	require.NoError(t, c.Run(0, 1))
	tag, err := c.Type(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.TagNull, tag)
}

func TestConditionalAndShortCircuit(t *testing.T) {
	c := runSrc(t, `
		local function sideEffect() { return 1; }
		local x = 0;
		local r = (x != 0) && sideEffect();
		return r ? 1 : 0;
	`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
}

func TestWhileLoopAccumulates(t *testing.T) {
	c := runSrc(t, `
		local i = 0;
		local sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		return sum;
	`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, 10, v)
}

func TestForLoopBreakContinue(t *testing.T) {
	c := runSrc(t, `
		local sum = 0;
		for (local i = 0; i < 10; i = i + 1) {
			if (i == 5) { break; }
			if (i % 2 == 0) { continue; }
			sum = sum + i;
		}
		return sum;
	`, 1)
	v, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1+3, v)
}

func TestMultipleReturnValuesPaddedWithNull(t *testing.T) {
	c := runtime.NewContext()
	require.NoError(t, c.Load("t.cm", []byte(`
		local function one() { return 1; }
		return one();
	`)))
	require.NoError(t, c.Run(0, 2))
	v0, err := c.Int(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v0)
	tag1, err := c.Type(1)
	require.NoError(t, err)
	assert.Equal(t, runtime.TagNull, tag1)
}

func TestYieldIsUnsupported(t *testing.T) {
	c := runtime.NewContext()
	err := c.Load("t.cm", []byte(`yield 1; return;`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coroutine")
	assert.Equal(t, 0, c.StackSize())
}
