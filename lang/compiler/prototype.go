package compiler

// ConstKind identifies the type of one constant-pool entry. The code
// generator never produces Table/Array/Function constants; those are built
// at runtime by NEWTABLE/NEWARRAY/NEWFUNC.
type ConstKind uint8

const (
	ConstNull ConstKind = iota
	ConstInt
	ConstFloat
	ConstString
)

// Const is one entry of a Prototype's constant pool.
type Const struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
}

// strictEqual reports whether c and other represent the same value under
// the same rules the runtime uses for Table key / Value equality: same
// tag, same payload, strings compared by content.
func (c Const) strictEqual(other Const) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case ConstNull:
		return true
	case ConstInt:
		return c.Int == other.Int
	case ConstFloat:
		return c.Float == other.Float
	case ConstString:
		return c.Str == other.Str
	default:
		return false
	}
}

// Prototype is the immutable compiled form of one function: its bytecode,
// constant pool, and nested function prototypes (for NEWFUNC).
type Prototype struct {
	Constants []Const
	Code      []Instruction
	Nested    []*Prototype

	FunctionLevel int
	NumArgs       int
	LocalSize     int // peak register count; the high-water mark
}
