// Package runtime implements the stack-machine VM: the tagged Value model,
// the refcounted heap objects (String, Array, Table, Function, Closure), the
// hybrid refcount/mark-sweep garbage collector, and the Context embedding
// API that a host uses to load and run compiled prototypes.
package runtime

import "fmt"

// Tag identifies the discriminant of a Value. Order matters: tags strictly
// less than Null are numbers, tags strictly greater than CFunc are heap
// objects, Null itself is neither.
type Tag uint8

const (
	TagInt Tag = iota
	TagFloat
	TagNull
	TagCFunc
	TagString
	TagArray
	TagTable
	TagFunc
)

func (t Tag) String() string {
	switch t {
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagNull:
		return "null"
	case TagCFunc:
		return "cfunc"
	case TagString:
		return "string"
	case TagArray:
		return "array"
	case TagTable:
		return "table"
	case TagFunc:
		return "function"
	default:
		return "illegal tag"
	}
}

// IsNumber reports whether t is Int or Float.
func (t Tag) IsNumber() bool { return t < TagNull }

// IsObject reports whether t carries a refcounted heap object payload.
func (t Tag) IsObject() bool { return t > TagCFunc }

// CFunction is a native function bound into the globals table by
// Context.RegisterCFunction. It reads arguments from and writes results to
// the Context's communication buffer, exactly like a script CALL target
// would via the buffer protocol.
type CFunction func(*Context) error

// Value is a discriminated (Tag, payload) pair, copied by value throughout
// the VM (registers, locals, buffer slots, table/array elements). Object
// payloads are refcounted; callers must go through retain/dropValue (or a
// Closure/Array/Table setter, which call them internally) rather than
// assigning Value structs directly whenever the old or new value may carry
// an object tag.
type Value struct {
	Tag   Tag
	Int   int64
	Float float64
	CFunc CFunction
	Obj   Object
}

// Null is the single value of tag Null.
var Null = Value{Tag: TagNull}

func IntValue(i int64) Value     { return Value{Tag: TagInt, Int: i} }
func FloatValue(f float64) Value { return Value{Tag: TagFloat, Float: f} }
func CFuncValue(fn CFunction) Value {
	return Value{Tag: TagCFunc, CFunc: fn}
}

// ObjValue wraps a heap object in a Value of the given tag. It does not
// retain obj; callers assign the result through a refcount-aware setter
// (or explicitly call retain) immediately afterward.
func ObjValue(tag Tag, obj Object) Value {
	if !tag.IsObject() {
		panic("runtime: ObjValue called with a non-object tag")
	}
	return Value{Tag: tag, Obj: obj}
}

func StringValue(s *String) Value { return ObjValue(TagString, s) }
func ArrayValue(a *Array) Value   { return ObjValue(TagArray, a) }
func TableValue(t *Table) Value   { return ObjValue(TagTable, t) }
func FuncValue(f *Function) Value { return ObjValue(TagFunc, f) }

// Truthy reports v's boolean coercion: Null is false, Int/Float are false
// only when zero, everything else (including CFunc) is true.
func (v Value) Truthy() bool {
	switch v.Tag {
	case TagNull:
		return false
	case TagInt:
		return v.Int != 0
	case TagFloat:
		return v.Float != 0
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Tag {
	case TagInt:
		return fmt.Sprintf("%d", v.Int)
	case TagFloat:
		return fmt.Sprintf("%g", v.Float)
	case TagNull:
		return "null"
	case TagCFunc:
		return "cfunction"
	default:
		return v.Obj.String()
	}
}

// retain increments v's object refcount, if it carries one.
func retain(v Value) {
	if v.Tag.IsObject() && v.Obj != nil {
		v.Obj.addRef()
	}
}

// dropValue decrements v's object refcount, if it carries one, freeing it
// (unless invalidated by a GC sweep) when it reaches zero.
func dropValue(v Value) {
	if v.Tag.IsObject() && v.Obj != nil {
		v.Obj.release()
	}
}

// assign stores src into *dst, releasing whatever object *dst previously
// held and retaining src's object. ASSIGN is only ever emitted for distinct
// registers, so self-assignment (dst aliasing src's own storage) is never
// exercised here.
func assign(dst *Value, src Value) {
	dropValue(*dst)
	*dst = src
	retain(src)
}

// strictEqualValue reports whether x and y are strictly equal: same tag,
// same payload, strings compared by content.
func strictEqualValue(x, y Value) bool {
	if x.Tag != y.Tag {
		return false
	}
	switch x.Tag {
	case TagInt:
		return x.Int == y.Int
	case TagFloat:
		return x.Float == y.Float
	case TagNull:
		return true
	case TagCFunc:
		return fmt.Sprintf("%p", x.CFunc) == fmt.Sprintf("%p", y.CFunc)
	case TagString:
		return x.Obj.(*String).value == y.Obj.(*String).value
	default:
		return x.Obj == y.Obj
	}
}
