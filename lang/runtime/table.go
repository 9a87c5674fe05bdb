package runtime

import (
	"math"

	"github.com/dolthub/swiss"
)

// tableKey is the comparable projection of a Value used as a swiss.Map key:
// Go's native struct equality gives content equality for strings (via str)
// and payload equality for numbers and object identity for everything else,
// matching the strict-equality Table-key rule without a custom hash
// function.
type tableKey struct {
	tag  Tag
	bits int64
	str  string
	obj  Object
}

func keyOf(v Value) tableKey {
	switch v.Tag {
	case TagInt:
		return tableKey{tag: TagInt, bits: v.Int}
	case TagFloat:
		return tableKey{tag: TagFloat, bits: int64(math.Float64bits(v.Float))}
	case TagNull:
		return tableKey{tag: TagNull}
	case TagString:
		return tableKey{tag: TagString, str: v.Obj.(*String).value}
	default:
		return tableKey{tag: v.Tag, obj: v.Obj}
	}
}

// Table is a hash map from Value to Value, keyed by StrictEqual.
type Table struct {
	gcHeader
	m *swiss.Map[tableKey, Value]
}

var _ Object = (*Table)(nil)

func newTable(m *ObjectManager) *Table {
	t := &Table{m: swiss.NewMap[tableKey, Value](0)}
	m.register(t)
	return t
}

func (t *Table) String() string { return "table" }
func (t *Table) Type() string   { return "table" }

func (t *Table) forEachChild(visit func(Object)) {
	t.m.Iter(func(k tableKey, v Value) bool {
		if k.obj != nil {
			visit(k.obj)
		}
		if v.Tag.IsObject() && v.Obj != nil {
			visit(v.Obj)
		}
		return false
	})
}

// Len returns the number of entries currently in the table.
func (t *Table) Len() int { return t.m.Count() }

// Get returns the value for key, or Null if key is absent.
func (t *Table) Get(key Value) Value {
	v, ok := t.m.Get(keyOf(key))
	if !ok {
		return Null
	}
	return v
}

// Set stores value for key. Setting a Null value for an existing key
// removes the entry; setting a missing key with a Null value is simply a
// no-op insert-then-immediate-absence (nothing to remove). Only keys stored
// by object identity hold a reference to their object; string keys are
// stored by content and hold none.
func (t *Table) Set(key, value Value) {
	k := keyOf(key)
	old, present := t.m.Get(k)

	if value.Tag == TagNull {
		if present {
			dropValue(old)
			if k.obj != nil {
				dropValue(key) // release the reference retained on insertion
			}
			t.m.Delete(k)
		}
		return
	}

	if present {
		dropValue(old)
	} else if k.obj != nil {
		retain(key)
	}
	retain(value)
	t.m.Put(k, value)
}
