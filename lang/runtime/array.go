package runtime

// Array is a dense, zero-indexed sequence of values.
type Array struct {
	gcHeader
	slots []Value
}

var _ Object = (*Array)(nil)

func newArray(m *ObjectManager) *Array {
	a := &Array{}
	m.register(a)
	return a
}

func (a *Array) String() string { return "array" }
func (a *Array) Type() string   { return "array" }

func (a *Array) forEachChild(visit func(Object)) {
	for _, v := range a.slots {
		if v.Tag.IsObject() && v.Obj != nil {
			visit(v.Obj)
		}
	}
}

// Len returns the number of slots in the array.
func (a *Array) Len() int { return len(a.slots) }

// Get returns the value at index k, or Null if k is out of range.
func (a *Array) Get(k int) Value {
	if k < 0 || k >= len(a.slots) {
		return Null
	}
	return a.slots[k]
}

// Set stores v at index k, extending the array with Null padding if
// k >= Len(). A negative k is a no-op and reports failure.
func (a *Array) Set(k int, v Value) bool {
	if k < 0 {
		return false
	}
	for k >= len(a.slots) {
		a.slots = append(a.slots, Null)
	}
	assign(&a.slots[k], v)
	return true
}
