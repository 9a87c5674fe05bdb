package runtime

import "github.com/mna/corelang/lang/compiler"

// Function is an immutable pair of a compiled Prototype and the closure
// active at the point the function literal was evaluated (nil for the
// top-level prototype, which captures nothing).
type Function struct {
	gcHeader
	Prototype    *compiler.Prototype
	UpperClosure *Closure
}

var _ Object = (*Function)(nil)

func newFunction(m *ObjectManager, proto *compiler.Prototype, upper *Closure) *Function {
	f := &Function{Prototype: proto, UpperClosure: upper}
	m.register(f)
	if upper != nil {
		upper.addRef()
	}
	return f
}

func (f *Function) String() string { return "function" }
func (f *Function) Type() string   { return "function" }

func (f *Function) forEachChild(visit func(Object)) {
	if f.UpperClosure != nil {
		visit(f.UpperClosure)
	}
}
