package runtime

// Closure is the mutable local-slot array created on every call: one slot
// per register in the callee's Prototype (sized to Prototype.LocalSize),
// plus a link to the enclosing closure active when the Function was
// created, used to resolve GETUPVAL/SETUPVAL.
type Closure struct {
	gcHeader
	locals []Value
	parent *Closure
	level  int // the declaring Prototype's FunctionLevel
}

var _ Object = (*Closure)(nil)

func newClosure(m *ObjectManager, localSize, level int, parent *Closure) *Closure {
	c := &Closure{locals: make([]Value, localSize), parent: parent, level: level}
	for i := range c.locals {
		c.locals[i] = Null
	}
	m.register(c)
	if parent != nil {
		parent.addRef()
	}
	return c
}

func (c *Closure) String() string { return "closure" }
func (c *Closure) Type() string   { return "closure" }

func (c *Closure) forEachChild(visit func(Object)) {
	for _, v := range c.locals {
		if v.Tag.IsObject() && v.Obj != nil {
			visit(v.Obj)
		}
	}
	if c.parent != nil {
		visit(c.parent)
	}
}

// Local returns the value in register i.
func (c *Closure) Local(i int) Value { return c.locals[i] }

// SetLocal stores v into register i, managing refcounts on the prior
// occupant via assign.
func (c *Closure) SetLocal(i int, v Value) {
	assign(&c.locals[i], v)
}

// upvalueClosure walks the parent chain from c (the currently executing
// closure) to the ancestor whose declaring FunctionLevel equals level, the
// absolute level GETUPVAL/SETUPVAL's C operand carries.
func (c *Closure) upvalueClosure(level int) *Closure {
	cur := c
	for cur != nil && cur.level != level {
		cur = cur.parent
	}
	if cur == nil {
		panic("runtime: upvalue parent chain exhausted before reaching declaring level")
	}
	return cur
}

// UpValue returns a pointer to the declaring closure's register slot,
// usable for both GETUPVAL (read) and SETUPVAL (write via assign).
func (c *Closure) UpValue(level, register int) *Value {
	return &c.upvalueClosure(level).locals[register]
}
