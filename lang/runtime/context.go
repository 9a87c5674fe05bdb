package runtime

import (
	"github.com/mna/corelang/lang/compiler"
	"github.com/mna/corelang/lang/parser"
	"github.com/mna/corelang/lang/resolver"
	"github.com/mna/corelang/lang/token"
)

const bufferCapacity = 100

// Context owns one VM's complete state: the object heap, the globals
// table, the fixed-size communication buffer the embedding API operates
// on, and the call stack. One Context must not share objects with another.
type Context struct {
	objects    *ObjectManager
	globals    *Table
	buffer     []Value
	bufferSize int
	callStack  []CallInfo
	reentrant  bool
}

// NewContext returns a Context with an empty globals table and a buffer
// filled with Null, ready for Load/Run.
func NewContext() *Context {
	om := NewObjectManager()
	g := newTable(om)
	g.addRef() // the Context itself holds a strong reference to globals

	buf := make([]Value, bufferCapacity)
	for i := range buf {
		buf[i] = Null
	}

	return &Context{objects: om, globals: g, buffer: buf}
}

// Load compiles src and pushes the resulting top-level Function onto the
// buffer, leaving StackSize() == 1.
func (c *Context) Load(filename string, src []byte) error {
	def, err := parser.Parse(filename, src)
	if err != nil {
		return err
	}
	if err := resolver.Resolve(token.NewFile(filename), def); err != nil {
		return err
	}
	proto, err := compiler.Compile(def)
	if err != nil {
		return err
	}

	fn := newFunction(c.objects, proto, nil)
	assign(&c.buffer[0], FuncValue(fn))
	c.bufferSize = 1
	return nil
}

// RegisterCFunction interns name as a String and binds it in the globals
// table to a CFunc value.
func (c *Context) RegisterCFunction(name string, fn CFunction) {
	str := newString(c.objects, name)
	c.globals.Set(StringValue(str), CFuncValue(fn))
}

// CollectGarbage runs the mark-sweep collector rooted at the globals
// table. Callers must only invoke it between Run calls — the call stack,
// if non-empty, is not itself a GC root.
func (c *Context) CollectGarbage() {
	c.objects.garbageCollect(c.globals)
}

// ObjectCount returns the number of heap objects currently managed by this
// Context, including the globals table itself. Intended for diagnostics
// and tests.
func (c *Context) ObjectCount() int {
	return c.objects.Count()
}

// Run pops the Function at buffer[0] and executes it with numArgs
// arguments (buffer[1..numArgs]), leaving up to numRets results in
// buffer[0..numRets-1] and StackSize() == numRets.
func (c *Context) Run(numArgs, numRets int) (err error) {
	if c.reentrant {
		return runtimeErrorf(nil, "runtime: currently active context does not support reentrant Run")
	}
	if c.bufferSize != numArgs+1 {
		return runtimeErrorf(nil, "runtime: the number of arguments does not match the size of the buffer")
	}
	if c.buffer[0].Tag != TagFunc {
		return runtimeErrorf(nil, "runtime: wrong attempt to call a non-function value")
	}

	defer func() { c.reentrant = false }()

	args := make([]Value, numArgs+1)
	copy(args, c.buffer[:numArgs+1])
	if err := c.scriptCall(args, c.buffer, numRets); err != nil {
		c.callStack = nil
		return err
	}

	if err := c.loop(); err != nil {
		c.callStack = nil
		return err
	}
	c.bufferSize = numRets
	return nil
}

func (c *Context) frames() []FrameInfo {
	frames := make([]FrameInfo, len(c.callStack))
	for i, ci := range c.callStack {
		frames[i] = FrameInfo{FunctionLevel: ci.proto().FunctionLevel, ProgramCounter: ci.ProgramCounter}
	}
	return frames
}

func (c *Context) runtimeErr(format string, args ...any) *RuntimeError {
	return runtimeErrorf(c.frames(), format, args...)
}

// Buffer primitives (the embedding API)

func (c *Context) StackSize() int { return c.bufferSize }

func (c *Context) Type(i int) (Tag, error) {
	if err := c.checkStackRange(i); err != nil {
		return 0, err
	}
	return c.buffer[i].Tag, nil
}

// popBufferValue removes and returns the top buffer slot's value, releasing
// the buffer's own hold on any object it carried.
func (c *Context) popBufferValue() Value {
	c.bufferSize--
	v := c.buffer[c.bufferSize]
	assign(&c.buffer[c.bufferSize], Null)
	return v
}

func (c *Context) Pop(n int) error {
	if n > c.bufferSize {
		return c.runtimeErr("runtime: pop count %d exceeds buffer size %d", n, c.bufferSize)
	}
	for i := 0; i < n; i++ {
		c.popBufferValue()
	}
	return nil
}

func (c *Context) Clear() {
	for c.bufferSize > 0 {
		c.popBufferValue()
	}
}

func (c *Context) checkOverflow() error {
	if c.bufferSize >= bufferCapacity-1 {
		return c.runtimeErr("runtime: communication buffer overflow")
	}
	return nil
}

func (c *Context) push(v Value) error {
	if err := c.checkOverflow(); err != nil {
		return err
	}
	assign(&c.buffer[c.bufferSize], v)
	c.bufferSize++
	return nil
}

func (c *Context) PushNil() error { return c.push(Null) }

func (c *Context) PushInt(v int64) error { return c.push(IntValue(v)) }

func (c *Context) Int(i int) (int64, error) {
	if err := c.checkStack(i, TagInt, "integer"); err != nil {
		return 0, err
	}
	return c.buffer[i].Int, nil
}

func (c *Context) PushFloat(v float64) error { return c.push(FloatValue(v)) }

func (c *Context) Float(i int) (float64, error) {
	if err := c.checkStack(i, TagFloat, "float"); err != nil {
		return 0, err
	}
	return c.buffer[i].Float, nil
}

func (c *Context) PushString(s string) error {
	return c.push(StringValue(newString(c.objects, s)))
}

func (c *Context) Str(i int) (string, error) {
	if err := c.checkStack(i, TagString, "string"); err != nil {
		return "", err
	}
	return c.buffer[i].Obj.(*String).value, nil
}

func (c *Context) NewTable() error {
	return c.push(TableValue(newTable(c.objects)))
}

// TableGet replaces the buffer's top value (the key) with
// tableAt(tablePos)[key].
func (c *Context) TableGet(tablePos int) error {
	if err := c.checkStack(tablePos, TagTable, "table"); err != nil {
		return err
	}
	t := c.buffer[tablePos].Obj.(*Table)
	key := c.buffer[c.bufferSize-1]
	assign(&c.buffer[c.bufferSize-1], t.Get(key))
	return nil
}

// TableSet pops a value then a key off the buffer and stores
// tableAt(tablePos)[key] = value.
func (c *Context) TableSet(tablePos int) error {
	if err := c.checkStack(tablePos, TagTable, "table"); err != nil {
		return err
	}
	t := c.buffer[tablePos].Obj.(*Table)
	value := c.popBufferValue()
	key := c.popBufferValue()
	t.Set(key, value)
	return nil
}

func (c *Context) TableLen(tablePos int) (int, error) {
	if err := c.checkStack(tablePos, TagTable, "table"); err != nil {
		return 0, err
	}
	return c.buffer[tablePos].Obj.(*Table).Len(), nil
}

func (c *Context) NewArray() error {
	return c.push(ArrayValue(newArray(c.objects)))
}

func (c *Context) ArrayGet(arrayPos, index int) error {
	if err := c.checkStack(arrayPos, TagArray, "array"); err != nil {
		return err
	}
	a := c.buffer[arrayPos].Obj.(*Array)
	return c.push(a.Get(index))
}

func (c *Context) ArraySet(arrayPos, index int) error {
	if err := c.checkStack(arrayPos, TagArray, "array"); err != nil {
		return err
	}
	a := c.buffer[arrayPos].Obj.(*Array)
	value := c.popBufferValue()
	if !a.Set(index, value) {
		return c.runtimeErr("runtime: negative array index %d", index)
	}
	return nil
}

func (c *Context) ArrayLen(arrayPos int) (int, error) {
	if err := c.checkStack(arrayPos, TagArray, "array"); err != nil {
		return 0, err
	}
	return c.buffer[arrayPos].Obj.(*Array).Len(), nil
}

func (c *Context) SetGlobal(i int, name string) error {
	if err := c.checkStackRange(i); err != nil {
		return err
	}
	str := newString(c.objects, name)
	c.globals.Set(StringValue(str), c.buffer[i])
	return nil
}

func (c *Context) Global(name string) error {
	str := newString(c.objects, name)
	return c.push(c.globals.Get(StringValue(str)))
}

func (c *Context) checkStackRange(i int) error {
	if i < 0 || i >= c.bufferSize {
		return c.runtimeErr("runtime: communication buffer index %d is out of range", i)
	}
	return nil
}

func (c *Context) checkStack(i int, tag Tag, typeName string) error {
	if err := c.checkStackRange(i); err != nil {
		return err
	}
	if c.buffer[i].Tag != tag {
		return c.runtimeErr("runtime: communication buffer index %d does not contain a %s value", i, typeName)
	}
	return nil
}
