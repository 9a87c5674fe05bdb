package runtime

import (
	"fmt"

	"github.com/mna/corelang/lang/compiler"
)

// loop is the instruction dispatch cycle: it repeatedly fetches the
// instruction at the top call frame's program counter, executes
// it, then advances whatever frame now sits on top of the stack by a
// per-instruction jump distance (1 by default; JUMP/BRANCH/BRANCHNOT
// overwrite it; a script CALL sets it to 0 since the new callee frame it
// just pushed already starts at programCounter 0).
func (c *Context) loop() error {
	for {
		if len(c.callStack) == 0 {
			return nil
		}
		ci := &c.callStack[len(c.callStack)-1]
		proto := ci.proto()
		instr := proto.Code[ci.ProgramCounter]
		jumpDistance := int32(1)

		switch instr.Op {
		case compiler.ASSIGN:
			ci.Closure.SetLocal(int(instr.A), ci.Closure.Local(int(instr.B)))

		case compiler.GETCONST:
			ci.Closure.SetLocal(int(instr.A), c.constValue(proto.Constants[instr.B]))

		case compiler.GETGLOBAL:
			key := c.constValue(proto.Constants[instr.B])
			ci.Closure.SetLocal(int(instr.A), c.globals.Get(key))

		case compiler.GETUPVAL:
			ci.Closure.SetLocal(int(instr.A), *ci.Closure.UpValue(int(instr.C), int(instr.B)))

		case compiler.GETTABLE:
			v, err := c.indexGet(ci.Closure.Local(int(instr.B)), ci.Closure.Local(int(instr.C)))
			if err != nil {
				return c.wrapErr(err)
			}
			ci.Closure.SetLocal(int(instr.A), v)

		case compiler.SETGLOBAL:
			key := c.constValue(proto.Constants[instr.A])
			c.globals.Set(key, ci.Closure.Local(int(instr.B)))

		case compiler.SETUPVAL:
			assign(ci.Closure.UpValue(int(instr.C), int(instr.A)), ci.Closure.Local(int(instr.B)))

		case compiler.SETTABLE:
			err := c.indexSet(ci.Closure.Local(int(instr.A)), ci.Closure.Local(int(instr.C)), ci.Closure.Local(int(instr.B)))
			if err != nil {
				return c.wrapErr(err)
			}

		case compiler.NEWTABLE:
			ci.Closure.SetLocal(int(instr.A), TableValue(newTable(c.objects)))

		case compiler.NEWARRAY:
			ci.Closure.SetLocal(int(instr.A), ArrayValue(newArray(c.objects)))

		case compiler.NEWFUNC:
			nested := proto.Nested[instr.B]
			ci.Closure.SetLocal(int(instr.A), FuncValue(newFunction(c.objects, nested, ci.Closure)))

		case compiler.ADD:
			x, y := ci.Closure.Local(int(instr.B)), ci.Closure.Local(int(instr.C))
			var v Value
			var err error
			if x.Tag == TagString && y.Tag == TagString {
				concat := x.Obj.(*String).value + y.Obj.(*String).value
				v = StringValue(newString(c.objects, concat))
			} else {
				v, err = c.numericBinary(compiler.ADD, x, y)
			}
			if err != nil {
				return c.wrapErr(err)
			}
			ci.Closure.SetLocal(int(instr.A), v)

		case compiler.SUB, compiler.MUL, compiler.DIV, compiler.LT, compiler.LE:
			v, err := c.numericBinary(instr.Op, ci.Closure.Local(int(instr.B)), ci.Closure.Local(int(instr.C)))
			if err != nil {
				return c.wrapErr(err)
			}
			ci.Closure.SetLocal(int(instr.A), v)

		case compiler.MOD, compiler.BITAND, compiler.BITOR, compiler.BITXOR, compiler.SL, compiler.SR:
			v, err := c.integerBinary(instr.Op, ci.Closure.Local(int(instr.B)), ci.Closure.Local(int(instr.C)))
			if err != nil {
				return c.wrapErr(err)
			}
			ci.Closure.SetLocal(int(instr.A), v)

		case compiler.UNM:
			v, err := c.unaryMinus(ci.Closure.Local(int(instr.B)))
			if err != nil {
				return c.wrapErr(err)
			}
			ci.Closure.SetLocal(int(instr.A), v)

		case compiler.BITNOT:
			v, err := c.bitnot(ci.Closure.Local(int(instr.B)))
			if err != nil {
				return c.wrapErr(err)
			}
			ci.Closure.SetLocal(int(instr.A), v)

		case compiler.NOT:
			ci.Closure.SetLocal(int(instr.A), boolValue(!ci.Closure.Local(int(instr.B)).Truthy()))

		case compiler.EQ:
			eq := strictEqualValue(ci.Closure.Local(int(instr.B)), ci.Closure.Local(int(instr.C)))
			ci.Closure.SetLocal(int(instr.A), boolValue(eq))

		case compiler.NOTEQ:
			eq := strictEqualValue(ci.Closure.Local(int(instr.B)), ci.Closure.Local(int(instr.C)))
			ci.Closure.SetLocal(int(instr.A), boolValue(!eq))

		case compiler.JUMP:
			jumpDistance = instr.A

		case compiler.BRANCH:
			if ci.Closure.Local(int(instr.A)).Truthy() {
				jumpDistance = instr.B
			}

		case compiler.BRANCHNOT:
			if !ci.Closure.Local(int(instr.A)).Truthy() {
				jumpDistance = instr.B
			}

		case compiler.CALL:
			callee := ci.Closure.Local(int(instr.A))
			switch callee.Tag {
			case TagFunc:
				c.scriptCallFromFrame(ci, instr)
				jumpDistance = 0
			case TagCFunc:
				if err := c.cFunctionCallFromFrame(ci, instr); err != nil {
					return c.wrapErr(err)
				}
			default:
				return c.wrapErr(fmt.Errorf("wrong attempt to call a non-function value"))
			}

		case compiler.RETURN:
			c.doReturn(ci, instr)
			if len(c.callStack) == 0 {
				return nil
			}

		case compiler.YIELD:
			return c.wrapErr(fmt.Errorf("coroutine not supported"))

		default:
			return c.wrapErr(fmt.Errorf("illegal opcode %v", instr.Op))
		}

		if len(c.callStack) == 0 {
			return nil
		}
		top := &c.callStack[len(c.callStack)-1]
		top.ProgramCounter += int(jumpDistance)
	}
}

// constValue materializes a Prototype constant-pool entry as a fresh Value,
// allocating a new String object for ConstString entries (the constant pool
// stores the string content, not a shared heap String).
func (c *Context) constValue(k compiler.Const) Value {
	switch k.Kind {
	case compiler.ConstNull:
		return Null
	case compiler.ConstInt:
		return IntValue(k.Int)
	case compiler.ConstFloat:
		return FloatValue(k.Float)
	case compiler.ConstString:
		return StringValue(newString(c.objects, k.Str))
	default:
		return Null
	}
}

func (c *Context) indexGet(container, key Value) (Value, error) {
	switch container.Tag {
	case TagTable:
		return container.Obj.(*Table).Get(key), nil
	case TagArray:
		if key.Tag != TagInt {
			return Value{}, fmt.Errorf("non-integer value for index value on array type")
		}
		return container.Obj.(*Array).Get(int(key.Int)), nil
	default:
		return Value{}, fmt.Errorf("wrong type for index operation")
	}
}

func (c *Context) indexSet(container, key, value Value) error {
	switch container.Tag {
	case TagTable:
		container.Obj.(*Table).Set(key, value)
		return nil
	case TagArray:
		if key.Tag != TagInt {
			return fmt.Errorf("non-integer value for index value on array type")
		}
		container.Obj.(*Array).Set(int(key.Int), value)
		return nil
	default:
		return fmt.Errorf("wrong type for index operation")
	}
}

func toFloat(v Value) float64 {
	if v.Tag == TagInt {
		return float64(v.Int)
	}
	return v.Float
}

// numericBinary implements ADD (non-string case), SUB, MUL, DIV, LT, LE:
// Int op Int stays Int, any Float operand promotes the result to Float.
func (c *Context) numericBinary(op compiler.Opcode, x, y Value) (Value, error) {
	if !x.Tag.IsNumber() || !y.Tag.IsNumber() {
		return Value{}, fmt.Errorf("wrong attempt to perform arithmetic on non-numeric value")
	}
	bothInt := x.Tag == TagInt && y.Tag == TagInt

	switch op {
	case compiler.ADD:
		if bothInt {
			return IntValue(x.Int + y.Int), nil
		}
		return FloatValue(toFloat(x) + toFloat(y)), nil
	case compiler.SUB:
		if bothInt {
			return IntValue(x.Int - y.Int), nil
		}
		return FloatValue(toFloat(x) - toFloat(y)), nil
	case compiler.MUL:
		if bothInt {
			return IntValue(x.Int * y.Int), nil
		}
		return FloatValue(toFloat(x) * toFloat(y)), nil
	case compiler.DIV:
		if bothInt {
			if y.Int == 0 {
				return Value{}, fmt.Errorf("attempt to divide an integer by zero")
			}
			return IntValue(x.Int / y.Int), nil
		}
		return FloatValue(toFloat(x) / toFloat(y)), nil
	case compiler.LT:
		if bothInt {
			return boolValue(x.Int < y.Int), nil
		}
		return boolValue(toFloat(x) < toFloat(y)), nil
	case compiler.LE:
		if bothInt {
			return boolValue(x.Int <= y.Int), nil
		}
		return boolValue(toFloat(x) <= toFloat(y)), nil
	default:
		return Value{}, fmt.Errorf("unsupported numeric opcode %s", op)
	}
}

// integerBinary implements MOD and the bitwise/shift opcodes, all of which
// reject any non-Int operand outright rather than coercing Floats.
func (c *Context) integerBinary(op compiler.Opcode, x, y Value) (Value, error) {
	if x.Tag != TagInt || y.Tag != TagInt {
		return Value{}, fmt.Errorf("wrong attempt to perform an integer operation on non-integer value")
	}
	switch op {
	case compiler.MOD:
		if y.Int == 0 {
			return Value{}, fmt.Errorf("attempt to divide an integer by zero")
		}
		return IntValue(x.Int % y.Int), nil
	case compiler.BITAND:
		return IntValue(x.Int & y.Int), nil
	case compiler.BITOR:
		return IntValue(x.Int | y.Int), nil
	case compiler.BITXOR:
		return IntValue(x.Int ^ y.Int), nil
	case compiler.SL:
		return IntValue(x.Int << uint(y.Int)), nil
	case compiler.SR:
		return IntValue(x.Int >> uint(y.Int)), nil
	default:
		return Value{}, fmt.Errorf("unsupported integer opcode %s", op)
	}
}

// unaryMinus implements UNM: arithmetic negation on Int or Float. It is
// kept fully independent from bitnot (BITNOT) rather than falling through
// into it — they operate on distinct operand types and have no shared
// behavior worth coupling.
func (c *Context) unaryMinus(x Value) (Value, error) {
	switch x.Tag {
	case TagInt:
		return IntValue(-x.Int), nil
	case TagFloat:
		return FloatValue(-x.Float), nil
	default:
		return Value{}, fmt.Errorf("wrong attempt to perform an arithmetic operation on non-numeric value")
	}
}

func (c *Context) bitnot(x Value) (Value, error) {
	if x.Tag != TagInt {
		return Value{}, fmt.Errorf("wrong attempt to perform an integer operation on non-integer value")
	}
	return IntValue(^x.Int), nil
}

func boolValue(b bool) Value {
	if b {
		return IntValue(1)
	}
	return IntValue(0)
}

// scriptCall pushes the very first call frame (from Run), aliasing retTo
// (the Context's own communication buffer) as the frame's return slots.
func (c *Context) scriptCall(args []Value, retTo []Value, numRets int) error {
	fn := args[0].Obj.(*Function)
	newCl := newClosure(c.objects, fn.Prototype.LocalSize, fn.Prototype.FunctionLevel, fn.UpperClosure)

	numArgs := len(args) - 1
	n := min(numArgs, fn.Prototype.NumArgs)
	for i := 0; i < n; i++ {
		newCl.SetLocal(i, args[1+i])
	}

	newCl.addRef()
	fn.addRef()
	c.callStack = append(c.callStack, CallInfo{
		Function: fn, Closure: newCl, ReturnTo: retTo[:numRets], NumRets: numRets, ProgramCounter: 0,
	})
	return nil
}

// scriptCallFromFrame implements CALL when the callee is a script Function:
// a new frame is pushed whose ReturnTo aliases the caller's own locals at
// the call's base register.
func (c *Context) scriptCallFromFrame(ci *CallInfo, instr compiler.Instruction) {
	base := int(instr.A)
	numArgs := int(instr.B)
	numRets := int(instr.C)

	fn := ci.Closure.Local(base).Obj.(*Function)
	newCl := newClosure(c.objects, fn.Prototype.LocalSize, fn.Prototype.FunctionLevel, fn.UpperClosure)

	n := min(numArgs, fn.Prototype.NumArgs)
	for i := 0; i < n; i++ {
		newCl.SetLocal(i, ci.Closure.Local(base+1+i))
	}

	newCl.addRef()
	fn.addRef()
	c.callStack = append(c.callStack, CallInfo{
		Function: fn, Closure: newCl, ReturnTo: ci.Closure.locals[base : base+numRets],
		NumRets: numRets, ProgramCounter: 0,
	})
}

// cFunctionCallFromFrame implements CALL when the callee is a native
// CFunction: arguments are copied into the Context's communication buffer,
// the native function runs under the reentrancy flag, and its results are
// copied back into the caller's registers.
func (c *Context) cFunctionCallFromFrame(ci *CallInfo, instr compiler.Instruction) error {
	base := int(instr.A)
	numArgs := int(instr.B)
	numRets := int(instr.C)

	fn := ci.Closure.Local(base).CFunc

	c.bufferSize = numArgs
	for i := 0; i < numArgs; i++ {
		assign(&c.buffer[i], ci.Closure.Local(base+1+i))
	}

	c.reentrant = true
	err := fn(c)
	c.reentrant = false
	if err != nil {
		c.bufferSize = 0
		return err
	}

	n := min(numRets, c.bufferSize)
	for i := 0; i < n; i++ {
		ci.Closure.SetLocal(base+i, c.buffer[i])
	}
	for i := n; i < numRets; i++ {
		ci.Closure.SetLocal(base+i, Null)
	}
	c.bufferSize = 0
	return nil
}

// doReturn implements RETURN: copy up to min(producedCount, frame.NumRets)
// values into the caller's ReturnTo slots, Null-pad the remainder, release
// the popped frame's strong references to its Closure and Function.
func (c *Context) doReturn(ci *CallInfo, instr compiler.Instruction) {
	base := int(instr.A)
	produced := int(instr.B)

	n := min(produced, ci.NumRets)
	for i := 0; i < n; i++ {
		assign(&ci.ReturnTo[i], ci.Closure.Local(base+i))
	}
	for i := n; i < ci.NumRets; i++ {
		assign(&ci.ReturnTo[i], Null)
	}

	ci.Closure.release()
	ci.Function.release()
	c.callStack = c.callStack[:len(c.callStack)-1]
}

func (c *Context) wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return c.runtimeErr("%s", err.Error())
}
