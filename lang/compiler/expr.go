package compiler

import (
	"github.com/mna/corelang/lang/ast"
	"github.com/mna/corelang/lang/token"
)

// compileExpr compiles e as an r-value, returning the register holding its
// result. As a side effect it stashes addressing metadata (Lv1/Lv2) on
// identifier and table-index nodes so a later assignment to the same node
// can reuse it via storeValue, without recomputing container/key.
func (c *compilerState) compileExpr(fs *funcState, e ast.Expr) int32 {
	switch x := e.(type) {
	case *ast.TerminalExpr:
		return c.compileTerminal(fs, x)
	case *ast.UnaryExpr:
		return c.compileUnary(fs, x)
	case *ast.BinaryExpr:
		return c.compileBinary(fs, x)
	case *ast.TrinaryExpr:
		return c.compileTrinary(fs, x)
	case *ast.CallExpr:
		return c.compileCall(fs, x)
	case *ast.FunctionExpr:
		return c.compileFunctionExpr(fs, x)
	case *ast.TableExpr:
		return c.compileTableExpr(fs, x)
	default:
		fail("unhandled expression type %T", e)
		return 0
	}
}

// compileExprInto compiles e and ensures its value ends up in destReg
// (already allocated by the caller), emitting an ASSIGN only if the two
// registers differ.
func (c *compilerState) compileExprInto(fs *funcState, e ast.Expr, destReg int32) {
	reg := c.compileExpr(fs, e)
	if reg != destReg {
		fs.emit(Instruction{Op: ASSIGN, A: destReg, B: reg})
	}
	fs.regs.release(e)
}

func (c *compilerState) compileTerminal(fs *funcState, e *ast.TerminalExpr) int32 {
	switch e.Kind {
	case ast.Null:
		reg := fs.regs.alloc()
		idx := fs.internConst(Const{Kind: ConstNull})
		fs.emit(Instruction{Op: GETCONST, A: reg, B: idx})
		*e.Flags() |= ast.TEMP
		e.SetReg(uint32(reg))
		return reg

	case ast.Int, ast.Hex:
		reg := fs.regs.alloc()
		idx := fs.internConst(Const{Kind: ConstInt, Int: e.IntValue})
		fs.emit(Instruction{Op: GETCONST, A: reg, B: idx})
		*e.Flags() |= ast.TEMP
		e.SetReg(uint32(reg))
		return reg

	case ast.Float:
		reg := fs.regs.alloc()
		idx := fs.internConst(Const{Kind: ConstFloat, Float: e.FloatValue})
		fs.emit(Instruction{Op: GETCONST, A: reg, B: idx})
		*e.Flags() |= ast.TEMP
		e.SetReg(uint32(reg))
		return reg

	case ast.String:
		reg := fs.regs.alloc()
		idx := fs.internConst(Const{Kind: ConstString, Str: e.StringValue})
		fs.emit(Instruction{Op: GETCONST, A: reg, B: idx})
		*e.Flags() |= ast.TEMP
		e.SetReg(uint32(reg))
		return reg

	case ast.Identifier:
		return c.compileIdentifierLoad(fs, e)

	default:
		fail("unhandled terminal kind %v", e.Kind)
		return 0
	}
}

// compileIdentifierLoad implements identifier loads: global -> GETGLOBAL
// with an interned name constant; upvalue -> GETUPVAL;
// local with LOAD -> ASSIGN into a fresh register; local without LOAD ->
// reuse the variable's own register. A destination carrying NOLOAD (a plain
// assignment target, set by the resolver) skips the fetch entirely and only
// resolves the addressing metadata a later storeValue needs.
func (c *compilerState) compileIdentifierLoad(fs *funcState, e *ast.TerminalExpr) int32 {
	flags := *e.Flags()
	skipFetch := flags.Has(ast.STORE) && flags.Has(ast.NOLOAD)

	switch {
	case flags.Has(ast.GLOBAL):
		nameIdx := fs.internString(e.Name)
		e.SetLv1(uint32(nameIdx))
		if skipFetch {
			return -1
		}
		reg := fs.regs.alloc()
		fs.emit(Instruction{Op: GETGLOBAL, A: reg, B: nameIdx})
		*e.Flags() |= ast.TEMP
		e.SetReg(uint32(reg))
		return reg

	case flags.Has(ast.UPVALUE):
		declFs, declReg := fs.findDeclaringState(e.CorrespondingVar)
		e.SetLv1(uint32(declFs.proto.FunctionLevel))
		e.SetLv2(uint32(declReg))
		if skipFetch {
			return -1
		}
		reg := fs.regs.alloc()
		fs.emit(Instruction{Op: GETUPVAL, A: reg, B: declReg, C: int32(declFs.proto.FunctionLevel)})
		*e.Flags() |= ast.TEMP
		e.SetReg(uint32(reg))
		return reg

	default: // local
		varReg := fs.localReg[e.CorrespondingVar]
		if flags.Has(ast.LOAD) {
			reg := fs.regs.alloc()
			fs.emit(Instruction{Op: ASSIGN, A: reg, B: varReg})
			*e.Flags() |= ast.TEMP
			e.SetReg(uint32(reg))
			return reg
		}
		e.SetReg(uint32(varReg))
		return varReg
	}
}

// storeValue emits the instruction that writes valueReg into dest: TABLE ->
// SETTABLE; UPVALUE -> SETUPVAL; GLOBAL -> SETGLOBAL; otherwise (a local)
// -> ASSIGN into its register.
func (c *compilerState) storeValue(fs *funcState, dest ast.Expr, valueReg int32) {
	flags := *dest.Flags()
	switch {
	case flags.Has(ast.TABLE):
		container := int32(*dest.Lv1())
		key := int32(*dest.Lv2())
		fs.emit(Instruction{Op: SETTABLE, A: container, B: valueReg, C: key})

	case flags.Has(ast.UPVALUE):
		level := int32(*dest.Lv1())
		offset := int32(*dest.Lv2())
		fs.emit(Instruction{Op: SETUPVAL, A: offset, B: valueReg, C: level})

	case flags.Has(ast.GLOBAL):
		nameIdx := int32(*dest.Lv1())
		fs.emit(Instruction{Op: SETGLOBAL, A: nameIdx, B: valueReg})

	default:
		destReg := int32(*dest.Reg())
		if destReg != valueReg {
			fs.emit(Instruction{Op: ASSIGN, A: destReg, B: valueReg})
		}
	}
}

func (c *compilerState) compileUnary(fs *funcState, e *ast.UnaryExpr) int32 {
	switch e.Op {
	case token.PLUS, token.MINUS:
		return c.compileUnaryArith(fs, e)
	case token.TILDE:
		return c.compileUnaryOp(fs, e, BITNOT)
	case token.BANG:
		return c.compileUnaryOp(fs, e, NOT)
	case token.INC, token.DEC:
		if e.Postfix {
			return c.compilePostfixIncDec(fs, e)
		}
		return c.compilePrefixIncDec(fs, e)
	default:
		fail("unhandled unary operator %s", e.Op)
		return 0
	}
}

// compileUnaryArith implements unary +/- as "0 op x": materialize 0 into a
// fresh register, compute x, then ADD/SUB in place into the zero register.
func (c *compilerState) compileUnaryArith(fs *funcState, e *ast.UnaryExpr) int32 {
	zeroReg := fs.regs.alloc()
	zeroIdx := fs.internConst(Const{Kind: ConstInt, Int: 0})
	fs.emit(Instruction{Op: GETCONST, A: zeroReg, B: zeroIdx})

	xReg := c.compileExpr(fs, e.X)
	op := ADD
	if e.Op == token.MINUS {
		op = SUB
	}
	fs.emit(Instruction{Op: op, A: zeroReg, B: zeroReg, C: xReg})
	fs.regs.release(e.X)

	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(zeroReg))
	return zeroReg
}

func (c *compilerState) compileUnaryOp(fs *funcState, e *ast.UnaryExpr, op Opcode) int32 {
	xReg := c.compileExpr(fs, e.X)
	fs.regs.release(e.X)
	reg := fs.regs.alloc()
	fs.emit(Instruction{Op: op, A: reg, B: xReg})
	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(reg))
	return reg
}

// compilePrefixIncDec implements "load constant 1; emit op on the l-value's
// value register in place; store back via the store helper; copy into a
// new temp register as the expression's result".
func (c *compilerState) compilePrefixIncDec(fs *funcState, e *ast.UnaryExpr) int32 {
	valueReg := c.compileExpr(fs, e.X)

	oneReg := fs.regs.alloc()
	oneIdx := fs.internConst(Const{Kind: ConstInt, Int: 1})
	fs.emit(Instruction{Op: GETCONST, A: oneReg, B: oneIdx})

	op := ADD
	if e.Op == token.DEC {
		op = SUB
	}
	fs.emit(Instruction{Op: op, A: valueReg, B: valueReg, C: oneReg})
	fs.regs.dealloc(oneReg)

	c.storeValue(fs, e.X, valueReg)
	fs.regs.release(e.X)

	resultReg := fs.regs.alloc()
	if resultReg != valueReg {
		fs.emit(Instruction{Op: ASSIGN, A: resultReg, B: valueReg})
	}
	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(resultReg))
	return resultReg
}

// compilePostfixIncDec implements "copy current value to a temp; compute
// new value; store new value through the l-value; produce original
// (pre-increment) value as the expression result".
func (c *compilerState) compilePostfixIncDec(fs *funcState, e *ast.UnaryExpr) int32 {
	valueReg := c.compileExpr(fs, e.X)

	origReg := fs.regs.alloc()
	fs.emit(Instruction{Op: ASSIGN, A: origReg, B: valueReg})

	oneReg := fs.regs.alloc()
	oneIdx := fs.internConst(Const{Kind: ConstInt, Int: 1})
	fs.emit(Instruction{Op: GETCONST, A: oneReg, B: oneIdx})

	op := ADD
	if e.Op == token.DEC {
		op = SUB
	}
	fs.emit(Instruction{Op: op, A: valueReg, B: valueReg, C: oneReg})
	fs.regs.dealloc(oneReg)

	c.storeValue(fs, e.X, valueReg)

	// Unwind origReg and the l-value's own registers, then copy the
	// pre-increment value down into the lowest freed register, which becomes
	// the result (for a local l-value that is origReg itself).
	fs.regs.dealloc(origReg)
	fs.regs.release(e.X)
	resultReg := fs.regs.alloc()
	if resultReg != origReg {
		fs.emit(Instruction{Op: ASSIGN, A: resultReg, B: origReg})
	}
	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(resultReg))
	return resultReg
}

func (c *compilerState) compileBinary(fs *funcState, e *ast.BinaryExpr) int32 {
	switch {
	case e.Op == token.LBRACK:
		return c.compileTableIndex(fs, e)

	case e.Op.IsAssignOp():
		return c.compileAssign(fs, e)

	case e.Op == token.AND || e.Op == token.OR:
		return c.compileShortCircuit(fs, e)

	case e.Op == token.GT:
		return c.compileSwappedCompare(fs, e, LT)

	case e.Op == token.GE:
		return c.compileSwappedCompare(fs, e, LE)

	default:
		return c.compileBinaryArith(fs, e)
	}
}

// compileTableIndex implements the table-index r-value/l-value duality: a
// plain read allocates a result register, visits container then key, emits
// GETTABLE, and immediately releases the container and key sub-expressions
// (the result is flagged TEMP). An assignment/increment destination (STORE flagged
// by the resolver) instead stashes container and key in Lv1/Lv2 for a later
// storeValue and is flagged TEMPTABLE; it only allocates and fetches a
// value register when NOLOAD is not set (compound assignment and
// increment/decrement need the existing value, plain assignment doesn't).
func (c *compilerState) compileTableIndex(fs *funcState, e *ast.BinaryExpr) int32 {
	flags := *e.Flags()
	isDest := flags.Has(ast.STORE)
	needValue := !isDest || !flags.Has(ast.NOLOAD)

	var result int32 = -1
	if needValue {
		result = fs.regs.alloc()
	}
	container := c.compileExpr(fs, e.X)
	key := c.compileExpr(fs, e.Y)
	if needValue {
		fs.emit(Instruction{Op: GETTABLE, A: result, B: container, C: key})
	}

	if isDest {
		e.SetLv1(uint32(container))
		e.SetLv2(uint32(key))
		*e.Flags() |= ast.TEMPTABLE
		if needValue {
			e.SetReg(uint32(result))
		}
		return result
	}

	fs.regs.release(e.Y)
	fs.regs.release(e.X)
	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(result))
	return result
}

func (c *compilerState) compileSwappedCompare(fs *funcState, e *ast.BinaryExpr, op Opcode) int32 {
	xReg := c.compileExpr(fs, e.X)
	yReg := c.compileExpr(fs, e.Y)
	fs.regs.release(e.Y)
	fs.regs.release(e.X)
	reg := fs.regs.alloc()
	// a > b  ==  b < a; a >= b  ==  b <= a: operands swapped, B=Y C=X.
	fs.emit(Instruction{Op: op, A: reg, B: yReg, C: xReg})
	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(reg))
	return reg
}

// compileBinaryArith implements "visit both subexpressions, deallocate
// both, allocate result register, emit" for every plain binary operator
// (arithmetic, bitwise, shift, equality, LT/LE).
func (c *compilerState) compileBinaryArith(fs *funcState, e *ast.BinaryExpr) int32 {
	xReg := c.compileExpr(fs, e.X)
	yReg := c.compileExpr(fs, e.Y)
	fs.regs.release(e.Y)
	fs.regs.release(e.X)

	op, ok := binaryOpcodes[e.Op]
	if !ok {
		fail("unhandled binary operator %s", e.Op)
	}
	reg := fs.regs.alloc()
	fs.emit(Instruction{Op: op, A: reg, B: xReg, C: yReg})
	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(reg))
	return reg
}

// compileShortCircuit lowers && and || into BRANCH/BRANCHNOT-guarded code
// that never evaluates the right operand unless needed.
func (c *compilerState) compileShortCircuit(fs *funcState, e *ast.BinaryExpr) int32 {
	isAnd := e.Op == token.AND

	tReg := c.compileExpr(fs, e.X)
	fs.regs.release(e.X)
	// If t was a temporary it now lives at the top of the stack and this
	// reuses that same register as the running short-circuit accumulator and
	// the expression's final result; otherwise t is copied into it.
	resultReg := fs.regs.alloc()
	if resultReg != tReg {
		fs.emit(Instruction{Op: ASSIGN, A: resultReg, B: tReg})
	}

	firstOp := BRANCHNOT
	if !isAnd {
		firstOp = BRANCH
	}
	toResult1 := fs.labels.openLabel()
	idx1 := fs.emit(Instruction{Op: firstOp, A: resultReg})
	fs.labels.reserve(idx1, 1, toResult1)

	yReg := c.compileExpr(fs, e.Y)
	fs.emit(Instruction{Op: ASSIGN, A: resultReg, B: yReg})
	fs.regs.release(e.Y)

	toResult2 := fs.labels.openLabel()
	idx2 := fs.emit(Instruction{Op: firstOp, A: resultReg})
	fs.labels.reserve(idx2, 1, toResult2)

	shortCircuitVal := int32(0)
	if !isAnd {
		shortCircuitVal = 1
	}
	otherVal := int32(1)
	if !isAnd {
		otherVal = 0
	}

	idxC := fs.internConst(Const{Kind: ConstInt, Int: int64(otherVal)})
	fs.emit(Instruction{Op: GETCONST, A: resultReg, B: idxC})
	endLabel := fs.labels.openLabel()
	jidx := fs.emit(Instruction{Op: JUMP})
	fs.labels.reserve(jidx, 0, endLabel)

	fs.labels.defineLabel(toResult1, fs.offset())
	fs.labels.defineLabel(toResult2, fs.offset())
	idxSC := fs.internConst(Const{Kind: ConstInt, Int: int64(shortCircuitVal)})
	fs.emit(Instruction{Op: GETCONST, A: resultReg, B: idxSC})

	fs.labels.defineLabel(endLabel, fs.offset())

	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(resultReg))
	return resultReg
}

// compileAssign implements plain and compound assignment.
func (c *compilerState) compileAssign(fs *funcState, e *ast.BinaryExpr) int32 {
	if e.Op == token.ASSIGN {
		valueReg := c.compileExpr(fs, e.X)
		c.compileExpr(fs, e.Y)
		c.storeValue(fs, e.Y, valueReg)
		fs.regs.release(e.Y)

		// If X wasn't itself a temporary (the one case is a bare local read,
		// which reuses the variable's own permanent register and carries no
		// TEMP flag), its register must not be handed back directly as the
		// assignment expression's disposable result — copy it into a fresh
		// one instead, same as the compound-assignment path below.
		resultReg := valueReg
		if !e.X.Flags().Has(ast.TEMP) {
			resultReg = fs.regs.alloc()
			fs.emit(Instruction{Op: ASSIGN, A: resultReg, B: valueReg})
		}

		*e.Flags() |= ast.TEMP
		e.SetReg(uint32(resultReg))
		return resultReg
	}

	// Compound assignment: X (the value) is evaluated first, then Y (the
	// destination) as a full r-value — its own compile fetches the current
	// value into yReg and, for a table element, stashes the container/key
	// registers for the store below. The op is computed in place into yReg,
	// stored back, and only then are Y's and X's registers released — in
	// that order, since Y was allocated after X and the register stack is
	// strictly LIFO. A fresh register is allocated afterward and the result
	// copied into it unless that register is yReg itself, exactly like
	// compilePrefixIncDec: yReg may alias a
	// local variable's own permanent register, which must not be handed
	// back to the caller as if it were a releasable temporary.
	xReg := c.compileExpr(fs, e.X)
	yReg := c.compileExpr(fs, e.Y)

	op, ok := binaryOpcodes[e.Op.BinaryOp()]
	if !ok {
		fail("unhandled compound assignment operator %s", e.Op)
	}
	fs.emit(Instruction{Op: op, A: yReg, B: yReg, C: xReg})

	c.storeValue(fs, e.Y, yReg)
	fs.regs.release(e.Y)
	fs.regs.release(e.X)

	resultReg := fs.regs.alloc()
	if resultReg != yReg {
		fs.emit(Instruction{Op: ASSIGN, A: resultReg, B: yReg})
	}

	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(resultReg))
	return resultReg
}

// compileTrinary implements `cond ? then : else`: both branches allocate
// the same result register (guaranteed by stack discipline: the register
// stack top is identical at the start of each branch), branch on the
// condition to the else arm, and jump the then arm past it.
func (c *compilerState) compileTrinary(fs *funcState, e *ast.TrinaryExpr) int32 {
	condReg := c.compileExpr(fs, e.Cond)
	fs.regs.release(e.Cond)

	elseLabel := fs.labels.openLabel()
	bidx := fs.emit(Instruction{Op: BRANCHNOT, A: condReg})
	fs.labels.reserve(bidx, 1, elseLabel)

	savedTop := fs.regs.top
	resultReg := fs.regs.alloc()
	c.compileExprInto(fs, e.Then, resultReg)

	endLabel := fs.labels.openLabel()
	jidx := fs.emit(Instruction{Op: JUMP})
	fs.labels.reserve(jidx, 0, endLabel)

	fs.labels.defineLabel(elseLabel, fs.offset())
	fs.regs.top = savedTop
	resultReg2 := fs.regs.alloc()
	c.compileExprInto(fs, e.Else, resultReg2)
	if resultReg2 != resultReg {
		fail("trinary branches allocated different result registers")
	}

	fs.labels.defineLabel(endLabel, fs.offset())

	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(resultReg))
	return resultReg
}

// compileCall implements function calls: the callee and all arguments must
// land in consecutive registers.
func (c *compilerState) compileCall(fs *funcState, e *ast.CallExpr) int32 {
	base := c.compileExpr(fs, e.Func)

	argRegs := make([]int32, len(e.Args))
	for i, a := range e.Args {
		argRegs[i] = c.compileExpr(fs, a)
		if argRegs[i] != base+int32(i)+1 {
			fail("call arguments did not land in consecutive registers")
		}
	}

	fs.emit(Instruction{Op: CALL, A: base, B: int32(len(e.Args)), C: 1})

	for i := len(e.Args) - 1; i >= 0; i-- {
		fs.regs.release(e.Args[i])
	}
	fs.regs.release(e.Func)

	resultReg := fs.regs.alloc()
	if resultReg != base {
		fail("call result register did not land at the call's base slot")
	}
	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(resultReg))
	return resultReg
}

func (c *compilerState) compileFunctionExpr(fs *funcState, e *ast.FunctionExpr) int32 {
	nested := c.compileFunction(e.Def, fs)
	nestedIdx := int32(len(fs.proto.Nested))
	fs.proto.Nested = append(fs.proto.Nested, nested)

	reg := fs.regs.alloc()
	fs.emit(Instruction{Op: NEWFUNC, A: reg, B: nestedIdx})
	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(reg))
	return reg
}

func (c *compilerState) compileTableExpr(fs *funcState, e *ast.TableExpr) int32 {
	reg := fs.regs.alloc()
	if e.Shape == ast.Array {
		fs.emit(Instruction{Op: NEWARRAY, A: reg})
	} else {
		fs.emit(Instruction{Op: NEWTABLE, A: reg})
	}

	for _, init := range e.Initializers {
		valueReg := c.compileExpr(fs, init.Value)

		var keyReg int32
		if init.Key != nil {
			keyReg = c.compileExpr(fs, init.Key)
		} else {
			keyReg = fs.regs.alloc()
			idx := fs.internConst(Const{Kind: ConstInt, Int: init.AutoKey})
			fs.emit(Instruction{Op: GETCONST, A: keyReg, B: idx})
		}

		fs.emit(Instruction{Op: SETTABLE, A: reg, B: valueReg, C: keyReg})

		if init.Key != nil {
			fs.regs.release(init.Key)
		} else {
			fs.regs.dealloc(keyReg)
		}
		fs.regs.release(init.Value)
	}

	*e.Flags() |= ast.TEMP
	e.SetReg(uint32(reg))
	return reg
}
