package compiler

import "github.com/mna/corelang/lang/ast"

// loopLabelPair is the continue/break target pair associated with one loop
// statement (ForStmt, WhileStmt or DoWhileStmt) during codegen.
type loopLabelPair struct {
	cont *label
	brk  *label
}

// funcState is the per-function compilation state, one per nested
// FunctionDefinition being compiled: there is only ever one state per
// function, since there's no separate "program" vs "function" distinction
// here — the top-level chunk is itself a synthetic FunctionDefinition.
type funcState struct {
	parent *funcState
	proto  *Prototype

	regs   regAlloc
	labels labelManager

	// localReg maps a declared local variable to the register the compiler
	// assigned it. Populated for each parameter when the function starts
	// and when a VariableStmt is compiled; entries are never removed.
	localReg map[*ast.VariableStmt]int32

	loopLabels map[ast.Stmt]*loopLabelPair
}

func newFuncState(parent *funcState, level, numArgs int) *funcState {
	fs := &funcState{
		parent:     parent,
		proto:      &Prototype{FunctionLevel: level, NumArgs: numArgs},
		localReg:   make(map[*ast.VariableStmt]int32),
		loopLabels: make(map[ast.Stmt]*loopLabelPair),
	}
	return fs
}

// findDeclaringState walks up the enclosing-function chain to the funcState
// that declared v (identified by its resolver-assigned FunctionLevel),
// returning that state and v's register within it. Used to address
// GETUPVAL/SETUPVAL, whose operands are (register, absolute function
// level) rather than a relative capture index.
func (fs *funcState) findDeclaringState(v *ast.VariableStmt) (*funcState, int32) {
	declLevel := *v.FunctionLevel
	for s := fs; s != nil; s = s.parent {
		if uint32(s.proto.FunctionLevel) == declLevel {
			return s, s.localReg[v]
		}
	}
	panic("compiler: upvalue's declaring function not found on the enclosing chain")
}

// emit appends an instruction and returns its index.
func (fs *funcState) emit(instr Instruction) int {
	fs.proto.Code = append(fs.proto.Code, instr)
	return len(fs.proto.Code) - 1
}

func (fs *funcState) offset() int32 { return int32(len(fs.proto.Code)) }

// internConst deduplicates c by StrictEqual against the existing pool and
// returns its index, appending a new entry only if needed.
func (fs *funcState) internConst(c Const) int32 {
	for i, existing := range fs.proto.Constants {
		if existing.strictEqual(c) {
			return int32(i)
		}
	}
	fs.proto.Constants = append(fs.proto.Constants, c)
	return int32(len(fs.proto.Constants) - 1)
}

func (fs *funcState) internString(s string) int32 {
	return fs.internConst(Const{Kind: ConstString, Str: s})
}
