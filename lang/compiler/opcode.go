// Package compiler implements the code generator: it lowers a resolved
// lang/ast tree into register-machine bytecode (a lang/compiler.Prototype
// tree) consumed by lang/runtime's VM.
package compiler

import "github.com/mna/corelang/lang/token"

// Opcode identifies one of the 34 bytecode instructions. Every instruction
// has exactly three signed 32-bit operands; unused operands are left zero.
type Opcode int32

const (
	ASSIGN Opcode = iota
	GETCONST
	GETGLOBAL
	GETUPVAL
	GETTABLE
	SETGLOBAL
	SETUPVAL
	SETTABLE
	NEWTABLE
	NEWARRAY
	NEWFUNC
	ADD
	SUB
	MUL
	DIV
	MOD
	UNM
	BITNOT
	BITAND
	BITOR
	BITXOR
	SL
	SR
	NOT
	EQ
	NOTEQ
	LT
	LE
	JUMP
	BRANCH
	BRANCHNOT
	CALL
	RETURN
	YIELD

	numOpcodes
)

var opcodeNames = [numOpcodes]string{
	ASSIGN:     "ASSIGN",
	GETCONST:   "GETCONST",
	GETGLOBAL:  "GETGLOBAL",
	GETUPVAL:   "GETUPVAL",
	GETTABLE:   "GETTABLE",
	SETGLOBAL:  "SETGLOBAL",
	SETUPVAL:   "SETUPVAL",
	SETTABLE:   "SETTABLE",
	NEWTABLE:   "NEWTABLE",
	NEWARRAY:   "NEWARRAY",
	NEWFUNC:    "NEWFUNC",
	ADD:        "ADD",
	SUB:        "SUB",
	MUL:        "MUL",
	DIV:        "DIV",
	MOD:        "MOD",
	UNM:        "UNM",
	BITNOT:     "BITNOT",
	BITAND:     "BITAND",
	BITOR:      "BITOR",
	BITXOR:     "BITXOR",
	SL:         "SL",
	SR:         "SR",
	NOT:        "NOT",
	EQ:         "EQ",
	NOTEQ:      "NOTEQ",
	LT:         "LT",
	LE:         "LE",
	JUMP:       "JUMP",
	BRANCH:     "BRANCH",
	BRANCHNOT:  "BRANCHNOT",
	CALL:       "CALL",
	RETURN:     "RETURN",
	YIELD:      "YIELD",
}

func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "ILLEGAL_OPCODE"
}

// Instruction is one bytecode instruction: an opcode plus three signed
// 32-bit operands, denoted A, B, C.
type Instruction struct {
	Op      Opcode
	A, B, C int32
}

// binaryOpcodes maps the lexical binary operator tokens to the opcode that
// implements them directly. GT and GE are deliberately absent: they're
// encoded by swapping operands and emitting LT/LE respectively (see
// compileSwappedCompare in expr.go).
var binaryOpcodes = map[token.Token]Opcode{
	token.PLUS: ADD, token.MINUS: SUB, token.STAR: MUL, token.SLASH: DIV, token.PERCENT: MOD,
	token.AMP: BITAND, token.PIPE: BITOR, token.CARET: BITXOR, token.LTLT: SL, token.GTGT: SR,
	token.EQ: EQ, token.NEQ: NOTEQ, token.LT: LT, token.LE: LE,
}
