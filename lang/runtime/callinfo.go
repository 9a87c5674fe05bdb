package runtime

import "github.com/mna/corelang/lang/compiler"

// CallInfo is one activation record on the VM's call stack.
type CallInfo struct {
	Function       *Function
	Closure        *Closure
	ReturnTo       []Value // the caller's closure locals sliced at the call's base register, or the communication buffer for the frame Run pushes
	NumRets        int
	ProgramCounter int
}

func (ci *CallInfo) proto() *compiler.Prototype { return ci.Function.Prototype }
