package resolver

import "github.com/mna/corelang/lang/ast"

// resolveIdentifier classifies a TerminalExpr(Identifier): not found ->
// LVALUE|GLOBAL; found in a strictly outer function -> LVALUE|UPVALUE (and
// the variable is recorded as an upvalue of the current function);
// otherwise (found in the current function) -> LVALUE.
func (r *Resolver) resolveIdentifier(e *ast.TerminalExpr) {
	v := r.scopes.lookup(e.Name)
	*e.Flags() |= ast.LVALUE

	if v == nil {
		*e.Flags() |= ast.GLOBAL
		return
	}

	e.CorrespondingVar = v
	declLevel, _ := deref2(v.FunctionLevel)
	curLevel := r.scopes.currentFunc().level

	if declLevel < curLevel {
		*e.Flags() |= ast.UPVALUE
		r.addUpvalue(v)
		return
	}
}

// addUpvalue records v as an upvalue of the current function if it isn't
// already, preserving first-capture order. The compiler's GETUPVAL/SETUPVAL
// instructions do not use this order: they address an upvalue by its
// declaring function level and register.
func (r *Resolver) addUpvalue(v *ast.VariableStmt) {
	f := r.scopes.currentFunc()
	for _, existing := range f.def.Upvalues {
		if existing == v {
			return
		}
	}
	f.def.Upvalues = append(f.def.Upvalues, v)
}
