package resolver

import "github.com/mna/corelang/lang/ast"

// funcFrame tracks per-function resolver state: the function's nesting
// level, how many VariableStmt nodes it has seen so far (becomes
// FunctionDefinition.NumVariable once the function closes), and its stack
// of enclosing loop statements (for break/continue resolution).
type funcFrame struct {
	def     *ast.FunctionDefinition
	level   int
	numVars int
	loops   []ast.Stmt
}

// visibleVar is one entry on the resolver's flat local-variable stack.
type visibleVar struct {
	stmt  *ast.VariableStmt
	level int // owning function's level
}

// scopeManager resolves identifiers to local/upvalue/global bindings and
// tracks loop nesting: a stack of function frames, a flat stack of
// currently-visible locals, and a monotonically-changing scope level.
type scopeManager struct {
	funcs []*funcFrame
	vars  []visibleVar

	scopeLevel int
}

func newScopeManager() *scopeManager { return &scopeManager{} }

func (m *scopeManager) currentFunc() *funcFrame { return m.funcs[len(m.funcs)-1] }

func (m *scopeManager) pushFunc(def *ast.FunctionDefinition) *funcFrame {
	f := &funcFrame{def: def, level: len(m.funcs)}
	m.funcs = append(m.funcs, f)
	return f
}

func (m *scopeManager) popFunc() {
	f := m.currentFunc()
	f.def.NumVariable = u32(f.numVars)
	f.def.FunctionLevel = u32(f.level)
	m.funcs = m.funcs[:len(m.funcs)-1]
}

func (m *scopeManager) pushLoop(loop ast.Stmt) {
	f := m.currentFunc()
	f.loops = append(f.loops, loop)
}

func (m *scopeManager) popLoop() {
	f := m.currentFunc()
	f.loops = f.loops[:len(f.loops)-1]
}

// innermostLoop returns the nearest enclosing loop in the current function,
// or nil if there is none.
func (m *scopeManager) innermostLoop() ast.Stmt {
	f := m.currentFunc()
	if len(f.loops) == 0 {
		return nil
	}
	return f.loops[len(f.loops)-1]
}

// enterScope increments the scope level; leaveScope decrements it and pops
// every local declared at or beyond the level being left.
func (m *scopeManager) enterScope() int {
	m.scopeLevel++
	return m.scopeLevel
}

func (m *scopeManager) leaveScope() {
	m.scopeLevel--
	for len(m.vars) > 0 {
		top := m.vars[len(m.vars)-1]
		lvl, _ := deref2(top.stmt.ScopeLevel)
		if lvl <= m.scopeLevel {
			break
		}
		m.vars = m.vars[:len(m.vars)-1]
	}
}

func deref2(p *uint32) (int, bool) {
	if p == nil {
		return 0, false
	}
	return int(*p), true
}

// declare records v as a new local in the current function and scope.
func (m *scopeManager) declare(v *ast.VariableStmt) {
	f := m.currentFunc()
	v.ScopeLevel = u32(m.scopeLevel)
	v.FunctionLevel = u32(f.level)
	// RegisterOffset is left unset here: it is a code-generator concern,
	// assigned by lang/compiler's register allocator once the variable's
	// storage is actually allocated.
	f.numVars++
	m.vars = append(m.vars, visibleVar{stmt: v, level: f.level})
}

// lookup finds the most recently declared variable named name, searching
// from the innermost scope outward across enclosing functions too.
func (m *scopeManager) lookup(name string) *ast.VariableStmt {
	for i := len(m.vars) - 1; i >= 0; i-- {
		if m.vars[i].stmt.Name == name {
			return m.vars[i].stmt
		}
	}
	return nil
}

func u32(v int) *uint32 {
	u := uint32(v)
	return &u
}
