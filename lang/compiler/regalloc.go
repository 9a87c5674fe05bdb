package compiler

import "github.com/mna/corelang/lang/ast"

// regAlloc is a register stack growing up from 0: allocate returns the
// current top and increments it; deallocation requires the released
// register to be exactly top-1. maxSize records the high-water mark, which
// becomes the compiled Prototype's LocalSize.
type regAlloc struct {
	top     int32
	maxSize int32
}

func (r *regAlloc) alloc() int32 {
	reg := r.top
	r.top++
	if r.top > r.maxSize {
		r.maxSize = r.top
	}
	return reg
}

// dealloc releases reg, which must be the most recently allocated register
// still live.
func (r *regAlloc) dealloc(reg int32) {
	if reg != r.top-1 {
		fail("register deallocation out of stack order")
	}
	r.top--
}

// release frees the register(s) held by an already-compiled expression,
// following a polymorphic deallocation rule:
//
//   - TEMPTABLE (a table index used as an assignment destination): release
//     the key sub-expression, then the container sub-expression, each by
//     these same rules (the key was allocated after the container, so it
//     must be released first; a local variable used as either keeps its
//     register), then the fetched value register if there is one.
//   - TEMP (a plain temporary r-value): free the expression's own register.
//   - a non-l-value expression not otherwise marked: it must sit at the top
//     of the register stack; pop it.
//   - an l-value referring directly to a local variable's own slot: nothing
//     to release, the variable owns that register for its whole scope.
func (r *regAlloc) release(e ast.Expr) {
	flags := *e.Flags()
	switch {
	case flags.Has(ast.TEMPTABLE):
		// Allocation order was result (if any), then container, then key;
		// release in the reverse, stack-respecting order.
		b := e.(*ast.BinaryExpr)
		r.release(b.Y)
		r.release(b.X)
		if e.Reg() != nil {
			r.dealloc(int32(*e.Reg()))
		}
	case flags.Has(ast.TEMP):
		r.dealloc(int32(*e.Reg()))
	case !flags.Has(ast.LVALUE):
		r.dealloc(int32(*e.Reg()))
	}
}
