package ast

// Visitor is implemented by AST consumers (the resolver, disassemblers,
// debug printers). Visit is called for every node; if it returns a non-nil
// Visitor, Walk visits the node's children with that visitor, then calls
// Visit(nil) on that returned visitor to signal the node is done.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order, calling v.Visit for node and
// every descendant. It mirrors the shape of go/ast.Walk.
func Walk(v Visitor, node Node) {
	if node == nil {
		return
	}
	v = v.Visit(node)
	if v == nil {
		return
	}

	switch n := node.(type) {
	case *StmtSequence:
		for _, s := range n.Stmts {
			Walk(v, s)
		}

	case *CompoundStmt:
		Walk(v, n.Body)

	case *ForStmt:
		Walk(v, n.Init)
		Walk(v, n.Cond)
		Walk(v, n.Post)
		Walk(v, n.Body)

	case *WhileStmt:
		Walk(v, n.Cond)
		Walk(v, n.Body)

	case *DoWhileStmt:
		Walk(v, n.Body)
		Walk(v, n.Cond)

	case *IfElseStmt:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)

	case *ReturnStmt:
		Walk(v, n.Value)

	case *JumpStmt:
		// CorrespondingLoop is a back-reference, not a child; not walked.

	case *VariableStmt:
		Walk(v, n.Init)

	case *ExpressionStmt:
		Walk(v, n.X)

	case *UnaryExpr:
		Walk(v, n.X)

	case *BinaryExpr:
		Walk(v, n.X)
		Walk(v, n.Y)

	case *TrinaryExpr:
		Walk(v, n.Cond)
		Walk(v, n.Then)
		Walk(v, n.Else)

	case *TerminalExpr:
		// leaf

	case *CallExpr:
		Walk(v, n.Func)
		for _, a := range n.Args {
			Walk(v, a)
		}

	case *FunctionExpr:
		Walk(v, n.Def)

	case *TableExpr:
		for _, init := range n.Initializers {
			Walk(v, init)
		}

	case *TableInitializer:
		Walk(v, n.Key)
		Walk(v, n.Value)

	case *FunctionDefinition:
		Walk(v, n.Arguments)
		Walk(v, n.Body)

	default:
		panic("ast.Walk: unexpected node type")
	}

	v.Visit(nil)
}

// inspector adapts a plain func(Node) bool into a Visitor, the same trick
// go/ast.Inspect uses.
type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses an AST in depth-first order, calling f for node and
// every descendant; it stops descending into a subtree when f returns
// false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
