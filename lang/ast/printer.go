package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a deterministic, indented textual dump of node to w. It is
// intended for test fixtures: comparing two dumps catches any unintended
// structural change on mismatch.
func Fprint(w io.Writer, node Node) error {
	p := &printer{w: w}
	p.print(node, 0)
	return p.err
}

// Sprint is Fprint into a string, for use directly in test assertions.
func Sprint(node Node) string {
	var sb strings.Builder
	_ = Fprint(&sb, node)
	return sb.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) print(node Node, depth int) {
	if node == nil {
		p.line(depth, "<nil>")
		return
	}

	switch n := node.(type) {
	case *StmtSequence:
		p.line(depth, "StmtSequence")
		for _, s := range n.Stmts {
			p.print(s, depth+1)
		}

	case *CompoundStmt:
		p.line(depth, "CompoundStmt")
		p.print(n.Body, depth+1)

	case *ForStmt:
		p.line(depth, "ForStmt")
		p.print(n.Init, depth+1)
		p.print(n.Cond, depth+1)
		p.print(n.Post, depth+1)
		p.print(n.Body, depth+1)

	case *WhileStmt:
		p.line(depth, "WhileStmt")
		p.print(n.Cond, depth+1)
		p.print(n.Body, depth+1)

	case *DoWhileStmt:
		p.line(depth, "DoWhileStmt")
		p.print(n.Body, depth+1)
		p.print(n.Cond, depth+1)

	case *IfElseStmt:
		p.line(depth, "IfElseStmt")
		p.print(n.Cond, depth+1)
		p.print(n.Then, depth+1)
		if n.Else != nil {
			p.print(n.Else, depth+1)
		}

	case *ReturnStmt:
		p.line(depth, "ReturnStmt kind=%v", n.Kind)
		if n.Value != nil {
			p.print(n.Value, depth+1)
		}

	case *JumpStmt:
		p.line(depth, "JumpStmt kind=%v", n.Kind)

	case *VariableStmt:
		p.line(depth, "VariableStmt name=%q", n.Name)
		if n.Init != nil {
			p.print(n.Init, depth+1)
		}

	case *ExpressionStmt:
		p.line(depth, "ExpressionStmt")
		p.print(n.X, depth+1)

	case *UnaryExpr:
		p.line(depth, "UnaryExpr op=%s postfix=%v", n.Op, n.Postfix)
		p.print(n.X, depth+1)

	case *BinaryExpr:
		p.line(depth, "BinaryExpr op=%s", n.Op)
		p.print(n.X, depth+1)
		p.print(n.Y, depth+1)

	case *TrinaryExpr:
		p.line(depth, "TrinaryExpr")
		p.print(n.Cond, depth+1)
		p.print(n.Then, depth+1)
		p.print(n.Else, depth+1)

	case *TerminalExpr:
		switch n.Kind {
		case Identifier:
			p.line(depth, "TerminalExpr(Identifier) name=%q", n.Name)
		case String:
			p.line(depth, "TerminalExpr(String) value=%q", n.StringValue)
		case Int, Hex:
			p.line(depth, "TerminalExpr(%v) value=%d", n.Kind, n.IntValue)
		case Float:
			p.line(depth, "TerminalExpr(Float) value=%g", n.FloatValue)
		default:
			p.line(depth, "TerminalExpr(Null)")
		}

	case *CallExpr:
		p.line(depth, "CallExpr")
		p.print(n.Func, depth+1)
		for _, a := range n.Args {
			p.print(a, depth+1)
		}

	case *FunctionExpr:
		p.line(depth, "FunctionExpr")
		p.print(n.Def, depth+1)

	case *TableExpr:
		p.line(depth, "TableExpr shape=%v", n.Shape)
		for _, init := range n.Initializers {
			p.print(init, depth+1)
		}

	case *TableInitializer:
		p.line(depth, "TableInitializer autoKey=%d", n.AutoKey)
		if n.Key != nil {
			p.print(n.Key, depth+1)
		}
		p.print(n.Value, depth+1)

	case *FunctionDefinition:
		p.line(depth, "FunctionDefinition name=%q", n.Name)
		p.print(n.Arguments, depth+1)
		p.print(n.Body, depth+1)

	default:
		p.line(depth, "<unknown node %T>", n)
	}
}

func (k TerminalKind) String() string {
	switch k {
	case Null:
		return "Null"
	case Int:
		return "Int"
	case Hex:
		return "Hex"
	case Float:
		return "Float"
	case String:
		return "String"
	case Identifier:
		return "Identifier"
	default:
		return "?"
	}
}

func (k ReturnKind) String() string {
	if k == YIELD {
		return "YIELD"
	}
	return "RETURN"
}

func (k JumpKind) String() string {
	if k == CONTINUE {
		return "CONTINUE"
	}
	return "BREAK"
}

func (s TableShape) String() string {
	switch s {
	case Table:
		return "Table"
	case Array:
		return "Array"
	default:
		return "Unknown"
	}
}
