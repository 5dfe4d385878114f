// Package ir defines the intermediate representation handed to the code
// generator: expression trees built from integer constants, variables,
// bindings, arithmetic, comparisons, conditionals and direct calls.
//
// The IR also carries node kinds the backend does not lower (floats,
// tuples). They exist so that a front end or transformation pass that
// produces one fails loudly at code generation instead of miscompiling.
package ir

import (
	"fmt"
	"strings"
)

// Expr is implemented by every IR node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// Int is a compile-time integer constant.
type Int struct {
	Value int
}

func (*Int) exprNode()        {}
func (n *Int) String() string { return fmt.Sprintf("%d", n.Value) }

// Var is a read of a named binding or parameter.
type Var struct {
	Name string
}

func (*Var) exprNode()        {}
func (n *Var) String() string { return n.Name }

// Unit is the empty expression. It compiles to nothing.
type Unit struct{}

func (*Unit) exprNode()      {}
func (*Unit) String() string { return "()" }

// BinOp identifies an arithmetic operator of a Bin node.
type BinOp int

const (
	AddOp BinOp = iota
	SubOp
	MulOp
	DivOp
	ModOp
)

var binOpNames = [...]string{
	AddOp: "+",
	SubOp: "-",
	MulOp: "*",
	DivOp: "/",
	ModOp: "%",
}

func (op BinOp) String() string {
	if int(op) >= 0 && int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

// Bin is an integer arithmetic operation: Left Op Right.
type Bin struct {
	Op    BinOp
	Left  Expr
	Right Expr
}

func (*Bin) exprNode() {}
func (n *Bin) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left, n.Op, n.Right)
}

// CmpOp identifies the comparison form of an If node. Conditionals carry
// their comparison directly; there is no free-standing boolean type.
type CmpOp int

const (
	CmpEq CmpOp = iota // if left = right
	CmpLe              // if left <= right
)

func (op CmpOp) String() string {
	if op == CmpEq {
		return "="
	}
	return "<="
}

// If is a two-way conditional on an equality or less-or-equal comparison.
type If struct {
	Cmp   CmpOp
	Left  Expr
	Right Expr
	Then  Expr
	Else  Expr
}

func (*If) exprNode() {}
func (n *If) String() string {
	return fmt.Sprintf("(if %s %s %s then %s else %s)", n.Left, n.Cmp, n.Right, n.Then, n.Else)
}

// Let binds the value of Bound to Name for the extent of Body.
type Let struct {
	Name  string
	Bound Expr
	Body  Expr
}

func (*Let) exprNode() {}
func (n *Let) String() string {
	return fmt.Sprintf("(let %s = %s in %s)", n.Name, n.Bound, n.Body)
}

// Call is a direct call to a named top-level function.
type Call struct {
	Name string
	Args []Expr
}

func (*Call) exprNode() {}
func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
}

// Float is a floating-point constant. The backend does not lower it.
type Float struct {
	Value float64
}

func (*Float) exprNode()        {}
func (n *Float) String() string { return fmt.Sprintf("%g", n.Value) }

// Tuple is a tuple construction. The backend does not lower it.
type Tuple struct {
	Elems []Expr
}

func (*Tuple) exprNode() {}
func (n *Tuple) String() string {
	elems := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		elems[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
}

// FuncDef is a named top-level function. The name doubles as the call
// label of the compiled body. Definitions are consumed once by the
// assembler and never mutated.
type FuncDef struct {
	Name   string
	Params []string
	Body   Expr
}

func (f FuncDef) String() string {
	return fmt.Sprintf("fun %s(%s) = %s", f.Name, strings.Join(f.Params, ", "), f.Body)
}

// Program is a set of function definitions plus one distinguished
// top-level body expression.
type Program struct {
	Funcs []FuncDef
	Body  Expr
}
