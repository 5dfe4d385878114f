package compiler

import (
	"fmt"

	"minml/pkg/code"
	"minml/pkg/ir"
)

// printIntrinsic is the one recognised intrinsic. Calls to it compile to
// the empty sequence: the call disappears and its arguments are never
// evaluated. This is a known gap, kept deliberately; see DESIGN.md.
const printIntrinsic = "print"

// CodeGen translates IR expression trees into symbolic instruction
// streams. Branch labels come from a per-instance counter, so independent
// compilations are deterministic and never share label state.
type CodeGen struct {
	nextLabel int
}

func newCodeGen() *CodeGen {
	return &CodeGen{}
}

func (cg *CodeGen) newLabel() string {
	l := fmt.Sprintf("L%d", cg.nextLabel)
	cg.nextLabel++
	return l
}

// compileTail compiles an expression in tail position. A let chain emits
// the bound value, then the rest under the extended environment, then one
// POP that slides the bound temporary out from beneath the propagated
// result. Anything else is handed to compileExpr.
func (cg *CodeGen) compileTail(env slotEnv, e ir.Expr) ([]code.Elem, error) {
	let, ok := e.(*ir.Let)
	if !ok {
		return cg.compileExpr(env, e)
	}

	bound, err := cg.compileExpr(env, let.Bound)
	if err != nil {
		return nil, err
	}
	body, err := cg.compileTail(env.extend(let.Name), let.Body)
	if err != nil {
		return nil, err
	}

	out := make([]code.Elem, 0, len(bound)+len(body)+1)
	out = append(out, bound...)
	out = append(out, body...)
	return append(out, code.Op{Code: code.Pop}), nil
}

// compileExpr dispatches on the IR node kind.
func (cg *CodeGen) compileExpr(env slotEnv, e ir.Expr) ([]code.Elem, error) {
	switch n := e.(type) {
	case *ir.Int:
		return []code.Elem{code.Op{Code: code.Push}, code.Lit{Value: n.Value}}, nil

	case *ir.Var:
		depth, err := env.lookup(n.Name)
		if err != nil {
			return nil, err
		}
		return []code.Elem{code.Op{Code: code.Dup}, code.Lit{Value: depth}}, nil

	case *ir.Unit:
		return nil, nil

	case *ir.Bin:
		return cg.compileBin(env, n)

	case *ir.If:
		return cg.compileIf(env, n)

	case *ir.Call:
		return cg.compileCall(env, n)

	case *ir.Let:
		return cg.compileTail(env, n)

	default:
		return nil, &UnsupportedError{Node: describe(e)}
	}
}

// compileBin pushes the left operand, pushes the right operand under the
// environment shifted by one slot, and emits the operator. Net stack
// effect: two slots consumed, one produced.
func (cg *CodeGen) compileBin(env slotEnv, n *ir.Bin) ([]code.Elem, error) {
	left, err := cg.compileTail(env, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := cg.compileTail(env.shift(), n.Right)
	if err != nil {
		return nil, err
	}

	var op code.Opcode
	switch n.Op {
	case ir.AddOp:
		op = code.Add
	case ir.SubOp:
		op = code.Sub
	case ir.MulOp:
		op = code.Mul
	case ir.DivOp:
		op = code.Div
	case ir.ModOp:
		op = code.Mod
	default:
		return nil, &UnsupportedError{Node: fmt.Sprintf("binary operator %s", n.Op)}
	}

	out := append(left, right...)
	return append(out, code.Op{Code: op}), nil
}

// compileIf lowers a conditional to:
//
//	<comparison>        computes the NEGATION of the source condition
//	JMPIF else
//	<then>
//	JMP end
//	else: <else>
//	end:
//
// The machine only has jump-if-true, so the comparison is arranged to be
// true exactly when the else branch must run. For a <= b the operands are
// compiled right-then-left, making LT yield b < a. Equality cannot be
// negated by operand order, so it is compared against zero instead.
// Both branches start from the same environment: they are alternatives,
// and each leaves exactly one result slot.
func (cg *CodeGen) compileIf(env slotEnv, n *ir.If) ([]code.Elem, error) {
	var cond []code.Elem
	switch n.Cmp {
	case ir.CmpLe:
		right, err := cg.compileTail(env, n.Right)
		if err != nil {
			return nil, err
		}
		left, err := cg.compileTail(env.shift(), n.Left)
		if err != nil {
			return nil, err
		}
		cond = append(right, left...)
		cond = append(cond, code.Op{Code: code.Lt})
	case ir.CmpEq:
		left, err := cg.compileTail(env, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := cg.compileTail(env.shift(), n.Right)
		if err != nil {
			return nil, err
		}
		cond = append(left, right...)
		cond = append(cond,
			code.Op{Code: code.Eq},
			code.Op{Code: code.Push}, code.Lit{Value: 0},
			code.Op{Code: code.Eq})
	default:
		return nil, &UnsupportedError{Node: fmt.Sprintf("comparison %s", n.Cmp)}
	}

	elseLabel := cg.newLabel()
	endLabel := cg.newLabel()

	then, err := cg.compileTail(env, n.Then)
	if err != nil {
		return nil, err
	}
	els, err := cg.compileTail(env, n.Else)
	if err != nil {
		return nil, err
	}

	out := make([]code.Elem, 0, len(cond)+len(then)+len(els)+6)
	out = append(out, cond...)
	out = append(out, code.Op{Code: code.JmpIf}, code.Ref{Label: elseLabel})
	out = append(out, then...)
	out = append(out, code.Op{Code: code.Jmp}, code.Ref{Label: endLabel})
	out = append(out, code.Mark{Label: elseLabel})
	out = append(out, els...)
	return append(out, code.Mark{Label: endLabel}), nil
}

// compileCall pushes the arguments left to right, shifting the environment
// once per pushed value, then emits a call against the target's label.
// Target names are not validated here: a call to a function that is never
// compiled surfaces as an unresolved label during resolution.
func (cg *CodeGen) compileCall(env slotEnv, n *ir.Call) ([]code.Elem, error) {
	if n.Name == printIntrinsic {
		return nil, nil
	}

	var out []code.Elem
	argEnv := env
	for _, arg := range n.Args {
		elems, err := cg.compileTail(argEnv, arg)
		if err != nil {
			return nil, err
		}
		out = append(out, elems...)
		argEnv = argEnv.shift()
	}
	return append(out, code.Op{Code: code.Call}, code.Ref{Label: n.Name}), nil
}

// describe names an IR node for an UnsupportedError message.
func describe(e ir.Expr) string {
	switch n := e.(type) {
	case *ir.Float:
		return fmt.Sprintf("floating-point constant %s", n)
	case *ir.Tuple:
		return fmt.Sprintf("tuple construction %s", n)
	default:
		return fmt.Sprintf("node %T (%s)", e, e)
	}
}
