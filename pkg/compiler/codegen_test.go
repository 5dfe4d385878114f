package compiler

import (
	"errors"
	"reflect"
	"testing"

	"minml/pkg/code"
	"minml/pkg/ir"
)

// compileBody compiles a program consisting only of a top-level body.
func compileBody(t *testing.T, body ir.Expr) []code.Word {
	t.Helper()
	words, err := Compile(&ir.Program{Body: body})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return words
}

func TestCompile_LetChain(t *testing.T) {
	// let a = 3 in let b = 4 in a + b
	body := &ir.Let{
		Name:  "a",
		Bound: &ir.Int{Value: 3},
		Body: &ir.Let{
			Name:  "b",
			Bound: &ir.Int{Value: 4},
			Body: &ir.Bin{
				Op:    ir.AddOp,
				Left:  &ir.Var{Name: "a"},
				Right: &ir.Var{Name: "b"},
			},
		},
	}

	words := compileBody(t, body)

	want := []code.Word{
		code.Word(code.Push), 3,
		code.Word(code.Push), 4,
		code.Word(code.Dup), 1, // a: beneath b
		code.Word(code.Dup), 1, // b: beneath the duplicated a
		code.Word(code.Add),
		code.Word(code.Pop), // inner binding
		code.Word(code.Pop), // outer binding
		code.Word(code.Halt),
	}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("got  %v\nwant %v", words, want)
	}
}

func TestCompile_IfAddresses(t *testing.T) {
	// if 1 <= 2 then 10 else 20
	body := &ir.If{
		Cmp:   ir.CmpLe,
		Left:  &ir.Int{Value: 1},
		Right: &ir.Int{Value: 2},
		Then:  &ir.Int{Value: 10},
		Else:  &ir.Int{Value: 20},
	}

	words := compileBody(t, body)

	want := []code.Word{
		code.Word(code.Push), 2, // right operand first:
		code.Word(code.Push), 1, // LT computes 2 < 1 = NOT(1 <= 2)
		code.Word(code.Lt),
		code.Word(code.JmpIf), 11, // to the else branch
		code.Word(code.Push), 10,
		code.Word(code.Jmp), 13, // past the else branch
		code.Word(code.Push), 20,
		code.Word(code.Halt),
	}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("got  %v\nwant %v", words, want)
	}

	// The conditional jump lands on the first word of the else branch and
	// the unconditional jump lands immediately after it.
	if words[6] != 11 {
		t.Errorf("JMPIF target = %d, want 11 (start of else)", words[6])
	}
	if words[10] != 13 {
		t.Errorf("JMP target = %d, want 13 (after else)", words[10])
	}
}

func TestCompile_IfEquality(t *testing.T) {
	// Equality cannot be negated by operand order; the generator compares
	// the comparison result against zero instead.
	body := &ir.If{
		Cmp:   ir.CmpEq,
		Left:  &ir.Int{Value: 3},
		Right: &ir.Int{Value: 3},
		Then:  &ir.Int{Value: 1},
		Else:  &ir.Int{Value: 2},
	}

	words := compileBody(t, body)

	want := []code.Word{
		code.Word(code.Push), 3,
		code.Word(code.Push), 3,
		code.Word(code.Eq),
		code.Word(code.Push), 0,
		code.Word(code.Eq), // logical negation
		code.Word(code.JmpIf), 14,
		code.Word(code.Push), 1,
		code.Word(code.Jmp), 16,
		code.Word(code.Push), 2,
		code.Word(code.Halt),
	}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("got  %v\nwant %v", words, want)
	}
}

func TestCompile_FunctionFraming(t *testing.T) {
	// fun add2(a, b) = a + b;  add2(3, 4)
	prog := &ir.Program{
		Funcs: []ir.FuncDef{{
			Name:   "add2",
			Params: []string{"a", "b"},
			Body: &ir.Bin{
				Op:    ir.AddOp,
				Left:  &ir.Var{Name: "a"},
				Right: &ir.Var{Name: "b"},
			},
		}},
		Body: &ir.Call{Name: "add2", Args: []ir.Expr{&ir.Int{Value: 3}, &ir.Int{Value: 4}}},
	}

	words, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	want := []code.Word{
		// _start
		code.Word(code.Push), 3,
		code.Word(code.Push), 4,
		code.Word(code.Call), 7,
		code.Word(code.Halt),
		// add2: frame is [return address, b, a]
		code.Word(code.Dup), 2, // a
		code.Word(code.Dup), 2, // b, one deeper after a was pushed
		code.Word(code.Add),
		code.Word(code.Ret), 2, // discard both arguments on return
	}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("got  %v\nwant %v", words, want)
	}
}

func TestCompile_EntryIsAddressZero(t *testing.T) {
	prog := &ir.Program{
		Funcs: []ir.FuncDef{{Name: "f", Params: []string{"x"}, Body: &ir.Var{Name: "x"}}},
		Body:  &ir.Int{Value: 1},
	}
	words, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	// The synthetic entry wrapping the body is compiled first.
	if code.Opcode(words[0]) != code.Push || words[1] != 1 {
		t.Errorf("program must start with the top-level body, got %v", words[:2])
	}
}

func TestCompile_PrintIntrinsic(t *testing.T) {
	// A print call vanishes: the call and its arguments compile to nothing.
	body := &ir.Call{Name: "print", Args: []ir.Expr{&ir.Int{Value: 42}}}
	words := compileBody(t, body)

	want := []code.Word{code.Word(code.Halt)}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("got %v, want just HALT", words)
	}
}

func TestCompile_UndefinedCall(t *testing.T) {
	// Unknown call targets are not validated during code generation; they
	// surface as an unresolved label.
	body := &ir.Call{Name: "ghost", Args: []ir.Expr{&ir.Int{Value: 1}}}
	words, err := Compile(&ir.Program{Body: body})
	if err == nil {
		t.Fatal("expected an unresolved label error")
	}
	var ule *code.UnresolvedLabelError
	if !errors.As(err, &ule) {
		t.Fatalf("expected *code.UnresolvedLabelError, got %T: %v", err, err)
	}
	if ule.Label != "ghost" {
		t.Errorf("error should carry the call target, got %q", ule.Label)
	}
	if words != nil {
		t.Errorf("no partial output on failure, got %v", words)
	}
}

func TestCompile_UnsupportedConstructs(t *testing.T) {
	tests := []struct {
		name string
		body ir.Expr
	}{
		{"tuple", &ir.Tuple{Elems: []ir.Expr{&ir.Int{Value: 1}, &ir.Int{Value: 2}}}},
		{"float", &ir.Float{Value: 3.14}},
		{"nested", &ir.Let{Name: "x", Bound: &ir.Float{Value: 1.5}, Body: &ir.Var{Name: "x"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := Compile(&ir.Program{Body: tt.body})
			if err == nil {
				t.Fatal("expected an unsupported construct error")
			}
			var ue *UnsupportedError
			if !errors.As(err, &ue) {
				t.Fatalf("expected *UnsupportedError, got %T: %v", err, err)
			}
			if ue.Node == "" {
				t.Error("error should describe the offending node")
			}
			if words != nil {
				t.Errorf("no partial output on failure, got %v", words)
			}
		})
	}
}

func TestCompile_ScopeBugSurfacesAsNameError(t *testing.T) {
	words, err := Compile(&ir.Program{Body: &ir.Var{Name: "undefined"}})
	if err == nil {
		t.Fatal("expected a name error")
	}
	var ne *NameError
	if !errors.As(err, &ne) {
		t.Fatalf("expected *NameError, got %T: %v", err, err)
	}
	if words != nil {
		t.Errorf("no partial output on failure, got %v", words)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	// Label state lives in the per-compilation CodeGen, so recompiling the
	// identical IR yields an identical array.
	prog := &ir.Program{
		Funcs: []ir.FuncDef{{
			Name:   "fib",
			Params: []string{"n"},
			Body: &ir.If{
				Cmp:   ir.CmpLe,
				Left:  &ir.Var{Name: "n"},
				Right: &ir.Int{Value: 1},
				Then:  &ir.Var{Name: "n"},
				Else: &ir.Bin{
					Op: ir.AddOp,
					Left: &ir.Call{Name: "fib", Args: []ir.Expr{
						&ir.Bin{Op: ir.SubOp, Left: &ir.Var{Name: "n"}, Right: &ir.Int{Value: 1}},
					}},
					Right: &ir.Call{Name: "fib", Args: []ir.Expr{
						&ir.Bin{Op: ir.SubOp, Left: &ir.Var{Name: "n"}, Right: &ir.Int{Value: 2}},
					}},
				},
			},
		}},
		Body: &ir.Call{Name: "fib", Args: []ir.Expr{&ir.Int{Value: 10}}},
	}

	first, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	second, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recompilation is not deterministic:\n%v\n%v", first, second)
	}
}

func TestCompile_UnitBody(t *testing.T) {
	words := compileBody(t, &ir.Unit{})
	want := []code.Word{code.Word(code.Halt)}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("got %v, want just HALT", words)
	}
}
