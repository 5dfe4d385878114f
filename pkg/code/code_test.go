package code

import (
	"strings"
	"testing"
)

func TestWidth(t *testing.T) {
	twoWide := []Opcode{Push, Dup, Jmp, JmpIf, Call, Ret}
	oneWide := []Opcode{Add, Sub, Mul, Div, Mod, Eq, Lt, Pop, Halt}

	for _, op := range twoWide {
		if Width(op) != 2 {
			t.Errorf("Width(%s) = %d, want 2", op, Width(op))
		}
	}
	for _, op := range oneWide {
		if Width(op) != 1 {
			t.Errorf("Width(%s) = %d, want 1", op, Width(op))
		}
	}
}

func TestOpcodeString(t *testing.T) {
	if Push.String() != "PUSH" || Halt.String() != "HALT" {
		t.Errorf("unexpected opcode names: %s, %s", Push, Halt)
	}
	if got := Opcode(99).String(); got != "Opcode(99)" {
		t.Errorf("out-of-range opcode: got %q", got)
	}
}

func TestElemString(t *testing.T) {
	tests := []struct {
		el   Elem
		want string
	}{
		{Op{Code: Add}, "ADD"},
		{Lit{Value: 42}, "42"},
		{Ref{Label: "L3"}, "@L3"},
		{Mark{Label: "f"}, "f:"},
	}
	for _, tt := range tests {
		if got := tt.el.String(); got != tt.want {
			t.Errorf("%T.String() = %q, want %q", tt.el, got, tt.want)
		}
	}
}

func TestDisassemble(t *testing.T) {
	program := []Word{Word(Push), 3, Word(Push), 4, Word(Add), Word(Halt)}
	out := Disassemble(program)

	for _, want := range []string{"0: PUSH  3", "2: PUSH  4", "4: ADD", "5: HALT"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}

func TestDisassemble_TruncatedOperand(t *testing.T) {
	out := Disassemble([]Word{Word(Push)})
	if !strings.Contains(out, "truncated") {
		t.Errorf("expected a truncation note, got:\n%s", out)
	}
}
