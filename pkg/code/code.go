// Package code defines the instruction set of the minml stack machine and
// the two-pass resolver that turns a symbolic instruction stream into a
// dense, address-resolved program.
//
// Before resolution a program is a []Elem: opcode and literal elements
// interleaved with label references and zero-width label definitions.
// After resolution it is a []Word with every label replaced by an absolute
// address and every definition marker removed, so a later stage cannot
// observe a symbolic label by construction.
package code

import "fmt"

// Opcode identifies one machine instruction.
type Opcode int

const (
	Push  Opcode = iota // push the literal operand
	Dup                 // copy the slot <operand> positions below the top
	Add                 // pop b, pop a, push a+b
	Sub                 // pop b, pop a, push a-b
	Mul                 // pop b, pop a, push a*b
	Div                 // pop b, pop a, push a/b
	Mod                 // pop b, pop a, push a%b
	Eq                  // pop b, pop a, push 1 if a == b else 0
	Lt                  // pop b, pop a, push 1 if a < b else 0
	Pop                 // remove the slot directly beneath the top
	Jmp                 // jump to the operand address
	JmpIf               // pop v, jump to the operand address if v != 0
	Call                // push the return address, jump to the operand address
	Ret                 // pop result, pop return address, drop <operand> argument slots, push result, resume
	Halt                // stop the machine
)

var opNames = [...]string{
	Push:  "PUSH",
	Dup:   "DUP",
	Add:   "ADD",
	Sub:   "SUB",
	Mul:   "MUL",
	Div:   "DIV",
	Mod:   "MOD",
	Eq:    "EQ",
	Lt:    "LT",
	Pop:   "POP",
	Jmp:   "JMP",
	JmpIf: "JMPIF",
	Call:  "CALL",
	Ret:   "RET",
	Halt:  "HALT",
}

func (op Opcode) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// Width returns how many stream elements the instruction occupies: the
// opcode itself plus its operand, if it takes one. Operand-carrying
// instructions always keep the operand in the immediately following
// element.
func Width(op Opcode) int {
	switch op {
	case Push, Dup, Jmp, JmpIf, Call, Ret:
		return 2
	default:
		return 1
	}
}

// Elem is one element of a pre-resolution instruction stream.
type Elem interface {
	elem()
	String() string
}

// Op is an opcode element.
type Op struct {
	Code Opcode
}

func (Op) elem()            {}
func (e Op) String() string { return e.Code.String() }

// Lit is a literal operand element: a pushed constant, a Dup depth, a Ret
// arity or a resolved address.
type Lit struct {
	Value int
}

func (Lit) elem()            {}
func (e Lit) String() string { return fmt.Sprintf("%d", e.Value) }

// Ref is a symbolic operand: a jump or call target that has not been
// resolved to an address yet. It never survives resolution.
type Ref struct {
	Label string
}

func (Ref) elem()            {}
func (e Ref) String() string { return "@" + e.Label }

// Mark defines a label at the current point of the stream. It occupies no
// address and never survives resolution.
type Mark struct {
	Label string
}

func (Mark) elem()            {}
func (e Mark) String() string { return e.Label + ":" }

// Word is one element of a resolved program: an opcode value or an operand.
// Consumers decode by Width, starting at address 0.
type Word int
