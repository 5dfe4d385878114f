package compiler

import (
	"fmt"

	"minml/pkg/code"
	"minml/pkg/ir"
)

// EntryName is the label of the synthetic zero-argument function that
// wraps the program's top-level body. It is compiled first, so execution
// starts at address 0.
const EntryName = "_start"

// Compile translates an IR program into a resolved instruction array.
//
// Each function is framed as its label definition, the compiled body under
// a fresh frame environment, and a terminator: HALT for the entry, or RET
// carrying the arity (the argument slots the machine discards on return)
// for everything else. The concatenated stream then goes through label
// resolution. Compilation either fully succeeds or returns an error with
// no partial output.
func Compile(prog *ir.Program) ([]code.Word, error) {
	cg := newCodeGen()

	funcs := make([]ir.FuncDef, 0, len(prog.Funcs)+1)
	funcs = append(funcs, ir.FuncDef{Name: EntryName, Body: prog.Body})
	funcs = append(funcs, prog.Funcs...)

	var stream []code.Elem
	for i, fn := range funcs {
		body, err := cg.compileTail(frame(fn.Params), fn.Body)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		stream = append(stream, code.Mark{Label: fn.Name})
		stream = append(stream, body...)
		if i == 0 {
			stream = append(stream, code.Op{Code: code.Halt})
		} else {
			stream = append(stream, code.Op{Code: code.Ret}, code.Lit{Value: len(fn.Params)})
		}
	}

	return code.Resolve(stream)
}

// CompileSource lexes, parses and compiles minml source text.
func CompileSource(src string) ([]code.Word, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	prog, err := Parse(tokens, src)
	if err != nil {
		return nil, err
	}
	return Compile(prog)
}
