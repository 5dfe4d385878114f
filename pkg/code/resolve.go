package code

import "fmt"

// UnresolvedLabelError reports a label reference that has no matching
// definition in the stream. It indicates a code-generation bug, not bad
// user input: every branch target is emitted together with its mark, and
// every call target must name a compiled function.
type UnresolvedLabelError struct {
	Label string
}

func (e *UnresolvedLabelError) Error() string {
	return fmt.Sprintf("unresolved label %q", e.Label)
}

// Resolve assigns every label an absolute address and produces the final
// dense program.
//
// Pass 1 walks the stream with a running address counter. Every element
// advances the counter by one except Mark, which is zero-width and records
// the current address for its label instead. Pass 2 replaces each Ref with
// the recorded address of its label and drops the marks, so the index of
// every word in the result is exactly the address computed in pass 1.
//
// Resolving an already-resolved stream (one with no Ref or Mark elements)
// is a no-op.
func Resolve(stream []Elem) ([]Word, error) {
	addrs := make(map[string]int)
	addr := 0
	for _, el := range stream {
		m, ok := el.(Mark)
		if !ok {
			addr++
			continue
		}
		if _, dup := addrs[m.Label]; dup {
			return nil, fmt.Errorf("label %q defined twice", m.Label)
		}
		addrs[m.Label] = addr
	}

	program := make([]Word, 0, addr)
	for _, el := range stream {
		switch e := el.(type) {
		case Op:
			program = append(program, Word(e.Code))
		case Lit:
			program = append(program, Word(e.Value))
		case Ref:
			target, ok := addrs[e.Label]
			if !ok {
				return nil, &UnresolvedLabelError{Label: e.Label}
			}
			program = append(program, Word(target))
		case Mark:
			// zero-width, already recorded
		default:
			return nil, fmt.Errorf("unknown stream element %T", el)
		}
	}
	return program, nil
}
