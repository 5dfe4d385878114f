package compiler

// slotEnv is the compile-time simulation of the runtime stack: an ordered
// sequence of names, front = top. Its length always equals the number of
// values statically known to be on the stack at the current program point,
// so a name's index is exactly the depth operand of a DUP instruction.
//
// Every operation returns a fresh value and never mutates its receiver, so
// recursive compilation of sibling branches cannot observe each other's
// bookkeeping. Lookup is a linear scan; frames are a handful of slots.
type slotEnv []string

// retAddr is the sentinel marking the return-address slot. Everything
// below it belongs to the caller: the arguments first, then the caller's
// own frame. It is never the target of a lookup in well-scoped input.
const retAddr = "$ra"

// anon occupies a slot holding a value that no name is bound to, e.g. the
// left operand of a binary expression while the right one is compiled.
const anon = "$"

// frame builds the environment a function body starts from: the
// return-address sentinel on top, then the parameters in reverse
// declaration order, so the first parameter sits deepest. This matches a
// call site that pushes arguments left to right before the call.
func frame(params []string) slotEnv {
	env := make(slotEnv, 0, len(params)+1)
	env = append(env, retAddr)
	for i := len(params) - 1; i >= 0; i-- {
		env = append(env, params[i])
	}
	return env
}

// lookup returns the distance of name from the top of the simulated stack.
// A miss means the front end let an unscoped variable through; the
// compiled output would be garbage, so it is a hard error.
func (e slotEnv) lookup(name string) (int, error) {
	for i, n := range e {
		if n == name {
			return i, nil
		}
	}
	return 0, &NameError{Name: name}
}

// extend records that a value bound to name has been pushed.
func (e slotEnv) extend(name string) slotEnv {
	env := make(slotEnv, 0, len(e)+1)
	env = append(env, name)
	return append(env, e...)
}

// shift records that an unnamed value has been pushed, keeping the indices
// of all existing entries correct.
func (e slotEnv) shift() slotEnv {
	return e.extend(anon)
}

// downshift records that the top value has been popped.
func (e slotEnv) downshift() slotEnv {
	return e[1:]
}
