package compiler

import "fmt"

// NameError reports a variable reference whose name is not on the
// compile-time stack. Well-scoped IR never triggers it; it means a bug in
// whatever produced the IR.
type NameError struct {
	Name string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("variable %q is not in scope", e.Name)
}

// UnsupportedError reports an IR node kind this backend does not lower.
// Compilation aborts rather than miscompile.
type UnsupportedError struct {
	Node string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("cannot compile %s", e.Node)
}

// ParseError is returned by the parser. AtEOF marks errors caused by the
// input ending too early, which lets an interactive caller keep reading
// instead of reporting a failure.
type ParseError struct {
	Line  int
	Msg   string
	AtEOF bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// IsIncomplete reports whether err means the source ended in the middle of
// a well-formed prefix.
func IsIncomplete(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.AtEOF
}
