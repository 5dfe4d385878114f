package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function name
	INTEGER    // decimal or hex integer literal
	FLOATLIT   // floating-point literal (parsed, never lowered)

	// Keywords
	FUN  // "fun"
	LET  // "let"
	IN   // "in"
	IF   // "if"
	THEN // "then"
	ELSE // "else"

	// Paired delimiters
	LPAREN // (
	RPAREN // )

	// Punctuation
	COMMA // ,

	// Operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	EQUALS  // =
	LESS_EQ // <=
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	FLOATLIT:   "FLOATLIT",
	FUN:        "FUN",
	LET:        "LET",
	IN:         "IN",
	IF:         "IF",
	THEN:       "THEN",
	ELSE:       "ELSE",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COMMA:      "COMMA",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	PERCENT:    "PERCENT",
	EQUALS:     "EQUALS",
	LESS_EQ:    "LESS_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
