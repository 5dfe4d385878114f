package compiler

import (
	"testing"
)

// lexTypes returns just the token types for src, failing the test on a lex error.
func lexTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestLex_Expression(t *testing.T) {
	got := lexTypes(t, "let x = 1 + 2 in x * 3")
	want := []TokenType{LET, IDENTIFIER, EQUALS, INTEGER, PLUS, INTEGER, IN, IDENTIFIER, STAR, INTEGER, EOF}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLex_KeywordsAndIdentifiers(t *testing.T) {
	tokens, err := Lex("fun funny if iffy then else elsewhere in _x")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	want := []struct {
		tt     TokenType
		lexeme string
	}{
		{FUN, "fun"},
		{IDENTIFIER, "funny"},
		{IF, "if"},
		{IDENTIFIER, "iffy"},
		{THEN, "then"},
		{ELSE, "else"},
		{IDENTIFIER, "elsewhere"},
		{IN, "in"},
		{IDENTIFIER, "_x"},
		{EOF, ""},
	}
	for i, w := range want {
		if tokens[i].Type != w.tt || tokens[i].Lexeme != w.lexeme {
			t.Errorf("token %d: got %s %q, want %s %q", i, tokens[i].Type, tokens[i].Lexeme, w.tt, w.lexeme)
		}
	}
}

func TestLex_Numbers(t *testing.T) {
	tokens, err := Lex("0 42 0xFF 3.14")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	want := []struct {
		tt     TokenType
		lexeme string
	}{
		{INTEGER, "0"},
		{INTEGER, "42"},
		{INTEGER, "0xFF"},
		{FLOATLIT, "3.14"},
	}
	for i, w := range want {
		if tokens[i].Type != w.tt || tokens[i].Lexeme != w.lexeme {
			t.Errorf("token %d: got %s %q, want %s %q", i, tokens[i].Type, tokens[i].Lexeme, w.tt, w.lexeme)
		}
	}
}

func TestLex_Comments(t *testing.T) {
	got := lexTypes(t, "1 # a comment\n# whole line\n2")
	want := []TokenType{INTEGER, INTEGER, EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLex_LineNumbers(t *testing.T) {
	tokens, err := Lex("1\n2\n\n3")
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	wantLines := []int{1, 2, 4}
	for i, want := range wantLines {
		if tokens[i].Line != want {
			t.Errorf("token %d on line %d, want %d", i, tokens[i].Line, want)
		}
	}
}

func TestLex_Errors(t *testing.T) {
	for _, src := range []string{"a & b", "a < b", "x @ 1"} {
		if _, err := Lex(src); err == nil {
			t.Errorf("Lex(%q) should fail", src)
		}
	}
}
