package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"minml/pkg/ir"
)

// Parser consumes the flat token slice produced by the Lexer and builds an
// IR program.
//
// Grammar:
//
//	program        = funDecl* expression? EOF
//	funDecl        = "fun" IDENTIFIER "(" [ params ] ")" "=" expression
//	params         = IDENTIFIER ("," IDENTIFIER)*
//	expression     = letExpr | ifExpr | additive
//	letExpr        = "let" IDENTIFIER "=" expression "in" expression
//	ifExpr         = "if" additive ("=" | "<=") additive "then" expression "else" expression
//	additive       = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/" | "%") unary)*
//	unary          = "-" unary | primary
//	primary        = INTEGER | FLOATLIT | IDENTIFIER [ "(" args ")" ] | "(" expression ")"
//
// Conditions of "if" must be comparisons: the IR only has conditional
// forms for = and <=, there is no free-standing boolean value.
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError wraps an error message with the source line where the token
// appears. Errors at the EOF token are flagged so interactive callers can
// treat the input as incomplete rather than broken.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1

	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet := strings.TrimSpace(p.sourceLines[lineIdx])
		if snippet != "" {
			msg = fmt.Sprintf("%s\n  |> %s", msg, snippet)
		}
	}

	return &ParseError{Line: tok.Line, Msg: msg, AtEOF: tok.Type == EOF}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (ir.Expr, error) {
	switch p.peek().Type {
	case LET:
		return p.parseLet()
	case IF:
		return p.parseIf()
	default:
		return p.parseAdditive()
	}
}

// parseLet handles let NAME = expression in expression.
func (p *Parser) parseLet() (ir.Expr, error) {
	p.advance() // let
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	bound, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ir.Let{Name: name.Lexeme, Bound: bound, Body: body}, nil
}

// parseIf handles if a = b / a <= b then expression else expression.
func (p *Parser) parseIf() (ir.Expr, error) {
	ifTok := p.advance() // if
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	var cmp ir.CmpOp
	switch p.peek().Type {
	case EQUALS:
		cmp = ir.CmpEq
	case LESS_EQ:
		cmp = ir.CmpLe
	default:
		return nil, p.fmtError(ifTok, "if condition must be a comparison (= or <=)")
	}
	p.advance()

	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(THEN); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ELSE); err != nil {
		return nil, err
	}
	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ir.If{Cmp: cmp, Left: left, Right: right, Then: then, Else: els}, nil
}

// parseAdditive handles + and -.
func (p *Parser) parseAdditive() (ir.Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := ir.AddOp
		if p.advance().Type == MINUS {
			op = ir.SubOp
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &ir.Bin{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseMultiplicative handles *, / and %.
func (p *Parser) parseMultiplicative() (ir.Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ir.BinOp
		switch p.peek().Type {
		case STAR:
			op = ir.MulOp
		case SLASH:
			op = ir.DivOp
		case PERCENT:
			op = ir.ModOp
		default:
			return expr, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &ir.Bin{Op: op, Left: expr, Right: right}
	}
}

// parseUnary handles unary minus. A negated literal folds to a constant;
// anything else becomes a subtraction from zero.
func (p *Parser) parseUnary() (ir.Expr, error) {
	if p.peek().Type != MINUS {
		return p.parsePrimary()
	}
	p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if lit, ok := operand.(*ir.Int); ok {
		return &ir.Int{Value: -lit.Value}, nil
	}
	return &ir.Bin{Op: ir.SubOp, Left: &ir.Int{Value: 0}, Right: operand}, nil
}

// parsePrimary handles literals, variable references, calls and
// parenthesised expressions.
func (p *Parser) parsePrimary() (ir.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 0, 64)
		if err != nil {
			return nil, p.fmtError(tok, "invalid integer literal %q", tok.Lexeme)
		}
		return &ir.Int{Value: int(v)}, nil

	case FLOATLIT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.fmtError(tok, "invalid float literal %q", tok.Lexeme)
		}
		// The backend rejects this node; the parser passes it through so
		// the failure carries the code generator's diagnostic.
		return &ir.Float{Value: v}, nil

	case IDENTIFIER:
		p.advance()
		if p.peek().Type != LPAREN {
			return &ir.Var{Name: tok.Lexeme}, nil
		}
		p.advance() // (
		args, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &ir.Call{Name: tok.Lexeme, Args: args}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.fmtError(tok, "expected expression, got %s (%q)", tok.Type, tok.Lexeme)
	}
}

// parseCallArgs parses a comma-separated argument list. The opening paren
// must already have been consumed; the closing one is consumed here.
func (p *Parser) parseCallArgs() ([]ir.Expr, error) {
	var args []ir.Expr
	if p.peek().Type == RPAREN {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Type == COMMA {
			p.advance()
			continue
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return args, nil
	}
}

// parseFunDecl parses fun NAME(params) = expression.
func (p *Parser) parseFunDecl() (ir.FuncDef, error) {
	p.advance() // fun
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return ir.FuncDef{}, err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return ir.FuncDef{}, err
	}

	var params []string
	if p.peek().Type != RPAREN {
		for {
			param, err := p.expect(IDENTIFIER)
			if err != nil {
				return ir.FuncDef{}, err
			}
			for _, seen := range params {
				if seen == param.Lexeme {
					return ir.FuncDef{}, p.fmtError(param, "duplicate parameter %q in function %s", param.Lexeme, name.Lexeme)
				}
			}
			params = append(params, param.Lexeme)
			if p.peek().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return ir.FuncDef{}, err
	}
	if _, err := p.expect(EQUALS); err != nil {
		return ir.FuncDef{}, err
	}

	body, err := p.parseExpression()
	if err != nil {
		return ir.FuncDef{}, err
	}
	return ir.FuncDef{Name: name.Lexeme, Params: params, Body: body}, nil
}

// parseProgram parses the whole token stream: function declarations
// followed by an optional top-level body expression.
func (p *Parser) parseProgram() (*ir.Program, error) {
	prog := &ir.Program{Body: &ir.Unit{}}
	seen := map[string]int{}

	for p.peek().Type == FUN {
		funTok := p.peek()
		fn, err := p.parseFunDecl()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[fn.Name]; dup {
			return nil, p.fmtError(funTok, "function %q defined twice", fn.Name)
		}
		seen[fn.Name] = len(fn.Params)
		prog.Funcs = append(prog.Funcs, fn)
	}

	if p.peek().Type != EOF {
		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		prog.Body = body
	}
	if _, err := p.expect(EOF); err != nil {
		return nil, err
	}

	if err := p.checkCalls(prog, seen); err != nil {
		return nil, err
	}
	return prog, nil
}

// checkCalls verifies the arity of every call to a function defined in
// this program. Calls to undefined names pass through untouched: they are
// not an error at this stage and surface during label resolution instead.
func (p *Parser) checkCalls(prog *ir.Program, arities map[string]int) error {
	var walk func(e ir.Expr) error
	walk = func(e ir.Expr) error {
		switch n := e.(type) {
		case *ir.Bin:
			if err := walk(n.Left); err != nil {
				return err
			}
			return walk(n.Right)
		case *ir.If:
			for _, sub := range []ir.Expr{n.Left, n.Right, n.Then, n.Else} {
				if err := walk(sub); err != nil {
					return err
				}
			}
			return nil
		case *ir.Let:
			if err := walk(n.Bound); err != nil {
				return err
			}
			return walk(n.Body)
		case *ir.Call:
			if want, ok := arities[n.Name]; ok && want != len(n.Args) {
				return &ParseError{Line: 0, Msg: fmt.Sprintf("%s takes %d argument(s), called with %d", n.Name, want, len(n.Args))}
			}
			for _, a := range n.Args {
				if err := walk(a); err != nil {
					return err
				}
			}
			return nil
		case *ir.Tuple:
			for _, el := range n.Elems {
				if err := walk(el); err != nil {
					return err
				}
			}
			return nil
		default:
			return nil
		}
	}

	for _, fn := range prog.Funcs {
		if err := walk(fn.Body); err != nil {
			return err
		}
	}
	return walk(prog.Body)
}

// Parse builds an IR program from the token stream. rawSource is used for
// error snippets only.
func Parse(tokens []Token, rawSource string) (*ir.Program, error) {
	return NewParser(tokens, rawSource).parseProgram()
}
