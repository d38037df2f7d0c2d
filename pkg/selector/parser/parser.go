// Package parser turns a single tokenised selector expression into an
// Atom carrying one of six operators, from these grammar productions for
// label selectors:
//
//	equality := key ( '=' | '==' | '!=' ) value
//	set      := key ( 'in' | 'notin' ) '(' csv ')'
//	presence := '!' key | key
package parser

import (
	"fmt"

	"github.com/crust-gather/kubesnap/pkg/selector/token"
)

// Op identifies which of the six Atom operators this is.
type Op int

const (
	Equal Op = iota
	NotEqual
	In
	NotIn
	Exists
	DoesNotExist
)

// Atom is one parsed selector expression.
type Atom struct {
	Op     Op
	Key    string
	Value  string   // meaningful for Equal, NotEqual
	Values []string // meaningful for In, NotIn
}

// Matches reports whether labels satisfies this atom, per its operator's
// semantics.
func (a Atom) Matches(labels map[string]string) bool {
	v, ok := labels[a.Key]
	switch a.Op {
	case Equal:
		return ok && v == a.Value
	case NotEqual:
		return !ok || v != a.Value
	case In:
		return ok && contains(a.Values, v)
	case NotIn:
		return !ok || !contains(a.Values, v)
	case Exists:
		return ok
	case DoesNotExist:
		return !ok
	default:
		return false
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ParseError reports a parse failure at a byte offset within the
// expression substring being parsed.
type ParseError struct {
	Expr     string
	Position int
	Reason   string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error in %q at position %d: %s", e.Expr, e.Position, e.Reason)
}

// Parser consumes tokens from a token.Scanner over a single expression
// substring and produces its Atom.
type Parser struct {
	expr    string
	sc      *token.Scanner
	cur     token.Token
	peeked  *token.Token
}

// New builds a Parser over expr, the substring of one comma-separated
// selector expression.
func New(expr string) *Parser {
	p := &Parser{expr: expr, sc: token.NewScanner(expr)}
	p.cur = p.sc.Next()
	return p
}

func (p *Parser) advance() {
	if p.peeked != nil {
		p.cur = *p.peeked
		p.peeked = nil
		return
	}
	p.cur = p.sc.Next()
}

func (p *Parser) peek() token.Token {
	if p.peeked == nil {
		t := p.sc.Next()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *Parser) fail(reason string) error {
	return ParseError{Expr: p.expr, Position: p.cur.Pos, Reason: reason}
}

// Parse consumes the whole expression and returns its Atom.
func (p *Parser) Parse() (Atom, error) {
	if p.cur.Type == token.BANG {
		p.advance()
		if p.cur.Type != token.IDENT {
			return Atom{}, p.fail("expected key after '!'")
		}
		key := p.cur.Literal
		p.advance()
		if p.cur.Type != token.EOF {
			return Atom{}, p.fail("unexpected trailing input after presence key")
		}
		return Atom{Op: DoesNotExist, Key: key}, nil
	}

	if p.cur.Type != token.IDENT {
		return Atom{}, p.fail("expected key")
	}
	key := p.cur.Literal
	p.advance()

	switch p.cur.Type {
	case token.EOF:
		return Atom{Op: Exists, Key: key}, nil
	case token.EQ, token.DEQ:
		p.advance()
		if p.cur.Type != token.IDENT {
			return Atom{}, p.fail("expected value")
		}
		value := p.cur.Literal
		p.advance()
		if p.cur.Type != token.EOF {
			return Atom{}, p.fail("unexpected trailing input after equality value")
		}
		return Atom{Op: Equal, Key: key, Value: value}, nil
	case token.NEQ:
		p.advance()
		if p.cur.Type != token.IDENT {
			return Atom{}, p.fail("expected value")
		}
		value := p.cur.Literal
		p.advance()
		if p.cur.Type != token.EOF {
			return Atom{}, p.fail("unexpected trailing input after inequality value")
		}
		return Atom{Op: NotEqual, Key: key, Value: value}, nil
	case token.IDENT:
		switch p.cur.Literal {
		case "in":
			return p.parseSet(key, In)
		case "notin":
			return p.parseSet(key, NotIn)
		default:
			return Atom{}, p.fail("expected 'in', 'notin', or an operator")
		}
	default:
		return Atom{}, p.fail("expected 'in', 'notin', or an operator")
	}
}

func (p *Parser) parseSet(key string, op Op) (Atom, error) {
	p.advance() // consume "in"/"notin"
	if p.cur.Type != token.LPAREN {
		return Atom{}, p.fail("expected '(' after 'in'/'notin'")
	}
	p.advance()

	var values []string
	for {
		if p.cur.Type == token.RPAREN {
			break
		}
		if p.cur.Type != token.IDENT {
			return Atom{}, p.fail("expected set value")
		}
		values = append(values, p.cur.Literal)
		p.advance()
		switch p.cur.Type {
		case token.COMMA:
			p.advance()
		case token.RPAREN:
		default:
			return Atom{}, p.fail("expected ',' or ')'")
		}
	}
	p.advance() // consume ')'
	if p.cur.Type != token.EOF {
		return Atom{}, p.fail("unexpected trailing input after set")
	}
	return Atom{Op: op, Key: key, Values: values}, nil
}
