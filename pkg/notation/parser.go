package notation

import (
	"github.com/gitrdm/goski/pkg/ski"
)

type parser struct {
	toks []token
	i    int
	env  *Env

	// openNames reads unbound identifiers as variables.
	openNames bool
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) advance() token {
	t := p.toks[p.i]
	if t.Type != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) startsItem() bool {
	switch p.peek().Type {
	case tokS, tokK, tokIdent, tokVar, tokLParen:
		return true
	}
	return false
}

// term := item+
func (p *parser) term() (ski.Term, error) {
	if !p.startsItem() {
		g := p.peek()
		return nil, &SyntaxError{Offset: g.Offset, Msg: "expected a term, found " + g.Type.String()}
	}
	head, err := p.item()
	if err != nil {
		return nil, err
	}
	var args []ski.Term
	for p.startsItem() {
		a, err := p.item()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return ski.Apply(head, args...), nil
}

func (p *parser) item() (ski.Term, error) {
	tok := p.advance()
	switch tok.Type {
	case tokS:
		return ski.S, nil
	case tokK:
		return ski.K, nil
	case tokVar:
		return ski.NewVar(tok.Lexeme), nil
	case tokIdent:
		if n, ok := p.env.Lookup(tok.Lexeme); ok {
			return n, nil
		}
		if p.openNames {
			return ski.NewVar(tok.Lexeme), nil
		}
		return nil, &SyntaxError{Offset: tok.Offset, Msg: "undefined name " + tok.Lexeme}
	case tokLParen:
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.Type != tokRParen {
			return nil, &SyntaxError{Offset: closing.Offset, Msg: "expected ')', found " + closing.Type.String()}
		}
		p.advance()
		return t, nil
	}
	return nil, &SyntaxError{Offset: tok.Offset, Msg: "unexpected " + tok.Type.String()}
}

// Parse builds the term written in src. Identifiers are resolved in env and
// come back as the env's aliases; env may be nil when src uses only S, K
// and variables. Errors are *SyntaxError.
func Parse(src string, env *Env) (ski.Term, error) {
	return parse(src, env, false)
}

// ParseOpen is like Parse but reads identifiers that env does not bind as
// variables, so "f (g x)" is the same as "'f' ('g' 'x')". It suits written
// expectations, where results mention variables far more often than names.
func ParseOpen(src string, env *Env) (ski.Term, error) {
	return parse(src, env, true)
}

func parse(src string, env *Env, openNames bool) (ski.Term, error) {
	toks, err := (&lexer{src: src}).scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, env: env, openNames: openNames}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	if rest := p.peek(); rest.Type != tokEOF {
		return nil, &SyntaxError{Offset: rest.Offset, Msg: "unexpected " + rest.Type.String()}
	}
	return t, nil
}

// MustParse is like Parse but panics on error. It is meant for fixed
// definitions in program text.
func MustParse(src string, env *Env) ski.Term {
	t, err := Parse(src, env)
	if err != nil {
		panic(err)
	}
	return t
}
