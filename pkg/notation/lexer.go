// Package notation is a small builder syntax for SK terms.
//
// A term is a sequence of items applied left to right. An item is
//
//	S or K          a primitive combinator
//	'name'          a free variable called name
//	identifier      a name bound in an Env, built as a ski.Named alias
//	( term )        a parenthesized application
//
// Identifiers match [A-Za-z_][A-Za-z0-9_]*. A '#' starts a comment that runs
// to the end of the line. There is no abstraction, no numerals and no
// definitions inside a term; definitions live in an Env.
package notation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokS
	tokK
	tokIdent
	tokVar
	tokLParen
	tokRParen
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokS:
		return "S"
	case tokK:
		return "K"
	case tokIdent:
		return "identifier"
	case tokVar:
		return "variable"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

type token struct {
	Type   tokenType
	Lexeme string // identifier text or variable name
	Offset int    // byte offset of the first character
}

// SyntaxError reports malformed notation at a byte offset of the source.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

type lexer struct {
	src    string
	start  int
	cur    int
	tokens []token
}

func (l *lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *lexer) addToken(tt tokenType, lexeme string) {
	l.tokens = append(l.tokens, token{Type: tt, Lexeme: lexeme, Offset: l.start})
}

func (l *lexer) err(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.src[l.cur] {
		case ' ', '\r', '\n', '\t':
			l.cur++
		case '#':
			for !l.isAtEnd() && l.src[l.cur] != '\n' {
				l.cur++
			}
		default:
			return
		}
	}
}

// scanVar reads a quoted variable name. The opening quote is at l.start.
func (l *lexer) scanVar() error {
	l.cur++
	end := strings.IndexAny(l.src[l.cur:], "'\n")
	if end < 0 || l.src[l.cur+end] == '\n' {
		return l.err(l.start, "variable name was not terminated")
	}
	name := l.src[l.cur : l.cur+end]
	if name == "" {
		return l.err(l.start, "empty variable name")
	}
	if !utf8.ValidString(name) {
		return l.err(l.start, "variable name is not UTF-8")
	}
	l.cur += end + 1
	l.addToken(tokVar, name)
	return nil
}

// scanIdentifier parses [A-Za-z_][A-Za-z0-9_]*
func (l *lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.cur++
	}
	return l.src[l.start:l.cur]
}

func (l *lexer) scan() ([]token, error) {
	for {
		l.skipWhitespace()
		l.start = l.cur
		if l.isAtEnd() {
			l.addToken(tokEOF, "")
			return l.tokens, nil
		}
		ch := l.src[l.cur]
		switch {
		case ch == '(':
			l.cur++
			l.addToken(tokLParen, "")
		case ch == ')':
			l.cur++
			l.addToken(tokRParen, "")
		case ch == '\'':
			if err := l.scanVar(); err != nil {
				return nil, err
			}
		case isAlpha(ch):
			switch id := l.scanIdentifier(); id {
			case "S":
				l.addToken(tokS, id)
			case "K":
				l.addToken(tokK, id)
			default:
				l.addToken(tokIdent, id)
			}
		default:
			r, _ := utf8.DecodeRuneInString(l.src[l.cur:])
			return nil, l.err(l.cur, "unexpected character %q", r)
		}
	}
}

func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAlphaNum(b byte) bool { return isAlpha(b) || (b >= '0' && b <= '9') }

// IsIdentifier reports whether name can be bound in an Env: it must be a
// well-formed identifier other than S and K.
func IsIdentifier(name string) bool {
	if name == "" || name == "S" || name == "K" || !isAlpha(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isAlphaNum(name[i]) {
			return false
		}
	}
	return true
}
