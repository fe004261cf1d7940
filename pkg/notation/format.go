package notation

import (
	"strings"

	"github.com/gitrdm/goski/pkg/ski"
)

// Format renders t the way Term.String does, except that a variable whose
// name env binds is quoted. Parse and ParseOpen with the same env read the
// result back as t. env may be nil.
func Format(t ski.Term, env *Env) string {
	var b strings.Builder
	format(&b, t, env)
	return b.String()
}

func format(b *strings.Builder, t ski.Term, env *Env) {
	switch t := t.(type) {
	case *ski.Var:
		if _, bound := env.Lookup(t.Name()); bound {
			b.WriteString("'" + t.Name() + "'")
			return
		}
		b.WriteString(t.String())
	case *ski.App:
		formatItem(b, t.Head(), env)
		for _, arg := range t.Args() {
			b.WriteByte(' ')
			formatItem(b, arg, env)
		}
	default:
		b.WriteString(t.String())
	}
}

func formatItem(b *strings.Builder, t ski.Term, env *Env) {
	if t.Size() == 1 {
		format(b, t, env)
		return
	}
	b.WriteByte('(')
	format(b, t, env)
	b.WriteByte(')')
}
