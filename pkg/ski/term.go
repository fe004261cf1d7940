// Package ski implements an evaluator for combinatory logic in the SK basis.
//
// Terms are built from the two primitive combinators S and K, opaque free
// variables, named aliases for user-defined combinators, and n-ary
// applications. The package provides:
//   - Term construction: S, K, NewVar, NewNamed and Apply
//   - Single-step head reduction with Step
//   - Normalization under a step budget with memoized cycle detection
//   - A canonical bit-level encoding used as the memo key
//
// The rewrite rules are the usual ones:
//
//	K x y   → x
//	S f g x → f x (g x)
//
// Terms are immutable once built. Rewriting never mutates a term that is
// reachable from elsewhere; it builds a new spine and rebinds the caller's
// handle. Subterms duplicated by the S rule are shared, not copied.
package ski

import (
	"fmt"
	"strings"
)

// Kind identifies the concrete shape of a Term.
type Kind uint8

const (
	// KindS is the S combinator.
	KindS Kind = iota + 1

	// KindK is the K combinator.
	KindK

	// KindVar is a free variable. Variables are never rewritten.
	KindVar

	// KindApp is an application of two or more terms.
	KindApp

	// KindNamed is an alias wrapping a definition.
	KindNamed
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindS:
		return "S"
	case KindK:
		return "K"
	case KindVar:
		return "Var"
	case KindApp:
		return "App"
	case KindNamed:
		return "Named"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Term represents any expression of combinatory logic.
// All Term implementations are immutable and safe for concurrent reads.
type Term interface {
	// Kind reports the concrete shape of the term.
	Kind() Kind

	// String renders the term in minimal-parenthesis juxtaposition notation.
	String() string

	// Equal checks syntactic equality. Aliases are compared by name and
	// definition; use Equivalent for alias-transparent comparison.
	Equal(other Term) bool

	// Size returns the number of leaves. A named alias counts as one leaf.
	Size() int
}

// Primitive is one of the two primitive combinators.
type Primitive uint8

const (
	// S is the substitution combinator: S f g x → f x (g x).
	S Primitive = iota + 1

	// K is the constant combinator: K x y → x.
	K
)

// Kind returns KindS or KindK.
func (p Primitive) Kind() Kind {
	if p == S {
		return KindS
	}
	return KindK
}

// String returns "S" or "K".
func (p Primitive) String() string {
	if p == S {
		return "S"
	}
	return "K"
}

// Equal reports whether other is the same primitive.
func (p Primitive) Equal(other Term) bool {
	o, ok := other.(Primitive)
	return ok && o == p
}

// Size is always 1 for a primitive.
func (p Primitive) Size() int { return 1 }

// Var is an opaque free variable. It carries a symbol and is never rewritten.
type Var struct {
	name string
}

// NewVar creates a variable with the given symbol.
func NewVar(name string) *Var {
	return &Var{name: name}
}

// Name returns the variable's symbol.
func (v *Var) Name() string { return v.name }

// Kind returns KindVar.
func (v *Var) Kind() Kind { return KindVar }

// String returns the variable's symbol. A symbol that would read back as S,
// K or as anything but one identifier is wrapped in single quotes.
func (v *Var) String() string {
	if plainSymbol(v.name) {
		return v.name
	}
	return "'" + v.name + "'"
}

// plainSymbol reports whether name is an identifier other than S and K.
func plainSymbol(name string) bool {
	if name == "" || name == "S" || name == "K" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Equal reports whether other is a variable with the same symbol.
func (v *Var) Equal(other Term) bool {
	o, ok := other.(*Var)
	return ok && o.name == v.name
}

// Size is always 1 for a variable.
func (v *Var) Size() int { return 1 }

// Named is an alias: a label plus the term it stands for. It displays under
// its name until reduction forces it open.
type Named struct {
	name string
	def  Term
}

// NewNamed creates an alias for def. It panics if def is nil.
func NewNamed(name string, def Term) *Named {
	if def == nil {
		panic("ski: NewNamed with nil definition")
	}
	return &Named{name: name, def: def}
}

// Name returns the alias label.
func (n *Named) Name() string { return n.name }

// Def returns the aliased definition.
func (n *Named) Def() Term { return n.def }

// Kind returns KindNamed.
func (n *Named) Kind() Kind { return KindNamed }

// String returns the alias label.
func (n *Named) String() string { return n.name }

// Equal reports whether other is an alias with the same name and an equal
// definition.
func (n *Named) Equal(other Term) bool {
	o, ok := other.(*Named)
	if !ok {
		return false
	}
	if o == n {
		return true
	}
	return o.name == n.name && n.def.Equal(o.def)
}

// Size is 1: an alias prints as a single token.
func (n *Named) Size() int { return 1 }

// App is an application of a head term to one or more arguments.
//
// The children are stored in reverse application order: args[len-1] is the
// head and args[0] is the outermost (last applied) argument. The slice is
// never written after construction.
type App struct {
	args []Term
	size int
}

// newApp wraps an already reversed spine. Callers must hand over a slice
// they no longer write to. A spine of one term collapses to that term.
func newApp(args []Term) Term {
	if len(args) == 1 {
		return args[0]
	}
	size := 0
	for _, a := range args {
		size += a.Size()
	}
	return &App{args: args, size: size}
}

// Apply applies f to args, left to right. If f is itself an application the
// result extends its argument list instead of nesting, so Apply(Apply(f, x), y)
// and Apply(f, x, y) build the same term. Apply with no arguments returns f.
func Apply(f Term, args ...Term) Term {
	if len(args) == 0 {
		return f
	}
	var head []Term
	if app, ok := f.(*App); ok {
		head = app.args
	} else {
		head = []Term{f}
	}
	spine := make([]Term, 0, len(head)+len(args))
	for i := len(args) - 1; i >= 0; i-- {
		spine = append(spine, args[i])
	}
	spine = append(spine, head...)
	return newApp(spine)
}

// Head returns the term in function position.
func (a *App) Head() Term { return a.args[len(a.args)-1] }

// Len returns the number of children, head included.
func (a *App) Len() int { return len(a.args) }

// Args returns the arguments in application order. The returned slice is a
// copy and may be modified by the caller.
func (a *App) Args() []Term {
	n := len(a.args) - 1
	out := make([]Term, n)
	for i := 0; i < n; i++ {
		out[i] = a.args[n-1-i]
	}
	return out
}

// Kind returns KindApp.
func (a *App) Kind() Kind { return KindApp }

// Size returns the number of leaves below the application.
func (a *App) Size() int { return a.size }

// Equal reports whether other is an application with pairwise equal
// children.
func (a *App) Equal(other Term) bool {
	o, ok := other.(*App)
	if !ok {
		return false
	}
	if o == a {
		return true
	}
	if len(o.args) != len(a.args) || o.size != a.size {
		return false
	}
	for i := range a.args {
		if !a.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// String renders the application head first. Arguments wider than one leaf
// are parenthesized.
func (a *App) String() string {
	var b strings.Builder
	a.writeTo(&b)
	return b.String()
}

func (a *App) writeTo(b *strings.Builder) {
	for i := len(a.args) - 1; i >= 0; i-- {
		if i != len(a.args)-1 {
			b.WriteByte(' ')
		}
		child := a.args[i]
		if child.Size() == 1 {
			b.WriteString(child.String())
			continue
		}
		b.WriteByte('(')
		if app, ok := child.(*App); ok {
			app.writeTo(b)
		} else {
			b.WriteString(child.String())
		}
		b.WriteByte(')')
	}
}

// spine returns the reversed children of t as they would appear when t is
// spliced into a head position: an application contributes its whole spine,
// anything else contributes itself.
func spine(t Term) []Term {
	if app, ok := t.(*App); ok {
		return app.args
	}
	return []Term{t}
}

// Expand replaces every alias in t by its definition, recursively, leaving a
// term built only from S, K, variables and applications. Unchanged subterms
// are shared with t.
func Expand(t Term) Term {
	switch v := t.(type) {
	case *Named:
		return Expand(v.def)
	case *App:
		var out []Term
		for i, child := range v.args {
			e := Expand(child)
			if out == nil && e == child {
				continue
			}
			if out == nil {
				out = make([]Term, 0, len(v.args))
				out = append(out, v.args[:i]...)
			}
			if i == len(v.args)-1 {
				out = append(out, spine(e)...)
			} else {
				out = append(out, e)
			}
		}
		if out == nil {
			return t
		}
		return newApp(out)
	default:
		return t
	}
}
