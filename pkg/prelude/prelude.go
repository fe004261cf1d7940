// Package prelude defines the standard combinators in terms of S and K.
//
//	I = S K K                 identity
//	T = K                     true, selects the first of two
//	F = K I                   false, selects the second of two
//	B = S (K S) K             composition
//	C = S (B B S) (K K)       argument swap
//	M = S I I                 self application
//	Y = B M (C B M)           fixed point
//
// Pairs and lists use the Church encoding: pair a b f = f a b, so fst and
// snd are T and F. A list is nil or cons x rest, and isnil answers T or F.
package prelude

import (
	"github.com/gitrdm/goski/pkg/notation"
	"github.com/gitrdm/goski/pkg/ski"
)

// Definitions lists the standard combinators in dependency order.
var Definitions = []struct {
	Name   string
	Source string
}{
	{"I", "S K K"},
	{"T", "K"},
	{"F", "K I"},
	{"B", "S (K S) K"},
	{"C", "S (B B S) (K K)"},
	{"M", "S I I"},
	{"Y", "B M (C B M)"},
	{"pair", "S (B (B B S) (B B S I K)) (K K)"},
	{"fst", "T"},
	{"snd", "F"},
	{"nil", "F"},
	{"cons", "pair"},
	{"head", "fst"},
	{"tail", "snd"},
	{"isnil", "pair (K (K (K F))) T"},
}

var std = load()

func load() *notation.Env {
	env := notation.NewEnv()
	for _, d := range Definitions {
		if _, err := env.DefineSource(d.Name, d.Source); err != nil {
			panic(err)
		}
	}
	return env
}

// Env returns a fresh environment holding the standard combinators. The
// caller may add to it freely.
func Env() *notation.Env {
	return std.Clone()
}

// Lookup returns the standard combinator called name.
func Lookup(name string) (*ski.Named, bool) {
	return std.Lookup(name)
}

func mustLookup(name string) *ski.Named {
	n, ok := std.Lookup(name)
	if !ok {
		panic("prelude: missing " + name)
	}
	return n
}

// List builds the list of elems with cons and nil.
func List(elems ...ski.Term) ski.Term {
	cons := mustLookup("cons")
	out := ski.Term(mustLookup("nil"))
	for i := len(elems) - 1; i >= 0; i-- {
		out = ski.Apply(cons, elems[i], out)
	}
	return out
}

// Pair builds pair a b.
func Pair(a, b ski.Term) ski.Term {
	return ski.Apply(mustLookup("pair"), a, b)
}
