package notation

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gitrdm/goski/pkg/ski"
)

// TestEnv tests definitions and lookups.
func TestEnv(t *testing.T) {
	t.Run("define and look up", func(t *testing.T) {
		env := NewEnv()
		n, err := env.Define("I", ski.Apply(ski.S, ski.K, ski.K))
		if err != nil {
			t.Fatalf("Define failed: %v", err)
		}
		got, ok := env.Lookup("I")
		if !ok || got != n {
			t.Errorf("Expected lookup to return the defined alias")
		}
		if n.Name() != "I" || n.String() != "I" {
			t.Errorf("Expected alias named I, got %v", n)
		}
	})

	t.Run("names keep definition order", func(t *testing.T) {
		env := NewEnv()
		for _, name := range []string{"zeta", "alpha", "mid", "alpha"} {
			if _, err := env.Define(name, ski.K); err != nil {
				t.Fatalf("Define(%s): %v", name, err)
			}
		}
		want := []string{"zeta", "alpha", "mid"}
		if diff := cmp.Diff(want, env.Names()); diff != "" {
			t.Errorf("Names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		env := NewEnv()
		for _, name := range []string{"", "S", "K", "1x", "a-b", "x y"} {
			if _, err := env.Define(name, ski.K); err == nil {
				t.Errorf("Expected Define(%q) to fail", name)
			}
		}
		if _, err := env.Define("ok", nil); err == nil {
			t.Error("Expected Define with nil definition to fail")
		}
	})

	t.Run("DefineSource wraps syntax errors", func(t *testing.T) {
		env := NewEnv()
		_, err := env.DefineSource("bad", "S (")
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("Expected a wrapped *SyntaxError, got %v", err)
		}
		if _, ok := env.Lookup("bad"); ok {
			t.Error("A failed definition must not be bound")
		}
	})

	t.Run("clone is independent", func(t *testing.T) {
		env := NewEnv()
		env.Define("a", ski.K)
		c := env.Clone()
		c.Define("b", ski.S)
		if _, ok := env.Lookup("b"); ok {
			t.Error("Clone must not write through to the original")
		}
		if _, ok := c.Lookup("a"); !ok {
			t.Error("Clone must keep existing bindings")
		}
	})

	t.Run("nil env", func(t *testing.T) {
		var env *Env
		if _, ok := env.Lookup("x"); ok {
			t.Error("A nil env has no bindings")
		}
		if env.Names() != nil {
			t.Error("A nil env has no names")
		}
		if env.Clone() == nil {
			t.Error("Clone of a nil env should be empty, not nil")
		}
	})
}

// TestIsIdentifier tests the identifier rule.
func TestIsIdentifier(t *testing.T) {
	for name, want := range map[string]bool{
		"I": true, "pair": true, "_x1": true, "Omega": true,
		"S": false, "K": false, "": false, "9": false, "a.b": false,
	} {
		if got := IsIdentifier(name); got != want {
			t.Errorf("IsIdentifier(%q) = %v, expected %v", name, got, want)
		}
	}
}
