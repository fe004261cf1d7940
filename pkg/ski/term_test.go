package ski

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Standard combinators used across the package tests.
var (
	cI = NewNamed("I", Apply(S, K, K))
	cT = NewNamed("T", K)
	cF = NewNamed("F", Apply(K, cI))
	cM = NewNamed("M", Apply(S, cI, cI))
	cB = NewNamed("B", Apply(S, Apply(K, S), K))
	cC = NewNamed("C", Apply(S, Apply(cB, cB, S), Apply(K, K)))
	cY = NewNamed("Y", Apply(cB, cM, Apply(cC, cB, cM)))

	omega = Apply(cM, cM)
)

func v(name string) *Var { return NewVar(name) }

// TestApply tests application construction and flattening.
func TestApply(t *testing.T) {
	t.Run("no arguments returns the function", func(t *testing.T) {
		if got := Apply(S); got != Term(S) {
			t.Errorf("Expected S, got %v", got)
		}
	})

	t.Run("nested application is flattened", func(t *testing.T) {
		nested := Apply(Apply(Apply(S, K), K), v("x"))
		flat := Apply(S, K, K, v("x"))
		if !nested.Equal(flat) {
			t.Errorf("Expected %v to equal %v", nested, flat)
		}
		app := nested.(*App)
		if app.Len() != 4 {
			t.Errorf("Expected 4 children, got %d", app.Len())
		}
		if app.Head() != Term(S) {
			t.Errorf("Expected head S, got %v", app.Head())
		}
	})

	t.Run("argument application is not flattened", func(t *testing.T) {
		term := Apply(S, Apply(K, S))
		app := term.(*App)
		if app.Len() != 2 {
			t.Errorf("Expected 2 children, got %d", app.Len())
		}
	})

	t.Run("Args returns application order", func(t *testing.T) {
		x, y := v("x"), v("y")
		app := Apply(K, x, y).(*App)
		got := app.Args()
		if len(got) != 2 || got[0] != Term(x) || got[1] != Term(y) {
			t.Errorf("Expected [x y], got %v", got)
		}
		got[0] = S
		if app.Args()[0] != Term(x) {
			t.Error("Args should return a copy")
		}
	})

	t.Run("size is additive", func(t *testing.T) {
		terms := []Term{S, K, v("x"), cI, Apply(S, K), Apply(cB, cM, Apply(cC, cB, cM)), omega}
		for _, f := range terms {
			for _, x := range terms {
				if got, want := Apply(f, x).Size(), f.Size()+x.Size(); got != want {
					t.Errorf("Size(%v %v) = %d, expected %d", f, x, got, want)
				}
			}
		}
	})
}

// TestTermString tests the juxtaposition rendering.
func TestTermString(t *testing.T) {
	tests := []struct {
		term Term
		want string
	}{
		{S, "S"},
		{K, "K"},
		{v("x"), "x"},
		{cI, "I"},
		{Apply(S, K), "S K"},
		{Apply(S, Apply(K, S), K), "S (K S) K"},
		{Apply(S, Apply(K, K), Apply(S, Apply(K, S))), "S (K K) (S (K S))"},
		{Apply(cM, cM), "M M"},
		{Apply(v("f"), Apply(v("g"), v("x")), v("x")), "f (g x) x"},
		{Apply(Apply(S, K), Apply(cI, v("a"))), "S K (I a)"},
		{v("S"), "'S'"},
		{Apply(K, v("a b")), "K 'a b'"},
		{Apply(v("9lives"), v("héllo"), v("_x1")), "'9lives' 'héllo' _x1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.term.String(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestTermEqual tests syntactic equality.
func TestTermEqual(t *testing.T) {
	t.Run("primitives", func(t *testing.T) {
		if !S.Equal(S) || S.Equal(K) {
			t.Error("Primitive equality is wrong")
		}
	})

	t.Run("variables compare by name", func(t *testing.T) {
		if !v("x").Equal(v("x")) {
			t.Error("Variables with the same name should be equal")
		}
		if v("x").Equal(v("y")) {
			t.Error("Variables with different names should not be equal")
		}
		if v("x").Equal(K) {
			t.Error("A variable should not equal K")
		}
	})

	t.Run("aliases are not transparent", func(t *testing.T) {
		if cI.Equal(Apply(S, K, K)) {
			t.Error("An alias should not equal its definition syntactically")
		}
		if !cI.Equal(NewNamed("I", Apply(S, K, K))) {
			t.Error("Aliases with the same name and definition should be equal")
		}
		if cI.Equal(NewNamed("J", Apply(S, K, K))) {
			t.Error("Aliases with different names should not be equal")
		}
	})

	t.Run("applications compare children", func(t *testing.T) {
		if !Apply(S, K, v("x")).Equal(Apply(S, K, v("x"))) {
			t.Error("Equal applications should be equal")
		}
		if Apply(S, K, v("x")).Equal(Apply(S, K, v("y"))) {
			t.Error("Different applications should not be equal")
		}
		if Apply(S, Apply(K, K)).Equal(Apply(S, K, K)) {
			t.Error("Grouping of arguments should matter")
		}
	})
}

// TestNewNamedPanicsOnNil tests the constructor guard.
func TestNewNamedPanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected NewNamed(nil) to panic")
		}
	}()
	NewNamed("bad", nil)
}

// TestKind tests kind reporting.
func TestKind(t *testing.T) {
	got := []string{
		S.Kind().String(),
		K.Kind().String(),
		v("x").Kind().String(),
		Apply(S, K).Kind().String(),
		cI.Kind().String(),
		Kind(0).String(),
	}
	want := []string{"S", "K", "Var", "App", "Named", "Kind(0)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Kind strings mismatch (-want +got):\n%s", diff)
	}
}

// TestExpand tests alias removal.
func TestExpand(t *testing.T) {
	t.Run("alias opens to its definition", func(t *testing.T) {
		if got := Expand(cI); !got.Equal(Apply(S, K, K)) {
			t.Errorf("Expected S K K, got %v", got)
		}
	})

	t.Run("alias in head position is spliced", func(t *testing.T) {
		got := Expand(Apply(cI, v("x")))
		want := Apply(S, K, K, v("x"))
		if !got.Equal(want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("nested aliases", func(t *testing.T) {
		got := Expand(cM)
		want := Apply(S, Apply(S, K, K), Apply(S, K, K))
		if !got.Equal(want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("alias free term is returned as is", func(t *testing.T) {
		term := Apply(S, Apply(K, v("x")), K)
		if got := Expand(term); got != term {
			t.Error("Expand should return the same term when there is nothing to open")
		}
	})
}
