package ski

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// enumerate returns every closed term with exactly n leaves drawn from S and
// K, as distinct binary application trees.
func enumerate(n int) []Term {
	if n == 1 {
		return []Term{S, K}
	}
	var out []Term
	for left := 1; left < n; left++ {
		for _, f := range enumerate(left) {
			for _, x := range enumerate(n - left) {
				out = append(out, Apply(f, x))
			}
		}
	}
	return out
}

// TestEncodeKnown tests encodings against hand-computed bit strings.
func TestEncodeKnown(t *testing.T) {
	tests := []struct {
		name string
		term Term
		bits string
	}{
		{"K", K, "00000000"},
		{"S", S, "01000000"},
		{"S K", Apply(S, K), "10100000"},
		{"K K K", Apply(K, K, K), "11000000"},
		{"S (K K)", Apply(S, Apply(K, K)), "10110000"},
		{"M", cM, "110111010000110100000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBits(Encode(tt.term)); got != tt.bits {
				t.Errorf("Expected %s, got %s", tt.bits, got)
			}
		})
	}

	t.Run("M packs to dd0d00", func(t *testing.T) {
		want := []byte{0xdd, 0x0d, 0x00}
		if got := Encode(cM); !bytes.Equal(got, want) {
			t.Errorf("Expected %x, got %x", want, got)
		}
	})
}

// TestEncodeCanonical tests that spelling differences do not leak into keys.
func TestEncodeCanonical(t *testing.T) {
	t.Run("nested head equals flattened form", func(t *testing.T) {
		x := v("x")
		nested := newApp([]Term{x, Apply(S, K)})
		flat := Apply(S, K, x)
		if !bytes.Equal(Encode(nested), Encode(flat)) {
			t.Errorf("Expected equal encodings for %v and %v", nested, flat)
		}
	})

	t.Run("aliases encode as their definition", func(t *testing.T) {
		if !Equivalent(cI, Apply(S, K, K)) {
			t.Error("Expected I to be equivalent to S K K")
		}
		if !Equivalent(Apply(cI, cI), Apply(S, K, K, Apply(S, K, K))) {
			t.Error("Expected I I to be equivalent to S K K (S K K)")
		}
	})

	t.Run("variable differs from K", func(t *testing.T) {
		if Equivalent(v("x"), K) {
			t.Error("A variable must not encode like K")
		}
		if Equivalent(Apply(K, v("x")), Apply(K, K)) {
			t.Error("K x must not encode like K K")
		}
		if Equivalent(v("x"), v("y")) {
			t.Error("Different variables must encode differently")
		}
	})

	t.Run("grouping matters", func(t *testing.T) {
		if Equivalent(Apply(S, Apply(K, K)), Apply(S, K, K)) {
			t.Error("S (K K) must not encode like S K K")
		}
	})
}

// TestEncodeDistinct tests injectivity and determinism over all small terms.
func TestEncodeDistinct(t *testing.T) {
	var terms []Term
	for n := 1; n <= 4; n++ {
		terms = append(terms, enumerate(n)...)
	}
	terms = append(terms, v("x"), v("y"), Apply(v("x"), v("y")), Apply(S, v("x")), Apply(K, v("xy")))
	if len(terms) < 100 {
		t.Fatalf("Expected at least 100 terms, got %d", len(terms))
	}

	seen := make(map[string]Term, len(terms))
	for _, term := range terms {
		first := Encode(term)
		if again := Encode(term); !bytes.Equal(first, again) {
			t.Errorf("Encoding of %v is not repeatable", term)
		}
		key := string(first)
		if prev, ok := seen[key]; ok {
			t.Errorf("%v and %v share encoding %s", prev, term, FormatBits(first))
		}
		seen[key] = term
	}
}

// TestDecode tests that decoding inverts encoding.
func TestDecode(t *testing.T) {
	var terms []Term
	for n := 1; n <= 4; n++ {
		terms = append(terms, enumerate(n)...)
	}
	terms = append(terms,
		v("x"),
		Apply(S, v("x"), K, v("héllo")),
		Apply(v("f"), Apply(K, v("")), v("f")),
		Apply(K, v("a"), Apply(S, K, v("b"))),
	)

	for _, term := range terms {
		got, err := Decode(Encode(term))
		if err != nil {
			t.Errorf("Decode(Encode(%v)) failed: %v", term, err)
			continue
		}
		if !got.Equal(term) {
			t.Errorf("Expected %v, got %v", term, got)
		}
	}

	t.Run("aliases come back expanded", func(t *testing.T) {
		got, err := Decode(Encode(Apply(cM, v("x"))))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		want := Expand(Apply(cM, v("x")))
		if !got.Equal(want) {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})
}

// TestDecodeErrors tests malformed input.
func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		bit  int
	}{
		{"empty", nil, 0},
		{"truncated application", []byte{0xff}, 8},
		{"non-zero padding", []byte{0x01}, 7},
		{"marker without variables", []byte{0x20}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("Expected *DecodeError, got %v", err)
			}
			if de.Bit != tt.bit {
				t.Errorf("Expected error at bit %d, got %d (%v)", tt.bit, de.Bit, de)
			}
		})
	}
}

// TestFormatBits tests bit rendering.
func TestFormatBits(t *testing.T) {
	got := []string{FormatBits(nil), FormatBits([]byte{0x80, 0x01})}
	want := []string{"", "1000000000000001"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FormatBits mismatch (-want +got):\n%s", diff)
	}
}
