package ski

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Canonical encoding
//
// A closed term is written in binary combinatory logic:
//
//	K      → 00
//	S      → 01
//	f a…z  → 1^(n-1) <f> <a> … <z>   (n children, head first)
//
// Aliases encode as their definition, and a nested application in head
// position encodes exactly like its flattened form, so the encoding identifies
// rewriting states rather than spellings.
//
// Variables are written as 00 in the structure. When a term has at least one
// variable the structure is followed by a 1 marker bit, one flag bit per 00
// leaf (1 for a variable, 0 for K), and then every variable name as an
// Elias-gamma coded byte length plus one, followed by the UTF-8 bytes. A closed
// term is never followed by a marker, so the plain scheme is unchanged.
//
// Bits are packed most significant first and the last byte is zero padded.

// bitWriter accumulates bits MSB first into byte-aligned storage.
type bitWriter struct {
	bits []byte
	len  int
}

func (w *bitWriter) emitBit(bit bool) {
	pow := w.len % 8
	if pow == 0 {
		w.bits = append(w.bits, 0)
	}
	w.len++
	if bit {
		w.bits[len(w.bits)-1] |= 1 << (7 - pow)
	}
}

// emitGamma writes n ≥ 1 in Elias-gamma code.
func (w *bitWriter) emitGamma(n int) {
	width := 0
	for v := n; v > 0; v >>= 1 {
		width++
	}
	for i := 1; i < width; i++ {
		w.emitBit(false)
	}
	for i := width - 1; i >= 0; i-- {
		w.emitBit(n>>i&1 == 1)
	}
}

func (w *bitWriter) emitByte(b byte) {
	for i := 7; i >= 0; i-- {
		w.emitBit(b>>i&1 == 1)
	}
}

func (w *bitWriter) finish() []byte { return w.bits }

// encoder walks a term once, writing the structure and remembering which
// 00 leaves were variables.
type encoder struct {
	w     bitWriter
	flags []bool
	vars  []string
}

func (e *encoder) term(t Term) {
	for {
		switch v := t.(type) {
		case Primitive:
			e.w.emitBit(false)
			e.w.emitBit(v == S)
			if v == K {
				e.flags = append(e.flags, false)
			}
			return
		case *Var:
			e.w.emitBit(false)
			e.w.emitBit(false)
			e.flags = append(e.flags, true)
			e.vars = append(e.vars, v.name)
			return
		case *Named:
			t = v.def
		case *App:
			e.app(v.args)
			return
		default:
			panic(fmt.Sprintf("ski: cannot encode %T", t))
		}
	}
}

// app writes an application given its reversed children. A nested
// application in head position needs no special case: its own one-bits run
// straight into ours, which is exactly the prefix of the flattened form.
func (e *encoder) app(args []Term) {
	for i := 1; i < len(args); i++ {
		e.w.emitBit(true)
	}
	for i := len(args) - 1; i >= 0; i-- {
		e.term(args[i])
	}
}

// Encode returns the canonical encoding of t. Two terms have the same
// encoding exactly when they are the same rewriting state: equal after
// flattening head applications and opening aliases.
func Encode(t Term) []byte {
	var e encoder
	e.term(t)
	if len(e.vars) > 0 {
		e.w.emitBit(true)
		for _, isVar := range e.flags {
			e.w.emitBit(isVar)
		}
		for _, name := range e.vars {
			e.w.emitGamma(len(name) + 1)
			for i := 0; i < len(name); i++ {
				e.w.emitByte(name[i])
			}
		}
	}
	return e.w.finish()
}

// Equivalent reports whether a and b have the same canonical encoding.
func Equivalent(a, b Term) bool {
	return bytes.Equal(Encode(a), Encode(b))
}

// FormatBits renders an encoding as a string of '0' and '1', eight per byte.
func FormatBits(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 8)
	for _, c := range b {
		fmt.Fprintf(&sb, "%08b", c)
	}
	return sb.String()
}

// DecodeError reports a malformed encoding.
type DecodeError struct {
	Bit    int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ski: decode at bit %d: %s", e.Bit, e.Reason)
}

type bitReader struct {
	data []byte
	pos  int
}

func (r *bitReader) remaining() int { return len(r.data)*8 - r.pos }

func (r *bitReader) readBit() (bool, error) {
	if r.pos >= len(r.data)*8 {
		return false, &DecodeError{Bit: r.pos, Reason: "unexpected end of input"}
	}
	b := r.data[r.pos/8]>>(7-r.pos%8)&1 == 1
	r.pos++
	return b, nil
}

func (r *bitReader) readGamma() (int, error) {
	zeros := 0
	for {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		if bit {
			break
		}
		zeros++
		if zeros > 31 {
			return 0, &DecodeError{Bit: r.pos, Reason: "length out of range"}
		}
	}
	n := 1
	for i := 0; i < zeros; i++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		n <<= 1
		if bit {
			n |= 1
		}
	}
	return n, nil
}

func (r *bitReader) readByte() (byte, error) {
	var b byte
	for i := 0; i < 8; i++ {
		bit, err := r.readBit()
		if err != nil {
			return 0, err
		}
		b <<= 1
		if bit {
			b |= 1
		}
	}
	return b, nil
}

// decoder rebuilds the structure with placeholder K leaves, then patches the
// variables in once the trailer has been read.
type decoder struct {
	r      bitReader
	leaves []*leafSlot
}

// leafSlot is a 00 leaf whose final identity (K or a variable) is decided by
// the trailer.
type leafSlot struct {
	term Term
}

// shape is the decoded structure before variables are patched in.
type shape struct {
	leaf     *leafSlot
	prim     Primitive
	children []*shape
}

func (d *decoder) shape() (*shape, error) {
	ones := 0
	for {
		bit, err := d.r.readBit()
		if err != nil {
			return nil, err
		}
		if !bit {
			break
		}
		ones++
	}
	if ones == 0 {
		bit, err := d.r.readBit()
		if err != nil {
			return nil, err
		}
		if bit {
			return &shape{prim: S}, nil
		}
		slot := &leafSlot{term: K}
		d.leaves = append(d.leaves, slot)
		return &shape{leaf: slot}, nil
	}
	// The zero that ended the prefix is the first bit of the head.
	d.r.pos--
	children := make([]*shape, 0, ones+1)
	for i := 0; i <= ones; i++ {
		c, err := d.shape()
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return &shape{children: children}, nil
}

func (s *shape) build() Term {
	switch {
	case s.leaf != nil:
		return s.leaf.term
	case s.children == nil:
		return s.prim
	}
	terms := make([]Term, len(s.children))
	for i, c := range s.children {
		terms[i] = c.build()
	}
	return Apply(terms[0], terms[1:]...)
}

// Decode inverts Encode. Aliases are not recoverable, so the result is the
// expanded form of the encoded term.
func Decode(data []byte) (Term, error) {
	d := &decoder{r: bitReader{data: data}}
	root, err := d.shape()
	if err != nil {
		return nil, err
	}
	if d.r.remaining() > 0 {
		marker, _ := d.r.readBit()
		if marker {
			if err := d.trailer(); err != nil {
				return nil, err
			}
		}
	}
	for d.r.remaining() > 0 {
		bit, _ := d.r.readBit()
		if bit {
			return nil, &DecodeError{Bit: d.r.pos - 1, Reason: "non-zero padding"}
		}
	}
	return root.build(), nil
}

func (d *decoder) trailer() error {
	var vars []*leafSlot
	for _, slot := range d.leaves {
		bit, err := d.r.readBit()
		if err != nil {
			return err
		}
		if bit {
			vars = append(vars, slot)
		}
	}
	if len(vars) == 0 {
		return &DecodeError{Bit: d.r.pos, Reason: "variable marker without variables"}
	}
	for _, slot := range vars {
		n, err := d.r.readGamma()
		if err != nil {
			return err
		}
		name := make([]byte, n-1)
		for i := range name {
			if name[i], err = d.r.readByte(); err != nil {
				return err
			}
		}
		if !utf8.Valid(name) {
			return &DecodeError{Bit: d.r.pos, Reason: "variable name is not UTF-8"}
		}
		slot.term = NewVar(string(name))
	}
	return nil
}
