package ski

// redex classifies the head of an application.
type redex uint8

const (
	noRedex redex = iota
	redexK        // K x y …
	redexS        // S f g x …
)

// headRedex inspects a reversed spine whose head has already been collapsed.
func headRedex(args []Term) redex {
	head, ok := args[len(args)-1].(Primitive)
	if !ok {
		return noRedex
	}
	arity := len(args) - 1
	switch {
	case head == K && arity >= 2:
		return redexK
	case head == S && arity >= 3:
		return redexS
	}
	return noRedex
}

// splice returns a fresh spine holding rest followed by the spine of head,
// so that head ends up in function position applied to rest.
func splice(rest []Term, head Term) []Term {
	hs := spine(head)
	out := make([]Term, 0, len(rest)+len(hs))
	out = append(out, rest...)
	return append(out, hs...)
}

// collapse performs the administrative steps that expose the real head of t:
// opening an alias at the root or in head position and flattening a nested
// application in head position. charge is called once per collapse and may
// abort the work by returning false; a nil charge makes collapsing free.
func collapse(t Term, charge func() bool) (Term, bool) {
	for {
		switch v := t.(type) {
		case *Named:
			if charge != nil && !charge() {
				return t, false
			}
			t = v.def
		case *App:
			last := len(v.args) - 1
			switch h := v.args[last].(type) {
			case *Named:
				if charge != nil && !charge() {
					return t, false
				}
				t = newApp(splice(v.args[:last], h.def))
			case *App:
				if charge != nil && !charge() {
					return t, false
				}
				t = newApp(splice(v.args[:last], h))
			default:
				return t, true
			}
		default:
			return t, true
		}
	}
}

// fire contracts the head redex of app. The S rule shares x between its two
// new positions.
func fire(app *App, r redex) Term {
	args := app.args
	n := len(args)
	switch r {
	case redexK:
		// [… y x K] → […] applied by x
		return newApp(splice(args[:n-3], args[n-2]))
	case redexS:
		// [… x g f S] → [… (g x) x] applied by f
		f, g, x := args[n-2], args[n-3], args[n-4]
		fs := spine(f)
		out := make([]Term, 0, n-4+2+len(fs))
		out = append(out, args[:n-4]...)
		out = append(out, Apply(g, x), x)
		return newApp(append(out, fs...))
	}
	return app
}

// Step performs one head rewrite on *t: K x y → x or S f g x → f x (g x),
// with any remaining arguments carried along. Aliases in head position are
// opened and nested heads flattened first; those collapses alone do not count
// as a step. Step reports whether a redex fired. *t is rebound to the rewritten
// term only in that case; the previous term is never modified.
func Step(t *Term) bool {
	c, _ := collapse(*t, nil)
	app, ok := c.(*App)
	if !ok {
		return false
	}
	r := headRedex(app.args)
	if r == noRedex {
		return false
	}
	*t = fire(app, r)
	return true
}

// StepNormalOrder performs one leftmost-outermost rewrite anywhere in *t.
// When the head admits no redex the arguments are tried in application
// order. It reports whether any redex fired.
func StepNormalOrder(t *Term) bool {
	if Step(t) {
		return true
	}
	c, _ := collapse(*t, nil)
	app, ok := c.(*App)
	if !ok {
		return false
	}
	for i := len(app.args) - 2; i >= 0; i-- {
		child := app.args[i]
		if !StepNormalOrder(&child) {
			continue
		}
		args := make([]Term, len(app.args))
		copy(args, app.args)
		args[i] = child
		*t = newApp(args)
		return true
	}
	return false
}

// Trace reduces t in normal order, calling fn with the step number and the
// term before every step and once more for the last term reached. It stops
// after limit steps or when no redex remains, and reports whether the last
// term is normal.
func Trace(t Term, limit int, fn func(step int, t Term)) (Term, bool) {
	for step := 0; ; step++ {
		if fn != nil {
			fn(step, t)
		}
		if step == limit {
			next := t
			return t, !StepNormalOrder(&next)
		}
		if !StepNormalOrder(&t) {
			return t, true
		}
	}
}

// KReduce fires every K redex in t, innermost heads first, in a single
// pass. K discards its second argument, so this never changes whether t has
// a normal form. Aliases are left closed.
func KReduce(t Term) Term {
	r, _ := kReduce(t, nil)
	return r
}

func kReduce(t Term, charge func() bool) (Term, bool) {
	app, ok := t.(*App)
	if !ok {
		return t, true
	}
	args := app.args
	changed := false
	for {
		n := len(args)
		if n < 3 || args[n-1] != Term(K) {
			break
		}
		if charge != nil && !charge() {
			return t, false
		}
		args = splice(args[:n-3], args[n-2])
		changed = true
	}
	if len(args) == 1 {
		return kReduce(args[0], charge)
	}
	var out []Term
	for i := 0; i < len(args)-1; i++ {
		r, ok := kReduce(args[i], charge)
		if !ok {
			return t, false
		}
		if r == args[i] {
			continue
		}
		if out == nil {
			out = make([]Term, len(args))
			copy(out, args)
		}
		out[i] = r
	}
	switch {
	case out != nil:
		return newApp(out), true
	case changed:
		return newApp(args), true
	}
	return t, true
}
