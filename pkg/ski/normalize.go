package ski

import (
	"errors"
	"fmt"
	"sync"
)

// Outcome classifies the result of a normalization attempt.
type Outcome uint8

const (
	// Normalized means a normal form was found within the budget.
	Normalized Outcome = iota

	// ProvenDivergent means reduction was shown to revisit a state it was
	// still evaluating, so the term has no normal form.
	ProvenDivergent

	// LimitExceeded means the budget ran out before either verdict.
	LimitExceeded
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Normalized:
		return "normalized"
	case ProvenDivergent:
		return "divergent"
	case LimitExceeded:
		return "limit exceeded"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

var (
	// ErrDivergent is returned by Result.Err for ProvenDivergent.
	ErrDivergent = errors.New("ski: term has no normal form")

	// ErrLimitExceeded is returned by Result.Err for LimitExceeded.
	ErrLimitExceeded = errors.New("ski: step limit exceeded")
)

// Result is the outcome of normalizing one term.
type Result struct {
	Outcome Outcome

	// Term is the normal form. It is nil unless Outcome is Normalized.
	Term Term

	// Steps is the number of budget units consumed.
	Steps int
}

// Err returns nil for a normalized result and the matching sentinel error
// otherwise.
func (r Result) Err() error {
	switch r.Outcome {
	case Normalized:
		return nil
	case ProvenDivergent:
		return ErrDivergent
	default:
		return ErrLimitExceeded
	}
}

// Config holds configuration for the normalizer.
type Config struct {
	// EagerK fires every K redex in the term before each head step.
	// K only discards, so this can shorten reductions but never changes
	// the verdict.
	EagerK bool

	// Speculate normalizes the argument an S redex is about to duplicate,
	// using at most half of the remaining budget. Only a found normal form
	// is used. Without it most self-application loops are only caught by
	// the step limit.
	Speculate bool

	// Trace enables [NF] log lines (same as GOSKI_TRACE=1).
	Trace bool
}

// DefaultConfig returns the default normalizer configuration.
func DefaultConfig() *Config {
	return &Config{
		Speculate: true,
	}
}

// Stats holds counters for a Normalizer.
type Stats struct {
	// Calls to Normalize.
	Calls int64

	// Budget units consumed across all calls.
	Steps int64

	// Memo lookups that found a Normal or Abnormal cell.
	CacheHits int64

	// Memo lookups that found nothing.
	CacheMisses int64

	// Reductions that looped back to a state still being evaluated.
	CyclesProven int64

	// Speculative normalizations of duplicated S arguments.
	Speculations int64

	// Speculations whose normal form replaced the argument.
	SpeculationsUsed int64

	// Current number of settled memo cells.
	CachedTerms int64

	// Cache hit ratio (hits / (hits + misses))
	HitRatio float64
}

// Normalizer reduces terms to normal form and remembers settled verdicts
// between calls. A Normalizer is safe for concurrent use; calls are
// serialized.
type Normalizer struct {
	config *Config

	mu    sync.Mutex
	memo  *memo
	stats Stats
}

// NewNormalizer creates a normalizer with its own memo table.
// If config is nil, DefaultConfig() is used.
func NewNormalizer(config *Config) *Normalizer {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Trace {
		enableTrace()
	}
	return &Normalizer{
		config: config,
		memo:   newMemo(),
	}
}

// NormalForm normalizes t with a fresh memo table and the default
// configuration.
func NormalForm(t Term, limit int) Result {
	return NewNormalizer(nil).Normalize(t, limit)
}

// Normalize drives t towards its normal form using at most limit budget
// units. One unit is spent per K or S contraction and per administrative
// collapse of an alias or nested head; looking terms up and descending into
// arguments is free. A limit of zero or less always yields LimitExceeded.
//
// Reduction is leftmost-outermost, so a normal form is found whenever one
// exists and the budget allows. Every state visited is recorded under its
// canonical encoding; reaching a state that is still being evaluated proves
// the term diverges.
func (n *Normalizer) Normalize(t Term, limit int) Result {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stats.Calls++
	if limit <= 0 {
		return Result{Outcome: LimitExceeded}
	}

	r := &run{n: n, fuel: limit}
	v, nf := r.norm(t)
	n.stats.Steps += int64(r.steps)

	switch v {
	case vNormal:
		return Result{Outcome: Normalized, Term: nf, Steps: r.steps}
	case vDivergent:
		return Result{Outcome: ProvenDivergent, Steps: r.steps}
	default:
		tracef("budget of %d exhausted on %s", limit, t)
		return Result{Outcome: LimitExceeded, Steps: r.steps}
	}
}

// Stats returns current normalizer statistics.
func (n *Normalizer) Stats() *Stats {
	n.mu.Lock()
	defer n.mu.Unlock()

	s := n.stats
	s.CachedTerms = int64(n.memo.len())
	if total := s.CacheHits + s.CacheMisses; total > 0 {
		s.HitRatio = float64(s.CacheHits) / float64(total)
	}
	return &s
}

// Reset drops every memo cell and zeroes the statistics.
func (n *Normalizer) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.memo.clear()
	n.stats = Stats{}
}

// verdict is the internal result of one frame. Undecided and exhausted
// never reach the caller of Normalize as verdicts of their own.
type verdict uint8

const (
	vNormal verdict = iota
	vDivergent
	vUndecided
	vExhausted
)

// run is the state of a single Normalize call.
type run struct {
	n     *Normalizer
	fuel  int
	steps int
	level int
}

func (r *run) charge() bool {
	if r.fuel <= 0 {
		return false
	}
	r.fuel--
	r.steps++
	return true
}

// norm normalizes t in a fresh frame and settles the frame's memo cells.
func (r *run) norm(t Term) (verdict, Term) {
	if named, ok := t.(*Named); ok {
		v, nf := r.norm(named.def)
		if v == vNormal && nf == named.def {
			return vNormal, named
		}
		return v, nf
	}

	var keys []string
	v, nf := r.reduce(t, &keys)
	switch v {
	case vNormal:
		r.n.memo.settle(keys, memoCell{state: memoNormal, nf: nf, nfKey: string(Encode(nf))})
	case vDivergent:
		r.n.memo.settle(keys, memoCell{state: memoAbnormal})
	default:
		r.n.memo.forget(keys)
	}
	return v, nf
}

// reduce runs the head loop of one frame, appending every key it marks.
func (r *run) reduce(t Term, keys *[]string) (verdict, Term) {
	cfg := r.n.config
	for {
		// shown is what the frame reports if t turns out to be normal:
		// the term as reached, before administrative collapses, so that
		// aliases keep their names.
		shown := t

		var ok bool
		if t, ok = collapse(t, r.charge); !ok {
			return vExhausted, nil
		}
		if cfg.EagerK {
			var k Term
			if k, ok = kReduce(t, r.charge); !ok {
				return vExhausted, nil
			}
			if k != t {
				if t, ok = collapse(k, r.charge); !ok {
					return vExhausted, nil
				}
				shown = t
			}
		}

		key := string(Encode(t))
		if cell, found := r.n.memo.lookup(key); found {
			switch cell.state {
			case memoNormal:
				r.n.stats.CacheHits++
				if cell.nfKey == key {
					return vNormal, shown
				}
				return vNormal, cell.nf
			case memoAbnormal:
				r.n.stats.CacheHits++
				return vDivergent, nil
			default:
				if cell.level < r.level {
					return vUndecided, nil
				}
				r.n.stats.CyclesProven++
				tracef("cycle proven at %s", t)
				return vDivergent, nil
			}
		}
		r.n.stats.CacheMisses++
		r.n.memo.markUnsure(key, r.level)
		*keys = append(*keys, key)

		app, isApp := t.(*App)
		if !isApp {
			return vNormal, shown
		}
		rx := headRedex(app.args)
		if rx == noRedex {
			return r.descend(app, shown)
		}
		if rx == redexS && cfg.Speculate {
			app = r.speculate(app)
		}
		if !r.charge() {
			return vExhausted, nil
		}
		t = fire(app, rx)
	}
}

// descend normalizes the arguments of a head-normal application in
// application order. Any divergent argument makes the whole term divergent.
func (r *run) descend(app *App, shown Term) (verdict, Term) {
	var out []Term
	undecided := false
	for i := len(app.args) - 2; i >= 0; i-- {
		child := app.args[i]
		v, nf := r.norm(child)
		switch v {
		case vDivergent, vExhausted:
			return v, nil
		case vUndecided:
			undecided = true
			continue
		}
		if nf == child {
			continue
		}
		if out == nil {
			out = make([]Term, len(app.args))
			copy(out, app.args)
		}
		out[i] = nf
	}
	switch {
	case undecided:
		return vUndecided, nil
	case out == nil:
		return vNormal, shown
	}
	return vNormal, newApp(out)
}

// speculate tries to normalize the argument x of S f g x before the rule
// duplicates it. It gets half of the remaining budget, and whatever it uses
// is spent. Only a normal form is used; any other verdict leaves app as it
// is, since an inner loop or an outer dependency says nothing about whether
// the whole term diverges.
func (r *run) speculate(app *App) *App {
	n := len(app.args)
	x := app.args[n-4]
	switch x.(type) {
	case Primitive, *Var:
		return app
	}
	budget := r.fuel / 2
	if budget == 0 {
		return app
	}

	saved := r.fuel
	r.fuel = budget
	r.level++
	r.n.stats.Speculations++
	v, nf := r.norm(x)
	r.level--
	r.fuel = saved - (budget - r.fuel)

	if v != vNormal || nf == x {
		if v == vExhausted {
			tracef("speculation on %s ran out after %d units", x, budget)
		}
		return app
	}
	r.n.stats.SpeculationsUsed++
	tracef("speculation normalized %s to %s", x, nf)
	args := make([]Term, n)
	copy(args, app.args)
	args[n-4] = nf
	return &App{args: args, size: app.size - x.Size() + nf.Size()}
}
