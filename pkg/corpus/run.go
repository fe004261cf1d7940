package corpus

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/gitrdm/goski/pkg/notation"
	"github.com/gitrdm/goski/pkg/prelude"
	"github.com/gitrdm/goski/pkg/ski"
)

// Options holds configuration for Run.
type Options struct {
	// MaxWorkers is the maximum number of cases normalized at once.
	// If 0, defaults to runtime.NumCPU().
	MaxWorkers int

	// Config is the normalizer configuration. If nil, ski.DefaultConfig()
	// is used.
	Config *ski.Config

	// Env, if set, is used instead of the environment the corpus asks
	// for. Corpus definitions are added to a copy of it.
	Env *notation.Env
}

// DefaultOptions returns the default run configuration.
func DefaultOptions() *Options {
	return &Options{
		MaxWorkers: runtime.NumCPU(),
		Config:     ski.DefaultConfig(),
	}
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Case   Case
	Limit  int
	Result ski.Result
	Pass   bool

	// Ran reports whether the term was normalized at all.
	Ran bool

	// Err is set when the case term or its expectation could not be parsed.
	Err error
}

// Report collects the results of a run in case order.
type Report struct {
	Started time.Time
	Elapsed time.Duration
	Results []CaseResult
}

// Passed returns the number of passing cases.
func (r *Report) Passed() int {
	n := 0
	for _, cr := range r.Results {
		if cr.Pass {
			n++
		}
	}
	return n
}

// Failed returns the number of failing cases.
func (r *Report) Failed() int { return len(r.Results) - r.Passed() }

// OK reports whether every case passed.
func (r *Report) OK() bool { return r.Failed() == 0 }

// Env builds the environment the corpus terms are parsed in: the prelude
// when requested, followed by the corpus definitions in order.
func (c *Corpus) Env(base *notation.Env) (*notation.Env, error) {
	var env *notation.Env
	switch {
	case base != nil:
		env = base.Clone()
	case c.Prelude:
		env = prelude.Env()
	default:
		env = notation.NewEnv()
	}
	for _, d := range c.Definitions {
		if _, err := env.DefineSource(d.Name, d.Term); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// Run normalizes every case of c in parallel and checks it against its
// expectation. Cases with different limits are batched separately. A case
// whose term does not parse fails without stopping the run; a bad
// definition or a cancelled context stops it.
func Run(ctx context.Context, c *Corpus, opts *Options) (*Report, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	env, err := c.Env(opts.Env)
	if err != nil {
		return nil, fmt.Errorf("run corpus: %w", err)
	}

	report := &Report{
		Started: time.Now(),
		Results: make([]CaseResult, len(c.Cases)),
	}

	batches := make(map[int][]int)
	terms := make([]ski.Term, len(c.Cases))
	for i, k := range c.Cases {
		cr := &report.Results[i]
		cr.Case = k
		cr.Limit = c.limitFor(k)
		t, err := notation.Parse(k.Term, env)
		if err != nil {
			cr.Err = fmt.Errorf("term: %w", err)
			continue
		}
		terms[i] = t
		batches[cr.Limit] = append(batches[cr.Limit], i)
	}

	limits := make([]int, 0, len(batches))
	for l := range batches {
		limits = append(limits, l)
	}
	slices.Sort(limits)

	batchOpts := &ski.BatchOptions{MaxWorkers: opts.MaxWorkers, Config: opts.Config}
	for _, limit := range limits {
		idx := batches[limit]
		batch := make([]ski.Term, len(idx))
		for j, i := range idx {
			batch[j] = terms[i]
		}
		results, err := ski.NormalizeAll(ctx, batch, limit, batchOpts)
		if err != nil {
			return nil, fmt.Errorf("run corpus: %w", err)
		}
		for j, i := range idx {
			cr := &report.Results[i]
			cr.Result = results[j]
			cr.Ran = true
			cr.Pass, cr.Err = check(cr.Case.Expect, results[j], env)
		}
	}

	report.Elapsed = time.Since(report.Started)
	return report, nil
}

// check compares a result with an expectation.
func check(expect string, res ski.Result, env *notation.Env) (bool, error) {
	switch expect {
	case ExpectDivergent:
		return res.Outcome == ski.ProvenDivergent, nil
	case ExpectLimit:
		return res.Outcome == ski.LimitExceeded, nil
	}
	want, err := notation.ParseOpen(expect, env)
	if err != nil {
		return false, fmt.Errorf("expect: %w", err)
	}
	return res.Outcome == ski.Normalized && ski.Equivalent(res.Term, want), nil
}
