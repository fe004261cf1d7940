package ski

import (
	"context"
	"runtime"

	"github.com/gitrdm/goski/internal/parallel"
)

// BatchOptions holds configuration for NormalizeAll.
type BatchOptions struct {
	// MaxWorkers is the maximum number of concurrent normalizations.
	// If 0, defaults to runtime.NumCPU().
	MaxWorkers int

	// Config is the normalizer configuration used for every term.
	// If nil, DefaultConfig() is used.
	Config *Config
}

// DefaultBatchOptions returns a default configuration for batch
// normalization.
func DefaultBatchOptions() *BatchOptions {
	return &BatchOptions{
		MaxWorkers: runtime.NumCPU(),
		Config:     DefaultConfig(),
	}
}

// NormalizeAll normalizes independent terms in parallel, each with its own
// memo table and its own budget of limit units. Results are in input order.
//
// If ctx is cancelled, terms not yet handed to a worker are reported as
// LimitExceeded with zero steps and the context error is returned alongside
// the results. Terms already running finish normally.
func NormalizeAll(ctx context.Context, terms []Term, limit int, opts *BatchOptions) ([]Result, error) {
	if opts == nil {
		opts = DefaultBatchOptions()
	}

	results := make([]Result, len(terms))
	for i := range results {
		results[i] = Result{Outcome: LimitExceeded}
	}
	if len(terms) == 0 {
		return results, nil
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(terms))
	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	_, err := pool.ForEach(ctx, len(terms), func(i int) {
		results[i] = NewNormalizer(opts.Config).Normalize(terms[i], limit)
	})
	return results, err
}
