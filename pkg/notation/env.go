package notation

import (
	"fmt"
	"sync"

	"github.com/gitrdm/goski/pkg/ski"
)

// Env binds identifiers to named definitions. It is safe for concurrent use.
// Redefining a name replaces the binding for later lookups; terms already
// built keep the alias they were built with.
type Env struct {
	mu    sync.RWMutex
	defs  map[string]*ski.Named
	order []string
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{defs: make(map[string]*ski.Named)}
}

// Define binds name to def and returns the alias used for it.
func (e *Env) Define(name string, def ski.Term) (*ski.Named, error) {
	if !IsIdentifier(name) {
		return nil, fmt.Errorf("define %q: not a valid name", name)
	}
	if def == nil {
		return nil, fmt.Errorf("define %q: nil definition", name)
	}
	n := ski.NewNamed(name, def)

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.defs[name]; !ok {
		e.order = append(e.order, name)
	}
	e.defs[name] = n
	return n, nil
}

// DefineSource parses src in this environment and binds the result to name.
func (e *Env) DefineSource(name, src string) (*ski.Named, error) {
	def, err := Parse(src, e)
	if err != nil {
		return nil, fmt.Errorf("define %s: %w", name, err)
	}
	return e.Define(name, def)
}

// Lookup returns the alias bound to name. A nil Env has no bindings.
func (e *Env) Lookup(name string) (*ski.Named, bool) {
	if e == nil {
		return nil, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	n, ok := e.defs[name]
	return n, ok
}

// Names returns the bound names in the order they were first defined.
func (e *Env) Names() []string {
	if e == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Clone returns an independent copy of the environment.
func (e *Env) Clone() *Env {
	c := NewEnv()
	if e == nil {
		return c
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	c.order = append(c.order, e.order...)
	for k, v := range e.defs {
		c.defs[k] = v
	}
	return c
}
