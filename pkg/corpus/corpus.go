// Package corpus runs YAML files of terms against their expected outcomes.
//
// A corpus file looks like
//
//	limit: 1000            # default step limit per case
//	prelude: true          # preload the standard combinators
//	definitions:
//	  - name: Omega
//	    term: M M
//	cases:
//	  - name: true selects first
//	    term: T 'a' 'b'
//	    expect: a          # expected normal form, in notation
//	  - name: omega diverges
//	    term: Omega
//	    expect: divergent  # or "limit"
//	    limit: 500
//
// Terms use the notation package. An expected normal form is compared with
// ski.Equivalent, so aliases and their definitions match each other. A bare
// identifier in an expectation that is not bound is read as a variable, so
// "expect: a" means the variable a.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// ExpectDivergent expects the normalizer to prove divergence.
	ExpectDivergent = "divergent"

	// ExpectLimit expects the step limit to run out.
	ExpectLimit = "limit"

	// DefaultLimit is the step limit used when neither the case nor the
	// file sets one.
	DefaultLimit = 10000
)

// Definition binds a name for the terms that follow it.
type Definition struct {
	Name string `yaml:"name"`
	Term string `yaml:"term"`
}

// Case is a single term with its expected outcome.
type Case struct {
	Name   string `yaml:"name"`
	Term   string `yaml:"term"`
	Expect string `yaml:"expect"`
	Limit  int    `yaml:"limit,omitempty"`

	// Line is the line of the case in its file, when known.
	Line int `yaml:"-"`
}

// Corpus is a parsed corpus file.
type Corpus struct {
	Limit       int          `yaml:"limit,omitempty"`
	Prelude     bool         `yaml:"prelude"`
	Definitions []Definition `yaml:"definitions,omitempty"`
	Cases       []Case       `yaml:"cases"`
}

// ErrInvalid is wrapped by every validation error from Parse.
var ErrInvalid = errors.New("invalid corpus")

// Parse decodes and validates a corpus file. Unknown keys are rejected.
func Parse(data []byte) (*Corpus, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("parse corpus: %w: empty document", ErrInvalid)
	}

	var c Corpus
	if err := decodeStrict(root.Content[0], &c); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	annotateLines(root.Content[0], &c)

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	return &c, nil
}

// decodeStrict decodes n into out, rejecting unknown keys.
func decodeStrict(n *yaml.Node, out any) error {
	data, err := yaml.Marshal(n)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}

// annotateLines copies the source line of every case into Case.Line.
func annotateLines(doc *yaml.Node, c *Corpus) {
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "cases" {
			continue
		}
		seq := doc.Content[i+1]
		for j, item := range seq.Content {
			if j < len(c.Cases) {
				c.Cases[j].Line = item.Line
			}
		}
	}
}

func (c *Corpus) validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalid, c.Limit)
	}
	for i, d := range c.Definitions {
		if d.Name == "" || d.Term == "" {
			return fmt.Errorf("%w: definition %d needs a name and a term", ErrInvalid, i+1)
		}
	}
	if len(c.Cases) == 0 {
		return fmt.Errorf("%w: no cases", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Cases))
	for i, k := range c.Cases {
		switch {
		case k.Name == "":
			return fmt.Errorf("%w: case %d has no name", ErrInvalid, i+1)
		case seen[k.Name]:
			return fmt.Errorf("%w: duplicate case %q", ErrInvalid, k.Name)
		case k.Term == "":
			return fmt.Errorf("%w: case %q has no term", ErrInvalid, k.Name)
		case k.Expect == "":
			return fmt.Errorf("%w: case %q has no expectation", ErrInvalid, k.Name)
		case k.Limit < 0:
			return fmt.Errorf("%w: case %q has a negative limit", ErrInvalid, k.Name)
		}
		seen[k.Name] = true
	}
	return nil
}

// Load reads and parses the corpus file at path.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes the corpus back to YAML.
func (c *Corpus) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshal corpus: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal corpus: %w", err)
	}
	return buf.Bytes(), nil
}

// limitFor returns the effective step limit of k.
func (c *Corpus) limitFor(k Case) int {
	switch {
	case k.Limit > 0:
		return k.Limit
	case c.Limit > 0:
		return c.Limit
	}
	return DefaultLimit
}
