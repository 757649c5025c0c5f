/*
Package freq implements the support semantics of frequent pattern mining and the
pruning sets derived from the activity relations of a treebank.

Supports are counted in one of four ways (see Strategy). Relations between
activities (directly-follows, eventually-follows, concurrent) and the child
tables of operators are counted with the same strategy and thresholded at the
minimum support. A candidate pattern extension which needs a relation below the
threshold cannot be frequent, which lets pattern growth skip it.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package freq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'treeminer.freq'.
func tracer() tracing.Trace {
	return tracing.Select("treeminer.freq")
}

// ErrUnknownStrategy is returned by ParseStrategy.
var ErrUnknownStrategy = errors.New("unknown frequency counting strategy")

// Strategy selects how the support of a set of occurrences is counted.
type Strategy int

const (
	// TraceTransaction sums the trace-weights of trees with at least one occurrence.
	TraceTransaction Strategy = iota
	// TraceOccurrence sums trace-weight × distinct root-occurrences per tree.
	TraceOccurrence
	// VariantTransaction counts trees with at least one occurrence.
	VariantTransaction
	// VariantOccurrence sums the distinct root-occurrences per tree.
	VariantOccurrence
)

var strategyNames = [...]string{
	"trace-transaction",
	"trace-occurrence",
	"variant-transaction",
	"variant-occurrence",
}

func (s Strategy) String() string {
	if s < TraceTransaction || s > VariantOccurrence {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy reads a strategy name as returned by String. Case and the
// separator ('-', '_' or none) are ignored.
func ParseStrategy(name string) (Strategy, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(name))
	for i, n := range strategyNames {
		if strings.ReplaceAll(n, "-", "") == norm {
			return Strategy(i), nil
		}
	}
	return TraceTransaction, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// IsOccurrence is true for strategies counting every distinct root-occurrence.
func (s Strategy) IsOccurrence() bool {
	return s == TraceOccurrence || s == VariantOccurrence
}

// IsTrace is true for strategies weighting trees by their trace-weight.
func (s Strategy) IsTrace() bool {
	return s == TraceTransaction || s == TraceOccurrence
}

// Contribution is the support a single tree with the given trace-weight and the
// given number of distinct root-occurrences adds to a pattern.
func (s Strategy) Contribution(weight, rootOccurrences int) int {
	if rootOccurrences <= 0 {
		return 0
	}
	switch s {
	case TraceTransaction:
		return weight
	case TraceOccurrence:
		return weight * rootOccurrences
	case VariantTransaction:
		return 1
	case VariantOccurrence:
		return rootOccurrences
	}
	panic(fmt.Sprintf("treeminer.freq: unknown strategy %d", int(s)))
}

// WeightOf is the interface Support needs from a treebank.
type WeightOf interface {
	Weight(treeID int) int
}

// Support sums the contributions of trees, given as a map from tree id to the
// number of distinct root-occurrences in that tree.
func Support(s Strategy, tb WeightOf, rootOccurrences map[int]int) int {
	sup := 0
	for id, n := range rootOccurrences {
		sup += s.Contribution(tb.Weight(id), n)
	}
	return sup
}
