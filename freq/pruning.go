package freq

import (
	"sort"

	"github.com/npillmayer/treeminer/ctree"
)

// PruningSets are the relations of a treebank which reach the minimum support.
// They are read-only after construction and safe for concurrent use.
type PruningSets struct {
	MinSupport  int
	df, ef, cc  map[string]map[string]struct{}
	childLabels map[ctree.Operator][]string
	childOps    map[ctree.Operator][]ctree.Operator
}

// NewPruningSets thresholds rel at minSup.
func NewPruningSets(rel *Relations, minSup int) *PruningSets {
	ps := &PruningSets{
		MinSupport:  minSup,
		df:          threshold(rel.DirectlyFollows, minSup),
		ef:          threshold(rel.EventuallyFollows, minSup),
		cc:          threshold(rel.Concurrent, minSup),
		childLabels: make(map[ctree.Operator][]string),
		childOps:    make(map[ctree.Operator][]ctree.Operator),
	}
	for k, w := range rel.Children {
		if w < minSup {
			continue
		}
		if k.Op == ctree.NoOperator {
			ps.childLabels[k.Parent] = append(ps.childLabels[k.Parent], k.Label)
		} else if ctree.MayNest(k.Parent, k.Op) {
			ps.childOps[k.Parent] = append(ps.childOps[k.Parent], k.Op)
		}
	}
	for op := range ps.childLabels {
		sort.Strings(ps.childLabels[op])
	}
	for op := range ps.childOps {
		ops := ps.childOps[op]
		sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	}
	tracer().Debugf("pruning sets at min support %d: %d df, %d ef, %d cc sources",
		minSup, len(ps.df), len(ps.ef), len(ps.cc))
	return ps
}

func threshold(weights map[Pair]int, minSup int) map[string]map[string]struct{} {
	sets := make(map[string]map[string]struct{})
	for p, w := range weights {
		if w < minSup {
			continue
		}
		s, ok := sets[p.From]
		if !ok {
			s = make(map[string]struct{})
			sets[p.From] = s
		}
		s[p.To] = struct{}{}
	}
	return sets
}

func has(sets map[string]map[string]struct{}, a, b string) bool {
	_, ok := sets[a][b]
	return ok
}

// DirectlyFollows is true if activity b frequently directly follows a.
func (ps *PruningSets) DirectlyFollows(a, b string) bool { return has(ps.df, a, b) }

// EventuallyFollows is true if activity b frequently eventually follows a.
func (ps *PruningSets) EventuallyFollows(a, b string) bool { return has(ps.ef, a, b) }

// Concurrent is true if a and b are frequently found as siblings below an
// unordered operator.
func (ps *PruningSets) Concurrent(a, b string) bool { return has(ps.cc, a, b) }

// ChildLabels returns the activities, in lexicographic order, frequently found as
// children of operator op. Clients must not modify the returned slice.
func (ps *PruningSets) ChildLabels(op ctree.Operator) []string {
	return ps.childLabels[op]
}

// ChildOperators returns the operator kinds frequently found as children of op,
// restricted to the operator nesting table.
func (ps *PruningSets) ChildOperators(op ctree.Operator) []ctree.Operator {
	return ps.childOps[op]
}
