/*
Package treebank holds the corpus frequent patterns are mined from.

A treebank is an immutable, deduplicated collection of concurrency trees,
one per distinct process variant, each carrying the number of traces which
collapse into this variant (its trace-weight).

Treebanks are validated once when they are built. Mining code relies on this
and does not re-check tree shapes.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package treebank

import (
	"errors"
	"fmt"
	"sort"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/treeminer/ctree"
)

// tracer traces with key 'treeminer.treebank'.
func tracer() tracing.Trace {
	return tracing.Select("treeminer.treebank")
}

// ErrMalformedTreebank is returned if a treebank cannot be built from its input.
var ErrMalformedTreebank = errors.New("malformed treebank")

// Entry is one distinct variant of a treebank.
type Entry struct {
	ID     int         // id of the variant
	Tree   *ctree.Tree // canonically ordered concurrency tree
	Weight int         // number of traces collapsing to this variant
	Traces []string    // optional raw traces, for debugging only
	key    string
}

// Key returns the canonical string of the entry's tree.
func (e *Entry) Key() string {
	return e.key
}

// Treebank is an immutable collection of entries. It is safe for concurrent use.
type Treebank struct {
	entries map[int]*Entry
	ids     []int
	weight  int
}

// Len returns the number of distinct variants.
func (tb *Treebank) Len() int {
	return len(tb.ids)
}

// IDs returns the entry ids in ascending order. Clients must not modify the slice.
func (tb *Treebank) IDs() []int {
	return tb.ids
}

// Entry returns the entry for id.
func (tb *Treebank) Entry(id int) (*Entry, bool) {
	e, ok := tb.entries[id]
	return e, ok
}

// Tree returns the tree of entry id or nil.
func (tb *Treebank) Tree(id int) *ctree.Tree {
	if e, ok := tb.entries[id]; ok {
		return e.Tree
	}
	return nil
}

// Weight returns the trace-weight of entry id, or 0 for unknown ids.
func (tb *Treebank) Weight(id int) int {
	if e, ok := tb.entries[id]; ok {
		return e.Weight
	}
	return 0
}

// TotalWeight is the number of traces represented by the treebank.
func (tb *Treebank) TotalWeight() int {
	return tb.weight
}

// Each calls f for every entry, in order of ascending ids.
func (tb *Treebank) Each(f func(*Entry)) {
	for _, id := range tb.ids {
		f(tb.entries[id])
	}
}

// New creates a treebank from externally numbered entries. The trees are
// brought into canonical order. New fails with ErrMalformedTreebank for missing
// trees, non-positive weights, invalid tree shapes, and for distinct ids sharing
// the same variant.
func New(entries map[int]Entry) (*Treebank, error) {
	tb := &Treebank{entries: make(map[int]*Entry, len(entries))}
	seen := make(map[string]int, len(entries))
	for id := range entries {
		tb.ids = append(tb.ids, id)
	}
	sort.Ints(tb.ids)
	for _, id := range tb.ids {
		in := entries[id]
		e, err := makeEntry(id, in.Tree, in.Weight, in.Traces)
		if err != nil {
			tracer().Errorf("treebank entry %d: %v", id, err)
			return nil, err
		}
		if other, dup := seen[e.key]; dup {
			return nil, fmt.Errorf("%w: entries %d and %d are the same variant %s",
				ErrMalformedTreebank, other, id, e.key)
		}
		seen[e.key] = id
		tb.entries[id] = e
		tb.weight += e.Weight
	}
	tracer().Debugf("treebank with %d variants, %d traces", tb.Len(), tb.weight)
	return tb, nil
}

func makeEntry(id int, tree *ctree.Tree, weight int, traces []string) (*Entry, error) {
	if tree == nil || tree.Size() == 0 {
		return nil, fmt.Errorf("%w: entry %d references no tree", ErrMalformedTreebank, id)
	}
	if weight <= 0 {
		return nil, fmt.Errorf("%w: entry %d has weight %d", ErrMalformedTreebank, id, weight)
	}
	if err := tree.Check(true); err != nil {
		return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedTreebank, id, err)
	}
	if tree.IsLeaf(tree.Root()) {
		return nil, fmt.Errorf("%w: entry %d is a single activity", ErrMalformedTreebank, id)
	}
	c := tree.Canonical()
	traces = append([]string(nil), traces...)
	return &Entry{ID: id, Tree: c, Weight: weight, Traces: traces, key: c.Key()}, nil
}

// --- Builder -----------------------------------------------------------------

// Builder collects variants and collapses equal ones into a single entry,
// accumulating their weights. Ids are assigned in order of first appearance,
// starting at 0.
type Builder struct {
	byKey map[string]*Entry
	order []*Entry
	err   error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{byKey: make(map[string]*Entry)}
}

// Add adds a variant with a trace-weight. Errors are deferred until Build.
func (b *Builder) Add(variant ctree.Nested, weight int, traces ...string) *Builder {
	if b.err != nil {
		return b
	}
	if err := checkNested(variant); err != nil {
		b.err = err
		return b
	}
	return b.AddTree(ctree.FromNested(variant), weight, traces...)
}

// AddTree adds a variant given as a tree.
func (b *Builder) AddTree(tree *ctree.Tree, weight int, traces ...string) *Builder {
	if b.err != nil {
		return b
	}
	e, err := makeEntry(len(b.order), tree, weight, traces)
	if err != nil {
		b.err = err
		return b
	}
	if prev, ok := b.byKey[e.key]; ok {
		prev.Weight += e.Weight
		prev.Traces = append(prev.Traces, e.Traces...)
		return b
	}
	b.byKey[e.key] = e
	b.order = append(b.order, e)
	return b
}

// Build creates the treebank, or returns the first error encountered while adding.
func (b *Builder) Build() (*Treebank, error) {
	if b.err != nil {
		tracer().Errorf("cannot build treebank: %v", b.err)
		return nil, b.err
	}
	tb := &Treebank{entries: make(map[int]*Entry, len(b.order))}
	for _, e := range b.order {
		tb.entries[e.ID] = e
		tb.ids = append(tb.ids, e.ID)
		tb.weight += e.Weight
	}
	tracer().Debugf("treebank with %d variants, %d traces", tb.Len(), tb.weight)
	return tb, nil
}

// checkNested rejects nested values which cannot be turned into a tree without
// violating the tree invariants (the tree constructors assert them).
func checkNested(n ctree.Nested) error {
	if n.IsLeaf() {
		if n.Label == "" {
			return fmt.Errorf("%w: activity without label", ErrMalformedTreebank)
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("%w: activity %q with children", ErrMalformedTreebank, n.Label)
		}
		return nil
	}
	if n.Label != "" {
		return fmt.Errorf("%w: operator %s with label %q", ErrMalformedTreebank, n.Op, n.Label)
	}
	for _, ch := range n.Children {
		if err := checkNested(ch); err != nil {
			return err
		}
	}
	return nil
}
