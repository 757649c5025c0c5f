package freq

import (
	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/treebank"
)

// Pair is an ordered pair of activities.
type Pair struct {
	From, To string
}

// ChildKey is a parent operator together with a child, given either as an
// activity label or as an operator kind.
type ChildKey struct {
	Parent ctree.Operator
	Op     ctree.Operator // NoOperator for activity children
	Label  string
}

// Relations holds the weights of activity relations in a treebank, counted with
// a strategy. Each relation instance is identified by the operator node it is
// observed at; one operator node counts as one occurrence.
//
//   - DirectlyFollows(ℓ,x): a Sequential node whose child i may end with ℓ and
//     whose child i+1 is activity x.
//   - EventuallyFollows(ℓ,x): a Sequential node with ℓ anywhere below child i
//     and activity x as child j > i.
//   - Concurrent(ℓ,x): a Concurrent or Fallthrough node with distinct activity
//     children ℓ and x (symmetric).
//   - Children: an operator node with an activity or operator child.
type Relations struct {
	Strategy          Strategy
	DirectlyFollows   map[Pair]int
	EventuallyFollows map[Pair]int
	Concurrent        map[Pair]int
	Children          map[ChildKey]int
}

// instances collects, for one tree, the operator nodes at which each relation is observed.
type instances[K comparable] map[K]map[int]struct{}

func (in instances[K]) add(k K, at int) {
	s, ok := in[k]
	if !ok {
		s = make(map[int]struct{})
		in[k] = s
	}
	s[at] = struct{}{}
}

func (in instances[K]) addTo(weights map[K]int, s Strategy, weight int) {
	for k, at := range in {
		weights[k] += s.Contribution(weight, len(at))
	}
}

// MineRelations makes one pass over every tree of tb.
func MineRelations(tb *treebank.Treebank, s Strategy) *Relations {
	rel := &Relations{
		Strategy:          s,
		DirectlyFollows:   make(map[Pair]int),
		EventuallyFollows: make(map[Pair]int),
		Concurrent:        make(map[Pair]int),
		Children:          make(map[ChildKey]int),
	}
	tb.Each(func(e *treebank.Entry) {
		df, ef, cc := instances[Pair]{}, instances[Pair]{}, instances[Pair]{}
		ch := instances[ChildKey]{}
		t := e.Tree
		t.Walk(t.Root(), func(n int) {
			if t.IsLeaf(n) {
				return
			}
			children := t.Children(n)
			for _, c := range children {
				if t.IsLeaf(c) {
					ch.add(ChildKey{Parent: t.Op(n), Label: t.Label(c)}, n)
				} else {
					ch.add(ChildKey{Parent: t.Op(n), Op: t.Op(c)}, n)
				}
			}
			switch op := t.Op(n); {
			case op == ctree.Sequential:
				sequentialPairs(t, n, df, ef)
			case op.Unordered():
				concurrentPairs(t, n, cc)
			}
		})
		df.addTo(rel.DirectlyFollows, s, e.Weight)
		ef.addTo(rel.EventuallyFollows, s, e.Weight)
		cc.addTo(rel.Concurrent, s, e.Weight)
		ch.addTo(rel.Children, s, e.Weight)
	})
	tracer().Debugf("relations (%s): %d df, %d ef, %d cc, %d child pairs", s,
		len(rel.DirectlyFollows), len(rel.EventuallyFollows), len(rel.Concurrent), len(rel.Children))
	return rel
}

func sequentialPairs(t *ctree.Tree, n int, df, ef instances[Pair]) {
	children := t.Children(n)
	for j := 1; j < len(children); j++ {
		x := children[j]
		if !t.IsLeaf(x) {
			continue
		}
		to := t.Label(x)
		for _, from := range lastActivities(t, children[j-1]) {
			df.add(Pair{from, to}, n)
		}
		for i := 0; i < j; i++ {
			for _, from := range t.Leaves(children[i]) {
				ef.add(Pair{from, to}, n)
			}
		}
	}
}

// concurrentPairs enumerates all pairs of distinct activity children;
// this is quadratic in the number of children.
func concurrentPairs(t *ctree.Tree, n int, cc instances[Pair]) {
	children := t.Children(n)
	for i, a := range children {
		if !t.IsLeaf(a) {
			continue
		}
		for _, b := range children[i+1:] {
			if !t.IsLeaf(b) {
				continue
			}
			cc.add(Pair{t.Label(a), t.Label(b)}, n)
			cc.add(Pair{t.Label(b), t.Label(a)}, n)
		}
	}
}

// lastActivities returns the activities a subtree may end with.
func lastActivities(t *ctree.Tree, n int) []string {
	if t.IsLeaf(n) {
		return []string{t.Label(n)}
	}
	if t.Op(n) == ctree.Sequential {
		return lastActivities(t, t.RightmostChild(n))
	}
	var last []string
	for _, ch := range t.Children(n) {
		last = append(last, lastActivities(t, ch)...)
	}
	return last
}
