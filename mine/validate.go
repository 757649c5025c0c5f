package mine

import (
	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/freq"
	"github.com/npillmayer/treeminer/treebank"
)

// skeleton creates a size-2 pattern op(child) with its occurrences read straight
// from the treebank. Skeletons are starting points only and are never reported.
func skeleton(tb *treebank.Treebank, op, childOp ctree.Operator, label string) *Pattern {
	tree := ctree.NewOperatorTree(op)
	var rml int
	if childOp == ctree.NoOperator {
		rml = tree.AddLeaf(0, label)
	} else {
		rml = tree.AddOperator(0, childOp)
	}
	p := newPattern(tree, rml, 0, nil)
	p.rmo = make(Occurrences)
	tb.Each(func(e *treebank.Entry) {
		t := e.Tree
		var list []Occurrence
		t.Walk(t.Root(), func(n int) {
			if t.Op(n) != op {
				return
			}
			for _, c := range t.Children(n) {
				if matchesNode(t, c, childOp, label) {
					list = append(list, Occurrence{Anchor: n, Node: c})
				}
			}
		})
		if len(list) > 0 {
			p.rmo[e.ID] = normalize(list)
		}
	})
	return p
}

func matchesNode(t *ctree.Tree, n int, op ctree.Operator, label string) bool {
	if op == ctree.NoOperator {
		return t.IsLeaf(n) && t.Label(n) == label
	}
	return t.Op(n) == op
}

// Revalidate computes the occurrences of p from the occurrences of its parent.
// If p reaches minSup, the new support and occurrences are committed and
// Revalidate returns true. Otherwise p is left unchanged and should be discarded.
//
// Revalidate does not modify the parent, hence repeated calls yield identical results.
func (p *Pattern) Revalidate(tb *treebank.Treebank, s freq.Strategy, minSup int) bool {
	occ, sup, ok := p.validate(tb, s, minSup)
	if !ok {
		return false
	}
	p.rmo, p.support = occ, sup
	return true
}

// validate walks, for every parent occurrence, heightDiff hops up from the image
// of the parent's rightmost node and matches the new node against the children
// found there. Trees are processed in ascending id order; processing stops as soon
// as the support still obtainable from unprocessed trees cannot lift the
// support found so far to minSup.
func (p *Pattern) validate(tb *treebank.Treebank, s freq.Strategy, minSup int) (Occurrences, int, bool) {
	parent := p.parent
	assertThat(parent != nil, "pattern %s has no parent occurrences", p.key)
	ids := parent.rmo.TreeIDs()
	budget := 0
	bound := make([]int, len(ids))
	for i, id := range ids {
		bound[i] = s.Contribution(tb.Weight(id), countAnchors(parent.rmo[id]))
		budget += bound[i]
	}
	op, label := p.tree.Op(p.rml), p.tree.Label(p.rml)
	ordered := p.tree.Op(p.tree.Parent(p.rml)).Ordered()
	occ := make(Occurrences)
	sup := 0
	for i, id := range ids {
		t := tb.Tree(id)
		var found []Occurrence
		for _, o := range parent.rmo[id] {
			at := t.Up(o.Node, p.heightDiff)
			children := t.Children(at)
			from, to := 0, len(children)
			if p.heightDiff > 0 {
				prev := t.Up(o.Node, p.heightDiff-1)
				from = t.Position(prev) + 1
				if ordered {
					to = min(from+1, to)
				}
			}
			for _, c := range children[min(from, to):to] {
				if matchesNode(t, c, op, label) {
					found = append(found, Occurrence{Anchor: o.Anchor, Node: c})
				}
			}
		}
		budget -= bound[i]
		if len(found) > 0 {
			found = normalize(found)
			occ[id] = found
			sup += s.Contribution(tb.Weight(id), countAnchors(found))
		}
		if minSup > budget+sup {
			return nil, sup, false
		}
	}
	return occ, sup, sup >= minSup
}
