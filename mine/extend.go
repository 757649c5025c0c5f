package mine

import (
	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/freq"
)

// extension describes a candidate one-node extension of a pattern.
type extension struct {
	at     int            // pattern node receiving the new rightmost child
	height int            // hops from the rightmost node up to at
	op     ctree.Operator // NoOperator for activities
	label  string
}

// extensions generates the candidate extensions of p along its rightmost path.
//
// A childless operator at the bottom of the path must be filled first. Otherwise
// every operator on the path is a growth point, from the bottom up to the first
// operator with fewer than two children.
func extensions(p *Pattern, ps *freq.PruningSets) []extension {
	t := p.tree
	if !t.IsLeaf(p.rml) {
		return extensionContext{p: p, ps: ps, at: p.rml}.generate(nil)
	}
	var exts []extension
	h := 1
	for e := t.Parent(p.rml); e != ctree.None; e = t.Parent(e) {
		exts = extensionContext{p: p, ps: ps, at: e, height: h}.generate(exts)
		if t.ChildCount(e) < 2 {
			break
		}
		h++
	}
	return exts
}

// extensionContext is a growth point on the rightmost path of a pattern.
type extensionContext struct {
	p      *Pattern
	ps     *freq.PruningSets
	at     int
	height int
}

func (x extensionContext) generate(exts []extension) []extension {
	switch x.p.tree.Op(x.at) {
	case ctree.Sequential:
		return x.sequential(exts)
	case ctree.Concurrent, ctree.Fallthrough:
		return x.unordered(exts)
	case ctree.Loop:
		return x.loop(exts)
	default:
		assertThat(false, "cannot extend activity node %d of %s", x.at, x.p.key)
	}
	return exts
}

func (x extensionContext) leaf(label string) extension {
	return extension{at: x.at, height: x.height, label: label}
}

func (x extensionContext) operator(op ctree.Operator) extension {
	return extension{at: x.at, height: x.height, op: op}
}

func (x extensionContext) operators(exts []extension, parent ctree.Operator) []extension {
	for _, op := range x.ps.ChildOperators(parent) {
		exts = append(exts, x.operator(op))
	}
	return exts
}

// sequential: after an activity ℓ only activities directly following ℓ may be
// appended, after an operator subtree only members of its operator closure.
func (x extensionContext) sequential(exts []extension) []extension {
	t := x.p.tree
	rc := t.RightmostChild(x.at)
	for _, l := range x.ps.ChildLabels(ctree.Sequential) {
		switch {
		case rc == ctree.None:
			exts = append(exts, x.leaf(l))
		case t.IsLeaf(rc):
			if x.ps.DirectlyFollows(t.Label(rc), l) {
				exts = append(exts, x.leaf(l))
			}
		default:
			if x.inOperatorClosure(rc, l) {
				exts = append(exts, x.leaf(l))
			}
		}
	}
	return x.operators(exts, ctree.Sequential)
}

// inOperatorClosure is true if activity l eventually follows every activity of the
// operator subtree rc, and, for unordered rc, directly follows each activity child of rc.
func (x extensionContext) inOperatorClosure(rc int, l string) bool {
	t := x.p.tree
	for _, a := range t.Leaves(rc) {
		if !x.ps.EventuallyFollows(a, l) {
			return false
		}
	}
	if t.Op(rc).Unordered() {
		for _, c := range t.Children(rc) {
			if t.IsLeaf(c) && !x.ps.DirectlyFollows(t.Label(c), l) {
				return false
			}
		}
	}
	return true
}

// unordered: activities are kept in lexicographic order and precede a single
// operator child.
func (x extensionContext) unordered(exts []extension) []extension {
	t := x.p.tree
	kind := t.Op(x.at)
	rc := t.RightmostChild(x.at)
	switch {
	case rc == ctree.None:
		for _, l := range x.ps.ChildLabels(kind) {
			exts = append(exts, x.leaf(l))
		}
	case t.IsLeaf(rc):
		last := t.Label(rc)
		for _, l := range x.ps.ChildLabels(kind) {
			if l >= last && x.ps.Concurrent(last, l) {
				exts = append(exts, x.leaf(l))
			}
		}
	default:
		return exts
	}
	return x.operators(exts, kind)
}

func (x extensionContext) loop(exts []extension) []extension {
	for _, l := range x.ps.ChildLabels(ctree.Loop) {
		exts = append(exts, x.leaf(l))
	}
	return x.operators(exts, ctree.Loop)
}

// growPattern materializes an extension: the pattern tree is copied and the new
// node appended as rightmost child of the copy of x.at.
func growPattern(p *Pattern, x extension) *Pattern {
	tree, at := p.tree.CloneWithFocus(x.at)
	var n int
	if x.op == ctree.NoOperator {
		n = tree.AddLeaf(at, x.label)
	} else {
		n = tree.AddOperator(at, x.op)
	}
	return newPattern(tree, n, x.height, p)
}
