package ctree

import (
	"sort"
	"strings"

	tp "github.com/xlab/treeprint"
)

// Nested is the value representation of a concurrency tree which clients use to
// hand variants in and to receive patterns back. A Nested with Op == NoOperator
// is an activity leaf.
type Nested struct {
	Op       Operator
	Label    string
	Children []Nested
}

// Leaf creates an activity.
func Leaf(label string) Nested {
	return Nested{Label: label}
}

// Seq creates a sequential operator node.
func Seq(children ...Nested) Nested {
	return Nested{Op: Sequential, Children: children}
}

// Par creates a concurrent operator node.
func Par(children ...Nested) Nested {
	return Nested{Op: Concurrent, Children: children}
}

// Fall creates a fallthrough operator node.
func Fall(children ...Nested) Nested {
	return Nested{Op: Fallthrough, Children: children}
}

// Rep creates a loop operator node.
func Rep(children ...Nested) Nested {
	return Nested{Op: Loop, Children: children}
}

// IsLeaf is true for activities.
func (n Nested) IsLeaf() bool {
	return n.Op == NoOperator
}

func (n Nested) String() string {
	var b strings.Builder
	n.encode(&b)
	return b.String()
}

func (n Nested) encode(b *strings.Builder) {
	if n.IsLeaf() {
		writeLabel(b, n.Label)
		return
	}
	b.WriteString(n.Op.Symbol())
	b.WriteByte('(')
	for i, ch := range n.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		ch.encode(b)
	}
	b.WriteByte(')')
}

// Canonical returns a copy of n with the children of unordered operators put into
// canonical order: leaves first, sorted by label, then operator subtrees, sorted by
// their canonical strings.
func (n Nested) Canonical() Nested {
	if n.IsLeaf() {
		return n
	}
	c := Nested{Op: n.Op, Children: make([]Nested, len(n.Children))}
	keys := make([]string, len(n.Children))
	for i, ch := range n.Children {
		c.Children[i] = ch.Canonical()
		keys[i] = c.Children[i].String()
	}
	if n.Op.Unordered() {
		sort.Sort(byCanonicalOrder{c.Children, keys})
	}
	return c
}

type byCanonicalOrder struct {
	nodes []Nested
	keys  []string
}

func (bc byCanonicalOrder) Len() int { return len(bc.nodes) }
func (bc byCanonicalOrder) Less(i, j int) bool {
	li, lj := bc.nodes[i].IsLeaf(), bc.nodes[j].IsLeaf()
	if li != lj {
		return li
	}
	if li {
		return bc.nodes[i].Label < bc.nodes[j].Label
	}
	return bc.keys[i] < bc.keys[j]
}
func (bc byCanonicalOrder) Swap(i, j int) {
	bc.nodes[i], bc.nodes[j] = bc.nodes[j], bc.nodes[i]
	bc.keys[i], bc.keys[j] = bc.keys[j], bc.keys[i]
}

// FromNested builds a tree from a nested value, numbering nodes in preorder.
// Children are taken in the order given; see Canonical.
func FromNested(n Nested) *Tree {
	if n.IsLeaf() {
		return NewLeafTree(n.Label)
	}
	t := NewOperatorTree(n.Op)
	var build func(parent int, ch Nested)
	build = func(parent int, ch Nested) {
		if ch.IsLeaf() {
			t.AddLeaf(parent, ch.Label)
			return
		}
		id := t.AddOperator(parent, ch.Op)
		for _, gch := range ch.Children {
			build(id, gch)
		}
	}
	for _, ch := range n.Children {
		build(0, ch)
	}
	return t
}

// Nested converts the subtree rooted at node n into a nested value.
func (t *Tree) Nested(n int) Nested {
	nd := &t.nodes[n]
	if nd.op == NoOperator {
		return Leaf(nd.label)
	}
	v := Nested{Op: nd.op, Children: make([]Nested, 0, len(nd.children))}
	for _, ch := range nd.children {
		v.Children = append(v.Children, t.Nested(ch))
	}
	return v
}

// Canonical returns a copy of t with unordered children in canonical order.
func (t *Tree) Canonical() *Tree {
	return FromNested(t.Nested(0).Canonical())
}

// Print returns an indented rendering of t, for debugging.
func (t *Tree) Print() string {
	if t.Size() == 0 {
		return "<empty>\n"
	}
	printer := tp.New()
	t.printNode(printer, 0)
	return printer.String()
}

func (t *Tree) printNode(printer tp.Tree, n int) {
	if t.IsLeaf(n) {
		printer.AddNode(t.Label(n))
		return
	}
	branch := printer.AddBranch(t.Op(n).Symbol())
	for _, ch := range t.Children(n) {
		t.printNode(branch, ch)
	}
}
