package ctree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
)

// None is the index of a non-existing node, e.g. the parent of the root.
const None = -1

// ErrInvalidShape is returned by Check for trees violating the structural rules
// of concurrency trees.
var ErrInvalidShape = errors.New("invalid tree shape")

// node is a node of the arena. Exactly one of {op, label} is set.
type node struct {
	op       Operator
	label    string
	parent   int   // index of parent node or None
	sibling  int   // index of right sibling or None
	pos      int   // position within the children of parent
	children []int // indices of children, in order
}

// Tree is a concurrency tree. Nodes are addressed by their preorder id, which
// is identical to their index in the arena. The root is node 0.
//
// A Tree is not safe for concurrent modification, but any number of goroutines
// may share a tree as long as nobody appends to it.
type Tree struct {
	nodes []node
}

// NewOperatorTree creates a tree consisting of a single operator node.
func NewOperatorTree(op Operator) *Tree {
	assertThat(op != NoOperator, "root of operator tree needs an operator")
	t := &Tree{}
	t.nodes = append(t.nodes, node{op: op, parent: None, sibling: None})
	return t
}

// NewLeafTree creates a tree consisting of a single activity leaf.
func NewLeafTree(label string) *Tree {
	assertThat(label != "", "leaf needs a label")
	t := &Tree{}
	t.nodes = append(t.nodes, node{label: label, parent: None, sibling: None})
	return t
}

// Size returns the number of nodes of the tree.
func (t *Tree) Size() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root returns the root node id, or None for an empty tree.
func (t *Tree) Root() int {
	if t.Size() == 0 {
		return None
	}
	return 0
}

// Op returns the operator of node n (NoOperator for leaves).
func (t *Tree) Op(n int) Operator { return t.nodes[n].op }

// Label returns the activity label of node n ("" for operators).
func (t *Tree) Label(n int) string { return t.nodes[n].label }

// IsLeaf is true for activity nodes.
func (t *Tree) IsLeaf(n int) bool { return t.nodes[n].op == NoOperator }

// Parent returns the parent of n or None.
func (t *Tree) Parent(n int) int { return t.nodes[n].parent }

// RightSibling returns the right sibling of n or None.
func (t *Tree) RightSibling(n int) int { return t.nodes[n].sibling }

// Position returns the index of n within the children of its parent.
func (t *Tree) Position(n int) int { return t.nodes[n].pos }

// Children returns the children of n. Clients must not modify the returned slice.
func (t *Tree) Children(n int) []int { return t.nodes[n].children }

// ChildCount returns the number of children of n.
func (t *Tree) ChildCount(n int) int { return len(t.nodes[n].children) }

// Child returns the i-th child of n, or None.
func (t *Tree) Child(n, i int) int {
	ch := t.nodes[n].children
	if i < 0 || i >= len(ch) {
		return None
	}
	return ch[i]
}

// RightmostChild returns the last child of n, or None.
func (t *Tree) RightmostChild(n int) int {
	ch := t.nodes[n].children
	if len(ch) == 0 {
		return None
	}
	return ch[len(ch)-1]
}

// RightmostLeaf follows rightmost-child links from the root down to the
// bottom-right node of the tree. This may be an operator without children.
func (t *Tree) RightmostLeaf() int {
	n := t.Root()
	if n == None {
		return None
	}
	for rc := t.RightmostChild(n); rc != None; rc = t.RightmostChild(n) {
		n = rc
	}
	return n
}

// Up walks hops parent links upwards from n. It returns None if it walks
// past the root.
func (t *Tree) Up(n, hops int) int {
	for ; hops > 0 && n != None; hops-- {
		n = t.nodes[n].parent
	}
	return n
}

// Depth returns the number of edges between the root and n.
func (t *Tree) Depth(n int) int {
	d := 0
	for n = t.nodes[n].parent; n != None; n = t.nodes[n].parent {
		d++
	}
	return d
}

// RightmostPath returns the node ids from the root to the rightmost leaf.
func (t *Tree) RightmostPath() []int {
	n := t.Root()
	if n == None {
		return nil
	}
	path := []int{n}
	for rc := t.RightmostChild(n); rc != None; rc = t.RightmostChild(rc) {
		path = append(path, rc)
	}
	return path
}

// OnRightmostPath is true if n is located on the rightmost path of t.
func (t *Tree) OnRightmostPath(n int) bool {
	for ; n != None; n = t.nodes[n].parent {
		p := t.nodes[n].parent
		if p != None && t.RightmostChild(p) != n {
			return false
		}
	}
	return true
}

// Leaves returns the labels of all leaves in the subtree rooted at n, in preorder.
func (t *Tree) Leaves(n int) []string {
	var labels []string
	t.Walk(n, func(m int) {
		if t.IsLeaf(m) {
			labels = append(labels, t.nodes[m].label)
		}
	})
	return labels
}

// Walk calls f for every node of the subtree rooted at n, in preorder.
func (t *Tree) Walk(n int, f func(int)) {
	f(n)
	for _, ch := range t.nodes[n].children {
		t.Walk(ch, f)
	}
}

// --- Building ----------------------------------------------------------------

// AddOperator appends a new operator node as the rightmost child of parent and
// returns its id. parent must be an operator on the rightmost path, which keeps
// ids in preorder.
func (t *Tree) AddOperator(parent int, op Operator) int {
	assertThat(op != NoOperator, "operator node needs an operator")
	return t.add(parent, node{op: op})
}

// AddLeaf appends a new activity leaf as the rightmost child of parent and
// returns its id. parent must be an operator on the rightmost path.
func (t *Tree) AddLeaf(parent int, label string) int {
	assertThat(label != "", "leaf needs a label")
	return t.add(parent, node{label: label})
}

func (t *Tree) add(parent int, nd node) int {
	assertThat(parent >= 0 && parent < len(t.nodes), "parent %d does not exist", parent)
	assertThat(!t.IsLeaf(parent), "cannot add child to leaf %d", parent)
	assertThat(t.OnRightmostPath(parent), "node %d is not on the rightmost path", parent)
	id := len(t.nodes)
	nd.parent = parent
	nd.sibling = None
	nd.pos = len(t.nodes[parent].children)
	if rc := t.RightmostChild(parent); rc != None {
		t.nodes[rc].sibling = id
	}
	t.nodes = append(t.nodes, nd)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Clone creates a deep copy of t.
func (t *Tree) Clone() *Tree {
	c, _ := t.CloneWithFocus(None)
	return c
}

// CloneWithFocus creates a deep copy of t and returns the copy's counterpart of
// node focus as well. As node ids are preorder ids, the focus id is stable.
func (t *Tree) CloneWithFocus(focus int) (*Tree, int) {
	c := &Tree{nodes: make([]node, len(t.nodes))}
	copy(c.nodes, t.nodes)
	for i := range c.nodes {
		if len(t.nodes[i].children) > 0 {
			c.nodes[i].children = append([]int(nil), t.nodes[i].children...)
		}
	}
	return c, focus
}

// WithInsertedChild creates a new tree, equal to t except for a new childless
// node inserted as child number index of parent. The new node is an operator
// if op != NoOperator, otherwise an activity labeled label.
// Node ids of the new tree are renumbered in preorder.
func (t *Tree) WithInsertedChild(parent, index int, op Operator, label string) *Tree {
	assertThat(!t.IsLeaf(parent), "cannot insert child into leaf %d", parent)
	assertThat(index >= 0 && index <= t.ChildCount(parent), "insert position %d out of range", index)
	ins := &node{op: op, label: label}
	return t.rebuild(func(n int) (skip bool, at int, extra *node) {
		if n == parent {
			return false, index, ins
		}
		return false, 0, nil
	})
}

// WithoutSubtree creates a new tree equal to t without node n and its
// descendants. Node ids of the new tree are renumbered in preorder.
func (t *Tree) WithoutSubtree(n int) *Tree {
	assertThat(n != t.Root(), "cannot remove root")
	return t.rebuild(func(m int) (bool, int, *node) {
		return m == n, 0, nil
	})
}

// rebuild copies t in preorder. edit tells for each source node whether to skip it,
// and optionally a childless node to insert at a child position.
func (t *Tree) rebuild(edit func(int) (bool, int, *node)) *Tree {
	c := &Tree{nodes: make([]node, 0, len(t.nodes)+1)}
	var cp func(src, dstParent int)
	put := func(nd node, dstParent int) int {
		if dstParent == None {
			nd.parent, nd.sibling, nd.children = None, None, nil
			c.nodes = append(c.nodes, nd)
			return 0
		}
		nd.children = nil
		return c.add(dstParent, nd)
	}
	cp = func(src, dstParent int) {
		id := put(node{op: t.nodes[src].op, label: t.nodes[src].label}, dstParent)
		_, at, extra := edit(src)
		for i, ch := range t.nodes[src].children {
			if extra != nil && i == at {
				put(*extra, id)
			}
			if skip, _, _ := edit(ch); skip {
				continue
			}
			cp(ch, id)
		}
		if extra != nil && at == len(t.nodes[src].children) {
			put(*extra, id)
		}
	}
	cp(0, None)
	return c
}

// --- Checks ------------------------------------------------------------------

// StructurallyValid is true if every operator node of t has at least two children.
// Operators with fewer children are intermediate states of pattern growth.
func (t *Tree) StructurallyValid() bool {
	for i := range t.nodes {
		if t.nodes[i].op != NoOperator && len(t.nodes[i].children) < 2 {
			return false
		}
	}
	return true
}

// Check verifies the structural invariants of t: either operator or label set,
// consistent parent, position and right-sibling links, preorder numbering.
// If requireChildren is set, every operator needs at least one child.
func (t *Tree) Check(requireChildren bool) error {
	if t.Size() == 0 {
		return fmt.Errorf("%w: empty tree", ErrInvalidShape)
	}
	next := 0
	var check func(n, parent int) error
	check = func(n, parent int) error {
		if n != next {
			return fmt.Errorf("%w: node %d not in preorder", ErrInvalidShape, n)
		}
		next++
		nd := &t.nodes[n]
		if nd.parent != parent {
			return fmt.Errorf("%w: node %d has dangling parent link", ErrInvalidShape, n)
		}
		if (nd.op == NoOperator) == (nd.label == "") {
			return fmt.Errorf("%w: node %d needs exactly one of operator or label", ErrInvalidShape, n)
		}
		if nd.op == NoOperator && len(nd.children) > 0 {
			return fmt.Errorf("%w: leaf %d has children", ErrInvalidShape, n)
		}
		if requireChildren && nd.op != NoOperator && len(nd.children) == 0 {
			return fmt.Errorf("%w: operator %d without children", ErrInvalidShape, n)
		}
		for i, ch := range nd.children {
			if ch < 0 || ch >= len(t.nodes) {
				return fmt.Errorf("%w: node %d has dangling child link", ErrInvalidShape, n)
			}
			sib := None
			if i+1 < len(nd.children) {
				sib = nd.children[i+1]
			}
			if t.nodes[ch].sibling != sib || t.nodes[ch].pos != i {
				return fmt.Errorf("%w: sibling chain of node %d broken", ErrInvalidShape, n)
			}
			if err := check(ch, n); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(0, None); err != nil {
		return err
	}
	if next != len(t.nodes) {
		return fmt.Errorf("%w: %d unreachable nodes", ErrInvalidShape, len(t.nodes)-next)
	}
	return nil
}
