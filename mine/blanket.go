package mine

import (
	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/treebank"
)

/*
Blankets

A pattern p is not maximal if a structurally valid frequent pattern q exists such
that q minus a single leaf or a single subtree is p. If such a q has the support
of p, p is not closed either. Childless operators are search artifacts and never
make up such a q.

The blankets of p are candidate leaves which the treebank offers next to the
matched children of p's rightmost path. An occurrence of p knows the images of
its rightmost path only: the image of the rightmost leaf and its ancestors up to
the anchor. From these, the candidates of one occurrence are

    Left     the child before the first matched child of a Sequential or Loop
             node (children of ordered nodes match consecutively, so its
             position follows from the image of the rightmost child)
    Right    the child after the last matched child of a Sequential or Loop
             node, and every child after it for unordered nodes
    Between  strictly between two matched children (unused)
    Bottom   below a childless operator (unused)

The candidate sets of groups of occurrences are united and intersected across
groups. Blankets come in three strengths:

    occurrence blanket       offered by every occurrence of p
    root occurrence blanket  offered at every anchor of p
    transaction blanket      offered in every tree containing p

An occurrence or root occurrence blanket has the support of p under every
strategy, a transaction blanket under the transaction strategies. Either one
proves p neither closed nor maximal.

Extensions which no blanket covers, i.e. subtrees or leaves off the rightmost
path, are decided by the supertrees of p among the mined patterns. Every
structurally valid pattern announces its support at each of its cores (see
cores), and the best announcement for p is p's frequency blanket.
*/

// Direction is a position relative to the matched children of a pattern node.
type Direction uint8

// Directions of blanket extensions.
const (
	Left Direction = iota
	Right
	Between
	Bottom
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Between:
		return "between"
	case Bottom:
		return "bottom"
	}
	return "?"
}

// candidate is a leaf offered next to the matched children of a pattern node.
type candidate struct {
	at    int // pattern node
	dir   Direction
	label string
}

type candidateSet map[candidate]struct{}

// retain removes every candidate of cs which other lacks.
func (cs candidateSet) retain(other candidateSet) {
	for c := range cs {
		if _, ok := other[c]; !ok {
			delete(cs, c)
		}
	}
}

// rightBlanket is the boundary of a pattern towards the treebank: the operator
// nodes of its rightmost path, root first.
type rightBlanket struct {
	pt   *ctree.Tree
	path []int
	rml  int // depth of the rightmost leaf
}

func newRightBlanket(pt *ctree.Tree) rightBlanket {
	path := pt.RightmostPath()
	rml := len(path) - 1
	assertThat(rml > 0, "pattern %s has no rightmost path", pt.Key())
	if !pt.IsLeaf(path[rml]) {
		assertThat(false, "bottom blanket expansion of %s not implemented", pt.Key())
	}
	return rightBlanket{pt: pt, path: path, rml: rml}
}

// offered adds the candidates of one occurrence in t to cs.
func (rb rightBlanket) offered(t *ctree.Tree, o Occurrence, cs candidateSet) {
	add := func(v int, dir Direction, c int) {
		if t.IsLeaf(c) {
			cs[candidate{at: v, dir: dir, label: t.Label(c)}] = struct{}{}
		}
	}
	for i, v := range rb.path[:rb.rml] {
		n := rb.pt.ChildCount(v)
		w := t.Up(o.Node, rb.rml-i)
		last := t.Position(t.Up(o.Node, rb.rml-i-1))
		ic := t.Children(w)
		if rb.pt.Op(v).Ordered() {
			if first := last - n + 1; first > 0 {
				add(v, Left, ic[first-1])
			}
			if last+1 < len(ic) {
				add(v, Right, ic[last+1])
			}
			continue
		}
		for _, c := range ic[last+1:] {
			add(v, Right, c)
		}
	}
}

// grouping tells which occurrences of a pattern unite their candidates.
type grouping uint8

const (
	byOccurrence grouping = iota
	byAnchor
	byTree
)

// blanketContext computes the blankets of one pattern.
type blanketContext struct {
	p       *Pattern
	tb      *treebank.Treebank
	maxSize int
	rb      rightBlanket
	valid   map[candidate]bool
}

func newBlanketContext(p *Pattern, tb *treebank.Treebank, req Request) *blanketContext {
	return &blanketContext{
		p:       p,
		tb:      tb,
		maxSize: req.MaxSize,
		rb:      newRightBlanket(p.tree),
		valid:   make(map[candidate]bool),
	}
}

// blanket unites the candidates within each group of occurrences and intersects
// the groups. It stops as soon as the intersection is empty.
func (bc *blanketContext) blanket(g grouping) candidateSet {
	var acc candidateSet
	fold := func(cs candidateSet) bool {
		if acc == nil {
			acc = cs
		} else {
			acc.retain(cs)
		}
		return len(acc) > 0
	}
	for _, id := range bc.p.rmo.TreeIDs() {
		t := bc.tb.Tree(id)
		occs := bc.p.rmo[id]
		for i := 0; i < len(occs); {
			j := i + 1
			switch g {
			case byAnchor:
				for j < len(occs) && occs[j].Anchor == occs[i].Anchor {
					j++
				}
			case byTree:
				j = len(occs)
			}
			cs := make(candidateSet)
			for _, o := range occs[i:j] {
				bc.rb.offered(t, o, cs)
			}
			if !fold(cs) {
				return nil
			}
			i = j
		}
	}
	for c := range acc {
		if !bc.isValid(c) {
			delete(acc, c)
		}
	}
	return acc
}

// isValid is true if adding c to the pattern yields a pattern within the search
// space.
func (bc *blanketContext) isValid(c candidate) bool {
	if ok, seen := bc.valid[c]; seen {
		return ok
	}
	pt := bc.p.tree
	index := 0
	if c.dir == Right {
		index = pt.ChildCount(c.at)
	}
	ok := inSpace(pt.WithInsertedChild(c.at, index, ctree.NoOperator, c.label), bc.maxSize)
	bc.valid[c] = ok
	return ok
}

// occurrenceBlanket reports whether some valid candidate is offered by every
// occurrence, at the left border of a matched child sequence and anywhere,
// respectively.
func (bc *blanketContext) occurrenceBlanket() (left, anywhere bool) {
	for c := range bc.blanket(byOccurrence) {
		anywhere = true
		if c.dir == Left {
			left = true
		}
	}
	return
}

// rootOccurrenceBlanket reports whether some valid candidate is offered at every
// anchor.
func (bc *blanketContext) rootOccurrenceBlanket() bool {
	return len(bc.blanket(byAnchor)) > 0
}

// transactionBlanket reports whether some valid candidate is offered in every tree.
func (bc *blanketContext) transactionBlanket() bool {
	return len(bc.blanket(byTree)) > 0
}

// --- Supertrees --------------------------------------------------------------

// supertrees maps the key of a pattern p to the best support of a structurally
// valid pattern q, such that p is a core of q.
type supertrees map[string]int

// announce records q at its cores.
func (st supertrees) announce(q *Pattern, coreKeys []string) {
	for _, key := range coreKeys {
		if sup, ok := st[key]; !ok || q.support > sup {
			st[key] = q.support
		}
	}
}

// frequencyBlanket returns the best support of a frequent structurally valid
// supertree of p, if there is one.
func (st supertrees) frequencyBlanket(p *Pattern) (int, bool) {
	sup, ok := st[p.key]
	return sup, ok
}

// --- Marking -----------------------------------------------------------------

// markClosedMaximal sets the closed and maximal flags of a validated pattern.
// above holds the announcements of all mined patterns.
func (m *Miner) markClosedMaximal(p *Pattern, above supertrees) {
	p.closed, p.maximal = false, false
	if !p.StructurallyValid() {
		return
	}
	if p.Size() >= m.req.MaxSize {
		p.closed, p.maximal = true, true
		return
	}
	bc := newBlanketContext(p, m.tb, m.req)
	if left, anywhere := bc.occurrenceBlanket(); left || anywhere {
		return
	}
	if bc.rootOccurrenceBlanket() {
		return
	}
	if !m.req.Strategy.IsOccurrence() && bc.transactionBlanket() {
		return
	}
	sup, ok := above.frequencyBlanket(p)
	p.closed = !ok || sup < p.support
	p.maximal = !ok
}

// --- Search space ------------------------------------------------------------

// inSpace is true for trees which pattern growth is able to generate: an operator
// root, canonical unordered children (sorted activities followed by at most one
// operator), operator nesting as permitted, at least two children for every
// operator off the rightmost path, and no more than maxSize nodes.
func inSpace(q *ctree.Tree, maxSize int) bool {
	if q.Size() > maxSize || q.IsLeaf(q.Root()) {
		return false
	}
	for n := 0; n < q.Size(); n++ {
		if q.IsLeaf(n) {
			continue
		}
		children := q.Children(n)
		if len(children) < 2 && !q.OnRightmostPath(n) {
			return false
		}
		opSeen, last := false, ""
		for _, c := range children {
			if !q.IsLeaf(c) {
				if !ctree.MayNest(q.Op(n), q.Op(c)) {
					return false
				}
				if q.Op(n).Unordered() && opSeen {
					return false
				}
				opSeen = true
				continue
			}
			if q.Op(n).Unordered() {
				if opSeen || q.Label(c) < last {
					return false
				}
				last = q.Label(c)
			}
		}
	}
	return true
}
