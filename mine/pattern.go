package mine

import (
	"fmt"
	"sort"

	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/freq"
	"github.com/npillmayer/treeminer/treebank"
)

// Occurrence is a place in a treebank tree where a pattern matches.
type Occurrence struct {
	Anchor int // node id of the image of the pattern root
	Node   int // node id of the image of the pattern's rightmost node
}

// Occurrences maps tree ids to the occurrences of a pattern in that tree, sorted by
// anchor and node, without duplicates.
type Occurrences map[int][]Occurrence

// TreeIDs returns the ids of trees with at least one occurrence, in ascending order.
func (occ Occurrences) TreeIDs() []int {
	ids := make([]int, 0, len(occ))
	for id := range occ {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// RootOccurrences returns, per tree, the number of distinct anchors.
func (occ Occurrences) RootOccurrences() map[int]int {
	counts := make(map[int]int, len(occ))
	for id, list := range occ {
		counts[id] = countAnchors(list)
	}
	return counts
}

// Anchors returns the distinct anchors of the occurrences in one tree.
func (occ Occurrences) Anchors(treeID int) []int {
	var anchors []int
	for i, o := range occ[treeID] {
		if i == 0 || o.Anchor != occ[treeID][i-1].Anchor {
			anchors = append(anchors, o.Anchor)
		}
	}
	return anchors
}

func countAnchors(list []Occurrence) int {
	n := 0
	for i, o := range list {
		if i == 0 || o.Anchor != list[i-1].Anchor {
			n++
		}
	}
	return n
}

// normalize sorts a list of occurrences and removes duplicates.
func normalize(list []Occurrence) []Occurrence {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Anchor != list[j].Anchor {
			return list[i].Anchor < list[j].Anchor
		}
		return list[i].Node < list[j].Node
	})
	out := list[:0]
	for i, o := range list {
		if i == 0 || o != list[i-1] {
			out = append(out, o)
		}
	}
	return out
}

// --- Patterns ----------------------------------------------------------------

// Pattern is a candidate or frequent subtree pattern. It owns its pattern tree;
// growing a pattern copies the tree, so patterns never share mutable structure.
//
// The support of a pattern is valid only after successful validation. Patterns
// handed out in Results are always validated.
type Pattern struct {
	tree       *ctree.Tree
	rml        int // rightmost node, the last node added
	heightDiff int // hops from the parent's rightmost node up to the new node's parent
	support    int
	closed     bool
	maximal    bool
	parent     *Pattern
	rmo        Occurrences
	key        string
}

func newPattern(tree *ctree.Tree, rml, heightDiff int, parent *Pattern) *Pattern {
	return &Pattern{
		tree:       tree,
		rml:        rml,
		heightDiff: heightDiff,
		parent:     parent,
		key:        tree.Key(),
	}
}

func (p *Pattern) String() string {
	return fmt.Sprintf("(Pattern %s sup=%d)", p.key, p.support)
}

// Key returns the canonical string of the pattern tree.
func (p *Pattern) Key() string { return p.key }

// Size returns the number of nodes of the pattern.
func (p *Pattern) Size() int { return p.tree.Size() }

// Support returns the support of a validated pattern.
func (p *Pattern) Support() int { return p.support }

// Closed is true for closed patterns, if mined in mode ClosedMaximalBlanket.
func (p *Pattern) Closed() bool { return p.closed }

// Maximal is true for maximal patterns, if mined in mode ClosedMaximalBlanket.
func (p *Pattern) Maximal() bool { return p.maximal }

// Parent returns the pattern p has been grown from. Parents of the smallest
// reported patterns are internal skeletons of size 2.
func (p *Pattern) Parent() *Pattern { return p.parent }

// Tree returns the pattern tree. Clients must not modify it.
func (p *Pattern) Tree() *ctree.Tree { return p.tree }

// Occurrences returns the occurrence index of the pattern. Clients must not modify it.
func (p *Pattern) Occurrences() Occurrences { return p.rmo }

// StructurallyValid is true if every operator of the pattern has at least two children.
func (p *Pattern) StructurallyValid() bool { return p.tree.StructurallyValid() }

// Nested converts the pattern to the nested representation clients use.
func (p *Pattern) Nested() ctree.Nested { return p.tree.Nested(p.tree.Root()) }

// Print returns an indented rendering of the pattern tree.
func (p *Pattern) Print() string {
	return fmt.Sprintf("%s (support %d)\n%s", p.key, p.support, p.tree.Print())
}

// checkMinSupport computes and stores the support of p from its occurrences.
func (p *Pattern) checkMinSupport(s freq.Strategy, tb *treebank.Treebank, minSup int) bool {
	p.support = freq.Support(s, tb, p.rmo.RootOccurrences())
	return p.support >= minSup
}
