package mine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/freq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two variants sharing →(A,B), each continued by a different concurrent pair.
var branchingVariants = []variant{
	{"→(A,B,∧(C,D))", 2},
	{"→(A,B,∧(E,F))", 2},
}

var wideVariants = []variant{
	{"∧(A,B,C,D)", 1},
	{"∧(A,C,D)", 1},
	{"→(∧(A,B),C,D)", 2},
	{"→(C,D,∧(A,B))", 1},
}

func flagsOf(p *Pattern) Flags {
	return Flags{Closed: p.Closed(), Maximal: p.Maximal()}
}

func TestBlanketDirectionsUnordered(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	//
	tb := makeTreebank(t, []variant{{"∧(A,B,C,D)", 1}})
	res := mine(t, tb, Request{MinSupport: 1, Strategy: freq.TraceTransaction, MaxSize: 5})
	p, ok := res.Get("∧(A,C)")
	require.True(t, ok)
	bc := newBlanketContext(p, tb, res.Request)
	assert.Equal(t, candidateSet{{at: 0, dir: Right, label: "D"}: {}}, bc.blanket(byOccurrence))
	left, anywhere := bc.occurrenceBlanket()
	assert.False(t, left)
	assert.True(t, anywhere)
	//
	q, ok := res.Get("∧(A,D)")
	require.True(t, ok)
	bc = newBlanketContext(q, tb, res.Request)
	_, anywhere = bc.occurrenceBlanket()
	assert.False(t, anywhere, "nothing follows D")
	assert.False(t, bc.rootOccurrenceBlanket())
	assert.False(t, bc.transactionBlanket())
}

func TestBlanketDirectionsOrdered(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	//
	tb := makeTreebank(t, []variant{{"→(A,B,C,D)", 1}})
	res := mine(t, tb, Request{MinSupport: 1, Strategy: freq.TraceTransaction, MaxSize: 5})
	p, ok := res.Get("→(B,C)")
	require.True(t, ok)
	bc := newBlanketContext(p, tb, res.Request)
	assert.Equal(t, candidateSet{
		{at: 0, dir: Left, label: "A"}:  {},
		{at: 0, dir: Right, label: "D"}: {},
	}, bc.blanket(byOccurrence))
	left, _ := bc.occurrenceBlanket()
	assert.True(t, left)
}

func TestBlanketsOfferLeavesOnly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	//
	tb := makeTreebank(t, branchingVariants)
	res := mine(t, tb, Request{MinSupport: 3, Strategy: freq.TraceTransaction, MaxSize: 8})
	p, ok := res.Get("→(A,B)")
	require.True(t, ok)
	bc := newBlanketContext(p, tb, res.Request)
	assert.Empty(t, bc.blanket(byTree), "∧ following B is an operator")
}

func TestBlanketsBeyondMaxSizeAreIgnored(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	//
	tb := makeTreebank(t, []variant{{"∧(A,B,C,D)", 1}})
	res := mine(t, tb, Request{MinSupport: 1, Strategy: freq.TraceTransaction, MaxSize: 5})
	p, ok := res.Get("∧(A,C)")
	require.True(t, ok)
	req := res.Request
	req.MaxSize = p.Size()
	bc := newBlanketContext(p, tb, req)
	assert.Empty(t, bc.blanket(byOccurrence))
	assert.False(t, bc.isValid(candidate{at: 0, dir: Right, label: "D"}))
}

func TestBottomBlanketsAreNotImplemented(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	tb := makeTreebank(t, []variant{{"→(A,∧(B,C))", 2}})
	res := mine(t, tb, Request{MinSupport: 1, Strategy: freq.TraceTransaction, MaxSize: 4,
		Mode: ClosedMaximalBlanket})
	p, ok := res.Get("→(A,∧())")
	require.True(t, ok)
	assert.False(t, p.Closed())
	assert.False(t, p.Maximal())
	assert.Panics(t, func() { newBlanketContext(p, tb, res.Request) })
}

func TestClosedMaximalSmallTreebank(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	tb := makeTreebank(t, smallVariants)
	res := mine(t, tb, Request{MinSupport: 2, Strategy: freq.TraceTransaction, MaxSize: 8,
		Mode: ClosedMaximalBlanket})
	expected := map[string]Flags{
		"→(H,∧(G,→(B,C)))": {Closed: true, Maximal: true},
		"→(B,C)":           {Closed: true, Maximal: true},
		"→(A,B)":           {Closed: true, Maximal: true},
		"∧(G,→(B,C))":      {Closed: true, Maximal: true},
		"∧(G,→(B))":        {Closed: false, Maximal: false},
		"→(H,∧(G,→(B)))":   {Closed: false, Maximal: false},
		"→(H,∧())":         {Closed: false, Maximal: false},
	}
	for key, f := range expected {
		p, ok := res.Get(key)
		require.True(t, ok, "pattern %s not found", key)
		assert.Equal(t, f, flagsOf(p), key)
	}
	for _, p := range res.Maximal() {
		assert.True(t, p.Closed(), "maximal pattern %s must be closed", p.Key())
	}
}

// A childless operator following a pattern is no supertree of it. Only the
// completed operator is.
func TestClosedMaximalIgnoresChildlessOperators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	tb := makeTreebank(t, branchingVariants)
	cases := []struct {
		minSup int
		flags  map[string]Flags
	}{
		{3, map[string]Flags{
			"→(A,B)":     {Closed: true, Maximal: true},
			"→(A,B,∧())": {Closed: false, Maximal: false},
			"→(B,∧())":   {Closed: false, Maximal: false},
		}},
		{2, map[string]Flags{
			"→(A,B)":        {Closed: true, Maximal: false},
			"→(A,B,∧(C,D))": {Closed: true, Maximal: true},
			"→(A,B,∧(E,F))": {Closed: true, Maximal: true},
			"→(B,∧(C,D))":   {Closed: false, Maximal: false},
			"∧(C,D)":        {Closed: true, Maximal: true},
		}},
	}
	for _, c := range cases {
		req := Request{MinSupport: c.minSup, Strategy: freq.TraceTransaction, MaxSize: 8,
			Mode: ClosedMaximalBlanket}
		res := mine(t, tb, req)
		structural := MarkStructural(res)
		for key, f := range c.flags {
			p, ok := res.Get(key)
			require.True(t, ok, "min support %d: pattern %s not found", c.minSup, key)
			assert.Equal(t, f, flagsOf(p), "min support %d: %s", c.minSup, key)
			assert.Equal(t, f, structural[key], "min support %d: structural %s", c.minSup, key)
		}
		p, _ := res.Get("→(A,B)")
		assert.Equal(t, 4, p.Support())
		_, ok := res.Get("→(A,B,∧(C))")
		assert.Equal(t, c.minSup == 2, ok)
		assert.NotEmpty(t, res.Maximal(), "min support %d", c.minSup)
	}
}

func TestClosedMaximalSubtreesOffTheRightmostPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	tb := makeTreebank(t, wideVariants)
	res := mine(t, tb, Request{MinSupport: 2, Strategy: freq.TraceTransaction, MaxSize: 7,
		Mode: ClosedMaximalBlanket})
	expected := map[string]Flags{
		"∧(A,D)":        {Closed: false, Maximal: false}, // C between A and D
		"∧(A,C,D)":      {Closed: true, Maximal: true},
		"→(C,D)":        {Closed: true, Maximal: false}, // ∧(A,B) before C
		"→(∧(A,B),C)":   {Closed: false, Maximal: false},
		"→(∧(A,B),C,D)": {Closed: true, Maximal: true},
	}
	for key, f := range expected {
		p, ok := res.Get(key)
		require.True(t, ok, "pattern %s not found", key)
		assert.Equal(t, f, flagsOf(p), key)
	}
	p, _ := res.Get("→(C,D)")
	assert.Equal(t, 3, p.Support())
	_, ok := res.Get("→(C,D,∧(A,B))")
	assert.False(t, ok)
}

func TestClosedMaximalAtMaxSize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	tb := makeTreebank(t, smallVariants)
	res := mine(t, tb, Request{MinSupport: 2, Strategy: freq.TraceTransaction, MaxSize: 4,
		Mode: ClosedMaximalBlanket})
	p, ok := res.Get("∧(G,→(B))")
	require.True(t, ok)
	assert.False(t, p.Closed(), "∧(G,→(B)) has an operator with a single child")
	q, ok := res.Get("→(H,∧(G))")
	require.True(t, ok)
	assert.False(t, q.Maximal())
	for _, p := range res.OfSize(4) {
		assert.Equal(t, p.StructurallyValid(), p.Closed(), p.Key())
		assert.Equal(t, p.StructurallyValid(), p.Maximal(), p.Key())
	}
}

// Many equal siblings offer many embeddings per occurrence. Marking has to stay
// proportional to the occurrences.
func TestClosedMaximalWideConcurrency(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	wide := "∧(" + strings.TrimSuffix(strings.Repeat("A,", 22), ",") + ")"
	tb := makeTreebank(t, []variant{{wide, 2}})
	req := Request{MinSupport: 2, Strategy: freq.TraceTransaction, MaxSize: 12}
	plain := mine(t, tb, req)
	require.Equal(t, 10, plain.Len())
	req.Mode = ClosedMaximalBlanket
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := Mine(ctx, tb, req)
	require.NoError(t, err)
	assert.Equal(t, keys(plain), keys(res))
	for _, p := range res.All() {
		atMax := p.Size() == 12
		assert.Equal(t, atMax, p.Closed(), p.Key())
		assert.Equal(t, atMax, p.Maximal(), p.Key())
	}
}

// Blanket flags must agree with the structural baseline and with a pairwise
// comparison of all patterns by containment.
func TestClosedMaximalAgreesWithStructuralBaseline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.mine")
	defer teardown()
	tracer().SetTraceLevel(tracing.LevelError)
	//
	banks := map[string][]variant{
		"small":      smallVariants,
		"duplicates": duplicateVariants,
		"loops":      loopVariants,
		"branching":  branchingVariants,
		"wide":       wideVariants,
	}
	for name, vs := range banks {
		tb := makeTreebank(t, vs)
		for _, s := range []freq.Strategy{freq.TraceTransaction, freq.TraceOccurrence,
			freq.VariantTransaction, freq.VariantOccurrence} {
			for _, minSup := range []int{1, 2} {
				for _, maxSize := range []int{5, 7} {
					label := fmt.Sprintf("%s/%s/minsup=%d/maxsize=%d", name, s, minSup, maxSize)
					req := Request{MinSupport: minSup, Strategy: s, MaxSize: maxSize, Mode: ClosedMaximalBlanket}
					res, err := Mine(context.Background(), tb, req)
					require.NoError(t, err, label)
					structural := MarkStructural(res)
					require.Len(t, structural, res.Len(), label)
					pairwise := markByContainment(res)
					valid := false
					for _, p := range res.All() {
						valid = valid || p.StructurallyValid()
						assert.Equal(t, structural[p.Key()], flagsOf(p), "%s: %s", label, p.Key())
						assert.Equal(t, pairwise[p.Key()], flagsOf(p), "%s: pairwise %s", label, p.Key())
					}
					if valid {
						assert.NotEmpty(t, res.Maximal(), label)
					}
				}
			}
		}
	}
}

// markByContainment compares every pair of structurally valid patterns: p is not
// maximal if a larger one contains it with the same root, and not closed if that
// one has the support of p.
func markByContainment(res *Results) map[string]Flags {
	flags := make(map[string]Flags, res.Len())
	all := res.All()
	for _, p := range all {
		sv := p.StructurallyValid()
		f := Flags{Closed: sv, Maximal: sv}
		for _, q := range all {
			if !sv || !q.StructurallyValid() || q.Size() <= p.Size() {
				continue
			}
			if len(embed(p.tree, q.tree, q.tree.Root())) == 0 {
				continue
			}
			f.Maximal = false
			if q.support == p.support {
				f.Closed = false
			}
		}
		flags[p.key] = f
	}
	return flags
}

// --- Embeddings --------------------------------------------------------------

// embed enumerates all embeddings of pattern tree pt into t with the pattern root
// mapped to anchor. Pattern nodes are assigned in preorder, so a node's parent and
// left sibling are always mapped before the node itself.
func embed(pt, t *ctree.Tree, anchor int) [][]int {
	if !matchesNode(t, anchor, pt.Op(0), pt.Label(0)) {
		return nil
	}
	e := &embedder{pt: pt, t: t, emb: make([]int, pt.Size())}
	e.emb[0] = anchor
	e.extend(1)
	return e.out
}

type embedder struct {
	pt, t *ctree.Tree
	emb   []int
	out   [][]int
}

func (e *embedder) extend(i int) {
	if i == e.pt.Size() {
		e.out = append(e.out, append([]int(nil), e.emb...))
		return
	}
	pp := e.pt.Parent(i)
	children := e.t.Children(e.emb[pp])
	from, to := 0, len(children)
	if pos := e.pt.Position(i); pos > 0 {
		prev := e.emb[e.pt.Child(pp, pos-1)]
		from = e.t.Position(prev) + 1
		if e.pt.Op(pp).Ordered() {
			to = min(from+1, to)
		}
	}
	for j := from; j < to; j++ {
		c := children[j]
		if matchesNode(e.t, c, e.pt.Op(i), e.pt.Label(i)) {
			e.emb[i] = c
			e.extend(i + 1)
		}
	}
}
