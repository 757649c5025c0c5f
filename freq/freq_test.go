package freq

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/treebank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallTreebank(t *testing.T) *treebank.Treebank {
	b := treebank.NewBuilder()
	for _, v := range []struct {
		tree   string
		weight int
	}{
		{"→(A,B)", 2},
		{"→(H,∧(G,→(B,C)))", 2},
		{"→(H,∧(G,→(B,C)),K)", 1},
		{"∧(→(A,B),→(A,B))", 1},
	} {
		b.AddTree(ctree.MustParse(v.tree), v.weight)
	}
	tb, err := b.Build()
	require.NoError(t, err)
	return tb
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{TraceTransaction, TraceOccurrence, VariantTransaction, VariantOccurrence} {
		p, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, p)
	}
	p, err := ParseStrategy("Trace_Occurrence")
	require.NoError(t, err)
	assert.Equal(t, TraceOccurrence, p)
	_, err = ParseStrategy("sometimes")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestContribution(t *testing.T) {
	assert.Equal(t, 3, TraceTransaction.Contribution(3, 2))
	assert.Equal(t, 6, TraceOccurrence.Contribution(3, 2))
	assert.Equal(t, 1, VariantTransaction.Contribution(3, 2))
	assert.Equal(t, 2, VariantOccurrence.Contribution(3, 2))
	assert.Equal(t, 0, TraceOccurrence.Contribution(3, 0))
}

func TestRelationWeightsPerStrategy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.freq")
	defer teardown()
	//
	tb := smallTreebank(t)
	ab := Pair{"A", "B"}
	expected := map[Strategy]int{
		TraceTransaction:   3,
		TraceOccurrence:    4,
		VariantTransaction: 2,
		VariantOccurrence:  3,
	}
	for s, w := range expected {
		rel := MineRelations(tb, s)
		assert.Equal(t, w, rel.DirectlyFollows[ab], "strategy %s", s)
	}
	rel := MineRelations(tb, TraceTransaction)
	assert.Equal(t, 3, rel.DirectlyFollows[Pair{"B", "C"}])
	assert.Equal(t, 1, rel.DirectlyFollows[Pair{"G", "K"}])
	assert.Equal(t, 1, rel.DirectlyFollows[Pair{"C", "K"}])
	assert.Equal(t, 0, rel.DirectlyFollows[Pair{"B", "K"}])
	assert.Equal(t, 1, rel.EventuallyFollows[Pair{"B", "K"}])
	assert.Equal(t, 1, rel.EventuallyFollows[Pair{"H", "K"}])
	assert.Empty(t, rel.Concurrent)
	assert.Equal(t, 6, rel.Children[ChildKey{Parent: ctree.Sequential, Label: "B"}])
	assert.Equal(t, 4, rel.Children[ChildKey{Parent: ctree.Concurrent, Op: ctree.Sequential}])
}

func TestConcurrentPairsAreSymmetric(t *testing.T) {
	tb, err := treebank.NewBuilder().
		AddTree(ctree.MustParse("∧(A,A,B)"), 2).
		AddTree(ctree.MustParse("✕(B,C)"), 1).
		Build()
	require.NoError(t, err)
	rel := MineRelations(tb, TraceOccurrence)
	assert.Equal(t, 2, rel.Concurrent[Pair{"A", "B"}])
	assert.Equal(t, 2, rel.Concurrent[Pair{"B", "A"}])
	assert.Equal(t, 2, rel.Concurrent[Pair{"A", "A"}])
	assert.Equal(t, 1, rel.Concurrent[Pair{"C", "B"}])
}

func TestPruningSets(t *testing.T) {
	tb := smallTreebank(t)
	ps := NewPruningSets(MineRelations(tb, TraceTransaction), 2)
	assert.True(t, ps.DirectlyFollows("A", "B"))
	assert.True(t, ps.DirectlyFollows("B", "C"))
	assert.False(t, ps.DirectlyFollows("G", "K"))
	assert.False(t, ps.EventuallyFollows("H", "K"))
	assert.Equal(t, []string{"A", "B", "C", "H"}, ps.ChildLabels(ctree.Sequential))
	assert.Equal(t, []string{"G"}, ps.ChildLabels(ctree.Concurrent))
	assert.Equal(t, []ctree.Operator{ctree.Concurrent}, ps.ChildOperators(ctree.Sequential))
	assert.Equal(t, []ctree.Operator{ctree.Sequential}, ps.ChildOperators(ctree.Concurrent))
	assert.Empty(t, ps.ChildLabels(ctree.Loop))
}

func TestSupport(t *testing.T) {
	tb := smallTreebank(t)
	occ := map[int]int{0: 1, 3: 2}
	assert.Equal(t, 3, Support(TraceTransaction, tb, occ))
	assert.Equal(t, 4, Support(TraceOccurrence, tb, occ))
	assert.Equal(t, 2, Support(VariantTransaction, tb, occ))
	assert.Equal(t, 3, Support(VariantOccurrence, tb, occ))
}
