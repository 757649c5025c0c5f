package mine

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/freq"
	"github.com/npillmayer/treeminer/treebank"
)

// minReportedSize is the size of the smallest reported patterns: an operator with
// two children.
const minReportedSize = 3

// Miner mines one treebank with one request. The treebank and the pruning sets are
// read-only throughout a run.
type Miner struct {
	tb        *treebank.Treebank
	req       Request
	relations *freq.Relations
	ps        *freq.PruningSets
}

// NewMiner validates the request and computes the pruning sets for tb.
func NewMiner(tb *treebank.Treebank, req Request) (*Miner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	assertThat(tb != nil, "miner needs a treebank")
	rel := freq.MineRelations(tb, req.Strategy)
	return &Miner{
		tb:        tb,
		req:       req,
		relations: rel,
		ps:        freq.NewPruningSets(rel, req.MinSupport),
	}, nil
}

// Mine is a shortcut for NewMiner(tb, req) followed by Mine(ctx).
func Mine(ctx context.Context, tb *treebank.Treebank, req Request) (*Results, error) {
	m, err := NewMiner(tb, req)
	if err != nil {
		return nil, err
	}
	return m.Mine(ctx)
}

// PruningSets returns the pruning sets of the run.
func (m *Miner) PruningSets() *freq.PruningSets {
	return m.ps
}

// Mine enumerates all frequent patterns of sizes 3 to the requested maximum size.
//
// The context is checked between size levels and before every validation. If it
// is cancelled, Mine returns the results of all completed levels together with the
// context's error. In mode ClosedMaximalBlanket, flags are set after the last level;
// the flags of a cancelled run are incomplete.
func (m *Miner) Mine(ctx context.Context) (*Results, error) {
	res := newResults(m.req)
	if m.req.MaxSize < minReportedSize {
		return res, nil
	}
	level := m.skeletons()
	tracer().Debugf("mining %d variants: %d skeletons, strategy %s, min support %d",
		m.tb.Len(), len(level), m.req.Strategy, m.req.MinSupport)
	for size := minReportedSize; size <= m.req.MaxSize; size++ {
		if err := ctx.Err(); err != nil {
			tracer().Infof("mining cancelled before size %d", size)
			return res, err
		}
		var err error
		if level, err = m.nextLevel(ctx, level); err != nil {
			return res, err
		}
		if len(level) == 0 {
			break
		}
		res.add(size, level)
		tracer().Debugf("size %d: %d frequent patterns", size, len(level))
	}
	if m.req.Mode == ClosedMaximalBlanket {
		if err := m.mark(ctx, res); err != nil {
			return res, err
		}
	}
	tracer().Infof("mined %d frequent patterns", res.Len())
	return res, nil
}

// skeletons computes the frequent size-2 patterns op(child) directly from the
// child tables of the pruning sets.
func (m *Miner) skeletons() []*Pattern {
	var level []*Pattern
	for _, op := range ctree.Operators {
		for _, l := range m.ps.ChildLabels(op) {
			level = m.keepFrequent(level, skeleton(m.tb, op, ctree.NoOperator, l))
		}
		for _, c := range m.ps.ChildOperators(op) {
			level = m.keepFrequent(level, skeleton(m.tb, op, c, ""))
		}
	}
	return level
}

func (m *Miner) keepFrequent(level []*Pattern, p *Pattern) []*Pattern {
	if p.checkMinSupport(m.req.Strategy, m.tb, m.req.MinSupport) {
		return append(level, p)
	}
	return level
}

// nextLevel extends every pattern of a level by one node and validates the
// candidates, with up to Workers validations running concurrently. Candidates
// share no mutable state, their parents are read-only at this point.
func (m *Miner) nextLevel(ctx context.Context, level []*Pattern) ([]*Pattern, error) {
	var candidates []*Pattern
	for _, p := range level {
		for _, x := range extensions(p, m.ps) {
			candidates = append(candidates, growPattern(p, x))
		}
	}
	frequent := make([]bool, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers())
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			frequent[i] = c.Revalidate(m.tb, m.req.Strategy, m.req.MinSupport)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	next := make([]*Pattern, 0, len(candidates)/4)
	seen := make(map[string]bool)
	for i, c := range candidates {
		if !frequent[i] {
			continue
		}
		assertThat(!seen[c.key], "pattern %s generated twice", c.key)
		seen[c.key] = true
		next = append(next, c)
	}
	sort.Slice(next, func(i, j int) bool { return next[i].key < next[j].key })
	tracer().Debugf("%d of %d candidates frequent", len(next), len(candidates))
	return next, nil
}

// mark sets the closed and maximal flags of all patterns, once every size level
// is mined. Structurally valid patterns first announce themselves at their
// cores, then the levels are marked.
func (m *Miner) mark(ctx context.Context, res *Results) error {
	all := res.All()
	coreKeys := make([][]string, len(all))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers())
	for i, q := range all {
		if !q.StructurallyValid() {
			continue
		}
		i, q := i, q
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			coreKeys[i] = cores(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	above := make(supertrees)
	for i, q := range all {
		above.announce(q, coreKeys[i])
	}
	for _, k := range res.Sizes() {
		if err := m.markLevel(ctx, res.OfSize(k), above); err != nil {
			return err
		}
	}
	tracer().Debugf("%d closed, %d maximal patterns", len(res.Closed()), len(res.Maximal()))
	return nil
}

// markLevel sets the closed and maximal flags of the patterns of a level.
func (m *Miner) markLevel(ctx context.Context, level []*Pattern, above supertrees) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers())
	for _, p := range level {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m.markClosedMaximal(p, above)
			return nil
		})
	}
	return g.Wait()
}

func (m *Miner) workers() int {
	if m.req.Workers < 1 {
		return 1
	}
	return m.req.Workers
}

// --- Results -----------------------------------------------------------------

// Results holds the frequent patterns of a mining run, grouped by size.
type Results struct {
	Request Request
	bySize  map[int][]*Pattern
	byKey   map[string]*Pattern
}

func newResults(req Request) *Results {
	return &Results{
		Request: req,
		bySize:  make(map[int][]*Pattern),
		byKey:   make(map[string]*Pattern),
	}
}

func (r *Results) add(size int, level []*Pattern) {
	r.bySize[size] = level
	for _, p := range level {
		r.byKey[p.key] = p
	}
}

// Sizes returns the pattern sizes with at least one frequent pattern, ascending.
func (r *Results) Sizes() []int {
	sizes := make([]int, 0, len(r.bySize))
	for k := range r.bySize {
		sizes = append(sizes, k)
	}
	sort.Ints(sizes)
	return sizes
}

// OfSize returns the patterns of size k, ordered by key.
func (r *Results) OfSize(k int) []*Pattern {
	return r.bySize[k]
}

// Count returns the number of patterns of size k.
func (r *Results) Count(k int) int {
	return len(r.bySize[k])
}

// Len returns the total number of patterns.
func (r *Results) Len() int {
	return len(r.byKey)
}

// Get finds a pattern by its canonical string.
func (r *Results) Get(key string) (*Pattern, bool) {
	p, ok := r.byKey[key]
	return p, ok
}

// All returns all patterns, by size and key.
func (r *Results) All() []*Pattern {
	all := make([]*Pattern, 0, r.Len())
	for _, k := range r.Sizes() {
		all = append(all, r.bySize[k]...)
	}
	return all
}

// Closed returns the patterns flagged closed.
func (r *Results) Closed() []*Pattern {
	return r.filter(func(p *Pattern) bool { return p.closed })
}

// Maximal returns the patterns flagged maximal.
func (r *Results) Maximal() []*Pattern {
	return r.filter(func(p *Pattern) bool { return p.maximal })
}

func (r *Results) filter(pred func(*Pattern) bool) []*Pattern {
	var out []*Pattern
	for _, p := range r.All() {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
