package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/treeminer/freq"
	"github.com/npillmayer/treeminer/mine"
	"github.com/npillmayer/treeminer/treebank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.config")
	defer teardown()
	//
	r, err := ReadRequest(strings.NewReader("min_support: 3\nstrategy: variant-occurrence\nmode: cm\n"))
	require.NoError(t, err)
	req, err := r.MiningRequest()
	require.NoError(t, err)
	assert.Equal(t, mine.Request{
		MinSupport: 3,
		Strategy:   freq.VariantOccurrence,
		MaxSize:    6,
		Mode:       mine.ClosedMaximalBlanket,
		Workers:    1,
	}, req)
}

func TestEmptyRequestIsDefault(t *testing.T) {
	r, err := ReadRequest(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultRequest(), r)
	_, err = r.MiningRequest()
	assert.NoError(t, err)
}

func TestInvalidRequests(t *testing.T) {
	_, err := ReadRequest(strings.NewReader("min_suport: 3\n"))
	assert.ErrorIs(t, err, ErrInvalidRequest, "unknown key")
	for _, in := range []string{
		"min_support: 0",
		"strategy: mostly",
		"mode: greedy",
		"max_size: -4",
	} {
		r, err := ReadRequest(strings.NewReader(in))
		require.NoError(t, err, in)
		_, err = r.MiningRequest()
		assert.ErrorIs(t, err, ErrInvalidRequest, in)
	}
	_, err = LoadRequest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

const treebankYAML = `
- variant: "→(A,∧(C,B))"
  weight: 2
  traces: [t1, t2]
- variant: "→(A,∧(B,C))"
  weight: 1
- variant: "✕(X,Y)"
  weight: 4
`

func TestLoadTreebank(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "treeminer.config")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "treebank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(treebankYAML), 0644))
	tb, err := LoadTreebank(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, 7, tb.TotalWeight())
	e, ok := tb.Entry(0)
	require.True(t, ok)
	assert.Equal(t, "→(A,∧(B,C))", e.Key())
	assert.Equal(t, 3, e.Weight)
	assert.Equal(t, []string{"t1", "t2"}, e.Traces)
}

func TestMalformedTreebanks(t *testing.T) {
	for _, in := range []string{
		"- variant: \"→(A,\"\n  weight: 1\n",
		"- variant: \"→(A,B)\"\n  weight: 0\n",
		"- variant: \"A\"\n  weight: 1\n",
		"- variant: \"→(A,B)\"\n  wieght: 1\n",
	} {
		tf, err := ReadTreebank(strings.NewReader(in))
		if err == nil {
			_, err = tf.Treebank()
		}
		assert.ErrorIs(t, err, treebank.ErrMalformedTreebank, in)
	}
}
