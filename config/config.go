/*
Package config reads mining requests and treebanks from YAML files.

A request file looks like this:

	min_support: 2
	strategy: trace-transaction
	max_size: 6
	mode: closed-maximal
	workers: 4

A treebank file lists process variants in canonical tree notation, each with
the number of traces following it:

	- variant: "→(A,∧(B,C),D)"
	  weight: 12
	- variant: "→(A,B)"
	  weight: 3
	  traces: [t-017, t-042, t-101]

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"

	"github.com/npillmayer/treeminer/ctree"
	"github.com/npillmayer/treeminer/freq"
	"github.com/npillmayer/treeminer/mine"
	"github.com/npillmayer/treeminer/treebank"
)

// tracer traces with key 'treeminer.config'.
func tracer() tracing.Trace {
	return tracing.Select("treeminer.config")
}

// ErrInvalidRequest is returned for request files which cannot be read or do not
// describe a valid mining request.
var ErrInvalidRequest = errors.New("invalid request configuration")

// Request is the YAML form of a mining request.
type Request struct {
	MinSupport int    `yaml:"min_support"`
	Strategy   string `yaml:"strategy"`
	MaxSize    int    `yaml:"max_size"`
	Mode       string `yaml:"mode"`
	Workers    int    `yaml:"workers"`
}

// DefaultRequest returns the settings used for keys missing from a request file.
func DefaultRequest() Request {
	return Request{
		MinSupport: 1,
		Strategy:   freq.TraceTransaction.String(),
		MaxSize:    6,
		Mode:       mine.PlainRightmostExpansion.String(),
		Workers:    1,
	}
}

// ReadRequest decodes a request from r, starting from DefaultRequest.
// Unknown keys are rejected.
func ReadRequest(r io.Reader) (Request, error) {
	req := DefaultRequest()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return req, nil
}

// LoadRequest reads a request file.
func LoadRequest(path string) (Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	defer f.Close()
	req, err := ReadRequest(f)
	if err != nil {
		return req, fmt.Errorf("%s: %w", path, err)
	}
	tracer().Debugf("loaded request from %s", path)
	return req, nil
}

// MiningRequest converts r to a validated mining request.
func (r Request) MiningRequest() (mine.Request, error) {
	s, err := freq.ParseStrategy(r.Strategy)
	if err != nil {
		return mine.Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	m, err := mine.ParseMode(r.Mode)
	if err != nil {
		return mine.Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req := mine.Request{
		MinSupport: r.MinSupport,
		Strategy:   s,
		MaxSize:    r.MaxSize,
		Mode:       m,
		Workers:    r.Workers,
	}
	if err := req.Validate(); err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return req, nil
}

// --- Treebanks ---------------------------------------------------------------

// Variant is one entry of a treebank file.
type Variant struct {
	Variant string   `yaml:"variant"`
	Weight  int      `yaml:"weight"`
	Traces  []string `yaml:"traces,omitempty"`
}

// TreebankFile is the YAML form of a treebank.
type TreebankFile []Variant

// ReadTreebank decodes a treebank file from r.
func ReadTreebank(r io.Reader) (TreebankFile, error) {
	var tf TreebankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", treebank.ErrMalformedTreebank, err)
	}
	return tf, nil
}

// LoadTreebank reads a treebank file and builds the treebank.
func LoadTreebank(path string) (*treebank.Treebank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tf, err := ReadTreebank(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tb, err := tf.Treebank()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tracer().Infof("loaded %d variants (%d traces) from %s", tb.Len(), tb.TotalWeight(), path)
	return tb, nil
}

// Treebank parses the variants and builds a treebank from them. Variants with
// equal canonical form are merged.
func (tf TreebankFile) Treebank() (*treebank.Treebank, error) {
	b := treebank.NewBuilder()
	for i, v := range tf {
		t, err := ctree.Parse(v.Variant)
		if err != nil {
			return nil, fmt.Errorf("%w: variant #%d: %v", treebank.ErrMalformedTreebank, i, err)
		}
		b.AddTree(t, v.Weight, v.Traces...)
	}
	return b.Build()
}
