package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"

	"github.com/npillmayer/treeminer/config"
	"github.com/npillmayer/treeminer/freq"
	"github.com/npillmayer/treeminer/mine"
)

var traceKeys = []string{
	"treeminer.ctree",
	"treeminer.treebank",
	"treeminer.freq",
	"treeminer.mine",
	"treeminer.config",
}

func newRootCmd() *cobra.Command {
	var level string
	root := &cobra.Command{
		Use:           "treeminer",
		Short:         "Frequent subtree mining for concurrency trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setTraceLevel(level)
		},
	}
	root.PersistentFlags().StringVar(&level, "trace", "error", "trace level (error, info, debug)")
	root.AddCommand(newMineCmd(), newRelationsCmd())
	return root
}

func setTraceLevel(name string) error {
	var level tracing.TraceLevel
	switch strings.ToLower(name) {
	case "error":
		level = tracing.LevelError
	case "info":
		level = tracing.LevelInfo
	case "debug":
		level = tracing.LevelDebug
	default:
		return fmt.Errorf("unknown trace level %q", name)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	return nil
}

// --- mine --------------------------------------------------------------------

type mineOptions struct {
	configPath string
	printTrees bool
	closedOnly bool
	overrides  config.Request
}

func newMineCmd() *cobra.Command {
	opts := &mineOptions{}
	cmd := &cobra.Command{
		Use:   "mine [flags] treebank.yaml",
		Short: "Mine frequent patterns",
		Long: `Mine enumerates all frequent patterns of a treebank up to a maximum size
and prints them grouped by size. Request parameters are read from the file given
with --config; flags given on the command line take precedence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMine(cmd, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "request file (YAML)")
	f.BoolVar(&opts.printTrees, "tree", false, "print patterns as indented trees")
	f.BoolVar(&opts.closedOnly, "closed", false, "print closed patterns only (implies --mode closed-maximal)")
	f.IntVar(&opts.overrides.MinSupport, "min-support", 0, "minimum support")
	f.StringVar(&opts.overrides.Strategy, "strategy", "", "frequency counting strategy")
	f.IntVar(&opts.overrides.MaxSize, "max-size", 0, "maximum pattern size")
	f.StringVar(&opts.overrides.Mode, "mode", "", "plain or closed-maximal")
	f.IntVar(&opts.overrides.Workers, "workers", 0, "concurrent validations")
	return cmd
}

func runMine(cmd *cobra.Command, opts *mineOptions, treebankPath string) error {
	r := config.DefaultRequest()
	if opts.configPath != "" {
		var err error
		if r, err = config.LoadRequest(opts.configPath); err != nil {
			return err
		}
	}
	f := cmd.Flags()
	if f.Changed("min-support") {
		r.MinSupport = opts.overrides.MinSupport
	}
	if f.Changed("strategy") {
		r.Strategy = opts.overrides.Strategy
	}
	if f.Changed("max-size") {
		r.MaxSize = opts.overrides.MaxSize
	}
	if f.Changed("mode") {
		r.Mode = opts.overrides.Mode
	}
	if f.Changed("workers") {
		r.Workers = opts.overrides.Workers
	}
	if opts.closedOnly {
		r.Mode = mine.ClosedMaximalBlanket.String()
	}
	req, err := r.MiningRequest()
	if err != nil {
		return err
	}
	tb, err := config.LoadTreebank(treebankPath)
	if err != nil {
		return err
	}
	res, err := mine.Mine(cmd.Context(), tb, req)
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), res, opts)
	return nil
}

func printResults(w io.Writer, res *mine.Results, opts *mineOptions) {
	cm := res.Request.Mode == mine.ClosedMaximalBlanket
	fmt.Fprintf(w, "%d frequent patterns (min support %d, %s)\n",
		res.Len(), res.Request.MinSupport, res.Request.Strategy)
	for _, k := range res.Sizes() {
		fmt.Fprintf(w, "size %d: %d\n", k, res.Count(k))
		for _, p := range res.OfSize(k) {
			if opts.closedOnly && !p.Closed() {
				continue
			}
			if opts.printTrees {
				fmt.Fprintln(w, p.Print())
				continue
			}
			fmt.Fprintf(w, "  %-40s %6d%s\n", p.Key(), p.Support(), flagString(p, cm))
		}
	}
	if cm {
		fmt.Fprintf(w, "%d closed, %d maximal\n", len(res.Closed()), len(res.Maximal()))
	}
}

func flagString(p *mine.Pattern, cm bool) string {
	if !cm {
		return ""
	}
	var flags []string
	if p.Closed() {
		flags = append(flags, "closed")
	}
	if p.Maximal() {
		flags = append(flags, "maximal")
	}
	if len(flags) == 0 {
		return ""
	}
	return "  " + strings.Join(flags, ",")
}

// --- relations ---------------------------------------------------------------

func newRelationsCmd() *cobra.Command {
	var strategy string
	var minSup int
	cmd := &cobra.Command{
		Use:   "relations [flags] treebank.yaml",
		Short: "Print the activity relations of a treebank",
		Long: `Relations prints the directly-follows, eventually-follows and concurrency
relations between activities, weighted by the given strategy. Relations below
--min-support are omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := freq.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			tb, err := config.LoadTreebank(args[0])
			if err != nil {
				return err
			}
			rel := freq.MineRelations(tb, s)
			w := cmd.OutOrStdout()
			printPairs(w, "directly follows", rel.DirectlyFollows, minSup)
			printPairs(w, "eventually follows", rel.EventuallyFollows, minSup)
			printPairs(w, "concurrent", rel.Concurrent, minSup)
			return nil
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", freq.TraceTransaction.String(), "frequency counting strategy")
	cmd.Flags().IntVar(&minSup, "min-support", 1, "minimum weight of printed relations")
	return cmd
}

func printPairs(w io.Writer, title string, weights map[freq.Pair]int, minSup int) {
	pairs := make([]freq.Pair, 0, len(weights))
	for p, n := range weights {
		if n >= minSup {
			pairs = append(pairs, p)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].From != pairs[j].From {
			return pairs[i].From < pairs[j].From
		}
		return pairs[i].To < pairs[j].To
	})
	fmt.Fprintf(w, "%s:\n", title)
	for _, p := range pairs {
		fmt.Fprintf(w, "  %s → %s  %d\n", p.From, p.To, weights[p])
	}
}
