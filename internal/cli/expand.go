package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/core/turtle"
	"github.com/matzehuels/arbor/pkg/pipeline"
)

// grammarFlags are the flags that select a grammar, shared by expand and
// grow.
type grammarFlags struct {
	speciesID   string
	axiom       string
	rules       []string
	iterations  int
	strict      bool
	catalogPath string
}

func (f *grammarFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.speciesID, "species", "s", "", "species id from the catalogue (default: first species)")
	cmd.Flags().StringVar(&f.axiom, "axiom", "", "ad-hoc grammar axiom (overrides --species)")
	cmd.Flags().StringArrayVar(&f.rules, "rule", nil, "ad-hoc production rule SYMBOL=REPLACEMENT (repeatable)")
	cmd.Flags().IntVarP(&f.iterations, "iterations", "n", pipeline.DefaultIterations, fmt.Sprintf("rewrite generations, 0..%d (0 prints the axiom)", pipeline.MaxIterations))
	cmd.Flags().BoolVar(&f.strict, "strict", false, "reject grammars with unbalanced brackets")
	cmd.Flags().StringVar(&f.catalogPath, "catalog", "", "species catalogue TOML file (default: built-in)")
	_ = cmd.RegisterFlagCompletionFunc("species", completeSpeciesIDs)
}

// options converts the flags to pipeline options.
func (f *grammarFlags) options() (pipeline.Options, error) {
	rules, err := parseRuleFlags(f.rules)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		SpeciesID:  f.speciesID,
		Axiom:      f.axiom,
		Rules:      rules,
		Iterations: pipeline.Iter(f.iterations),
		Strict:     f.strict,
	}, nil
}

// expandCommand creates the expand command, which prints the rewritten
// symbol string.
func (c *CLI) expandCommand() *cobra.Command {
	var (
		flags      grammarFlags
		lengthOnly bool
	)

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the expanded L-system string",
		Long: `Print the expanded L-system string of a species or an ad-hoc grammar.

Examples:
  arbor expand --species english-oak -n 2
  arbor expand --axiom F --rule F='F[+F]F' -n 3
  arbor expand --species silver-birch -n 6 --length`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			return c.runExpand(cmd.Context(), opts, flags.catalogPath, lengthOnly)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&lengthOnly, "length", false, "print only the number of symbols")

	return cmd
}

func (c *CLI) runExpand(ctx context.Context, opts pipeline.Options, catalogPath string, lengthOnly bool) error {
	runner, err := c.newRunner(true, catalogPath)
	if err != nil {
		return err
	}
	defer runner.Close()

	symbols, err := runner.Expand(ctx, opts)
	if err != nil {
		return err
	}
	if lengthOnly {
		fmt.Fprintln(stdout, len([]rune(symbols)))
		return nil
	}
	if r := turtle.Analyze(symbols); !r.Balanced() {
		c.Logger.Warn("unbalanced brackets are ignored when growing",
			"unmatched_pops", r.UnmatchedPops, "unclosed_pushes", r.UnclosedPushes)
	}
	fmt.Fprintln(stdout, symbols)
	return nil
}
