package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/pipeline"
)

// growFlags holds the command-line flags for the grow command.
type growFlags struct {
	grammarFlags

	angle       float64  // branching angle in degrees, 0 = species default
	step        float64  // segment length, 0 = species default
	thickness   float64  // sketch stroke multiplier
	pruned      []string // branches to cut
	renormalize bool     // re-orthonormalise the turtle frame
	refresh     bool     // bypass cache reads
	noCache     bool     // disable caching entirely
	output      string   // output file or base path
	formats     string   // comma-separated output formats
	detailed    bool     // depth and length labels in diagrams
	pick        bool     // choose the species interactively
	watch       bool     // regrow when the catalogue changes
	showTree    bool     // print the branch hierarchy
	treeLevels  int      // levels shown by --tree
}

// growCommand creates the grow command.
func (c *CLI) growCommand() *cobra.Command {
	flags := growFlags{treeLevels: 4}

	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Grow a tree, cut branches and compare with the control tree",
		Long: `Grow a tree from a species or an ad-hoc grammar and compare it with a
pruned copy.

Without --output the comparison report is printed. With --output the
requested formats are written: a single format to the given file, several
formats to files sharing the given base name.

Examples:
  arbor grow --species english-oak -n 3 --prune root-0-0 --tree
  arbor grow --pick -o oak -f json,svg,sketch
  arbor grow --axiom F --rule F='F[+F]F[-F]F' --angle 25.7 -o weed.svg
  arbor grow --catalog my-trees.toml --species fern --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.watch && flags.catalogPath == "" {
				return fmt.Errorf("--watch requires --catalog")
			}
			return c.runGrow(cmd.Context(), &flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&flags.angle, "angle", 0, "branching angle in degrees (default: species angle)")
	cmd.Flags().Float64Var(&flags.step, "step", 0, "segment length (default: species step)")
	cmd.Flags().Float64Var(&flags.thickness, "thickness", 0, "stroke width multiplier for the sketch (default 1)")
	cmd.Flags().StringArrayVarP(&flags.pruned, "prune", "p", nil, "cut a branch and everything above it (repeatable)")
	cmd.Flags().BoolVar(&flags.renormalize, "renormalize", false, "re-orthonormalise the turtle frame after every turn")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): json, dot, svg, sketch, txt (comma-separated)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label diagram nodes with depth and length")
	cmd.Flags().BoolVar(&flags.pick, "pick", false, "choose the species interactively")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "regrow whenever the --catalog file changes")
	cmd.Flags().BoolVar(&flags.showTree, "tree", false, "print the branch hierarchy")
	cmd.Flags().IntVar(&flags.treeLevels, "tree-levels", flags.treeLevels, "levels shown by --tree (-1 for all)")

	return cmd
}

// options converts the flags to pipeline options.
func (f *growFlags) options() (pipeline.Options, error) {
	opts, err := f.grammarFlags.options()
	if err != nil {
		return opts, err
	}
	formats, err := f.resolveFormats()
	if err != nil {
		return opts, err
	}
	opts.Angle = f.angle
	opts.Step = f.step
	opts.Thickness = f.thickness
	opts.Pruned = f.pruned
	opts.Renormalize = f.renormalize
	opts.Refresh = f.refresh
	opts.Formats = formats
	opts.Detailed = f.detailed
	return opts, nil
}

// resolveFormats picks the output formats: the --format list, else the
// --output extension, else the text report.
func (f *growFlags) resolveFormats() ([]string, error) {
	if f.formats != "" {
		return pipeline.ParseFormats(f.formats)
	}
	if f.output == "" {
		return []string{pipeline.FormatTXT}, nil
	}
	if strings.HasSuffix(f.output, "."+pipeline.FileExt(pipeline.FormatSketch)) {
		return []string{pipeline.FormatSketch}, nil
	}
	if ext := strings.TrimPrefix(filepath.Ext(f.output), "."); pipeline.ValidFormats[ext] {
		return []string{ext}, nil
	}
	return []string{pipeline.FormatJSON}, nil
}

func (c *CLI) runGrow(ctx context.Context, flags *growFlags) error {
	opts, err := flags.options()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(flags.noCache, flags.catalogPath)
	if err != nil {
		return err
	}
	defer runner.Close()

	if flags.pick {
		sp, err := pickSpecies(ctx, runner.Catalog)
		if err != nil {
			return err
		}
		opts.SpeciesID, opts.Axiom, opts.Rules = sp.ID, "", nil
	}

	if err := c.growOnce(ctx, runner, opts, flags); err != nil {
		return err
	}
	if !flags.watch {
		return nil
	}

	printInfo("Watching %s for changes (ctrl+c to stop)", flags.catalogPath)
	return watchFile(ctx, flags.catalogPath, func() {
		catalog, err := loadCatalog(flags.catalogPath)
		if err != nil {
			printError("%v", err)
			return
		}
		runner.Catalog = catalog
		if err := c.growOnce(ctx, runner, opts, flags); err != nil {
			printError("%v", err)
		}
	})
}

// growOnce runs the pipeline and presents the result.
func (c *CLI) growOnce(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, flags *growFlags) error {
	spinner := newSpinner(ctx, "Growing...")
	spinner.Start()
	prog := newProgress(c.Logger)

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Growth failed")
		return err
	}
	spinner.Stop()
	prog.done("grew tree", "branches", res.Stats.Full.Branches, "cut", res.Removed.Len(), "cached", res.CacheInfo.GrowHit)

	name := "custom grammar"
	if res.Species != nil {
		name = res.Species.CommonName
	}
	printSuccess("%s, %d iterations at %g°", StyleHighlight.Render(name), res.Options.Generations(), res.Options.Angle)
	printTreeStats(res.Stats.Full, res.Stats.Pruned, res.CacheInfo.GrowHit)

	if flags.showTree {
		printNewline()
		fmt.Fprintln(stdout, treeView(res.Full, res.Removed, flags.treeLevels))
		printNewline()
	}

	if flags.output != "" {
		return writeArtifacts(res.Artifacts, res.Options.Formats, flags.output, res.CacheInfo.RenderHit)
	}
	for _, f := range res.Options.Formats {
		fmt.Fprintln(stdout, strings.TrimRight(string(res.Artifacts[f]), "\n"))
	}
	return nil
}
