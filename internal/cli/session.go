package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/pipeline"
	"github.com/matzehuels/arbor/pkg/session"
)

// sessionEnv bundles what every session subcommand needs.
type sessionEnv struct {
	store   *session.FileStore
	manager *session.Manager
	runner  *pipeline.Runner
}

func (e *sessionEnv) Close() error {
	_ = e.runner.Close()
	return e.store.Close()
}

// openSessions opens the on-disk session store. dir overrides the default
// location.
func (c *CLI) openSessions(dir, catalogPath string) (*sessionEnv, error) {
	if dir == "" {
		var err error
		if dir, err = sessionDir(); err != nil {
			return nil, fmt.Errorf("session dir: %w", err)
		}
	}
	store, err := session.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(false, catalogPath)
	if err != nil {
		return nil, err
	}
	return &sessionEnv{
		store:   store,
		manager: session.NewManager(store, runner.Catalog, runner, c.Logger, session.DefaultTTL),
		runner:  runner,
	}, nil
}

// sessionCommand creates the session management command.
func (c *CLI) sessionCommand() *cobra.Command {
	var dir, catalogPath string

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Keep a pruning simulation on disk",
		Long: `Keep a pruning simulation on disk.

A session stores a species, growth parameters and the branches cut so far.
Cuts accumulate across invocations; the tree itself is regrown on demand.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "session directory (default ~/.config/arbor/sessions)")
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "species catalogue TOML file (default: built-in)")

	// with opens the store for one subcommand run.
	with := func(fn func(ctx context.Context, env *sessionEnv, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			env, err := c.openSessions(dir, catalogPath)
			if err != nil {
				return err
			}
			defer env.Close()
			return fn(cmd.Context(), env, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:               "new [species]",
		Short:             "Start a session (default: first species)",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSpeciesArg,
		RunE: with(func(ctx context.Context, env *sessionEnv, args []string) error {
			speciesID := ""
			if len(args) == 1 {
				speciesID = args[0]
			}
			sess, err := env.manager.Create(ctx, speciesID)
			if err != nil {
				return err
			}
			printSuccess("Created session %s", StyleHighlight.Render(sess.ID))
			printNextStep("Cut a branch", fmt.Sprintf("arbor session prune %s root-0-0", sess.ID))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently changed first",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, env *sessionEnv, args []string) error {
			list, err := env.store.List(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No sessions")
				return nil
			}
			for _, sess := range list {
				fmt.Fprintf(stdout, "%s  %s  %s\n",
					StyleHighlight.Render(sess.ID),
					StyleValue.Render(fmt.Sprintf("%-16s", sess.SpeciesID)),
					StyleDim.Render(fmt.Sprintf("%d cuts · %s", len(sess.Pruned), sess.UpdatedAt.Local().Format(time.DateTime))))
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show session parameters and tree statistics",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, env *sessionEnv, args []string) error {
			return showSession(ctx, env, args[0])
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prune <id> <branch>...",
		Short: "Cut branches and everything above them",
		Args:  cobra.MinimumNArgs(2),
		RunE: with(func(ctx context.Context, env *sessionEnv, args []string) error {
			total := 0
			for _, branch := range args[1:] {
				_, n, err := env.manager.Prune(ctx, args[0], branch)
				if err != nil {
					return err
				}
				printSuccess("Cut %s %s", StyleHighlight.Render(branch), StyleDim.Render(fmt.Sprintf("(%d segments)", n)))
				total += n
			}
			if len(args) > 2 {
				printDetail("%d segments removed", total)
			}
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <id>",
		Short: "Undo every cut",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, env *sessionEnv, args []string) error {
			if _, err := env.manager.ClearPruned(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Cleared all cuts")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <id>",
		Short: "Restore species defaults and undo every cut",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, env *sessionEnv, args []string) error {
			if _, err := env.manager.Reset(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Session reset")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, env *sessionEnv, args []string) error {
			if err := env.manager.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted session %s", args[0])
			return nil
		}),
	})

	cmd.AddCommand(c.sessionSetCommand(with))
	cmd.AddCommand(c.sessionExportCommand(with))

	return cmd
}

type sessionRunE = func(fn func(ctx context.Context, env *sessionEnv, args []string) error) func(*cobra.Command, []string) error

// sessionSetCommand creates "session set", which changes parameters.
// Changing the species or the iteration count discards the cuts, since the
// branch identities no longer match.
func (c *CLI) sessionSetCommand(with sessionRunE) *cobra.Command {
	var (
		speciesID  string
		iterations int
		angle      float64
		step       float64
		thickness  float64
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change species or growth parameters",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = with(func(ctx context.Context, env *sessionEnv, args []string) error {
		var p session.Patch
		fl := cmd.Flags()
		if fl.Changed("species") {
			p.SpeciesID = &speciesID
		}
		if fl.Changed("iterations") {
			p.Iterations = &iterations
		}
		if fl.Changed("angle") {
			p.Angle = &angle
		}
		if fl.Changed("step") {
			p.Step = &step
		}
		if fl.Changed("thickness") {
			p.Thickness = &thickness
		}
		if p == (session.Patch{}) {
			return fmt.Errorf("nothing to change: pass at least one of --species, --iterations, --angle, --step, --thickness")
		}

		before, err := env.manager.Get(ctx, args[0])
		if err != nil {
			return err
		}
		after, err := env.manager.Update(ctx, args[0], p)
		if err != nil {
			return err
		}
		printSuccess("Updated session")
		if len(before.Pruned) > 0 && len(after.Pruned) == 0 {
			printWarning("%d cuts were discarded", len(before.Pruned))
		}
		return nil
	})

	cmd.Flags().StringVarP(&speciesID, "species", "s", "", "species id")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "rewrite generations (1..7)")
	cmd.Flags().Float64Var(&angle, "angle", 0, "branching angle in degrees (10..45)")
	cmd.Flags().Float64Var(&step, "step", 0, "segment length (0.5..2)")
	cmd.Flags().Float64Var(&thickness, "thickness", 0, "stroke width multiplier (0.5..2.5)")
	_ = cmd.RegisterFlagCompletionFunc("species", completeSpeciesIDs)
	return cmd
}

// sessionExportCommand creates "session export", which renders a session.
func (c *CLI) sessionExportCommand(with sessionRunE) *cobra.Command {
	var output, formatsStr string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Render a session to files",
		Args:  cobra.ExactArgs(1),
		RunE: with(func(ctx context.Context, env *sessionEnv, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			if output == "" {
				output = "arbor-" + strings.SplitN(args[0], "-", 2)[0]
			}
			res, err := env.manager.Execute(ctx, args[0], formats...)
			if err != nil {
				return err
			}
			return writeArtifacts(res.Artifacts, res.Options.Formats, output, res.CacheInfo.RenderHit)
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or base path (default arbor-<id prefix>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "json,txt", "output format(s): json, dot, svg, sketch, txt")
	return cmd
}

func showSession(ctx context.Context, env *sessionEnv, id string) error {
	sess, err := env.manager.Get(ctx, id)
	if err != nil {
		return err
	}
	full, cached, err := env.runner.GrowWithCacheInfo(ctx, sess.Options())
	if err != nil {
		return err
	}
	pruned, _, err := env.runner.Prune(ctx, full, sess.Pruned)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, StyleTitle.Render("Session "+sess.ID))
	printKeyValue("species", sess.SpeciesID)
	printKeyValue("iterations", fmt.Sprint(sess.Iterations))
	printKeyValue("angle", fmt.Sprintf("%g°", sess.Angle))
	printKeyValue("step", fmt.Sprintf("%g", sess.Step))
	printKeyValue("thickness", fmt.Sprintf("%g", sess.Thickness))
	printKeyValue("cuts", fmt.Sprint(len(sess.Pruned)))
	printKeyValue("expires", sess.ExpiresAt.Local().Format(time.DateTime))
	printTreeStats(full.Stats(), pruned.Stats(), cached)
	return nil
}
