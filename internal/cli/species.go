package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/species"
)

// speciesCommand creates the species catalogue command.
func (c *CLI) speciesCommand() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:     "species",
		Aliases: []string{"sp"},
		Short:   "List and inspect the species catalogue",
		Long: `List and inspect the species catalogue.

Without a subcommand the catalogue is listed. Use --catalog to read a
TOML catalogue instead of the built-in one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeciesList(cmd.Context(), catalogPath)
		},
	}
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "species catalogue TOML file (default: built-in)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all species",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeciesList(cmd.Context(), catalogPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:               "show <id>",
		Short:             "Show a species and its grammar",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSpeciesArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpeciesShow(cmd.Context(), catalogPath, args[0])
		},
	})

	return cmd
}

func runSpeciesList(ctx context.Context, catalogPath string) error {
	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}
	list, err := catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printInfo("Catalogue is empty")
		return nil
	}

	rows := make([][]string, len(list))
	for i, sp := range list {
		rows[i] = []string{
			sp.ID,
			sp.CommonName,
			sp.ScientificName,
			fmt.Sprintf("%g°", sp.DefaultAngle),
			fmt.Sprintf("%g", sp.DefaultStep),
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Scientific name", "Angle", "Step").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			case col == 0:
				return StyleHighlight
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorGray).Italic(true)
			default:
				return StyleValue
			}
		})
	fmt.Fprintln(stdout, t.Render())
	printNextStep("Grow one", "arbor grow --species "+list[0].ID)
	return nil
}

func runSpeciesShow(ctx context.Context, catalogPath, id string) error {
	if err := errors.ValidateSpeciesID(id); err != nil {
		return err
	}
	catalog, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}
	sp, err := catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	printSpecies(sp)
	return nil
}

func printSpecies(sp species.Species) {
	fmt.Fprintln(stdout, StyleTitle.Render(sp.CommonName)+" "+StyleDim.Render(sp.ScientificName))
	printKeyValue("id", sp.ID)
	printKeyValue("axiom", sp.Axiom)
	for _, k := range slices.Sorted(maps.Keys(sp.Rules)) {
		printKeyValue("rule", k+" → "+sp.Rules[k])
	}
	printKeyValue("angle", fmt.Sprintf("%g°", sp.DefaultAngle))
	printKeyValue("step", fmt.Sprintf("%g", sp.DefaultStep))
}

// parseRuleFlags converts repeated --rule X=replacement flags to a rule map.
func parseRuleFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	rules := make(map[string]string, len(flags))
	for _, f := range flags {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "rule %q must have the form SYMBOL=REPLACEMENT", f)
		}
		if err := errors.ValidateRuleKey(k); err != nil {
			return nil, err
		}
		if _, dup := rules[k]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate rule for %q", k)
		}
		rules[k] = v
	}
	return rules, nil
}
