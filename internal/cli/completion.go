package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a shell completion script. Besides commands and
// flags, the scripts complete species ids from the catalogue selected by
// --catalog.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script",
		Long: fmt.Sprintf(`Print a completion script for one of: %s.

Species ids complete from the catalogue, e.g. "arbor grow -s <TAB>".

  $ source <(arbor completion bash)
  $ arbor completion zsh > "${fpath[1]}/_arbor"
  $ arbor completion fish > ~/.config/fish/completions/arbor.fish
  PS> arbor completion powershell | Out-String | Invoke-Expression

Start a new shell after installing a script.`, strings.Join(completionShells, ", ")),
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, true)
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
		},
	}
}

// completeSpeciesIDs offers the ids of the catalogue named by the command's
// --catalog flag, each described by its common name.
func completeSpeciesIDs(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	path := ""
	if f := cmd.Flag("catalog"); f != nil {
		path = f.Value.String()
	}
	catalog, err := loadCatalog(path)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	list, err := catalog.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, sp := range list {
		if strings.HasPrefix(sp.ID, toComplete) {
			out = append(out, sp.ID+"\t"+sp.CommonName)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeSpeciesArg completes a single positional species id.
func completeSpeciesArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeSpeciesIDs(cmd, args, toComplete)
}
