package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/internal/config"
	"github.com/matzehuels/arbor/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		cfgPath   string
		addr      string
		localCORS bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Settings come from an optional config file (YAML, TOML or JSON) and
ARBOR_* environment variables, e.g. ARBOR_REDIS_URL or
ARBOR_SESSION_BACKEND. Flags override both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Setup(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Address = addr
			}
			if localCORS {
				cfg.LocalCORS = true
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&localCORS, "local-cors", false, "allow cross-origin requests (development)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config) error {
	c.installHooks()
	srv, closeBackends, err := server.Open(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBackends(); err != nil {
			c.Logger.Warn("closing backends", "error", err)
		}
	}()
	return srv.ListenAndServe(ctx, cfg.Address)
}
