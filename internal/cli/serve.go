package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/structiou/pkg/server"
)

// serveCommand creates the serve command for the HTTP scoring service.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scoring service",
		Long: `Run the HTTP scoring service.

Endpoints:
  GET  /healthz
  POST /v1/score    one example  -> report
  POST /v1/corpus   {"examples": [...]} -> summary
  POST /v1/render   one example  -> SVG (?format=dot for DOT)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.serverConfig()
			if cmd.Flags().Changed("addr") || cfg.Addr == "" {
				cfg.Addr = addr
			}

			runner, err := c.newRunner(cmd.Context())
			if err != nil {
				return err
			}
			defer runner.Close()

			return server.New(runner, c.Logger, cfg).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")

	return cmd
}
