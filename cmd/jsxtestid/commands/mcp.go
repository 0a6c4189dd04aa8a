package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/mcp"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
)

func newMCPCommand(root *rootFlags) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes the rewriter as tools that AI agents can discover and
invoke:
  - jsx_transform: Inject test ids into inline TSX/JSX source
  - jsx_tree: Parse inline TSX/JSX source into the program tree

Logs go to stderr as JSON so stdout stays reserved for the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				root.verbose = true
			}

			sess, err := setup(cmd, root, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer sess.close()

			red, err := observability.NewREDMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  sess.logger,
				Metrics: red,
				Tracer:  sess.providers.Tracer,
				Options: sess.cfg.TransformOptions(),
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
