package cmd

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/olgasafonova/wikibot/tools"
	"github.com/olgasafonova/wikibot/tracing"
)

const (
	serverName    = "wikibot"
	serverVersion = "1.0.0"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an MCP server exposing the wiki operations over stdio",
	Long: `Run a Model Context Protocol server on stdio. Tools cover the list
operations, the namespace table, and the batch mutations. Logging goes to
stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(ctx) }()

		server := mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, &mcp.ServerOptions{
			Logger: logger,
			Instructions: `wikibot exposes a MediaWiki action API client.

Query tools (no credentials needed):
- wikibot_list: materialize one paginated list operation completely
- wikibot_namespaces: list the wiki's namespace IDs

Mutation tools (need WIKIBOT_USERNAME / WIKIBOT_PASSWORD):
- wikibot_edit, wikibot_delete, wikibot_move, wikibot_purge

Configure the endpoint with WIKIBOT_URL.`,
		})

		tools.NewToolServer(client, logger).RegisterAll(server)

		logger.Info("starting MCP server", "name", serverName, "version", serverVersion)
		return server.Run(ctx, &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
