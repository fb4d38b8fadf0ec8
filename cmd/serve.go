package cmd

import (
	"fmt"

	"mcpkeep/internal/app"

	"github.com/spf13/cobra"
)

var serveSilent bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mcpkeep control endpoint",
	Long: `Starts the mcpkeep control endpoint, an MCP server over SSE that exposes the
server registry, the connection table and the browser supervisor as tools.

On startup mcpkeep:
  - loads config.yaml and mcp-servers.json from the configuration directory
  - registers the builtin Playwright browser server if it is missing
  - starts the browser server when it is enabled, persistent and auto-start is on
  - watches mcp-servers.json and reloads it when it changes on disk

The browser server is stopped when mcpkeep exits (Ctrl+C or SIGTERM).`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(flags.Debug, serveSilent, resolvedConfigPath(), rootCmd.Version)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run(commandContext(cmd))
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveSilent, "silent", false, "Discard log output")
}
