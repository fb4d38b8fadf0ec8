package cmd

import (
	"github.com/spf13/cobra"
)

var tableNoEnsure bool

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the connection table for the enabled servers",
	Long: `Prints how a host should connect to each enabled server: stdio servers with
their command line, the persistent browser server with its SSE URL.

By default the browser server is started first when it is enabled and
persistent, so its entry is present. Use --no-ensure to print the table as it
is right now without touching the browser server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_connection_table", map[string]any{"ensure": !tableNoEnsure})
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.Flags().BoolVar(&tableNoEnsure, "no-ensure", false, "Do not start or stop the browser server first")
}
