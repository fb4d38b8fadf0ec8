package cmd

import (
	"time"

	"mcpkeep/internal/api"
	"mcpkeep/internal/cli"
	"mcpkeep/internal/probe"

	"github.com/spf13/cobra"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Connect to every server in the connection table",
	Long: `Fetches the connection table from the control endpoint and connects to each
entry with an MCP client: stdio servers are spawned, network servers are dialed.
Each server must complete the MCP handshake and answer a ping.

Exits with code 3 when any server fails.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := flags.Format()
	if err != nil {
		return err
	}

	executor, err := connectExecutor(cmd)
	if err != nil {
		return err
	}
	defer executor.Close()

	ctx := commandContext(cmd)
	var table api.ConnectionTable
	if err := executor.ExecuteJSON(ctx, "core_connection_table", map[string]any{"ensure": true}, &table); err != nil {
		return err
	}

	results := probe.New(nil, checkTimeout).ProbeAll(ctx, table)
	if err := cli.Render(cmd.OutOrStdout(), format, results); err != nil {
		return err
	}
	if !probe.Healthy(results) {
		return errUnhealthy
	}
	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", probe.DefaultTimeout, "Timeout per server")
}
