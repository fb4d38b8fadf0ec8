package cmd

import (
	"mcpkeep/internal/cli"
	"mcpkeep/internal/preflight"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the browser server can be launched on this machine",
	Long: `Looks up npx and node on PATH and asks each for its version. The browser
server is launched with npx, so both must be installed.

Runs locally and does not need 'mcpkeep serve'. Exits with code 3 when a
command is missing.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	format, err := flags.Format()
	if err != nil {
		return err
	}

	results := preflight.CheckAll(commandContext(cmd))
	if err := cli.Render(cmd.OutOrStdout(), format, results); err != nil {
		return err
	}
	if !preflight.Ready(results) {
		return errUnhealthy
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
