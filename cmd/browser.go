package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"mcpkeep/internal/handlers"

	"github.com/spf13/cobra"
)

var (
	browserMode        string
	browserPort        int
	browserUserDataDir string
	browserLogsLimit   int
	browserLogsFollow  bool
)

var browserCmd = &cobra.Command{
	Use:   "browser",
	Short: "Control the persistent Playwright browser server",
	Long: `Starts, stops and inspects the Playwright MCP server that mcpkeep keeps
running in the background. The server listens on http://localhost:<port>/sse.`,
}

var browserStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the browser server and print its endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_browser_start", browserArgs(cmd))
	},
}

var browserStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the browser server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_browser_stop", nil)
	},
}

var browserRestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the browser server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_browser_restart", browserArgs(cmd))
	},
}

var browserStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the browser server state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_browser_status", nil)
	},
}

var browserLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent browser server output",
	Args:  cobra.NoArgs,
	RunE:  runBrowserLogs,
}

// browserArgs returns only the flags the user set so unset ones keep the
// supervisor's current values.
func browserArgs(cmd *cobra.Command) map[string]any {
	args := map[string]any{}
	if cmd.Flags().Changed("mode") {
		args["mode"] = browserMode
	}
	if cmd.Flags().Changed("port") {
		args["port"] = browserPort
	}
	if cmd.Flags().Changed("user-data-dir") {
		args["userDataDir"] = browserUserDataDir
	}
	return args
}

func runBrowserLogs(cmd *cobra.Command, args []string) error {
	executor, err := connectExecutor(cmd)
	if err != nil {
		return err
	}
	defer executor.Close()

	ctx := commandContext(cmd)
	toolArgs := map[string]any{}
	if browserLogsLimit > 0 {
		toolArgs["limit"] = browserLogsLimit
	}
	if err := executor.Execute(ctx, "core_browser_logs", toolArgs); err != nil {
		return err
	}
	if !browserLogsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()
	executor.Follow(ctx, handlers.NotificationPrefix, func(method string, params map[string]any) {
		switch method {
		case handlers.NotificationPrefix + "log":
			fmt.Fprintf(out, "%v [%v] %v\n", params["time"], params["stream"], params["line"])
		case handlers.NotificationPrefix + "status":
			fmt.Fprintf(out, "%v status: %v\n", params["time"], params["status"])
		}
	})
	return nil
}

func init() {
	rootCmd.AddCommand(browserCmd)
	browserCmd.AddCommand(browserStartCmd, browserStopCmd, browserRestartCmd, browserStatusCmd, browserLogsCmd)

	for _, c := range []*cobra.Command{browserStartCmd, browserRestartCmd} {
		c.Flags().StringVar(&browserMode, "mode", "visible", "Browser mode: visible or headless")
		c.Flags().IntVar(&browserPort, "port", 8931, "Port for the browser server")
		c.Flags().StringVar(&browserUserDataDir, "user-data-dir", "", "Browser profile directory")
	}
	browserLogsCmd.Flags().IntVar(&browserLogsLimit, "limit", 0, "Show at most this many of the newest lines")
	browserLogsCmd.Flags().BoolVarP(&browserLogsFollow, "follow", "f", false, "Keep printing new output until interrupted")
}
