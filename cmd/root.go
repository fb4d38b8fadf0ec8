package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	"mcpkeep/internal/cli"
	"mcpkeep/internal/config"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeNotRunning indicates the control endpoint could not be reached.
	ExitCodeNotRunning = 2
	// ExitCodeUnhealthy indicates check or doctor found a problem.
	ExitCodeUnhealthy = 3
)

// errUnhealthy is returned by check and doctor after printing their report.
var errUnhealthy = errors.New("one or more checks failed")

// flags are shared by every subcommand.
var flags cli.CommandFlags

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcpkeep",
	Short: "Keep a registry of MCP servers and a persistent browser server",
	Long: `mcpkeep stores the MCP servers your assistant can use, turns them into a
connection table, and keeps one Playwright browser server running in the
background so browser sessions survive between conversations.

Run 'mcpkeep serve' to start the control endpoint; the other commands talk to it.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code matching the error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpkeep version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

func getExitCode(err error) int {
	if cli.IsServerNotRunning(err) {
		return ExitCodeNotRunning
	}
	if errors.Is(err, errUnhealthy) {
		return ExitCodeUnhealthy
	}
	return ExitCodeError
}

func init() {
	cli.RegisterCommonFlags(rootCmd, &flags)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

func resolvedConfigPath() string {
	if flags.ConfigPath != "" {
		return flags.ConfigPath
	}
	return config.GetDefaultConfigPathOrPanic()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// connectExecutor builds an executor from the global flags and connects it.
// The caller closes it.
func connectExecutor(cmd *cobra.Command) (*cli.ToolExecutor, error) {
	options, err := flags.ToExecutorOptions(resolvedConfigPath())
	if err != nil {
		return nil, err
	}
	options.Out = cmd.OutOrStdout()

	executor, err := cli.NewToolExecutor(options)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), 10*time.Second)
	defer cancel()
	if err := executor.Connect(ctx); err != nil {
		_ = executor.Close()
		return nil, err
	}
	return executor, nil
}

// runTool connects, executes one tool and prints the result.
func runTool(cmd *cobra.Command, toolName string, args map[string]any) error {
	executor, err := connectExecutor(cmd)
	if err != nil {
		return err
	}
	defer executor.Close()
	return executor.Execute(commandContext(cmd), toolName, args)
}
