package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addID          string
	addName        string
	addDescription string
	addTransport   string
	addCommand     string
	addArgs        []string
	addEnv         map[string]string
	addURL         string
	addDisabled    bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List configured MCP servers",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_server_list", nil)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one MCP server definition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_server_get", map[string]any{"id": args[0]})
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an MCP server definition",
	Long: `Adds an MCP server definition and saves it.

Examples:
  mcpkeep add --name files --command npx --arg -y --arg @modelcontextprotocol/server-filesystem --arg /tmp
  mcpkeep add --name remote --transport sse --url http://localhost:9000/sse`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove an MCP server definition",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_server_remove", map[string]any{"id": args[0]})
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable an MCP server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_server_update", map[string]any{"id": args[0], "enabled": true})
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable an MCP server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, "core_server_update", map[string]any{"id": args[0], "enabled": false})
	},
}

func runAdd(cmd *cobra.Command, args []string) error {
	toolArgs, err := buildAddArgs()
	if err != nil {
		return err
	}
	return runTool(cmd, "core_server_add", toolArgs)
}

func buildAddArgs() (map[string]any, error) {
	switch addTransport {
	case "stdio":
		if addCommand == "" {
			return nil, fmt.Errorf("--command is required for stdio servers")
		}
	case "sse", "streamable-http":
		if addURL == "" {
			return nil, fmt.Errorf("--url is required for %s servers", addTransport)
		}
	default:
		return nil, fmt.Errorf("unsupported transport %q (valid: stdio, sse, streamable-http)", addTransport)
	}

	toolArgs := map[string]any{
		"name":      addName,
		"transport": addTransport,
		"enabled":   !addDisabled,
	}
	setIfNotEmpty(toolArgs, "id", addID)
	setIfNotEmpty(toolArgs, "description", addDescription)
	setIfNotEmpty(toolArgs, "command", addCommand)
	setIfNotEmpty(toolArgs, "url", addURL)
	if len(addArgs) > 0 {
		toolArgs["args"] = addArgs
	}
	if len(addEnv) > 0 {
		toolArgs["env"] = addEnv
	}
	return toolArgs, nil
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func init() {
	rootCmd.AddCommand(listCmd, getCmd, addCmd, removeCmd, enableCmd, disableCmd)

	addCmd.Flags().StringVar(&addID, "id", "", "Server id (generated when omitted)")
	addCmd.Flags().StringVar(&addName, "name", "", "Display name")
	addCmd.Flags().StringVar(&addDescription, "description", "", "Description")
	addCmd.Flags().StringVar(&addTransport, "transport", "stdio", "Transport: stdio, sse or streamable-http")
	addCmd.Flags().StringVar(&addCommand, "command", "", "Executable for stdio servers")
	addCmd.Flags().StringArrayVar(&addArgs, "arg", nil, "Argument for stdio servers (repeatable)")
	addCmd.Flags().StringToStringVar(&addEnv, "env", nil, "Environment variable KEY=VALUE for stdio servers (repeatable)")
	addCmd.Flags().StringVar(&addURL, "url", "", "URL for network servers")
	addCmd.Flags().BoolVar(&addDisabled, "disabled", false, "Add the server disabled")
	_ = addCmd.MarkFlagRequired("name")
}
