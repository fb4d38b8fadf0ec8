package cli

import (
	"github.com/spf13/cobra"
)

// CommandFlags holds the flag values shared by every command that talks to the
// control endpoint.
type CommandFlags struct {
	// OutputFormat specifies the desired output format (table, json, yaml)
	OutputFormat string
	// Quiet suppresses progress indicators
	Quiet bool
	// Debug enables debug logging
	Debug bool
	// ConfigPath is the configuration directory; empty means ~/.config/mcpkeep
	ConfigPath string
	// Endpoint overrides the control endpoint URL
	Endpoint string
}

// RegisterCommonFlags registers the shared flags as persistent flags on cmd:
//   - --output/-o: Output format (table, json, yaml), default: "table"
//   - --quiet/-q: Suppress progress indicators
//   - --debug: Enable debug logging
//   - --config-path: Configuration directory
//   - --endpoint: Control endpoint URL (env: MCPKEEP_ENDPOINT)
func RegisterCommonFlags(cmd *cobra.Command, flags *CommandFlags) {
	cmd.PersistentFlags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, json, yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress progress indicators")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config-path", "", "Configuration directory (default ~/.config/mcpkeep)")
	cmd.PersistentFlags().StringVar(&flags.Endpoint, "endpoint", "", "Control endpoint URL (env: "+EndpointEnvVar+")")
}

// Format validates and returns the output format.
func (f *CommandFlags) Format() (OutputFormat, error) {
	if err := ValidateOutputFormat(f.OutputFormat); err != nil {
		return "", err
	}
	return OutputFormat(f.OutputFormat), nil
}

// ToExecutorOptions converts CommandFlags to ExecutorOptions for NewToolExecutor.
// configPath is the resolved configuration directory.
func (f *CommandFlags) ToExecutorOptions(configPath string) (ExecutorOptions, error) {
	format, err := f.Format()
	if err != nil {
		return ExecutorOptions{}, err
	}
	return ExecutorOptions{
		Format:     format,
		Quiet:      f.Quiet,
		Debug:      f.Debug,
		ConfigPath: configPath,
		Endpoint:   f.Endpoint,
	}, nil
}
