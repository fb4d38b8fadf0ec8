package app

import (
	"mcpkeep/internal/config"
)

// Config holds the application configuration.
type Config struct {
	// Debug forces debug logging regardless of the stored log level.
	Debug bool

	// Silent discards log output.
	Silent bool

	// ConfigPath is the directory holding config.yaml and mcp-servers.json.
	ConfigPath string

	// Version is reported by the control server.
	Version string

	// Host is filled from config.yaml during bootstrap when nil.
	Host *config.HostConfig
}

// NewConfig creates a new application configuration.
func NewConfig(debug, silent bool, configPath, version string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
		Version:    version,
	}
}
