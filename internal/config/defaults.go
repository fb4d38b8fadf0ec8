package config

import (
	"time"

	"mcpkeep/internal/api"
)

const (
	DefaultControlHost  = "localhost"
	DefaultControlPort  = 8929
	DefaultReadyTimeout = 10 * time.Second
	DefaultStopTimeout  = 5 * time.Second
)

// GetDefaultConfig returns the host configuration used when config.yaml is absent.
func GetDefaultConfig() HostConfig {
	return HostConfig{
		Control: ControlConfig{
			Host: DefaultControlHost,
			Port: DefaultControlPort,
		},
		Browser: BrowserConfig{
			Port:         api.DefaultBrowserPort,
			ReadyTimeout: DefaultReadyTimeout,
			StopTimeout:  DefaultStopTimeout,
		},
		LogLevel: "info",
	}
}
