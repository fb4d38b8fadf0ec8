package supervisor

import (
	"fmt"
	"strconv"

	"mcpkeep/internal/api"
)

// Config is the launch configuration of the browser server.
type Config struct {
	Port        int             `json:"port" yaml:"port"`
	Mode        api.BrowserMode `json:"mode" yaml:"mode"`
	UserDataDir string          `json:"userDataDir,omitempty" yaml:"userDataDir,omitempty"`
}

// ConfigOverride carries a partial Config. Nil fields keep the current value.
type ConfigOverride struct {
	Port        *int
	Mode        *api.BrowserMode
	UserDataDir *string
}

// DefaultConfig returns port 8931, visible mode and no user-data directory.
func DefaultConfig() Config {
	return Config{
		Port: api.DefaultBrowserPort,
		Mode: api.BrowserVisible,
	}
}

// Merge returns c with the set fields of o applied.
func (c Config) Merge(o ConfigOverride) Config {
	if o.Port != nil {
		c.Port = *o.Port
	}
	if o.Mode != nil {
		c.Mode = *o.Mode
	}
	if o.UserDataDir != nil {
		c.UserDataDir = *o.UserDataDir
	}
	return c
}

// Args returns the argument vector passed to the package runner. Each value is
// its own element, so paths containing spaces need no quoting.
func (c Config) Args(pkg string) []string {
	args := []string{pkg, "--port", strconv.Itoa(c.Port)}
	if c.Mode == api.BrowserHeadless {
		args = append(args, "--headless")
	}
	if c.UserDataDir != "" {
		args = append(args, "--user-data-dir", c.UserDataDir)
	}
	return args
}

// Endpoint returns the SSE URL the server exposes on c.Port.
func (c Config) Endpoint() string {
	return fmt.Sprintf("http://localhost:%d%s", c.Port, api.SSEPath)
}

// OverrideFromDefinition builds the override for the builtin browser definition.
func OverrideFromDefinition(d api.ServerDefinition) ConfigOverride {
	mode := d.BrowserMode
	if mode == "" {
		mode = api.BrowserVisible
	}
	dir := d.UserDataDir
	return ConfigOverride{Mode: &mode, UserDataDir: &dir}
}
