package config

import (
	"net"
	"strconv"
	"time"
)

// HostConfig is the content of config.yaml.
type HostConfig struct {
	Control  ControlConfig `yaml:"control"`
	Browser  BrowserConfig `yaml:"browser"`
	LogLevel string        `yaml:"logLevel,omitempty"`
}

// ControlConfig describes the SSE endpoint the command handlers listen on.
type ControlConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address returns host:port.
func (c ControlConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Endpoint returns the SSE URL clients connect to.
func (c ControlConfig) Endpoint() string {
	return "http://" + c.Address() + "/sse"
}

// BrowserConfig tunes the browser supervisor.
type BrowserConfig struct {
	Port         int           `yaml:"port"`
	ReadyTimeout time.Duration `yaml:"readyTimeout"`
	StopTimeout  time.Duration `yaml:"stopTimeout"`
}
