package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"mcpkeep/pkg/logging"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads config.yaml from configPath on top of the defaults.
// A missing file is not an error.
func LoadConfig(configPath string) (HostConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return HostConfig{}, fmt.Errorf("error reading %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return HostConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	if err := config.normalize(); err != nil {
		return HostConfig{}, fmt.Errorf("invalid config %s: %w", configFilePath, err)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

func (c *HostConfig) normalize() error {
	def := GetDefaultConfig()
	if c.Control.Host == "" {
		c.Control.Host = def.Control.Host
	}
	if c.Control.Port == 0 {
		c.Control.Port = def.Control.Port
	}
	if c.Browser.Port == 0 {
		c.Browser.Port = def.Browser.Port
	}
	if c.Browser.ReadyTimeout <= 0 {
		c.Browser.ReadyTimeout = def.Browser.ReadyTimeout
	}
	if c.Browser.StopTimeout <= 0 {
		c.Browser.StopTimeout = def.Browser.StopTimeout
	}

	var errs ValidationErrors
	if c.Control.Port < 0 || c.Control.Port > 65535 {
		errs.Add("control.port", "must be between 1 and 65535", c.Control.Port)
	}
	if c.Browser.Port < 0 || c.Browser.Port > 65535 {
		errs.Add("browser.port", "must be between 1 and 65535", c.Browser.Port)
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}
