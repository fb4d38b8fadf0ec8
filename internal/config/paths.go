package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	userConfigDir  = ".config/mcpkeep"
	configFileName = "config.yaml"
	stateFileName  = "mcp-servers.json"
)

// osUserHomeDir is swapped in tests.
var osUserHomeDir = os.UserHomeDir

// DefaultConfigDir returns ~/.config/mcpkeep.
func DefaultConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

func GetDefaultConfigPathOrPanic() string {
	dir, err := DefaultConfigDir()
	if err != nil {
		panic(err)
	}
	return dir
}

// StateFilePath returns the location of the server list inside dir.
func StateFilePath(dir string) string {
	return filepath.Join(dir, stateFileName)
}
