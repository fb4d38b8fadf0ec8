// Package builtin constructs the server definitions mcpkeep ships with.
package builtin

import (
	"fmt"

	"mcpkeep/internal/api"
	"mcpkeep/pkg/logging"
)

// BrowserName is the display name of the builtin browser server.
const BrowserName = "Browser Automation"

// NewBrowserDefinition returns the browser-automation template. It starts
// disabled, visible and without persistence until the user opts in.
func NewBrowserDefinition() api.ServerDefinition {
	return api.ServerDefinition{
		ID:             api.BuiltinBrowserID,
		Name:           BrowserName,
		Description:    "Playwright browser automation (navigate, click, fill forms, take snapshots)",
		Transport:      api.TransportStdio,
		Command:        api.PackageRunner,
		Args:           []string{api.BrowserPackage},
		Enabled:        false,
		IsBuiltin:      true,
		BuiltinKind:    api.BuiltinBrowserAutomation,
		BrowserMode:    api.BrowserVisible,
		PersistSession: false,
	}
}

// Store is the subset of the config store the template needs.
type Store interface {
	FindByID(id string) (api.ServerDefinition, error)
	Add(d api.ServerDefinition) (api.ServerDefinition, error)
}

// EnsureBrowserDefinition adds the browser definition when it is missing and
// reports whether it did. An existing definition is never replaced.
func EnsureBrowserDefinition(store Store) (bool, error) {
	_, err := store.FindByID(api.BuiltinBrowserID)
	if err == nil {
		return false, nil
	}
	if !api.IsNotFound(err) {
		return false, fmt.Errorf("failed to look up builtin browser server: %w", err)
	}

	if _, err := store.Add(NewBrowserDefinition()); err != nil {
		return false, fmt.Errorf("failed to add builtin browser server: %w", err)
	}
	logging.Info("Builtin", "Registered builtin server %s", api.BuiltinBrowserID)
	return true, nil
}
