package app

import (
	"fmt"

	"mcpkeep/internal/builtin"
	"mcpkeep/internal/config"
	"mcpkeep/internal/handlers"
	"mcpkeep/internal/registry"
	"mcpkeep/internal/supervisor"
	"mcpkeep/pkg/logging"
)

// Services holds the long-lived components of a running mcpkeep.
type Services struct {
	Store      *config.Store
	Supervisor *supervisor.Supervisor
	Registry   *registry.Registry
	Handlers   *handlers.Server
	Watcher    *config.Watcher
}

// InitializeServices builds every component. launcher may be nil to launch
// real processes.
func InitializeServices(cfg *Config, launcher supervisor.Launcher) (*Services, error) {
	host := cfg.Host

	store := config.NewStore(cfg.ConfigPath)
	if _, err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load server store: %w", err)
	}

	added, err := builtin.EnsureBrowserDefinition(store)
	if err != nil {
		return nil, fmt.Errorf("failed to register builtin browser server: %w", err)
	}
	if added {
		if err := store.Save(); err != nil {
			return nil, fmt.Errorf("failed to save server store: %w", err)
		}
		logging.Info("Services", "Registered builtin browser server in %s", store.Path())
	}

	sup := supervisor.New(supervisor.Options{
		Launcher: launcher,
		Config: supervisor.Config{
			Port: host.Browser.Port,
			Mode: supervisor.DefaultConfig().Mode,
		},
		ReadyTimeout: host.Browser.ReadyTimeout,
		StopTimeout:  host.Browser.StopTimeout,
	})

	reg, err := registry.New(store, sup)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	return &Services{
		Store:      store,
		Supervisor: sup,
		Registry:   reg,
		Handlers:   handlers.New(reg, sup, cfg.Version),
	}, nil
}
