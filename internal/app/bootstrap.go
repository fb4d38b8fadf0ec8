package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"mcpkeep/internal/config"
	"mcpkeep/internal/supervisor"
	"mcpkeep/pkg/logging"
)

// Application is a bootstrapped mcpkeep host.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads configuration and builds the services.
func NewApplication(cfg *Config) (*Application, error) {
	return newApplication(cfg, nil)
}

func newApplication(cfg *Config, launcher supervisor.Launcher) (*Application, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stderr
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.InitForCLI(level, logOutput)

	if cfg.Host == nil {
		host, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load host configuration from %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration from %s: %w", cfg.ConfigPath, err)
		}
		cfg.Host = &host
	}
	applyLogLevel(cfg, cfg.Host.LogLevel)

	services, err := InitializeServices(cfg, launcher)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	applyLogLevel(cfg, services.Registry.Config().Settings.LogLevel)

	return &Application{config: cfg, services: services}, nil
}

// Services exposes the wired components.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves until ctx is cancelled or the process is signalled.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	logging.Info("App", "mcpkeep is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	logging.Info("App", "Shutting down")
	return a.Shutdown(context.WithoutCancel(ctx))
}

// Start brings up the control server, the file watcher and, when configured,
// the browser process.
func (a *Application) Start(ctx context.Context) error {
	s := a.services

	if err := s.Handlers.Start(a.config.Host.Control.Address()); err != nil {
		return fmt.Errorf("failed to start control server: %w", err)
	}

	s.Watcher = config.NewWatcher(s.Store.Path(), func() { a.reload(ctx) })
	if err := s.Watcher.Start(); err != nil {
		// Editing the file by hand then needs core_config_reload.
		logging.Warn("App", "File watching disabled: %v", err)
		s.Watcher = nil
	}

	if _, err := s.Registry.ApplyBrowserSettings(ctx); err != nil {
		logging.Error("App", err, "Failed to start browser server")
	}
	return nil
}

// Shutdown stops the watcher, the browser process and the control server.
func (a *Application) Shutdown(ctx context.Context) error {
	s := a.services
	if s.Watcher != nil {
		s.Watcher.Stop()
	}
	s.Supervisor.Cleanup(ctx)

	if err := s.Handlers.Stop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to stop control server: %w", err)
	}
	return nil
}

func (a *Application) reload(ctx context.Context) {
	s := a.services
	if err := s.Registry.Reload(); err != nil {
		logging.Error("App", err, "Failed to reload %s", s.Store.Path())
		return
	}
	logging.Info("App", "Reloaded %s", s.Store.Path())
	applyLogLevel(a.config, s.Registry.Config().Settings.LogLevel)
	if _, err := s.Registry.ApplyBrowserSettings(ctx); err != nil {
		logging.Error("App", err, "Failed to apply browser settings after reload")
	}
}

func applyLogLevel(cfg *Config, name string) {
	if cfg.Debug || name == "" {
		return
	}
	level, ok := logging.ParseLevel(name)
	if !ok {
		logging.Warn("App", "Ignoring unknown log level %q", name)
		return
	}
	logging.SetLevel(level)
}
