package registry

import (
	"context"
	"fmt"

	"mcpkeep/internal/api"
	"mcpkeep/internal/supervisor"
	"mcpkeep/pkg/logging"
)

// Store is the configuration collaborator.
type Store interface {
	Load() (api.ConfigState, error)
	Save() error
	State() api.ConfigState
	Replace(state api.ConfigState) error
	FindByID(id string) (api.ServerDefinition, error)
	Add(d api.ServerDefinition) (api.ServerDefinition, error)
	Update(id string, patch api.ServerPatch) (api.ServerDefinition, error)
	Remove(id string) error
	Toggle(id string) (api.ServerDefinition, error)
	UpdateGlobalSettings(patch api.SettingsPatch) (api.GlobalSettings, error)
	GetEnabled() []api.ServerDefinition
}

// Supervisor is the process supervisor collaborator.
type Supervisor interface {
	Start(ctx context.Context, override *supervisor.ConfigOverride) (string, error)
	Stop(ctx context.Context)
	UpdateConfig(ctx context.Context, override supervisor.ConfigOverride) error
	IsRunning() bool
	Endpoint() string
	Config() supervisor.Config
}

// Registry selects transports for the configured servers.
type Registry struct {
	store Store
	sup   Supervisor
}

// New loads the configuration from store and returns a registry bound to sup.
func New(store Store, sup Supervisor) (*Registry, error) {
	if _, err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load server configuration: %w", err)
	}
	return &Registry{store: store, sup: sup}, nil
}

// Reload re-reads the configuration from disk.
func (r *Registry) Reload() error {
	state, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("failed to reload server configuration: %w", err)
	}
	logging.Info("Registry", "Reloaded configuration with %d servers", len(state.Servers))
	return nil
}

// Save persists the current configuration.
func (r *Registry) Save() error {
	return r.store.Save()
}

// Config returns a copy of the current configuration.
func (r *Registry) Config() api.ConfigState {
	return r.store.State()
}

// SetConfig replaces the whole configuration in memory.
func (r *Registry) SetConfig(state api.ConfigState) error {
	return r.store.Replace(state)
}

// GetServer returns one definition.
func (r *Registry) GetServer(id string) (api.ServerDefinition, error) {
	return r.store.FindByID(id)
}

func (r *Registry) AddServer(d api.ServerDefinition) (api.ServerDefinition, error) {
	return r.store.Add(d)
}

func (r *Registry) UpdateServer(id string, patch api.ServerPatch) (api.ServerDefinition, error) {
	return r.store.Update(id, patch)
}

func (r *Registry) RemoveServer(id string) error {
	return r.store.Remove(id)
}

func (r *Registry) ToggleServer(id string) (api.ServerDefinition, error) {
	return r.store.Toggle(id)
}

func (r *Registry) UpdateGlobalSettings(patch api.SettingsPatch) (api.GlobalSettings, error) {
	return r.store.UpdateGlobalSettings(patch)
}

// GetEnabledServers returns the enabled definitions in configured order.
func (r *Registry) GetEnabledServers() []api.ServerDefinition {
	return r.store.GetEnabled()
}

// browserDefinition returns the builtin browser definition if present.
func (r *Registry) browserDefinition() (api.ServerDefinition, bool) {
	d, err := r.store.FindByID(api.BuiltinBrowserID)
	if err != nil || !d.IsBrowserAutomation() {
		return api.ServerDefinition{}, false
	}
	return d, true
}

// NeedsSupervisedProcess reports whether the builtin browser server exists, is
// enabled and wants its session persisted.
func (r *Registry) NeedsSupervisedProcess() bool {
	d, ok := r.browserDefinition()
	return ok && d.Enabled && d.PersistSession
}

// EnsureSupervisedProcessRunning brings the supervisor in line with the
// configuration. It returns the SSE endpoint when the process is needed, and ""
// after stopping it when it is not.
func (r *Registry) EnsureSupervisedProcessRunning(ctx context.Context) (string, error) {
	d, ok := r.browserDefinition()
	if !ok || !d.Enabled || !d.PersistSession {
		if r.sup.IsRunning() {
			logging.Info("Registry", "Browser session persistence not required, stopping supervised process")
		}
		r.sup.Stop(ctx)
		return "", nil
	}

	if r.sup.IsRunning() {
		if ep := r.sup.Endpoint(); ep != "" {
			return ep, nil
		}
	}

	override := supervisor.OverrideFromDefinition(d)
	ep, err := r.sup.Start(ctx, &override)
	if err != nil {
		return "", fmt.Errorf("failed to start persistent browser server: %w", err)
	}
	return ep, nil
}

// ApplyBrowserSettings reconciles the supervisor after the builtin browser
// definition or the global settings changed. A running process is restarted
// only when its launch configuration differs; a stopped one is started only
// when AutoStartBrowser is set.
func (r *Registry) ApplyBrowserSettings(ctx context.Context) (string, error) {
	if !r.NeedsSupervisedProcess() {
		return r.EnsureSupervisedProcessRunning(ctx)
	}
	d, _ := r.browserDefinition()

	if r.sup.IsRunning() {
		override := supervisor.OverrideFromDefinition(d)
		current := r.sup.Config()
		if current.Merge(override) != current {
			logging.Info("Registry", "Browser settings changed, applying to supervised process")
			if err := r.sup.UpdateConfig(ctx, override); err != nil {
				return "", fmt.Errorf("failed to apply browser settings: %w", err)
			}
		}
		return r.sup.Endpoint(), nil
	}

	if r.store.State().Settings.AutoStartBrowser {
		return r.EnsureSupervisedProcessRunning(ctx)
	}
	return "", nil
}

// BuildConnectionTable returns transport descriptors for the enabled servers
// without starting anything. The persistent browser server appears only while
// the supervisor has an endpoint.
func (r *Registry) BuildConnectionTable() api.ConnectionTable {
	table := make(api.ConnectionTable)

	for _, d := range r.store.GetEnabled() {
		switch {
		case d.IsBrowserAutomation() && d.PersistSession:
			ep := r.sup.Endpoint()
			if !r.sup.IsRunning() || ep == "" {
				logging.Debug("Registry", "Omitting %s: supervised browser server is not running", d.ID)
				continue
			}
			table[d.ID] = api.TransportDescriptor{Type: api.TransportSSE, URL: ep}

		case d.Transport == api.TransportStdio:
			table[d.ID] = stdioDescriptor(d)

		default:
			logging.Debug("Registry", "Omitting %s: transport %q is not launched by the host", d.ID, d.Transport)
		}
	}
	return table
}

// BuildConnectionTableAsync ensures the supervised process matches the
// configuration and then builds the table.
func (r *Registry) BuildConnectionTableAsync(ctx context.Context) (api.ConnectionTable, error) {
	if _, err := r.EnsureSupervisedProcessRunning(ctx); err != nil {
		return nil, err
	}
	return r.BuildConnectionTable(), nil
}

func stdioDescriptor(d api.ServerDefinition) api.TransportDescriptor {
	d = d.Clone()
	args := d.Args
	if d.IsBrowserAutomation() {
		if d.BrowserMode == api.BrowserHeadless {
			args = append(args, "--headless")
		}
		if d.UserDataDir != "" {
			args = append(args, "--user-data-dir", d.UserDataDir)
		}
	}
	return api.TransportDescriptor{
		Type:    api.TransportStdio,
		Command: d.Command,
		Args:    args,
		Env:     d.Env,
	}
}
