package registry

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"mcpkeep/internal/api"
	"mcpkeep/internal/builtin"
	"mcpkeep/internal/config"
	"mcpkeep/internal/supervisor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSupervisor struct {
	mu        sync.Mutex
	running   bool
	endpoint  string
	startErr  error
	starts    []supervisor.ConfigOverride
	updates   []supervisor.ConfigOverride
	stopCalls int
	cfg       supervisor.Config
}

func (f *fakeSupervisor) Start(ctx context.Context, o *supervisor.ConfigOverride) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o != nil {
		f.starts = append(f.starts, *o)
	} else {
		f.starts = append(f.starts, supervisor.ConfigOverride{})
	}
	if f.startErr != nil {
		return "", f.startErr
	}
	if o != nil {
		f.cfg = f.cfg.Merge(*o)
	}
	f.running = true
	f.endpoint = "http://localhost:8931/sse"
	return f.endpoint, nil
}

func (f *fakeSupervisor) UpdateConfig(ctx context.Context, o supervisor.ConfigOverride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, o)
	f.cfg = f.cfg.Merge(o)
	return nil
}

func (f *fakeSupervisor) Config() supervisor.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeSupervisor) Stop(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	f.running = false
	f.endpoint = ""
}

func (f *fakeSupervisor) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeSupervisor) Endpoint() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.endpoint
}

func newTestRegistry(t *testing.T, sup *fakeSupervisor) (*Registry, *config.Store) {
	t.Helper()
	store := config.NewStore(t.TempDir())
	r, err := New(store, sup)
	require.NoError(t, err)
	return r, store
}

func addBrowser(t *testing.T, r *Registry, enabled, persist bool, mode api.BrowserMode, dir string) {
	t.Helper()
	d := builtin.NewBrowserDefinition()
	d.Enabled = enabled
	d.PersistSession = persist
	d.BrowserMode = mode
	d.UserDataDir = dir
	_, err := r.AddServer(d)
	require.NoError(t, err)
}

func addStdio(t *testing.T, r *Registry, id string, enabled bool) {
	t.Helper()
	_, err := r.AddServer(api.ServerDefinition{
		ID:      id,
		Name:    id,
		Command: "node",
		Args:    []string{id + ".js"},
		Env:     map[string]string{"TOKEN": id},
		Enabled: enabled,
	})
	require.NoError(t, err)
}

func TestGetEnabledServers_PreservesOrder(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeSupervisor{})
	addStdio(t, r, "c", true)
	addStdio(t, r, "a", false)
	addStdio(t, r, "b", true)

	var ids []string
	for _, d := range r.GetEnabledServers() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"c", "b"}, ids)
}

func TestNeedsSupervisedProcess(t *testing.T) {
	tests := []struct {
		name    string
		browser bool
		enabled bool
		persist bool
		want    bool
	}{
		{"no browser definition", false, false, false, false},
		{"disabled", true, false, true, false},
		{"enabled without persistence", true, true, false, false},
		{"enabled with persistence", true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry(t, &fakeSupervisor{})
			if tt.browser {
				addBrowser(t, r, tt.enabled, tt.persist, api.BrowserVisible, "")
			}
			assert.Equal(t, tt.want, r.NeedsSupervisedProcess())
		})
	}
}

func TestEnsureSupervisedProcessRunning_StartsWithDefinitionSettings(t *testing.T) {
	sup := &fakeSupervisor{}
	r, _ := newTestRegistry(t, sup)
	addBrowser(t, r, true, true, api.BrowserHeadless, "/profiles/main")

	ep, err := r.EnsureSupervisedProcessRunning(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8931/sse", ep)

	require.Len(t, sup.starts, 1)
	assert.Equal(t, api.BrowserHeadless, *sup.starts[0].Mode)
	assert.Equal(t, "/profiles/main", *sup.starts[0].UserDataDir)

	// Already running: cached endpoint, no new start.
	ep, err = r.EnsureSupervisedProcessRunning(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8931/sse", ep)
	assert.Len(t, sup.starts, 1)
}

func TestEnsureSupervisedProcessRunning_StopsWhenNotNeeded(t *testing.T) {
	sup := &fakeSupervisor{running: true, endpoint: "http://localhost:8931/sse"}
	r, _ := newTestRegistry(t, sup)
	addBrowser(t, r, true, false, api.BrowserVisible, "")

	ep, err := r.EnsureSupervisedProcessRunning(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ep)
	assert.Equal(t, 1, sup.stopCalls)
	assert.False(t, sup.IsRunning())
	assert.Empty(t, sup.starts)
}

func TestEnsureSupervisedProcessRunning_PropagatesStartError(t *testing.T) {
	sup := &fakeSupervisor{startErr: errors.New("npx missing")}
	r, _ := newTestRegistry(t, sup)
	addBrowser(t, r, true, true, api.BrowserVisible, "")

	_, err := r.EnsureSupervisedProcessRunning(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "npx missing")
}

func TestBuildConnectionTable(t *testing.T) {
	sup := &fakeSupervisor{}
	r, _ := newTestRegistry(t, sup)
	addStdio(t, r, "files", true)
	addStdio(t, r, "disabled", false)
	addBrowser(t, r, true, true, api.BrowserVisible, "")
	_, err := r.AddServer(api.ServerDefinition{
		ID: "remote", Name: "remote", Transport: api.TransportSSE, URL: "http://remote/sse", Enabled: true,
	})
	require.NoError(t, err)

	// Supervisor not running: persistent browser and network entries omitted.
	table := r.BuildConnectionTable()
	assert.Len(t, table, 1)
	assert.Equal(t, api.TransportDescriptor{
		Type:    api.TransportStdio,
		Command: "node",
		Args:    []string{"files.js"},
		Env:     map[string]string{"TOKEN": "files"},
	}, table["files"])
	assert.Empty(t, sup.starts, "BuildConnectionTable never starts the supervisor")

	// Supervisor running: browser included as SSE.
	sup.running = true
	sup.endpoint = "http://localhost:8931/sse"
	table = r.BuildConnectionTable()
	assert.Len(t, table, 2)
	assert.Equal(t, api.TransportDescriptor{Type: api.TransportSSE, URL: "http://localhost:8931/sse"}, table[api.BuiltinBrowserID])
}

func TestBuildConnectionTable_NonPersistentBrowserIsStdio(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeSupervisor{})
	addBrowser(t, r, true, false, api.BrowserHeadless, "/p")

	table := r.BuildConnectionTable()
	d := table[api.BuiltinBrowserID]
	assert.Equal(t, api.TransportStdio, d.Type)
	assert.Equal(t, "npx", d.Command)
	assert.Equal(t, []string{"@playwright/mcp@latest", "--headless", "--user-data-dir", "/p"}, d.Args)
}

func TestBuildConnectionTableAsync(t *testing.T) {
	sup := &fakeSupervisor{}
	r, _ := newTestRegistry(t, sup)
	addBrowser(t, r, true, true, api.BrowserVisible, "")

	table, err := r.BuildConnectionTableAsync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8931/sse", table[api.BuiltinBrowserID].URL)
	assert.Len(t, sup.starts, 1)
}

func TestBuildConnectionTableAsync_StartError(t *testing.T) {
	sup := &fakeSupervisor{startErr: errors.New("boom")}
	r, _ := newTestRegistry(t, sup)
	addBrowser(t, r, true, true, api.BrowserVisible, "")

	_, err := r.BuildConnectionTableAsync(context.Background())
	assert.Error(t, err)
}

func TestReloadAndSave(t *testing.T) {
	sup := &fakeSupervisor{}
	r, store := newTestRegistry(t, sup)
	addStdio(t, r, "files", true)
	require.NoError(t, r.Save())

	other := config.NewStore(dirOf(store))
	r2, err := New(other, sup)
	require.NoError(t, err)
	assert.Len(t, r2.GetEnabledServers(), 1)

	_, err = r.ToggleServer("files")
	require.NoError(t, err)
	require.NoError(t, r.Save())

	require.NoError(t, r2.Reload())
	assert.Empty(t, r2.GetEnabledServers())
}

func TestRemoveBuiltinRefused(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeSupervisor{})
	addBrowser(t, r, false, false, api.BrowserVisible, "")

	err := r.RemoveServer(api.BuiltinBrowserID)
	assert.ErrorIs(t, err, config.ErrBuiltinProtected)
}

func TestApplyBrowserSettings(t *testing.T) {
	t.Run("restarts running process when mode changes", func(t *testing.T) {
		sup := &fakeSupervisor{}
		r, _ := newTestRegistry(t, sup)
		addBrowser(t, r, true, true, api.BrowserVisible, "")
		_, err := r.EnsureSupervisedProcessRunning(context.Background())
		require.NoError(t, err)

		mode := api.BrowserHeadless
		_, err = r.UpdateServer(api.BuiltinBrowserID, api.ServerPatch{BrowserMode: &mode})
		require.NoError(t, err)

		ep, err := r.ApplyBrowserSettings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8931/sse", ep)
		require.Len(t, sup.updates, 1)
		assert.Equal(t, api.BrowserHeadless, *sup.updates[0].Mode)

		_, err = r.ApplyBrowserSettings(context.Background())
		require.NoError(t, err)
		assert.Len(t, sup.updates, 1, "unchanged settings do not restart")
	})

	t.Run("stops when persistence is turned off", func(t *testing.T) {
		sup := &fakeSupervisor{running: true, endpoint: "http://localhost:8931/sse"}
		r, _ := newTestRegistry(t, sup)
		addBrowser(t, r, true, false, api.BrowserVisible, "")

		_, err := r.ApplyBrowserSettings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sup.stopCalls)
	})

	t.Run("starts only with auto start", func(t *testing.T) {
		sup := &fakeSupervisor{}
		r, _ := newTestRegistry(t, sup)
		addBrowser(t, r, true, true, api.BrowserVisible, "")

		ep, err := r.ApplyBrowserSettings(context.Background())
		require.NoError(t, err)
		assert.Empty(t, ep)
		assert.Empty(t, sup.starts)

		auto := true
		_, err = r.UpdateGlobalSettings(api.SettingsPatch{AutoStartBrowser: &auto})
		require.NoError(t, err)

		ep, err = r.ApplyBrowserSettings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8931/sse", ep)
		assert.Len(t, sup.starts, 1)
	})
}

func dirOf(s *config.Store) string {
	return filepath.Dir(s.Path())
}

func TestSetConfig(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeSupervisor{})
	addStdio(t, r, "old", true)

	next := api.ConfigState{
		Servers: []api.ServerDefinition{
			{ID: "files", Name: "files", Transport: api.TransportStdio, Command: "node", Enabled: true},
			{ID: "search", Name: "search", Transport: api.TransportStdio, Command: "node", Enabled: false},
		},
		Settings: api.GlobalSettings{DefaultTimeoutSeconds: 60},
	}
	require.NoError(t, r.SetConfig(next))

	cfg := r.Config()
	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, "files", cfg.Servers[0].ID)
	assert.Equal(t, 60, cfg.Settings.DefaultTimeoutSeconds)
	_, err := r.GetServer("old")
	assert.True(t, api.IsNotFound(err))

	// The caller's slice is copied.
	next.Servers[0].Name = "changed"
	assert.Equal(t, "files", r.Config().Servers[0].Name)
}

func TestSetConfig_RejectsDuplicateIDs(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeSupervisor{})
	addStdio(t, r, "files", true)

	err := r.SetConfig(api.ConfigState{Servers: []api.ServerDefinition{
		{ID: "dup", Name: "a", Command: "node"},
		{ID: "dup", Name: "b", Command: "node"},
	}})
	assert.ErrorIs(t, err, config.ErrDuplicateID)

	ids := []string{}
	for _, d := range r.Config().Servers {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"files"}, ids, "rejected replacement leaves the configuration untouched")
}
