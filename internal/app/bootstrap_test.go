package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mcpkeep/internal/api"
	"mcpkeep/internal/config"
	"mcpkeep/internal/supervisor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// browserProcess prints a readiness line and exits when terminated.
type browserProcess struct {
	outR, errR *io.PipeReader
	outW, errW *io.PipeWriter
	done       chan struct{}
	once       sync.Once
}

func newBrowserProcess() *browserProcess {
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	p := &browserProcess{outR: outR, outW: outW, errR: errR, errW: errW, done: make(chan struct{})}
	go p.outW.Write([]byte("Listening on http://localhost:8931\n"))
	return p
}

func (p *browserProcess) Pid() int          { return 1234 }
func (p *browserProcess) Stdout() io.Reader { return p.outR }
func (p *browserProcess) Stderr() io.Reader { return p.errR }
func (p *browserProcess) Kill() error       { return p.Terminate() }

func (p *browserProcess) Close() error {
	p.outR.Close()
	p.errR.Close()
	return nil
}

func (p *browserProcess) Terminate() error {
	p.once.Do(func() {
		p.outW.Close()
		p.errW.Close()
		close(p.done)
	})
	return nil
}

func (p *browserProcess) Wait() error {
	<-p.done
	return errors.New("signal: terminated")
}

type countingLauncher struct {
	launches atomic.Int32
}

func (l *countingLauncher) Launch(command string, args []string) (supervisor.Process, error) {
	l.launches.Add(1)
	return newBrowserProcess(), nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	host := config.GetDefaultConfig()
	host.Control.Host = "127.0.0.1"
	host.Control.Port = 0
	host.Browser.ReadyTimeout = time.Second
	host.Browser.StopTimeout = time.Second

	cfg := NewConfig(false, true, t.TempDir(), "test")
	cfg.Host = &host
	return cfg
}

func TestNewApplication_RegistersBuiltinBrowser(t *testing.T) {
	cfg := testConfig(t)

	a, err := newApplication(cfg, &countingLauncher{})
	require.NoError(t, err)

	d, err := a.Services().Registry.GetServer(api.BuiltinBrowserID)
	require.NoError(t, err)
	assert.True(t, d.IsBuiltin)
	assert.False(t, d.Enabled)

	_, err = os.Stat(a.Services().Store.Path())
	assert.NoError(t, err, "store is written on first run")

	// A second bootstrap does not duplicate the builtin definition.
	again := testConfig(t)
	again.ConfigPath = cfg.ConfigPath
	b, err := newApplication(again, &countingLauncher{})
	require.NoError(t, err)
	assert.Len(t, b.Services().Registry.Config().Servers, 1)
}

func TestNewApplication_LoadsHostConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte("control:\n  port: 9100\nbrowser:\n  port: 9200\n"), 0o644))

	a, err := newApplication(NewConfig(false, true, dir, "test"), &countingLauncher{})
	require.NoError(t, err)
	assert.Equal(t, 9100, a.config.Host.Control.Port)
	assert.Equal(t, 9200, a.Services().Supervisor.Config().Port)
}

func TestStart_AutoStartsPersistentBrowser(t *testing.T) {
	cfg := testConfig(t)
	launcher := &countingLauncher{}

	// Seed a store with a persistent, auto-started browser.
	store := config.NewStore(cfg.ConfigPath)
	_, err := store.Load()
	require.NoError(t, err)
	_, err = store.UpdateGlobalSettings(api.SettingsPatch{AutoStartBrowser: ptr(true)})
	require.NoError(t, err)
	require.NoError(t, store.Save())

	a, err := newApplication(cfg, launcher)
	require.NoError(t, err)
	_, err = a.Services().Registry.UpdateServer(api.BuiltinBrowserID, api.ServerPatch{
		Enabled:        ptr(true),
		PersistSession: ptr(true),
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))

	assert.Equal(t, int32(1), launcher.launches.Load())
	assert.True(t, a.Services().Supervisor.IsRunning())

	require.NoError(t, a.Shutdown(ctx))
	assert.Equal(t, api.StateStopped, a.Services().Supervisor.Status())
}

func TestWatcherReloadsRegistry(t *testing.T) {
	cfg := testConfig(t)
	a, err := newApplication(cfg, &countingLauncher{})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	defer func() { _ = a.Shutdown(ctx) }()

	// Another process edits the file.
	other := config.NewStore(cfg.ConfigPath)
	_, err = other.Load()
	require.NoError(t, err)
	_, err = other.Add(api.ServerDefinition{ID: "files", Name: "files", Command: "node", Enabled: true})
	require.NoError(t, err)
	require.NoError(t, other.Save())

	assert.Eventually(t, func() bool {
		_, err := a.Services().Registry.GetServer("files")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}

func ptr[T any](v T) *T { return &v }
