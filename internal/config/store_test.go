package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mcpkeep/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir())
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	_, err := s.Load()
	require.NoError(t, err)
	return s
}

func stdioServer(name string) api.ServerDefinition {
	return api.ServerDefinition{
		Name:    name,
		Command: "node",
		Args:    []string{name + ".js"},
		Enabled: true,
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	state, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Servers)
}

func TestStore_AddAssignsIDAndDefaults(t *testing.T) {
	s := newTestStore(t)

	d, err := s.Add(stdioServer("files"))
	require.NoError(t, err)

	assert.NotEmpty(t, d.ID)
	assert.Equal(t, api.TransportStdio, d.Transport)
	assert.Equal(t, "2024-05-01T12:00:00Z", d.CreatedAt)
	assert.Equal(t, d.CreatedAt, d.UpdatedAt)
}

func TestStore_AddRejectsDuplicateAndInvalid(t *testing.T) {
	s := newTestStore(t)

	d := stdioServer("files")
	d.ID = "fixed"
	_, err := s.Add(d)
	require.NoError(t, err)

	_, err = s.Add(d)
	assert.True(t, errors.Is(err, ErrDuplicateID))

	_, err = s.Add(api.ServerDefinition{Name: "no-command"})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "command", verrs[0].Field)
}

func TestStore_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.Load()
	require.NoError(t, err)

	added, err := s.Add(stdioServer("files"))
	require.NoError(t, err)
	timeout := 45
	_, err = s.UpdateGlobalSettings(api.SettingsPatch{DefaultTimeoutSeconds: &timeout})
	require.NoError(t, err)
	require.NoError(t, s.Save())

	_, err = os.Stat(filepath.Join(dir, "mcp-servers.json"))
	require.NoError(t, err)

	other := NewStore(dir)
	state, err := other.Load()
	require.NoError(t, err)
	require.Len(t, state.Servers, 1)
	assert.Equal(t, added.ID, state.Servers[0].ID)
	assert.Equal(t, []string{"files.js"}, state.Servers[0].Args)
	assert.Equal(t, 45, state.Settings.DefaultTimeoutSeconds)
}

func TestStore_LoadRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	doc := `{"servers":[{"id":"a","name":"a","transport":"stdio","command":"x"},{"id":"a","name":"b","transport":"stdio","command":"y"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mcp-servers.json"), []byte(doc), 0644))

	_, err := NewStore(dir).Load()
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t)
	d, err := s.Add(stdioServer("files"))
	require.NoError(t, err)

	cmd := "python"
	updated, err := s.Update(d.ID, api.ServerPatch{Command: &cmd})
	require.NoError(t, err)
	assert.Equal(t, "python", updated.Command)
	assert.Equal(t, d.Args, updated.Args)

	empty := ""
	_, err = s.Update(d.ID, api.ServerPatch{Command: &empty})
	assert.Error(t, err)

	got, err := s.FindByID(d.ID)
	require.NoError(t, err)
	assert.Equal(t, "python", got.Command, "failed update leaves the stored definition intact")

	_, err = s.Update("missing", api.ServerPatch{})
	assert.True(t, api.IsNotFound(err))
}

func TestStore_RemoveAndBuiltinProtection(t *testing.T) {
	s := newTestStore(t)
	d, err := s.Add(stdioServer("files"))
	require.NoError(t, err)
	_, err = s.Add(api.ServerDefinition{
		ID:          api.BuiltinBrowserID,
		Name:        "Browser",
		Transport:   api.TransportStdio,
		Command:     "npx",
		IsBuiltin:   true,
		BuiltinKind: api.BuiltinBrowserAutomation,
	})
	require.NoError(t, err)

	require.NoError(t, s.Remove(d.ID))
	assert.True(t, api.IsNotFound(s.Remove(d.ID)))
	assert.True(t, errors.Is(s.Remove(api.BuiltinBrowserID), ErrBuiltinProtected))

	_, err = s.FindByID(api.BuiltinBrowserID)
	assert.NoError(t, err)
}

func TestStore_ToggleAndGetEnabled(t *testing.T) {
	s := newTestStore(t)
	a, err := s.Add(stdioServer("a"))
	require.NoError(t, err)
	b, err := s.Add(stdioServer("b"))
	require.NoError(t, err)
	c, err := s.Add(stdioServer("c"))
	require.NoError(t, err)

	toggled, err := s.Toggle(b.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	enabled := s.GetEnabled()
	require.Len(t, enabled, 2)
	assert.Equal(t, a.ID, enabled[0].ID)
	assert.Equal(t, c.ID, enabled[1].ID)
}

func TestStore_UpdateGlobalSettingsRejectsNegativeTimeout(t *testing.T) {
	s := newTestStore(t)
	neg := -1
	_, err := s.UpdateGlobalSettings(api.SettingsPatch{DefaultTimeoutSeconds: &neg})
	assert.Error(t, err)
}

func TestStore_StateIsACopy(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add(stdioServer("a"))
	require.NoError(t, err)

	state := s.State()
	state.Servers[0].Name = "mutated"

	assert.Equal(t, "a", s.State().Servers[0].Name)
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
