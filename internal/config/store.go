package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mcpkeep/internal/api"
	"mcpkeep/pkg/logging"

	"github.com/google/uuid"
)

// Store keeps the ConfigState document in memory and persists it as JSON.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	path  string
	state api.ConfigState

	now func() time.Time
}

// NewStore creates a store backed by mcp-servers.json inside configDir.
// Nothing is read until Load is called.
func NewStore(configDir string) *Store {
	return &Store{
		path: StateFilePath(configDir),
		now:  time.Now,
	}
}

// Path returns the JSON file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory state with the file content.
// A missing file yields an empty state.
func (s *Store) Load() (api.ConfigState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigStore", "No state file at %s, starting empty", s.path)
			s.mu.Lock()
			s.state = api.ConfigState{}
			s.mu.Unlock()
			return api.ConfigState{}, nil
		}
		return api.ConfigState{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var state api.ConfigState
	if err := json.Unmarshal(data, &state); err != nil {
		return api.ConfigState{}, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if err := checkUniqueIDs(state.Servers); err != nil {
		return api.ConfigState{}, fmt.Errorf("invalid state file %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	logging.Debug("ConfigStore", "Loaded %d servers from %s", len(state.Servers), s.path)
	return state.Clone(), nil
}

// Save writes the in-memory state to disk through a temp file and rename.
func (s *Store) Save() error {
	s.mu.RLock()
	state := s.state.Clone()
	s.mu.RUnlock()

	if state.Servers == nil {
		state.Servers = []api.ServerDefinition{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mcp-servers-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}

	logging.Debug("ConfigStore", "Saved %d servers to %s", len(state.Servers), s.path)
	return nil
}

// State returns a copy of the current state.
func (s *Store) State() api.ConfigState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Replace swaps the whole state after checking id uniqueness.
func (s *Store) Replace(state api.ConfigState) error {
	if err := checkUniqueIDs(state.Servers); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = state.Clone()
	s.mu.Unlock()
	return nil
}

// FindByID returns a copy of the definition with the given id.
func (s *Store) FindByID(id string) (api.ServerDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return api.ServerDefinition{}, api.NewServerNotFoundError(id)
	}
	return s.state.Servers[idx].Clone(), nil
}

// Add validates and appends d. An empty id is filled with GenerateID and an
// empty transport defaults to stdio.
func (s *Store) Add(d api.ServerDefinition) (api.ServerDefinition, error) {
	d = d.Clone()
	if d.ID == "" {
		d.ID = GenerateID()
	}
	if d.Transport == "" {
		d.Transport = api.TransportStdio
	}
	if err := ValidateDefinition(d); err != nil {
		return api.ServerDefinition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(d.ID) >= 0 {
		return api.ServerDefinition{}, fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
	}

	ts := s.timestamp()
	d.CreatedAt = ts
	d.UpdatedAt = ts
	s.state.Servers = append(s.state.Servers, d)

	logging.Info("ConfigStore", "Added server %s (%s)", d.ID, d.Name)
	return d.Clone(), nil
}

// Update applies patch to the definition with the given id.
func (s *Store) Update(id string, patch api.ServerPatch) (api.ServerDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return api.ServerDefinition{}, api.NewServerNotFoundError(id)
	}

	updated := s.state.Servers[idx].Clone()
	patch.Apply(&updated)
	if updated.IsBuiltin && updated.Transport != s.state.Servers[idx].Transport {
		return api.ServerDefinition{}, ValidationErrors{{Field: "transport", Message: "cannot be changed on builtin servers"}}
	}
	if err := ValidateDefinition(updated); err != nil {
		return api.ServerDefinition{}, err
	}

	updated.UpdatedAt = s.timestamp()
	s.state.Servers[idx] = updated

	logging.Debug("ConfigStore", "Updated server %s", id)
	return updated.Clone(), nil
}

// Remove deletes the definition with the given id. Builtin entries are refused.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return api.NewServerNotFoundError(id)
	}
	if s.state.Servers[idx].IsBuiltin {
		return fmt.Errorf("%w: %s", ErrBuiltinProtected, id)
	}

	s.state.Servers = append(s.state.Servers[:idx], s.state.Servers[idx+1:]...)
	logging.Info("ConfigStore", "Removed server %s", id)
	return nil
}

// Toggle flips the enabled flag and returns the updated definition.
func (s *Store) Toggle(id string) (api.ServerDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return api.ServerDefinition{}, api.NewServerNotFoundError(id)
	}

	d := &s.state.Servers[idx]
	d.Enabled = !d.Enabled
	d.UpdatedAt = s.timestamp()

	logging.Info("ConfigStore", "Server %s enabled=%t", id, d.Enabled)
	return d.Clone(), nil
}

// UpdateGlobalSettings applies patch to the global settings.
func (s *Store) UpdateGlobalSettings(patch api.SettingsPatch) (api.GlobalSettings, error) {
	if patch.DefaultTimeoutSeconds != nil && *patch.DefaultTimeoutSeconds < 0 {
		return api.GlobalSettings{}, ValidationError{Field: "defaultTimeoutSeconds", Value: *patch.DefaultTimeoutSeconds, Message: "must not be negative"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	patch.Apply(&s.state.Settings)
	return s.state.Settings, nil
}

// GetEnabled returns the enabled definitions in stored order.
func (s *Store) GetEnabled() []api.ServerDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []api.ServerDefinition
	for _, d := range s.state.Servers {
		if d.Enabled {
			out = append(out, d.Clone())
		}
	}
	return out
}

// GenerateID returns a fresh random server id.
func GenerateID() string {
	return uuid.NewString()
}

func (s *Store) indexOf(id string) int {
	for i := range s.state.Servers {
		if s.state.Servers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func checkUniqueIDs(servers []api.ServerDefinition) error {
	seen := make(map[string]struct{}, len(servers))
	for _, d := range servers {
		if _, ok := seen[d.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}
