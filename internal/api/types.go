package api

// TransportType selects how a host connects to an MCP server.
type TransportType string

const (
	TransportStdio          TransportType = "stdio"
	TransportSSE            TransportType = "sse"
	TransportStreamableHTTP TransportType = "streamable-http"
)

// BrowserMode controls whether the supervised browser shows a window.
type BrowserMode string

const (
	BrowserVisible  BrowserMode = "visible"
	BrowserHeadless BrowserMode = "headless"
)

// Valid reports whether m is one of the known modes.
func (m BrowserMode) Valid() bool {
	return m == BrowserVisible || m == BrowserHeadless
}

// BuiltinKind identifies the template a builtin definition was created from.
type BuiltinKind string

const (
	BuiltinNone              BuiltinKind = ""
	BuiltinBrowserAutomation BuiltinKind = "browser-automation"
)

// ServerDefinition is one configured MCP server.
type ServerDefinition struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Transport   TransportType     `json:"transport"`
	Command     string            `json:"command,omitempty"`
	Args        []string          `json:"args,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	URL         string            `json:"url,omitempty"`
	Enabled     bool              `json:"enabled"`
	IsBuiltin   bool              `json:"isBuiltin,omitempty"`
	BuiltinKind BuiltinKind       `json:"builtinKind,omitempty"`

	// Only meaningful for BuiltinBrowserAutomation.
	BrowserMode    BrowserMode `json:"browserMode,omitempty"`
	UserDataDir    string      `json:"userDataDir,omitempty"`
	PersistSession bool        `json:"persistSession,omitempty"`

	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// IsBrowserAutomation reports whether d is the builtin browser definition.
func (d ServerDefinition) IsBrowserAutomation() bool {
	return d.IsBuiltin && d.BuiltinKind == BuiltinBrowserAutomation
}

// Clone returns a deep copy of d.
func (d ServerDefinition) Clone() ServerDefinition {
	out := d
	if d.Args != nil {
		out.Args = append([]string(nil), d.Args...)
	}
	if d.Env != nil {
		out.Env = make(map[string]string, len(d.Env))
		for k, v := range d.Env {
			out.Env[k] = v
		}
	}
	return out
}

// ServerPatch carries the fields of an update; nil fields are left untouched.
type ServerPatch struct {
	Name           *string           `json:"name,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Command        *string           `json:"command,omitempty"`
	Args           []string          `json:"args,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	URL            *string           `json:"url,omitempty"`
	Transport      *TransportType    `json:"transport,omitempty"`
	Enabled        *bool             `json:"enabled,omitempty"`
	BrowserMode    *BrowserMode      `json:"browserMode,omitempty"`
	UserDataDir    *string           `json:"userDataDir,omitempty"`
	PersistSession *bool             `json:"persistSession,omitempty"`
}

// Apply copies the set fields of p onto d.
func (p ServerPatch) Apply(d *ServerDefinition) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Command != nil {
		d.Command = *p.Command
	}
	if p.Args != nil {
		d.Args = append([]string(nil), p.Args...)
	}
	if p.Env != nil {
		d.Env = make(map[string]string, len(p.Env))
		for k, v := range p.Env {
			d.Env[k] = v
		}
	}
	if p.URL != nil {
		d.URL = *p.URL
	}
	if p.Transport != nil {
		d.Transport = *p.Transport
	}
	if p.Enabled != nil {
		d.Enabled = *p.Enabled
	}
	if p.BrowserMode != nil {
		d.BrowserMode = *p.BrowserMode
	}
	if p.UserDataDir != nil {
		d.UserDataDir = *p.UserDataDir
	}
	if p.PersistSession != nil {
		d.PersistSession = *p.PersistSession
	}
}

// GlobalSettings are host-wide options stored next to the server list.
type GlobalSettings struct {
	DefaultTimeoutSeconds int    `json:"defaultTimeoutSeconds,omitempty"`
	AutoStartBrowser      bool   `json:"autoStartBrowser,omitempty"`
	LogLevel              string `json:"logLevel,omitempty"`
}

// SettingsPatch carries a partial GlobalSettings update.
type SettingsPatch struct {
	DefaultTimeoutSeconds *int    `json:"defaultTimeoutSeconds,omitempty"`
	AutoStartBrowser      *bool   `json:"autoStartBrowser,omitempty"`
	LogLevel              *string `json:"logLevel,omitempty"`
}

// Apply copies the set fields of p onto s.
func (p SettingsPatch) Apply(s *GlobalSettings) {
	if p.DefaultTimeoutSeconds != nil {
		s.DefaultTimeoutSeconds = *p.DefaultTimeoutSeconds
	}
	if p.AutoStartBrowser != nil {
		s.AutoStartBrowser = *p.AutoStartBrowser
	}
	if p.LogLevel != nil {
		s.LogLevel = *p.LogLevel
	}
}

// ConfigState is the persisted document: every server plus global settings.
type ConfigState struct {
	Servers  []ServerDefinition `json:"servers"`
	Settings GlobalSettings     `json:"settings"`
}

// Clone returns a deep copy of s.
func (s ConfigState) Clone() ConfigState {
	out := ConfigState{Settings: s.Settings}
	if s.Servers != nil {
		out.Servers = make([]ServerDefinition, len(s.Servers))
		for i, d := range s.Servers {
			out.Servers[i] = d.Clone()
		}
	}
	return out
}

// TransportDescriptor tells a host how to reach one server.
type TransportDescriptor struct {
	Type    TransportType     `json:"type" yaml:"type"`
	Command string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
}

// ConnectionTable maps server ids to their transport descriptors.
type ConnectionTable map[string]TransportDescriptor
