package handlers

import (
	"context"

	"mcpkeep/internal/api"
	"mcpkeep/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) handleServerList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.registry.Config())
}

func (s *Server) handleServerGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return errorResult("id argument is required")
	}
	d, err := s.registry.GetServer(id)
	if err != nil {
		return errorResult("%v", err)
	}
	return jsonResult(d)
}

func (s *Server) handleServerAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := request.RequireString("name")
	if err != nil {
		return errorResult("name argument is required")
	}
	argv, err := stringSlice(args, "args")
	if err != nil {
		return errorResult("%v", err)
	}
	env, err := stringMap(args, "env")
	if err != nil {
		return errorResult("%v", err)
	}

	d := api.ServerDefinition{
		ID:          request.GetString("id", ""),
		Name:        name,
		Description: request.GetString("description", ""),
		Transport:   api.TransportType(request.GetString("transport", string(api.TransportStdio))),
		Command:     request.GetString("command", ""),
		Args:        argv,
		Env:         env,
		URL:         request.GetString("url", ""),
		Enabled:     request.GetBool("enabled", true),
	}

	added, err := s.registry.AddServer(d)
	if err != nil {
		return errorResult("Failed to add server: %v", err)
	}
	if err := s.registry.Save(); err != nil {
		return errorResult("Server added but not saved: %v", err)
	}
	return jsonResult(added)
}

func (s *Server) handleServerUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return errorResult("id argument is required")
	}
	args := request.GetArguments()

	argv, err := stringSlice(args, "args")
	if err != nil {
		return errorResult("%v", err)
	}
	env, err := stringMap(args, "env")
	if err != nil {
		return errorResult("%v", err)
	}

	patch := api.ServerPatch{
		Name:           optString(args, "name"),
		Description:    optString(args, "description"),
		Command:        optString(args, "command"),
		Args:           argv,
		Env:            env,
		URL:            optString(args, "url"),
		Enabled:        optBool(args, "enabled"),
		UserDataDir:    optString(args, "userDataDir"),
		PersistSession: optBool(args, "persistSession"),
	}
	if mode := optString(args, "browserMode"); mode != nil {
		m := api.BrowserMode(*mode)
		patch.BrowserMode = &m
	}

	updated, err := s.registry.UpdateServer(id, patch)
	if err != nil {
		return errorResult("Failed to update server: %v", err)
	}
	return s.saveAndApply(ctx, updated)
}

func (s *Server) handleServerRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return errorResult("id argument is required")
	}
	if err := s.registry.RemoveServer(id); err != nil {
		return errorResult("Failed to remove server: %v", err)
	}
	if err := s.registry.Save(); err != nil {
		return errorResult("Server removed but not saved: %v", err)
	}
	return jsonResult(map[string]string{"removed": id})
}

func (s *Server) handleServerToggle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return errorResult("id argument is required")
	}
	updated, err := s.registry.ToggleServer(id)
	if err != nil {
		return errorResult("Failed to toggle server: %v", err)
	}
	return s.saveAndApply(ctx, updated)
}

// saveAndApply persists a change and, for the builtin browser server, brings
// the supervisor in line with it.
func (s *Server) saveAndApply(ctx context.Context, d api.ServerDefinition) (*mcp.CallToolResult, error) {
	if err := s.registry.Save(); err != nil {
		return errorResult("Server updated but not saved: %v", err)
	}
	if d.IsBrowserAutomation() {
		if _, err := s.registry.ApplyBrowserSettings(ctx); err != nil {
			return errorResult("Server saved but browser settings could not be applied: %v", err)
		}
	}
	return jsonResult(d)
}

func (s *Server) handleSettingsUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	patch := api.SettingsPatch{
		DefaultTimeoutSeconds: optInt(args, "defaultTimeoutSeconds"),
		AutoStartBrowser:      optBool(args, "autoStartBrowser"),
		LogLevel:              optString(args, "logLevel"),
	}
	var level logging.LogLevel
	if patch.LogLevel != nil {
		var ok bool
		if level, ok = logging.ParseLevel(*patch.LogLevel); !ok {
			return errorResult("Unknown log level %q", *patch.LogLevel)
		}
	}

	settings, err := s.registry.UpdateGlobalSettings(patch)
	if err != nil {
		return errorResult("Failed to update settings: %v", err)
	}
	if patch.LogLevel != nil {
		logging.SetLevel(level)
	}
	if err := s.registry.Save(); err != nil {
		return errorResult("Settings updated but not saved: %v", err)
	}
	if patch.AutoStartBrowser != nil {
		if _, err := s.registry.ApplyBrowserSettings(ctx); err != nil {
			return errorResult("Settings saved but browser settings could not be applied: %v", err)
		}
	}
	return jsonResult(settings)
}

func (s *Server) handleConfigReload(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.registry.Reload(); err != nil {
		return errorResult("%v", err)
	}
	return jsonResult(s.registry.Config())
}

func (s *Server) handleConnectionTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !request.GetBool("ensure", true) {
		return jsonResult(s.registry.BuildConnectionTable())
	}
	table, err := s.registry.BuildConnectionTableAsync(ctx)
	if err != nil {
		return errorResult("Failed to build connection table: %v", err)
	}
	return jsonResult(table)
}
