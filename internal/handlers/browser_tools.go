package handlers

import (
	"context"

	"mcpkeep/internal/api"
	"mcpkeep/internal/preflight"
	"mcpkeep/internal/supervisor"

	"github.com/mark3labs/mcp-go/mcp"
)

// BrowserStartResult is returned by core_browser_start and core_browser_restart.
type BrowserStartResult struct {
	Endpoint string           `json:"endpoint"`
	Status   api.ServiceState `json:"status"`
}

func browserOverride(args map[string]any) (*supervisor.ConfigOverride, error) {
	o := &supervisor.ConfigOverride{
		Port:        optInt(args, "port"),
		UserDataDir: optString(args, "userDataDir"),
	}
	if mode := optString(args, "mode"); mode != nil {
		m := api.BrowserMode(*mode)
		if !m.Valid() {
			return nil, errInvalidMode(*mode)
		}
		o.Mode = &m
	}
	if o.Port != nil && (*o.Port <= 0 || *o.Port > 65535) {
		return nil, errInvalidPort(*o.Port)
	}
	return o, nil
}

func (s *Server) handleBrowserStart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	override, err := browserOverride(request.GetArguments())
	if err != nil {
		return errorResult("%v", err)
	}
	ep, err := s.sup.Start(ctx, override)
	if err != nil {
		return errorResult("Failed to start browser server: %v", err)
	}
	return jsonResult(BrowserStartResult{Endpoint: ep, Status: s.sup.Snapshot().State})
}

func (s *Server) handleBrowserStop(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.sup.Stop(ctx)
	return jsonResult(s.sup.Snapshot())
}

func (s *Server) handleBrowserRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	override, err := browserOverride(request.GetArguments())
	if err != nil {
		return errorResult("%v", err)
	}
	ep, err := s.sup.Restart(ctx, override)
	if err != nil {
		return errorResult("Failed to restart browser server: %v", err)
	}
	return jsonResult(BrowserStartResult{Endpoint: ep, Status: s.sup.Snapshot().State})
}

func (s *Server) handleBrowserStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.sup.Snapshot())
}

func (s *Server) handleBrowserLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logs := s.sup.Logs()
	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(logs) {
		logs = logs[len(logs)-limit:]
	}
	return jsonResult(logs)
}

func (s *Server) handlePreflight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results := s.preflight(ctx)
	return jsonResult(map[string]any{
		"ready":   preflight.Ready(results),
		"results": results,
	})
}
