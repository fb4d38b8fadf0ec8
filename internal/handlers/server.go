// Package handlers exposes mcpkeep's operations as MCP tools on a local SSE
// endpoint and forwards supervisor events to connected clients.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"mcpkeep/internal/api"
	"mcpkeep/internal/preflight"
	"mcpkeep/internal/supervisor"
	"mcpkeep/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
)

// NotificationPrefix is prepended to the event type of forwarded notifications.
const NotificationPrefix = "notifications/mcpkeep/"

// ServerRegistry is what the tools need from the registry.
type ServerRegistry interface {
	Config() api.ConfigState
	GetServer(id string) (api.ServerDefinition, error)
	AddServer(d api.ServerDefinition) (api.ServerDefinition, error)
	UpdateServer(id string, patch api.ServerPatch) (api.ServerDefinition, error)
	RemoveServer(id string) error
	ToggleServer(id string) (api.ServerDefinition, error)
	UpdateGlobalSettings(patch api.SettingsPatch) (api.GlobalSettings, error)
	Save() error
	Reload() error
	BuildConnectionTable() api.ConnectionTable
	BuildConnectionTableAsync(ctx context.Context) (api.ConnectionTable, error)
	ApplyBrowserSettings(ctx context.Context) (string, error)
}

// BrowserSupervisor is what the tools need from the supervisor.
type BrowserSupervisor interface {
	Start(ctx context.Context, override *supervisor.ConfigOverride) (string, error)
	Stop(ctx context.Context)
	Restart(ctx context.Context, override *supervisor.ConfigOverride) (string, error)
	Snapshot() api.SupervisorStatus
	Logs() []supervisor.LogEntry
	Subscribe(buffer int) (<-chan supervisor.Event, func())
}

// Server is the control endpoint.
type Server struct {
	registry  ServerRegistry
	sup       BrowserSupervisor
	preflight func(ctx context.Context) []preflight.Result

	mcpServer *server.MCPServer
	sseServer *server.SSEServer

	mu          sync.Mutex
	unsubscribe func()
	wg          sync.WaitGroup
}

// New builds the MCP server and registers every tool.
func New(reg ServerRegistry, sup BrowserSupervisor, version string) *Server {
	s := &Server{
		registry:  reg,
		sup:       sup,
		preflight: preflight.CheckAll,
		mcpServer: server.NewMCPServer(
			"mcpkeep",
			version,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, mainly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Start serves SSE on addr in the background and begins forwarding
// supervisor events.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sseServer != nil {
		return errors.New("control server already started")
	}

	s.sseServer = server.NewSSEServer(
		s.mcpServer,
		server.WithBaseURL("http://"+addr),
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/message"),
		server.WithKeepAlive(true),
		server.WithKeepAliveInterval(30*time.Second),
	)

	events, unsubscribe := s.sup.Subscribe(0)
	s.unsubscribe = unsubscribe
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.forwardEvents(events)
	}()

	sseServer := s.sseServer
	go func() {
		if err := sseServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Handlers", err, "SSE server error")
		}
	}()

	logging.Info("Handlers", "Control server listening on http://%s/sse", addr)
	return nil
}

// Stop shuts the SSE server down and stops forwarding.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	sseServer := s.sseServer
	unsubscribe := s.unsubscribe
	s.sseServer = nil
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.wg.Wait()

	if sseServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sseServer.Shutdown(shutdownCtx)
}

func (s *Server) forwardEvents(events <-chan supervisor.Event) {
	for ev := range events {
		s.mcpServer.SendNotificationToAllClients(NotificationPrefix+string(ev.Type), eventParams(ev))
	}
}

func eventParams(ev supervisor.Event) map[string]any {
	params := map[string]any{"time": ev.Time.Format(time.RFC3339Nano)}
	switch ev.Type {
	case supervisor.EventStatus:
		params["status"] = string(ev.Status)
		if ev.Error != "" {
			params["error"] = ev.Error
		}
	case supervisor.EventReady:
		params["endpoint"] = ev.Endpoint
	case supervisor.EventError:
		params["message"] = ev.Error
	case supervisor.EventLog:
		params["stream"] = ev.Stream
		params["line"] = ev.Line
	}
	return params
}
