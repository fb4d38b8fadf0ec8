package handlers

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	stringItems := mcp.Items(map[string]any{"type": "string"})

	s.mcpServer.AddTool(mcp.NewTool("core_server_list",
		mcp.WithDescription("List every configured MCP server and the global settings"),
	), s.handleServerList)

	s.mcpServer.AddTool(mcp.NewTool("core_server_get",
		mcp.WithDescription("Get one MCP server definition"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Server id")),
	), s.handleServerGet)

	s.mcpServer.AddTool(mcp.NewTool("core_server_add",
		mcp.WithDescription("Add an MCP server definition"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name")),
		mcp.WithString("id", mcp.Description("Server id; generated when omitted")),
		mcp.WithString("description", mcp.Description("Free-form description")),
		mcp.WithString("transport", mcp.Description("stdio (default), sse or streamable-http"),
			mcp.Enum("stdio", "sse", "streamable-http")),
		mcp.WithString("command", mcp.Description("Executable for stdio servers")),
		mcp.WithArray("args", mcp.Description("Arguments for stdio servers"), stringItems),
		mcp.WithObject("env", mcp.Description("Environment variables for stdio servers")),
		mcp.WithString("url", mcp.Description("URL for network servers")),
		mcp.WithBoolean("enabled", mcp.Description("Enable the server (default true)")),
	), s.handleServerAdd)

	s.mcpServer.AddTool(mcp.NewTool("core_server_update",
		mcp.WithDescription("Update fields of an MCP server definition; omitted fields are unchanged"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Server id")),
		mcp.WithString("name", mcp.Description("Display name")),
		mcp.WithString("description", mcp.Description("Free-form description")),
		mcp.WithString("command", mcp.Description("Executable for stdio servers")),
		mcp.WithArray("args", mcp.Description("Arguments for stdio servers"), stringItems),
		mcp.WithObject("env", mcp.Description("Environment variables for stdio servers")),
		mcp.WithString("url", mcp.Description("URL for network servers")),
		mcp.WithBoolean("enabled", mcp.Description("Enable or disable the server")),
		mcp.WithString("browserMode", mcp.Description("Browser mode for the builtin browser server"),
			mcp.Enum("visible", "headless")),
		mcp.WithString("userDataDir", mcp.Description("Browser profile directory for the builtin browser server")),
		mcp.WithBoolean("persistSession", mcp.Description("Keep the builtin browser server running between sessions")),
	), s.handleServerUpdate)

	s.mcpServer.AddTool(mcp.NewTool("core_server_remove",
		mcp.WithDescription("Remove an MCP server definition; builtin servers cannot be removed"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Server id")),
	), s.handleServerRemove)

	s.mcpServer.AddTool(mcp.NewTool("core_server_toggle",
		mcp.WithDescription("Flip the enabled flag of an MCP server"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Server id")),
	), s.handleServerToggle)

	s.mcpServer.AddTool(mcp.NewTool("core_settings_update",
		mcp.WithDescription("Update global settings; omitted fields are unchanged"),
		mcp.WithNumber("defaultTimeoutSeconds", mcp.Description("Default tool call timeout in seconds")),
		mcp.WithBoolean("autoStartBrowser", mcp.Description("Start the persistent browser server automatically")),
		mcp.WithString("logLevel", mcp.Description("debug, info, warn or error")),
	), s.handleSettingsUpdate)

	s.mcpServer.AddTool(mcp.NewTool("core_config_reload",
		mcp.WithDescription("Re-read the server list from disk"),
	), s.handleConfigReload)

	s.mcpServer.AddTool(mcp.NewTool("core_connection_table",
		mcp.WithDescription("Build the transport table a host uses to connect to the enabled servers"),
		mcp.WithBoolean("ensure", mcp.Description("Start or stop the persistent browser server first (default true)")),
	), s.handleConnectionTable)

	s.mcpServer.AddTool(mcp.NewTool("core_browser_start",
		mcp.WithDescription("Start the persistent browser server and return its SSE endpoint"),
		mcp.WithString("mode", mcp.Description("visible or headless"), mcp.Enum("visible", "headless")),
		mcp.WithString("userDataDir", mcp.Description("Browser profile directory")),
		mcp.WithNumber("port", mcp.Description("Port to listen on")),
	), s.handleBrowserStart)

	s.mcpServer.AddTool(mcp.NewTool("core_browser_stop",
		mcp.WithDescription("Stop the persistent browser server"),
	), s.handleBrowserStop)

	s.mcpServer.AddTool(mcp.NewTool("core_browser_restart",
		mcp.WithDescription("Restart the persistent browser server"),
		mcp.WithString("mode", mcp.Description("visible or headless"), mcp.Enum("visible", "headless")),
		mcp.WithString("userDataDir", mcp.Description("Browser profile directory")),
		mcp.WithNumber("port", mcp.Description("Port to listen on")),
	), s.handleBrowserRestart)

	s.mcpServer.AddTool(mcp.NewTool("core_browser_status",
		mcp.WithDescription("Show the state of the persistent browser server"),
	), s.handleBrowserStatus)

	s.mcpServer.AddTool(mcp.NewTool("core_browser_logs",
		mcp.WithDescription("Show recent output of the persistent browser server"),
		mcp.WithNumber("limit", mcp.Description("Return at most this many of the newest lines")),
	), s.handleBrowserLogs)

	s.mcpServer.AddTool(mcp.NewTool("core_preflight",
		mcp.WithDescription("Check that npx and node are installed"),
	), s.handlePreflight)
}
