package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusJSON = `{"state":"running","endpoint":"http://localhost:8931/sse","pid":4242,"port":8931,"mode":"headless"}`

func newTestServer() *server.MCPServer {
	s := server.NewMCPServer("mcpkeep", "test", server.WithToolCapabilities(false))
	s.AddTool(mcp.NewTool("core_browser_status"), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(statusJSON), nil
	})
	s.AddTool(mcp.NewTool("core_server_get", mcp.WithString("id")), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("server not found: " + req.GetString("id", "")), nil
	})
	return s
}

func newTestExecutor(t *testing.T, format OutputFormat) (*ToolExecutor, *bytes.Buffer) {
	t.Helper()
	c, err := client.NewInProcessClient(newTestServer())
	require.NoError(t, err)

	var out bytes.Buffer
	e := newToolExecutor(c, "in-process", ExecutorOptions{Format: format, Quiet: true, Out: &out})
	require.NoError(t, e.Connect(context.Background()))
	t.Cleanup(func() { _ = e.Close() })
	return e, &out
}

func TestExecute_Formats(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   []string
	}{
		{OutputFormatJSON, []string{statusJSON}},
		{OutputFormatYAML, []string{"state: running", "pid: 4242", "mode: headless"}},
		{OutputFormatTable, []string{"KEY", "VALUE", "running", "4242", "http://localhost:8931/sse"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			e, out := newTestExecutor(t, tt.format)
			require.NoError(t, e.Execute(context.Background(), "core_browser_status", nil))
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}

func TestExecute_ToolError(t *testing.T) {
	e, out := newTestExecutor(t, OutputFormatJSON)

	err := e.Execute(context.Background(), "core_server_get", map[string]any{"id": "ghost"})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "core_server_get", toolErr.Tool)
	assert.Equal(t, "server not found: ghost", err.Error())
	assert.Empty(t, out.String())
}

func TestExecuteJSON(t *testing.T) {
	e, _ := newTestExecutor(t, OutputFormatTable)

	var status struct {
		State string `json:"state"`
		PID   int    `json:"pid"`
	}
	require.NoError(t, e.ExecuteJSON(context.Background(), "core_browser_status", nil, &status))
	assert.Equal(t, "running", status.State)
	assert.Equal(t, 4242, status.PID)
}

func TestNewToolExecutor_InvalidFormat(t *testing.T) {
	_, err := NewToolExecutor(ExecutorOptions{Format: "xml", Endpoint: "http://localhost:1/sse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestConnect_ServerNotRunning(t *testing.T) {
	e, err := NewToolExecutor(ExecutorOptions{Endpoint: "http://127.0.0.1:1/sse", Quiet: true})
	require.NoError(t, err)

	err = e.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, IsServerNotRunning(err))
	assert.Contains(t, err.Error(), "mcpkeep serve")
}

func TestResolveEndpoint(t *testing.T) {
	dir := t.TempDir()

	ep, err := ResolveEndpoint("http://flag:1/sse", dir)
	require.NoError(t, err)
	assert.Equal(t, "http://flag:1/sse", ep)

	t.Setenv(EndpointEnvVar, "http://env:2/sse")
	ep, err = ResolveEndpoint("", dir)
	require.NoError(t, err)
	assert.Equal(t, "http://env:2/sse", ep)

	t.Setenv(EndpointEnvVar, "")
	ep, err = ResolveEndpoint("", dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8929/sse", ep)
}
