package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, format OutputFormat, jsonData string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, RenderJSON(&out, format, jsonData))
	return out.String()
}

func TestFormatData_ServerList(t *testing.T) {
	got := render(t, OutputFormatTable, `{
		"servers": [
			{"id": "files", "name": "Files", "transport": "stdio", "command": "node", "args": ["a.js"], "enabled": true},
			{"id": "builtin-playwright", "name": "Browser", "transport": "stdio", "command": "npx", "enabled": false, "isBuiltin": true}
		],
		"settings": {"defaultTimeoutSeconds": 60, "autoStartBrowser": false}
	}`)

	assert.Contains(t, got, "ID")
	assert.Contains(t, got, "TRANSPORT")
	assert.Contains(t, got, "builtin-playwright")
	assert.NotContains(t, got, "ARGS")
	assert.Contains(t, got, "Total:")
	assert.Contains(t, got, "settings:")
	assert.Contains(t, got, "defaultTimeoutSeconds=60")
}

func TestFormatData_EmptyServerList(t *testing.T) {
	got := render(t, OutputFormatTable, `{"servers": [], "settings": {}}`)
	assert.Contains(t, got, "No items found")
}

func TestFormatData_ConnectionTable(t *testing.T) {
	got := render(t, OutputFormatTable, `{
		"files": {"type": "stdio", "command": "node", "args": ["a.js", "--x"]},
		"builtin-playwright": {"type": "sse", "url": "http://localhost:8931/sse"}
	}`)

	lines := strings.Split(got, "\n")
	var browserLine, filesLine int
	for i, l := range lines {
		if strings.Contains(l, "builtin-playwright") {
			browserLine = i
		}
		if strings.Contains(l, "files") {
			filesLine = i
		}
	}
	assert.Less(t, browserLine, filesLine, "rows are sorted by id")
	assert.Contains(t, got, "http://localhost:8931/sse")
	assert.Contains(t, got, "node a.js --x")
}

func TestFormatData_ServerDefinitionIsKeyValue(t *testing.T) {
	got := render(t, OutputFormatTable, `{"id": "files", "command": "node", "args": ["a.js"], "env": {"A": "1"}}`)
	assert.Contains(t, got, "KEY")
	assert.Contains(t, got, "a.js")
	assert.Contains(t, got, "A=1")
}

func TestFormatData_Logs(t *testing.T) {
	got := render(t, OutputFormatTable, `[
		{"time": "2024-01-01T00:00:00Z", "stream": "stdout", "line": "Listening on http://localhost:8931"},
		{"time": "2024-01-01T00:00:01Z", "stream": "stderr", "line": "warn"}
	]`)
	assert.Contains(t, got, "STREAM")
	assert.Contains(t, got, "Listening on http://localhost:8931")
	assert.Contains(t, got, "Total:")
}

func TestRenderJSON_NonJSONText(t *testing.T) {
	got := render(t, OutputFormatTable, "plain text")
	assert.Equal(t, "plain text\n", got)
}

func TestRender_Struct(t *testing.T) {
	type result struct {
		Name      string `json:"name"`
		Available bool   `json:"available"`
	}
	var out bytes.Buffer
	require.NoError(t, Render(&out, OutputFormatYAML, []result{{Name: "npx", Available: true}}))
	assert.Contains(t, out.String(), "name: npx")
	assert.Contains(t, out.String(), "available: true")
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range ValidOutputFormats {
		assert.NoError(t, ValidateOutputFormat(string(f)))
	}
	assert.Error(t, ValidateOutputFormat("wide"))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 200)
	assert.Len(t, truncate(long), maxCellWidth)
	assert.Equal(t, "short", truncate("short"))
}
