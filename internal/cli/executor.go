package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"mcpkeep/internal/config"
	"mcpkeep/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// EndpointEnvVar overrides the control endpoint when --endpoint is not given.
const EndpointEnvVar = "MCPKEEP_ENDPOINT"

// ExecutorOptions controls how commands connect and print.
type ExecutorOptions struct {
	// Format is the output format; empty means table.
	Format OutputFormat
	// Quiet suppresses spinners.
	Quiet bool
	// Debug logs MCP notifications.
	Debug bool
	// ConfigPath is the directory holding config.yaml, used to find the endpoint.
	ConfigPath string
	// Endpoint overrides the control endpoint URL.
	Endpoint string
	// Out receives formatted results; nil means stdout.
	Out io.Writer
}

// ToolExecutor calls tools on a running mcpkeep control endpoint.
type ToolExecutor struct {
	client   *client.Client
	options  ExecutorOptions
	endpoint string
	out      io.Writer
}

// ResolveEndpoint picks the control endpoint: the flag, then MCPKEEP_ENDPOINT,
// then config.yaml under configPath.
func ResolveEndpoint(flag, configPath string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(EndpointEnvVar); env != "" {
		return env, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return "", err
	}
	return cfg.Control.Endpoint(), nil
}

// NewToolExecutor creates an executor for the resolved endpoint. Call Connect
// before Execute.
func NewToolExecutor(options ExecutorOptions) (*ToolExecutor, error) {
	if options.Format == "" {
		options.Format = OutputFormatTable
	}
	if err := ValidateOutputFormat(string(options.Format)); err != nil {
		return nil, err
	}

	endpoint, err := ResolveEndpoint(options.Endpoint, options.ConfigPath)
	if err != nil {
		return nil, err
	}

	c, err := client.NewSSEMCPClient(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", endpoint, err)
	}
	return newToolExecutor(c, endpoint, options), nil
}

func newToolExecutor(c *client.Client, endpoint string, options ExecutorOptions) *ToolExecutor {
	if options.Format == "" {
		options.Format = OutputFormatTable
	}
	out := options.Out
	if out == nil {
		out = os.Stdout
	}
	if options.Debug {
		c.OnNotification(func(n mcp.JSONRPCNotification) {
			logging.Debug("CLI", "MCP notification: %s", n.Method)
		})
	}
	return &ToolExecutor{client: c, options: options, endpoint: endpoint, out: out}
}

// Endpoint returns the URL the executor talks to.
func (e *ToolExecutor) Endpoint() string {
	return e.endpoint
}

// Connect starts the transport and performs the MCP handshake.
func (e *ToolExecutor) Connect(ctx context.Context) error {
	if e.options.Quiet {
		return e.connect(ctx)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Connecting to mcpkeep..."
	s.Start()
	defer s.Stop()

	if err := e.connect(ctx); err != nil {
		s.FinalMSG = text.FgRed.Sprint("Failed to connect to mcpkeep") + "\n"
		return err
	}
	return nil
}

func (e *ToolExecutor) connect(ctx context.Context) error {
	if err := e.client.Start(ctx); err != nil {
		return &ServerNotRunningError{Endpoint: e.endpoint, Reason: err}
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "mcpkeep-cli", Version: "1.0.0"}
	if _, err := e.client.Initialize(ctx, initReq); err != nil {
		return &ServerNotRunningError{Endpoint: e.endpoint, Reason: err}
	}
	return nil
}

// Close closes the connection.
func (e *ToolExecutor) Close() error {
	return e.client.Close()
}

// Execute calls a tool and prints its result in the configured format.
func (e *ToolExecutor) Execute(ctx context.Context, toolName string, args map[string]any) error {
	var s *spinner.Spinner
	if !e.options.Quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Executing command..."
		s.Start()
	}

	result, err := e.call(ctx, toolName, args)

	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}
	return RenderJSON(e.out, e.options.Format, result)
}

// ExecuteJSON calls a tool and decodes its JSON result into v.
func (e *ToolExecutor) ExecuteJSON(ctx context.Context, toolName string, args map[string]any, v any) error {
	result, err := e.call(ctx, toolName, args)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(result), v); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", toolName, err)
	}
	return nil
}

func (e *ToolExecutor) call(ctx context.Context, toolName string, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args

	result, err := e.client.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to execute tool %s: %w", toolName, err)
	}

	var texts []string
	for _, content := range result.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			texts = append(texts, tc.Text)
		}
	}
	if result.IsError {
		return "", &ToolError{Tool: toolName, Message: strings.Join(texts, "\n")}
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("tool %s returned no text content", toolName)
	}
	return texts[0], nil
}

// Follow invokes fn for every notification whose method starts with prefix
// until ctx is done.
func (e *ToolExecutor) Follow(ctx context.Context, prefix string, fn func(method string, params map[string]any)) {
	e.client.OnNotification(func(n mcp.JSONRPCNotification) {
		if strings.HasPrefix(n.Method, prefix) {
			fn(n.Method, n.Params.AdditionalFields)
		}
	})
	<-ctx.Done()
}
