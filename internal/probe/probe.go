// Package probe connects to the servers of a connection table with an MCP
// client, performs the handshake and a ping, and reports what it found.
package probe

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mcpkeep/internal/api"
	"mcpkeep/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single probe, including process startup for stdio servers.
const DefaultTimeout = 15 * time.Second

const maxConcurrent = 4

// Result is the outcome of probing one connection table entry.
type Result struct {
	ID            string            `json:"id" yaml:"id"`
	Transport     api.TransportType `json:"transport" yaml:"transport"`
	Target        string            `json:"target" yaml:"target"`
	OK            bool              `json:"ok" yaml:"ok"`
	ServerName    string            `json:"serverName,omitempty" yaml:"serverName,omitempty"`
	ServerVersion string            `json:"serverVersion,omitempty" yaml:"serverVersion,omitempty"`
	Tools         int               `json:"tools" yaml:"tools"`
	LatencyMS     int64             `json:"latencyMs" yaml:"latencyMs"`
	Error         string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Dialer returns a started, uninitialized client for a descriptor.
type Dialer func(ctx context.Context, d api.TransportDescriptor) (*client.Client, error)

// Prober checks connection table entries.
type Prober struct {
	dial    Dialer
	timeout time.Duration
}

// New returns a Prober. A nil dialer uses Dial; a non-positive timeout uses DefaultTimeout.
func New(dial Dialer, timeout time.Duration) *Prober {
	if dial == nil {
		dial = Dial
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{dial: dial, timeout: timeout}
}

// Dial creates a client for the descriptor's transport and starts it.
func Dial(ctx context.Context, d api.TransportDescriptor) (*client.Client, error) {
	var (
		c   *client.Client
		err error
	)
	switch d.Type {
	case api.TransportStdio:
		env := make([]string, 0, len(d.Env))
		for k, v := range d.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		// The stdio client starts its process on construction.
		return client.NewStdioMCPClient(d.Command, env, d.Args...)
	case api.TransportSSE:
		c, err = client.NewSSEMCPClient(d.URL)
	case api.TransportStreamableHTTP:
		c, err = client.NewStreamableHttpClient(d.URL)
	default:
		return nil, fmt.Errorf("unsupported transport %q", d.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", d.Type, err)
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to start %s transport: %w", d.Type, err)
	}
	return c, nil
}

// Probe connects to one server.
func (p *Prober) Probe(ctx context.Context, id string, d api.TransportDescriptor) (res Result) {
	res = Result{ID: id, Transport: d.Type, Target: target(d)}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	began := time.Now()
	defer func() { res.LatencyMS = time.Since(began).Milliseconds() }()

	c, err := p.dial(ctx, d)
	if err != nil {
		res.Error = err.Error()
		logging.Debug("Probe", "Dial %s failed: %v", id, err)
		return res
	}
	defer func() {
		if err := c.Close(); err != nil {
			logging.Debug("Probe", "Error closing client for %s: %v", id, err)
		}
	}()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "mcpkeep-probe", Version: "1.0.0"}
	initResult, err := c.Initialize(ctx, initReq)
	if err != nil {
		res.Error = fmt.Sprintf("initialize failed: %v", err)
		return res
	}
	res.ServerName = initResult.ServerInfo.Name
	res.ServerVersion = initResult.ServerInfo.Version

	if err := c.Ping(ctx); err != nil {
		res.Error = fmt.Sprintf("ping failed: %v", err)
		return res
	}

	if initResult.Capabilities.Tools != nil {
		tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		if err != nil {
			res.Error = fmt.Sprintf("list tools failed: %v", err)
			return res
		}
		res.Tools = len(tools.Tools)
	}

	res.OK = true
	return res
}

// ProbeAll probes every entry concurrently and returns results ordered by id.
func (p *Prober) ProbeAll(ctx context.Context, table api.ConnectionTable) []Result {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]Result, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = p.Probe(gctx, id, table[id])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Healthy reports whether every result is OK.
func Healthy(results []Result) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

func target(d api.TransportDescriptor) string {
	if d.Type == api.TransportStdio {
		return d.Command
	}
	return d.URL
}
