// Package supervisor keeps the Playwright MCP server running as a long-lived
// child process so browser state survives between assistant sessions.
//
// A Supervisor moves through stopped, starting, running and error. Start
// launches `npx @playwright/mcp@latest --port N [--headless] [--user-data-dir P]`
// without a shell, watches both output streams for a readiness marker and
// returns the SSE endpoint http://localhost:N/sse. If no marker appears within
// the ready timeout and the process is still alive it is assumed ready.
//
// Lifecycle operations (Start, Stop, Restart, UpdateConfig, Cleanup) run one
// at a time per Supervisor. Concurrent Start calls share a single launch.
//
// Observers receive status, ready, error and log events through Subscribe.
package supervisor
