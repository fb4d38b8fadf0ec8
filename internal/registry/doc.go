// Package registry decides how the host reaches each configured MCP server.
//
// Enabled stdio servers are spawned directly by the host. The builtin browser
// server with session persistence enabled is instead kept alive by the
// supervisor and reached over SSE, so the registry also decides when that
// process must be running.
package registry
