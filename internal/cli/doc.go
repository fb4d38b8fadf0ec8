// Package cli provides the client side of the mcpkeep command line.
//
// ToolExecutor connects to a running mcpkeep control endpoint over SSE, calls
// one of its core_* tools and prints the JSON result as a table, JSON or YAML.
// A spinner is shown while connecting and executing unless quiet mode is set.
//
// TableFormatter renders the shapes mcpkeep tools return: server lists,
// connection tables, supervisor status, log lines, and generic objects or
// arrays. Probe and preflight reports produced locally by the check and doctor
// commands go through the same formatter.
package cli
