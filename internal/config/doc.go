// Package config loads mcpkeep's host settings and owns the persisted server list.
//
// Two files live in the configuration directory (~/.config/mcpkeep unless
// overridden with --config-path):
//
//   - config.yaml holds host settings: the control endpoint and the browser
//     supervisor's port and timeouts. It is optional; defaults apply.
//   - mcp-servers.json holds the ConfigState document managed by Store.
//
// Store mutations only change memory. Callers persist with Save, which writes
// the document atomically. Watcher reports external edits to the JSON file.
package config
