// Package app wires mcpkeep together for the serve command.
//
// Bootstrap follows a two-phase pattern:
//  1. NewApplication initializes logging, loads config.yaml and the server
//     store, makes sure the builtin browser definition exists, and builds the
//     supervisor, registry and control server with explicit dependencies.
//  2. Run starts the control endpoint and the file watcher, applies the
//     browser settings, and blocks until the context is cancelled or a
//     SIGINT/SIGTERM arrives, then stops the browser process and the server.
package app
