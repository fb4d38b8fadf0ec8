// Package api holds the types shared between the configuration store, the
// registry, the process supervisor and the command handlers.
//
// Nothing in this package performs I/O. Packages exchange ServerDefinition,
// ConfigState and ConnectionTable values through it so that none of them has
// to import another's implementation.
package api
