// Package logging provides the subsystem-tagged structured logger used across mcpkeep.
//
// It wraps log/slog with a fixed attribute layout: every record carries a
// "subsystem" attribute and, for errors, an "error" attribute.
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//	logging.Info("Supervisor", "process started with pid %d", pid)
//	logging.Error("ConfigStore", err, "failed to save %s", path)
//
// Until InitForCLI is called, records go to slog's default logger.
package logging
