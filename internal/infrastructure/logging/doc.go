// Package logging provides structured logging for mqtt-alert.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across every broker session.
//
// # Features
//
//   - Text output by default, JSON output for log shippers
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Verbosity flags (-v, -vv) stepping down from the configured level
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the logging section of config.yaml:
//
//	logging:
//	  level: "warn"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stderr"   # stderr, stdout
//
// # Usage
//
//	logger := logging.New(logging.WithVerbosity(cfg.Logging, verbose), "1.0.0")
//	logger.Info("connected", "broker", "local")
//	logger.Error("subscribe failed", "error", err)
//
// # Security
//
// Never log Pushover tokens or broker passwords.
package logging
