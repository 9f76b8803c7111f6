// Package logging assembles structured slog loggers and formatting helpers used
// across the asset tool.
//
// It owns the configurable console/JSON handlers, daily log files under the
// state directory, and retention pruning. Context-aware helpers tag log lines
// with run IDs, workflow names, and item IDs. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
