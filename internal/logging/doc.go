// Package logging assembles structured slog loggers and formatting helpers
// used across chime commands and the watcher.
//
// It owns the configurable console/JSON handlers and centralizes level and
// output plumbing. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape as the rest of the system.
package logging
