// Package logging assembles structured slog loggers and formatting helpers used
// across Sentinel commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so registry code can tag log lines
// with license ids, branches, agents, and import cycle ids. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every process that
// touches the shared ledger emits lines with the same shape.
package logging
