// Package logging assembles structured slog loggers and formatting helpers used
// across reelpipe.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code automatically tags
// log lines with session IDs, stage names, and correlation IDs. A fan-out
// handler lets the orchestrator tee every record of a run into the session's
// own JSON log file. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the system.
package logging
