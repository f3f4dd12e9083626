// Package logging assembles structured slog loggers and formatting helpers used
// across mpkconv.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code automatically tags
// log lines with the run ID, archive, stage, and dataset being processed. The
// console handler prints one status line per record, which is the textual
// progress report users read during a batch. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
