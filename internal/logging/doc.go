// Package logging assembles structured slog loggers and formatting helpers
// used across the publication pipeline.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so stage code automatically tags log
// lines with stage names, remote operation names, and correlation IDs. The
// console handler renders the timestamp-prefixed feedback lines shown to
// users during a publication run. The package also provides a no-op logger
// for tests.
package logging
