// Package logging constructs the slog loggers used across the pipeline.
//
// Two output formats are supported: a compact single-line console format for
// interactive use and a JSON format for machine consumption. Context helpers
// stamp source path, stage, and run ID onto every record produced inside a
// job so per-file logs can be correlated after a batch run.
package logging
