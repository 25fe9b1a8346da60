// Package logging configures dutyboard's structured logging.
//
// The package builds slog handlers based on configuration and can emit logs
// to multiple sinks:
//   - Console (human-friendly pretty output)
//   - File (JSON)
//
// Sinks and level are hot-swappable via Apply(), so a config reload changes
// logging behavior without restarting the process.
package logging
