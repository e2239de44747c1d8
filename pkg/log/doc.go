// Package log provides structured event capture for the gateway layer.
//
// This package defines the Logger interface and Event type for recording
// command relays, push deliveries, subscription lifecycle changes, and
// errors, keyed by gateway session and sub-device. It is separate from
// operational logging (slog) - event capture provides a machine-readable
// trace for debugging device integrations.
//
// # Basic Usage
//
// Applications configure capture by providing a Logger implementation:
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	logger, _ := log.NewFileLogger("/var/log/zigbridge/gateway.zlog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files are a CBOR event stream with integer keys, .zlog extension.
// Reader iterates captured files with optional filtering.
package log
