// Package log captures device-resolution events.
//
// This package defines the Logger interface and Event types for recording
// what a catalog run did: which documents were loaded, how many devices each
// expanded to, and how resolving, linting and indexing went per device. It is
// separate from operational logging (slog). Event capture provides a
// machine-readable trace for comparing runs and finding slow or failing
// devices.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For later analysis: write to a binary file
//	logger, _ := log.NewFileLogger("resolve.mdlog")
//
//	// Both
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// Every run gets a session ID (a UUID, see NewSessionID) that is stamped on
// all of its events.
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer map keys. The
// "modm-devices events" command prints and filters them.
package log
