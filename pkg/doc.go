// Package pkg provides shared utilities for the ui_to_usb firmware.
//
// This package contains common functionality used across the device-side
// and host-side packages, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for protocol and state errors
//   - Component identifiers for log filtering
//
// The package is designed to have zero external dependencies, relying
// only on the Go standard library.
//
// # Logging
//
// The logging subsystem wraps [log/slog] with device-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentFrame, "frame resync", "dropped", n)
//
// # Errors
//
// Common errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrStall) {
//	    // Host sent a request outside the command table
//	}
package pkg
