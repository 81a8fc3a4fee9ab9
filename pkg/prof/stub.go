//go:build !profile

// Package prof wraps [runtime/pprof] for profiling the frame streaming
// path. Built without the "profile" tag, as here, every function is a
// no-op.
package prof

// ErrActive indicates CPU profiling is already running. Never returned
// by the stubs.
var ErrActive error

// StartCPU is a no-op without the "profile" tag.
func StartCPU(string) error { return nil }

// StopCPU is a no-op without the "profile" tag.
func StopCPU() {}

// WriteHeap is a no-op without the "profile" tag.
func WriteHeap(string) error { return nil }
