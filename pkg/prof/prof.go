//go:build profile

// Package prof wraps [runtime/pprof] for profiling the frame streaming
// path. It is compiled in with the "profile" build tag:
//
//	go build -tags profile
//
// Without the tag every function is a no-op, so callers keep their
// profiling hooks in place at zero cost.
package prof

import (
	"errors"
	"os"
	"runtime/pprof"
	"sync"
)

// ErrActive indicates CPU profiling is already running.
var ErrActive = errors.New("cpu profile already active")

var (
	mu     sync.Mutex
	file   *os.File
	active bool
)

// StartCPU begins CPU profiling into a file at path.
func StartCPU(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if active {
		return ErrActive
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return err
	}
	file = f
	active = true
	return nil
}

// StopCPU ends CPU profiling. Safe to call when profiling is not active.
func StopCPU() {
	mu.Lock()
	defer mu.Unlock()

	if !active {
		return
	}
	pprof.StopCPUProfile()
	file.Close()
	file = nil
	active = false
}

// WriteHeap writes a heap profile to a file at path.
func WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pprof.Lookup("heap").WriteTo(f, 0)
}
