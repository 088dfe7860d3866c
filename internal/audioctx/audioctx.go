// Package audioctx owns the process-wide audio output context.
//
// Platform audio backends allow a single output context per process, so the
// package hands out one shared handle. A missing backend (headless CI, no
// sound card) is a recoverable condition: [Get] returns [ErrUnavailable] and
// callers are expected to keep going without audio.
package audioctx

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrUnavailable indicates the platform exposes no usable audio backend.
var ErrUnavailable = errors.New("audio output unavailable")

// Output is the narrow surface of the platform audio context the app uses.
type Output interface {
	Resume() error  // Resume restarts a suspended context
	Suspend() error // Suspend pauses the context
}

// Driver opens the platform audio backend. Swapped for a fake in tests.
type Driver interface {
	Open() (Output, error)
}

var (
	mu      sync.Mutex
	driver  Driver = &otoDriver{}
	current Output
)

// SetDriver replaces the platform driver and clears any live context.
// Intended for tests.
func SetDriver(d Driver) {
	mu.Lock()
	defer mu.Unlock()
	driver = d
	current = nil
}

// Get returns the shared audio context, creating it on first call.
// Repeated calls return the identical instance until [Close] runs.
//
// Returns [ErrUnavailable] when the platform has no audio backend; callers
// must treat that as "proceed without audio", not as a failure.
func Get() (Output, error) {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return current, nil
	}

	out, err := driver.Open()
	if err != nil {
		return nil, errors.Join(ErrUnavailable, err)
	}

	current = out
	return current, nil
}

// Activate resumes the context if one exists and is suspended.
//
// Call it from a user-input handler before starting playback; platform
// audio-unlock policies require the resume to originate from a gesture.
// Resume failures are logged and swallowed: activation is always best effort.
func Activate() {
	mu.Lock()
	out := current
	mu.Unlock()

	if out == nil {
		return
	}

	if err := out.Resume(); err != nil {
		log.Warn("failed to resume audio context", "err", err)
	}
}

// Close releases the shared context so a subsequent [Get] builds a fresh one.
// Closing when nothing exists is a no-op.
func Close() {
	mu.Lock()
	out := current
	current = nil
	mu.Unlock()

	if out == nil {
		return
	}

	if err := out.Suspend(); err != nil {
		log.Warn("failed to suspend audio context", "err", err)
	}
}
