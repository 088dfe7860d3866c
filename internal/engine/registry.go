package engine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a factory available under the given name. Engines register
// from init functions, the way database/sql drivers do; registering the same
// name twice panics.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("engine: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("engine: Register called twice for %s", name))
	}
	registry[name] = factory
}

// Lookup returns the factory registered under name, if any.
func Lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Registered returns the names of all registered factories.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Probe polls for an engine factory becoming available. Engines loaded out of
// process (or lazily linked) may register after the player starts, so the
// player waits through a Probe instead of failing on the first missed lookup.
//
// The zero value polls the package registry every 200ms for up to 50 attempts.
type Probe struct {
	Interval time.Duration
	Attempts int
	// Lookup overrides the factory source; tests use it to fake availability.
	Lookup func(name string) (Factory, bool)
}

// Wait blocks until the named factory appears, the attempt cap is exhausted,
// or ctx is cancelled. Exhaustion returns an error wrapping the name.
func (p Probe) Wait(ctx context.Context, name string) (Factory, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 50
	}
	lookup := p.Lookup
	if lookup == nil {
		lookup = Lookup
	}

	if f, ok := lookup(name); ok {
		return f, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; attempt < attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if f, ok := lookup(name); ok {
				return f, nil
			}
		}
	}

	return nil, fmt.Errorf("engine %q failed to load after %d attempts", name, attempts)
}
