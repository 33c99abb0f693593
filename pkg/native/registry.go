package native

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"audioutils/pkg/config"
)

// ErrUnknownBackend is returned by Open for names nobody registered.
var ErrUnknownBackend = errors.New("unknown backend")

// Factory builds a Probe from configuration.
type Factory func(cfg *config.BackendConfig) (Probe, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available under name. Registering a name twice panics.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("native: Register called twice for backend " + name)
	}
	registry[name] = f
}

// Open builds the backend named by cfg.Name.
func Open(cfg *config.BackendConfig) (Probe, error) {
	registryMu.RLock()
	f, ok := registry[cfg.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownBackend, cfg.Name, Names())
	}
	p, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open backend %s: %w", cfg.Name, err)
	}
	return p, nil
}

// Names lists the registered backends in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
