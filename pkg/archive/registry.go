package archive

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Backend names a registered engine.
type Backend string

// EngineFactory builds an engine configured with the given options.
type EngineFactory func(logger *zap.Logger, opts Options) (Engine, error)

// Registry maps backend names to engine factories. It is safe for concurrent
// use.
type Registry struct {
	mu      sync.RWMutex
	engines map[Backend]EngineFactory
}

func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[Backend]EngineFactory),
	}
}

func (r *Registry) Register(backend Backend, factory EngineFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[backend] = factory
}

// Has reports whether backend is registered.
func (r *Registry) Has(backend Backend) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.engines[backend]
	return ok
}

// Engine builds the engine registered under backend. Unknown backends yield
// an *UnsupportedBackendError.
func (r *Registry) Engine(backend Backend, logger *zap.Logger, opts Options) (Engine, error) {
	r.mu.RLock()
	factory, ok := r.engines[backend]
	available := r.available()
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedBackendError{Backend: backend, Available: available}
	}

	engine, err := factory(logger, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s engine: %w", backend, err)
	}
	return engine, nil
}

func (r *Registry) Available() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available()
}

func (r *Registry) available() []Backend {
	backends := lo.Keys(r.engines)
	slices.Sort(backends)
	return backends
}
