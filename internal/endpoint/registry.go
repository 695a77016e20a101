package endpoint

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrUnknownTemplate is returned by Create for an unregistered template ID.
var ErrUnknownTemplate = errors.New("unknown source template")

// Factory builds a source from loose configuration, typically a decoded
// recipe section.
type Factory func(config map[string]any, logger *slog.Logger) (Source, error)

// Registry maps template IDs to source factories. Connectors register
// themselves from init.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register panics when templateID is taken; two connectors claiming the same
// ID is a programming error.
func (r *Registry) Register(templateID string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.factories[templateID]; taken {
		panic(fmt.Sprintf("source factory already registered: %s", templateID))
	}
	r.factories[templateID] = factory
}

func (r *Registry) Get(templateID string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[templateID]
	return f, ok
}

// List returns the registered template IDs, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Create builds a source for templateID. A nil logger becomes slog.Default().
func (r *Registry) Create(templateID string, config map[string]any, logger *slog.Logger) (Source, error) {
	factory, ok := r.Get(templateID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, templateID)
	}
	if logger == nil {
		logger = slog.Default()
	}
	src, err := factory(config, logger)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", templateID, err)
	}
	return src, nil
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a factory to the default registry.
func Register(templateID string, factory Factory) {
	defaultRegistry.Register(templateID, factory)
}
