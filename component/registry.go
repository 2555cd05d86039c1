package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/factorygirl/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

// componentEntry holds a component and its started state.
type componentEntry struct {
	component Component
	started   bool
}

// Registry manages component lifecycle with deterministic ordering.
// Components are started in registration order and stopped in reverse order.
type Registry struct {
	entries []*componentEntry
	lookup  map[string]*componentEntry
	mu      sync.RWMutex
	log     *logger.Logger
}

var _ Resolver = (*Registry)(nil)

// NewRegistry creates a new component registry. A nil logger falls back
// to the global logger.
func NewRegistry(log ...*logger.Logger) *Registry {
	l := logger.Get("component")
	if len(log) > 0 && log[0] != nil {
		l = log[0].WithComponent("component")
	}
	return &Registry{
		entries: make([]*componentEntry, 0),
		lookup:  make(map[string]*componentEntry),
		log:     l,
	}
}

// Register adds a component to the registry. Components are started in
// the order they are registered, so register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	entry := &componentEntry{component: c}
	r.entries = append(r.entries, entry)
	r.lookup[name] = entry

	r.log.Debug("Component registered", map[string]interface{}{logger.FieldComponent: name})
	return nil
}

// StartAll starts all components in registration order. Components may
// call Get on the registry from their Start method.
func (r *Registry) StartAll(ctx context.Context) error {
	entries := r.snapshot()
	r.log.Debug("Starting all components", map[string]interface{}{"count": len(entries)})

	for _, entry := range entries {
		name := entry.component.Name()

		if err := entry.component.Start(ctx); err != nil {
			r.log.Error("Component start failed", map[string]interface{}{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
			return fmt.Errorf("failed to start %s: %w", name, err)
		}

		r.mu.Lock()
		entry.started = true
		r.mu.Unlock()
		r.log.Debug("Component started", map[string]interface{}{logger.FieldComponent: name})
	}
	return nil
}

// StopAll stops all started components in reverse registration order.
func (r *Registry) StopAll(ctx context.Context) error {
	entries := r.snapshot()

	var errs []error
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		r.mu.RLock()
		started := entry.started
		r.mu.RUnlock()
		if !started {
			continue
		}

		name := entry.component.Name()
		stopCtx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
		if err := entry.component.Stop(stopCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop %s: %w", name, err))
			r.log.Error("Component stop failed", map[string]interface{}{
				logger.FieldComponent: name,
				logger.FieldError:     err.Error(),
			})
		} else {
			r.log.Debug("Component stopped", map[string]interface{}{logger.FieldComponent: name})
		}
		cancel()

		r.mu.Lock()
		entry.started = false
		r.mu.Unlock()
	}

	return errors.Join(errs...)
}

// HealthAll returns health status for all registered components.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	entries := r.snapshot()
	results := make([]Health, 0, len(entries))
	for _, entry := range entries {
		results = append(results, entry.component.Health(ctx))
	}
	return results
}

// Get returns a registered component by name, or nil if not found.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, exists := r.lookup[name]; exists {
		return entry.component
	}
	return nil
}

// All returns all registered components in registration order.
func (r *Registry) All() []Component {
	entries := r.snapshot()
	result := make([]Component, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.component)
	}
	return result
}

func (r *Registry) snapshot() []*componentEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*componentEntry(nil), r.entries...)
}
