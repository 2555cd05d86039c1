package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kbukum/factorygirl/component"
)

// Manager starts, stops and resets a group of test components together.
// Components start in the order added and stop in reverse.
type Manager struct {
	ctx        context.Context
	components []TestComponent
	mu         sync.RWMutex
}

var _ component.Resolver = (*Manager)(nil)

// NewManager creates a new test component manager.
func NewManager(ctx context.Context) *Manager {
	return &Manager{
		ctx:        ctx,
		components: make([]TestComponent, 0),
	}
}

// Add registers a test component with the manager.
func (m *Manager) Add(c TestComponent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// Components returns all registered components.
func (m *Manager) Components() []TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]TestComponent(nil), m.components...)
}

// Get returns the component with the given name, or nil.
func (m *Manager) Get(name string) component.Component {
	if c := m.Lookup(name); c != nil {
		return c
	}
	return nil
}

// Lookup returns the test component with the given name, or nil.
func (m *Manager) Lookup(name string) TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts all registered components in order, stopping at the first failure.
// The lock is not held while starting so components may call Get.
func (m *Manager) StartAll() error {
	for _, c := range m.Components() {
		if err := c.Start(m.ctx); err != nil {
			return fmt.Errorf("failed to start component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// StopAll stops all registered components in reverse order and joins
// every failure.
func (m *Manager) StopAll() error {
	comps := m.Components()
	var errs []error
	for i := len(comps) - 1; i >= 0; i-- {
		if err := comps[i].Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", comps[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

// ResetAll resets all registered components in order, stopping at the first failure.
func (m *Manager) ResetAll() error {
	for _, c := range m.Components() {
		if err := c.Reset(m.ctx); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// Cleanup is StopAll, named for use with defer or t.Cleanup.
func (m *Manager) Cleanup() error {
	return m.StopAll()
}
