package testutil_test

import (
	"context"

	"github.com/kbukum/factorygirl/component"
	"github.com/kbukum/factorygirl/testutil"
)

// mockComponent is a TestComponent that records its calls.
type mockComponent struct {
	name        string
	started     bool
	stopped     bool
	resetCalled bool
	state       map[string]int
	restored    interface{}
	startErr    error
	stopErr     error
	resetErr    error
	snapshotErr error
	restoreErr  error
	events      *[]string
}

var _ testutil.TestComponent = (*mockComponent)(nil)

func newMockComponent(name string) *mockComponent {
	return &mockComponent{name: name, state: map[string]int{}}
}

func (m *mockComponent) record(event string) {
	if m.events != nil {
		*m.events = append(*m.events, m.name+":"+event)
	}
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(ctx context.Context) error {
	m.record("start")
	if m.startErr != nil {
		return m.startErr
	}
	m.started, m.stopped = true, false
	return nil
}

func (m *mockComponent) Stop(ctx context.Context) error {
	m.record("stop")
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stopped, m.started = true, false
	return nil
}

func (m *mockComponent) Health(ctx context.Context) component.Health {
	return component.Health{Name: m.name, Status: component.StatusHealthy}
}

func (m *mockComponent) Reset(ctx context.Context) error {
	m.record("reset")
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resetCalled = true
	m.state = map[string]int{}
	return nil
}

func (m *mockComponent) Snapshot(ctx context.Context) (interface{}, error) {
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	cp := make(map[string]int, len(m.state))
	for k, v := range m.state {
		cp[k] = v
	}
	return cp, nil
}

func (m *mockComponent) Restore(ctx context.Context, snapshot interface{}) error {
	if m.restoreErr != nil {
		return m.restoreErr
	}
	m.restored = snapshot
	m.state = snapshot.(map[string]int)
	return nil
}
