package component

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubComponent appends lifecycle events to a shared log.
type stubComponent struct {
	name     string
	startErr error
	stopErr  error
	status   HealthStatus
	events   *[]string
}

func (s *stubComponent) Name() string { return s.name }

func (s *stubComponent) Start(context.Context) error {
	*s.events = append(*s.events, "start "+s.name)
	return s.startErr
}

func (s *stubComponent) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		*s.events = append(*s.events, "stop without deadline "+s.name)
	}
	*s.events = append(*s.events, "stop "+s.name)
	return s.stopErr
}

func (s *stubComponent) Health(context.Context) Health {
	return Health{Name: s.name, Status: s.status}
}

func newStubs(events *[]string, names ...string) []*stubComponent {
	out := make([]*stubComponent, len(names))
	for i, n := range names {
		out[i] = &stubComponent{name: n, status: StatusHealthy, events: events}
	}
	return out
}

func register(t *testing.T, r *Registry, stubs ...*stubComponent) {
	t.Helper()
	for _, s := range stubs {
		require.NoError(t, r.Register(s))
	}
}

func TestRegistry_StartStopOrder(t *testing.T) {
	var events []string
	r := NewRegistry()
	register(t, r, newStubs(&events, "db", "factory")...)

	require.NoError(t, r.StartAll(context.Background()))
	require.NoError(t, r.StopAll(context.Background()))

	assert.Equal(t, []string{"start db", "start factory", "stop factory", "stop db"}, events)
}

func TestRegistry_DuplicateName(t *testing.T) {
	var events []string
	r := NewRegistry()
	register(t, r, newStubs(&events, "db")...)

	err := r.Register(&stubComponent{name: "db", events: &events})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db already registered")
	assert.Len(t, r.All(), 1)
}

func TestRegistry_StartFailureStopsOnlyStarted(t *testing.T) {
	var events []string
	r := NewRegistry()
	stubs := newStubs(&events, "db", "factory", "report")
	stubs[1].startErr = errors.New("no such table: users")
	register(t, r, stubs...)

	err := r.StartAll(context.Background())
	require.ErrorIs(t, err, stubs[1].startErr)
	assert.Contains(t, err.Error(), "failed to start factory")

	require.NoError(t, r.StopAll(context.Background()))
	assert.Equal(t, []string{"start db", "start factory", "stop db"}, events)
}

func TestRegistry_StopErrorsJoined(t *testing.T) {
	var events []string
	r := NewRegistry()
	stubs := newStubs(&events, "a", "b")
	stubs[0].stopErr = errors.New("close a")
	stubs[1].stopErr = errors.New("close b")
	register(t, r, stubs...)
	require.NoError(t, r.StartAll(context.Background()))

	err := r.StopAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, stubs[0].stopErr)
	assert.ErrorIs(t, err, stubs[1].stopErr)

	// A second stop is a no-op.
	events = nil
	require.NoError(t, r.StopAll(context.Background()))
	assert.Empty(t, events)
}

func TestRegistry_Resolver(t *testing.T) {
	var events []string
	var res Resolver = NewRegistry()
	register(t, res.(*Registry), newStubs(&events, "db")...)

	assert.Equal(t, "db", res.Get("db").Name())
	assert.Nil(t, res.Get("missing"))
}

func TestRegistry_HealthAll(t *testing.T) {
	var events []string
	r := NewRegistry()
	stubs := newStubs(&events, "db", "factory")
	stubs[1].status = StatusDegraded
	register(t, r, stubs...)

	got := r.HealthAll(context.Background())
	assert.Equal(t, []Health{
		{Name: "db", Status: StatusHealthy},
		{Name: "factory", Status: StatusDegraded},
	}, got)
}
