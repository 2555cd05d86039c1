package factory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/kbukum/factorygirl/component"
	"github.com/kbukum/factorygirl/database"
	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/logger"
)

// ComponentName is the name the factory component registers under.
const ComponentName = "factory"

// Component runs a Factory as a lifecycle component. Start resolves the
// database component named by Config.ConnectionID and prepares the
// factory tables against it.
//
// It also satisfies testutil.TestComponent: Reset re-prepares the tables
// and clears the sequence counters, and Snapshot and Restore capture the
// counters.
type Component struct {
	cfg      Config
	resolver component.Resolver
	opts     []Option
	log      *logger.Logger

	mu      sync.RWMutex
	factory *Factory
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a factory component that looks up its connection
// through resolver, usually a component.Registry or testutil.Manager.
func NewComponent(cfg Config, resolver component.Resolver, opts ...Option) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:      cfg,
		resolver: resolver,
		opts:     opts,
		log:      logger.GetGlobalLogger().WithComponent(ComponentName),
	}
}

// Name returns ComponentName.
func (c *Component) Name() string { return ComponentName }

// Factory returns the running factory, or nil before Start.
func (c *Component) Factory() *Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.factory
}

// Start connects the factory to its database and runs Prepare.
func (c *Component) Start(ctx context.Context) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	db := conn.GormDB()
	if db == nil {
		return apperrors.Configuration(fmt.Sprintf("connection %q is not started", c.cfg.ConnectionID))
	}

	opts := append([]Option{WithLogger(logger.GetGlobalLogger())}, c.opts...)
	f, err := New(c.cfg, database.NewGateway(db, logger.GetGlobalLogger()), database.NewMapper(db.NamingStrategy), opts...)
	if err != nil {
		return err
	}
	if err := f.Prepare(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.factory = f
	c.mu.Unlock()
	return nil
}

// Stop releases the factory. The database connection belongs to its own
// component and is left open.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	c.factory = nil
	c.mu.Unlock()
	return nil
}

// Health reports whether the factory tables are prepared.
func (c *Component) Health(_ context.Context) component.Health {
	f := c.Factory()
	switch {
	case f == nil:
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "factory not started"}
	case !f.Prepared():
		return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: "factory tables not prepared"}
	default:
		return component.Health{Name: c.Name(), Status: component.StatusHealthy}
	}
}

// Describe returns a one-line summary of the factory setup.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    ComponentName,
		Type:    "factory",
		Details: fmt.Sprintf("%s connection=%s", c.cfg.BasePath, c.cfg.ConnectionID),
	}
}

// Reset clears the sequence counters and prepares the tables again.
func (c *Component) Reset(ctx context.Context) error {
	f, err := c.started()
	if err != nil {
		return err
	}
	f.Sequence().ResetAll()
	return f.Prepare(ctx)
}

// Snapshot captures the sequence counters.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	f, err := c.started()
	if err != nil {
		return nil, err
	}
	return f.Sequence().Snapshot(), nil
}

// Restore sets the sequence counters to a Snapshot result.
func (c *Component) Restore(_ context.Context, snapshot interface{}) error {
	f, err := c.started()
	if err != nil {
		return err
	}
	counters, ok := snapshot.(map[string]int64)
	if !ok {
		return apperrors.InvalidInput("snapshot", fmt.Sprintf("expected map[string]int64, got %T", snapshot))
	}
	f.Sequence().Restore(maps.Clone(counters))
	return nil
}

func (c *Component) connection() (database.Connection, error) {
	if c.resolver == nil {
		return nil, apperrors.Configuration("factory component has no component resolver")
	}
	found := c.resolver.Get(c.cfg.ConnectionID)
	if found == nil {
		return nil, apperrors.Configuration(fmt.Sprintf("invalid connection_id %q: no such component", c.cfg.ConnectionID)).
			WithDetail("connection_id", c.cfg.ConnectionID)
	}
	conn, ok := found.(database.Connection)
	if !ok {
		return nil, apperrors.Configuration(fmt.Sprintf("invalid connection_id %q: %T is not a database connection", c.cfg.ConnectionID, found)).
			WithDetail("connection_id", c.cfg.ConnectionID)
	}
	return conn, nil
}

func (c *Component) started() (*Factory, error) {
	f := c.Factory()
	if f == nil {
		return nil, apperrors.NotPrepared("factory component")
	}
	return f, nil
}
