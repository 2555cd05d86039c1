package database

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/kbukum/factorygirl/component"
	"github.com/kbukum/factorygirl/logger"
)

// Connection is a started component that exposes a GORM handle.
// Factory components resolve their connection through this interface.
type Connection interface {
	component.Component
	GormDB() *gorm.DB
}

// Component wraps DB and implements component.Component for lifecycle management.
type Component struct {
	db     *DB
	cfg    Config
	log    *logger.Logger
	driver DriverFunc
	models []interface{}
	mu     sync.RWMutex
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
	_ Connection            = (*Component)(nil)
)

// NewComponent creates a database component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Component{
		cfg: cfg,
		log: log.WithComponent("database").WithFields(map[string]interface{}{"connection": cfg.Name}),
	}
}

// WithDriver overrides the registered driver for this component only.
func (c *Component) WithDriver(fn DriverFunc) *Component {
	c.driver = fn
	return c
}

// WithAutoMigrate registers models to migrate on Start.
func (c *Component) WithAutoMigrate(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// Name returns the connection identifier.
func (c *Component) Name() string { return c.cfg.Name }

// Config returns the effective configuration.
func (c *Component) Config() Config { return c.cfg }

// DB returns the underlying *DB, or nil if not started.
func (c *Component) DB() *DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GormDB returns the GORM handle, or nil if not started.
func (c *Component) GormDB() *gorm.DB {
	if db := c.DB(); db != nil {
		return db.GormDB
	}
	return nil
}

// Start connects to the database and runs any registered migrations.
func (c *Component) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("database %s: %w", c.cfg.Name, err)
	}

	driver := c.driver
	if driver == nil {
		var err error
		if driver, err = lookupDriver(c.cfg.Driver); err != nil {
			return err
		}
	}

	db, err := NewWithContext(ctx, driver(c.cfg.DSN), c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}

	if len(c.models) > 0 {
		if err := db.AutoMigrate(ctx, c.models...); err != nil {
			_ = db.Close()
			return fmt.Errorf("database auto-migrate: %w", err)
		}
	}

	c.mu.Lock()
	c.db = db
	c.mu.Unlock()
	return nil
}

// Stop closes the database connection.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	db := c.db
	c.db = nil
	c.mu.Unlock()

	if db == nil {
		return nil
	}
	return db.Close()
}

// Health pings the database.
func (c *Component) Health(ctx context.Context) component.Health {
	db := c.DB()
	if db == nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: "database not initialized",
		}
	}
	if err := db.PingContext(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns a one-line summary of the connection.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.cfg.Name,
		Type:    "database",
		Details: fmt.Sprintf("%s pool=%d/%d", c.cfg.Driver, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns),
	}
}
