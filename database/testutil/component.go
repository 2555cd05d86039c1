package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/factorygirl/component"
	"github.com/kbukum/factorygirl/database"
	"github.com/kbukum/factorygirl/logger"
	"github.com/kbukum/factorygirl/testutil"
)

// Component is a test database component backed by a private in-memory SQLite database.
type Component struct {
	name   string
	models []interface{}
	log    *logger.Logger

	mu  sync.RWMutex
	db  *database.DB
	gw  *database.Gateway
	dsn string
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
	_ database.Connection    = (*Component)(nil)
)

// NewComponent creates a test database named database.DefaultName.
func NewComponent() *Component {
	return &Component{name: database.DefaultName, log: logger.Nop()}
}

// WithName sets the connection identifier the component registers under.
func (c *Component) WithName(name string) *Component {
	c.name = name
	return c
}

// WithModels registers models to migrate on Start.
func (c *Component) WithModels(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// WithLogger routes GORM output through log.
func (c *Component) WithLogger(log *logger.Logger) *Component {
	c.log = log
	return c
}

// DB returns the underlying *gorm.DB, or nil if not started.
func (c *Component) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.db == nil {
		return nil
	}
	return c.db.GormDB
}

// GormDB is DB under the name database.Connection expects.
func (c *Component) GormDB() *gorm.DB { return c.DB() }

// Gateway returns a gateway over the test database, or nil if not started.
func (c *Component) Gateway() *database.Gateway {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gw
}

// Name returns the connection identifier.
func (c *Component) Name() string { return c.name }

// Start opens a fresh in-memory database and migrates registered models.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return fmt.Errorf("component already started")
	}

	// A named shared-cache database survives pool reconnects.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	cfg := database.Config{Name: c.name, Driver: database.DriverSQLite, DSN: dsn, LogLevel: "silent"}
	db, err := database.NewWithContext(ctx, sqlite.Open(dsn), cfg, c.log)
	if err != nil {
		return fmt.Errorf("failed to open test database: %w", err)
	}
	if len(c.models) > 0 {
		if err := db.AutoMigrate(ctx, c.models...); err != nil {
			_ = db.Close()
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
	}

	c.db, c.dsn = db, dsn
	c.gw = database.NewGateway(db.GormDB, c.log)
	return nil
}

// Stop closes the database, discarding its contents.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db, c.gw = nil, nil
	return err
}

// Health pings the test database.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	db := c.db
	c.mu.RUnlock()

	if db == nil {
		return component.Health{Name: c.name, Status: component.StatusUnhealthy, Message: "database not started"}
	}
	if err := db.PingContext(ctx); err != nil {
		return component.Health{Name: c.name, Status: component.StatusUnhealthy, Message: fmt.Sprintf("ping failed: %v", err)}
	}
	return component.Health{Name: c.name, Status: component.StatusHealthy}
}

// Reset empties every table and restarts key sequences, keeping the schema.
func (c *Component) Reset(ctx context.Context) error {
	gw := c.Gateway()
	if gw == nil {
		return fmt.Errorf("component not started")
	}
	tables, err := gw.ListTables(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	return withoutIntegrity(ctx, gw, func() error {
		for _, table := range tables {
			if err := gw.Truncate(ctx, table); err != nil {
				return err
			}
		}
		return nil
	})
}

// Snapshot copies every row of every table.
// The result is a map[string][]map[string]interface{} keyed by table.
func (c *Component) Snapshot(ctx context.Context) (interface{}, error) {
	gw, db := c.Gateway(), c.DB()
	if gw == nil {
		return nil, fmt.Errorf("component not started")
	}
	tables, err := gw.ListTables(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	snapshot := make(map[string][]map[string]interface{}, len(tables))
	for _, table := range tables {
		var rows []map[string]interface{}
		if err := db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to snapshot table %s: %w", table, err)
		}
		snapshot[table] = rows
	}
	return snapshot, nil
}

// Restore resets the database and reloads a Snapshot.
func (c *Component) Restore(ctx context.Context, snap interface{}) error {
	snapshot, ok := snap.(map[string][]map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string][]map[string]interface{}, got %T", snap)
	}
	if err := c.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset before restore: %w", err)
	}

	gw := c.Gateway()
	return withoutIntegrity(ctx, gw, func() error {
		for table, rows := range snapshot {
			for _, row := range rows {
				if err := gw.Insert(ctx, table, row); err != nil {
					return fmt.Errorf("failed to restore row to table %s: %w", table, err)
				}
			}
		}
		return nil
	})
}

// withoutIntegrity runs fn with foreign keys off and always turns them back on.
func withoutIntegrity(ctx context.Context, gw *database.Gateway, fn func() error) (err error) {
	if err := gw.SetIntegrityChecking(ctx, false, ""); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, gw.SetIntegrityChecking(context.WithoutCancel(ctx), true, ""))
	}()
	return fn()
}
