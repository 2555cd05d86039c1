package database

import (
	"context"
	"maps"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbukum/factorygirl/logger"
)

// TableSchema describes the parts of a table factories need.
type TableSchema struct {
	// Name is the table name as given.
	Name string
	// RawName is the schema-qualified name where the database reports one.
	RawName string
	// PrimaryKey lists primary key columns in declaration order.
	PrimaryKey []string
	// AutoIncrement is true when the database generates the primary key.
	AutoIncrement bool
}

// Gateway performs raw table operations over a GORM connection.
// Statements are written for the dialect named by the connection's dialector.
type Gateway struct {
	db      *gorm.DB
	dialect dialect
	log     *logger.Logger

	mu      sync.Mutex
	lastIDs map[string]int64
}

// NewGateway creates a gateway over db.
func NewGateway(db *gorm.DB, log *logger.Logger) *Gateway {
	if log == nil {
		log = logger.Nop()
	}
	return &Gateway{
		db:      db,
		dialect: dialectFor(db.Dialector.Name()),
		log:     log.WithComponent("gateway"),
		lastIDs: make(map[string]int64),
	}
}

// Dialect returns the SQL dialect in use.
func (g *Gateway) Dialect() string { return g.dialect.name() }

// TableSchema returns the primary key layout of table.
// It fails with TABLE_NOT_FOUND when the table does not exist.
func (g *Gateway) TableSchema(ctx context.Context, table string) (*TableSchema, error) {
	ts, err := g.dialect.tableSchema(ctx, g.db.WithContext(ctx), table)
	if err != nil {
		return nil, FromDatabase(err, table)
	}
	return ts, nil
}

// Truncate deletes every row of table and resets its key sequence so the
// next generated id is 1.
func (g *Gateway) Truncate(ctx context.Context, table string) error {
	if err := g.dialect.truncate(ctx, g.db.WithContext(ctx), table); err != nil {
		return FromDatabase(err, table)
	}
	g.mu.Lock()
	delete(g.lastIDs, table)
	g.mu.Unlock()
	g.log.Debug("Table truncated", map[string]interface{}{logger.FieldTable: table})
	return nil
}

// SetIntegrityChecking turns foreign key enforcement on or off for schema.
// An empty schema means the connection's default schema.
func (g *Gateway) SetIntegrityChecking(ctx context.Context, enabled bool, schema string) error {
	if err := g.dialect.setIntegrity(ctx, g.db.WithContext(ctx), enabled, schema); err != nil {
		return FromDatabase(err, "")
	}
	return nil
}

// Insert writes one row. attrs is not modified.
func (g *Gateway) Insert(ctx context.Context, table string, attrs map[string]any) error {
	row := maps.Clone(attrs)
	if row == nil {
		row = map[string]any{}
	}

	// GORM omits "@id" when the driver reports no positive id, so a cached
	// id from an earlier insert must not survive this one.
	g.mu.Lock()
	delete(g.lastIDs, table)
	g.mu.Unlock()

	if err := g.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return FromDatabase(err, table)
	}

	if id, ok := row["@id"].(int64); ok {
		g.mu.Lock()
		g.lastIDs[table] = id
		g.mu.Unlock()
	}
	return nil
}

// LastInsertID returns the id generated by the most recent insert into table.
func (g *Gateway) LastInsertID(ctx context.Context, table string) (any, error) {
	g.mu.Lock()
	id, ok := g.lastIDs[table]
	g.mu.Unlock()
	if ok {
		return id, nil
	}

	v, err := g.dialect.lastInsertID(ctx, g.db.WithContext(ctx), table)
	if err != nil {
		return nil, FromDatabase(err, table)
	}
	return v, nil
}

// ListTables returns the user tables of schema in name order.
func (g *Gateway) ListTables(ctx context.Context, schema string) ([]string, error) {
	tables, err := g.dialect.listTables(ctx, g.db.WithContext(ctx), schema)
	if err != nil {
		return nil, FromDatabase(err, "")
	}
	return tables, nil
}

// Exec runs a raw SQL script. Scripts with several statements are passed
// to the driver as one call.
func (g *Gateway) Exec(ctx context.Context, sql string, args ...any) error {
	if err := g.db.WithContext(ctx).Exec(sql, args...).Error; err != nil {
		return FromDatabase(err, "")
	}
	return nil
}

// quoted wraps an identifier so GORM quotes it for the active dialect.
// Dotted names are quoted part by part.
func quoted(name string) clause.Table {
	return clause.Table{Name: name}
}
