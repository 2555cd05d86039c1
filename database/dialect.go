package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/factorygirl/errors"
)

// dialect holds the statements that differ between databases.
type dialect interface {
	name() string
	tableSchema(ctx context.Context, db *gorm.DB, table string) (*TableSchema, error)
	truncate(ctx context.Context, db *gorm.DB, table string) error
	setIntegrity(ctx context.Context, db *gorm.DB, enabled bool, schema string) error
	lastInsertID(ctx context.Context, db *gorm.DB, table string) (any, error)
	listTables(ctx context.Context, db *gorm.DB, schema string) ([]string, error)
}

func dialectFor(name string) dialect {
	switch name {
	case "mysql":
		return mysqlDialect{}
	case "postgres":
		return postgresDialect{}
	default:
		return sqliteDialect{}
	}
}

// splitSchema splits "schema.table" into its parts.
func splitSchema(table string) (schema, name string) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}

// --- sqlite ---

type sqliteDialect struct{}

func (sqliteDialect) name() string { return "sqlite" }

type sqliteColumn struct {
	Name string `gorm:"column:name"`
	Type string `gorm:"column:type"`
	Pk   int    `gorm:"column:pk"`
}

func (sqliteDialect) tableSchema(ctx context.Context, db *gorm.DB, table string) (*TableSchema, error) {
	schema, name := splitSchema(table)
	if schema == "" {
		schema = "main"
	}

	var cols []sqliteColumn
	if err := db.Raw("SELECT name, type, pk FROM pragma_table_info(?, ?)", name, schema).Scan(&cols).Error; err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, apperrors.TableNotFound(table)
	}

	pks := make([]sqliteColumn, 0, 1)
	for _, c := range cols {
		if c.Pk > 0 {
			pks = append(pks, c)
		}
	}
	sort.Slice(pks, func(i, j int) bool { return pks[i].Pk < pks[j].Pk })

	ts := &TableSchema{Name: table, RawName: schema + "." + name}
	for _, c := range pks {
		ts.PrimaryKey = append(ts.PrimaryKey, c.Name)
	}
	// A lone INTEGER primary key aliases the rowid.
	ts.AutoIncrement = len(pks) == 1 && strings.EqualFold(strings.TrimSpace(pks[0].Type), "integer")
	return ts, nil
}

func (d sqliteDialect) truncate(ctx context.Context, db *gorm.DB, table string) error {
	if _, err := d.tableSchema(ctx, db, table); err != nil {
		return err
	}
	if err := db.Exec("DELETE FROM ?", quoted(table)).Error; err != nil {
		return err
	}

	schema, name := splitSchema(table)
	seq := "sqlite_sequence"
	if schema != "" {
		seq = schema + ".sqlite_sequence"
	}
	var n int64
	if err := db.Raw(fmt.Sprintf("SELECT count(*) FROM %s WHERE type = 'table' AND name = 'sqlite_sequence'", masterTable(schema))).
		Scan(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return db.Exec("DELETE FROM ? WHERE name = ?", quoted(seq), name).Error
}

func (sqliteDialect) setIntegrity(ctx context.Context, db *gorm.DB, enabled bool, _ string) error {
	// foreign_keys is a connection setting; attached schemas share it.
	if enabled {
		return db.Exec("PRAGMA foreign_keys = ON").Error
	}
	return db.Exec("PRAGMA foreign_keys = OFF").Error
}

func (sqliteDialect) lastInsertID(ctx context.Context, db *gorm.DB, _ string) (any, error) {
	var id int64
	err := db.Raw("SELECT last_insert_rowid()").Scan(&id).Error
	return id, err
}

func (sqliteDialect) listTables(ctx context.Context, db *gorm.DB, schema string) ([]string, error) {
	var tables []string
	err := db.Raw(fmt.Sprintf("SELECT name FROM %s WHERE type = 'table' AND name NOT LIKE 'sqlite_%%' ORDER BY name", masterTable(schema))).
		Scan(&tables).Error
	return tables, err
}

func masterTable(schema string) string {
	if schema == "" {
		return "sqlite_master"
	}
	return `"` + strings.ReplaceAll(schema, `"`, `""`) + `".sqlite_master`
}

// --- mysql ---

type mysqlDialect struct{}

type mysqlKeyColumn struct {
	Name  string `gorm:"column:COLUMN_NAME"`
	Extra string `gorm:"column:EXTRA"`
}

func (mysqlDialect) name() string { return "mysql" }

func (mysqlDialect) tableSchema(ctx context.Context, db *gorm.DB, table string) (*TableSchema, error) {
	schema, name := splitSchema(table)

	var exists int64
	if err := db.Raw(`SELECT count(*) FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?`, schema, name).
		Scan(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, apperrors.TableNotFound(table)
	}

	var cols []mysqlKeyColumn
	if err := db.Raw(`SELECT k.COLUMN_NAME, c.EXTRA
		FROM information_schema.KEY_COLUMN_USAGE k
		JOIN information_schema.COLUMNS c
		  ON c.TABLE_SCHEMA = k.TABLE_SCHEMA AND c.TABLE_NAME = k.TABLE_NAME AND c.COLUMN_NAME = k.COLUMN_NAME
		WHERE k.CONSTRAINT_NAME = 'PRIMARY'
		  AND k.TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND k.TABLE_NAME = ?
		ORDER BY k.ORDINAL_POSITION`, schema, name).Scan(&cols).Error; err != nil {
		return nil, err
	}

	ts := &TableSchema{Name: table, RawName: table}
	for _, c := range cols {
		ts.PrimaryKey = append(ts.PrimaryKey, c.Name)
		if strings.Contains(strings.ToLower(c.Extra), "auto_increment") {
			ts.AutoIncrement = true
		}
	}
	return ts, nil
}

func (mysqlDialect) truncate(ctx context.Context, db *gorm.DB, table string) error {
	// TRUNCATE also resets AUTO_INCREMENT.
	return db.Exec("TRUNCATE TABLE ?", quoted(table)).Error
}

func (mysqlDialect) setIntegrity(ctx context.Context, db *gorm.DB, enabled bool, _ string) error {
	if enabled {
		return db.Exec("SET FOREIGN_KEY_CHECKS = 1").Error
	}
	return db.Exec("SET FOREIGN_KEY_CHECKS = 0").Error
}

func (mysqlDialect) lastInsertID(ctx context.Context, db *gorm.DB, _ string) (any, error) {
	var id int64
	err := db.Raw("SELECT LAST_INSERT_ID()").Scan(&id).Error
	return id, err
}

func (mysqlDialect) listTables(ctx context.Context, db *gorm.DB, schema string) ([]string, error) {
	var tables []string
	err := db.Raw(`SELECT TABLE_NAME FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`, schema).Scan(&tables).Error
	return tables, err
}

// --- postgres ---

type postgresDialect struct{}

type pgKeyColumn struct {
	Name string `gorm:"column:name"`
	Auto bool   `gorm:"column:auto"`
}

func (postgresDialect) name() string { return "postgres" }

func (postgresDialect) tableSchema(ctx context.Context, db *gorm.DB, table string) (*TableSchema, error) {
	var raw sql.NullString
	if err := db.Raw("SELECT to_regclass(?)::text", table).Scan(&raw).Error; err != nil {
		return nil, err
	}
	if !raw.Valid {
		return nil, apperrors.TableNotFound(table)
	}

	var cols []pgKeyColumn
	if err := db.Raw(`SELECT a.attname AS name,
		       (a.attidentity <> '' OR pg_get_serial_sequence(?, a.attname) IS NOT NULL) AS auto
		FROM pg_index i
		JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		WHERE i.indrelid = ?::regclass AND i.indisprimary
		ORDER BY array_position(i.indkey, a.attnum)`, raw.String, raw.String).Scan(&cols).Error; err != nil {
		return nil, err
	}

	ts := &TableSchema{Name: table, RawName: raw.String}
	for _, c := range cols {
		ts.PrimaryKey = append(ts.PrimaryKey, c.Name)
		ts.AutoIncrement = ts.AutoIncrement || c.Auto
	}
	return ts, nil
}

func (postgresDialect) truncate(ctx context.Context, db *gorm.DB, table string) error {
	return db.Exec("TRUNCATE TABLE ? RESTART IDENTITY CASCADE", quoted(table)).Error
}

func (d postgresDialect) setIntegrity(ctx context.Context, db *gorm.DB, enabled bool, schema string) error {
	tables, err := d.listTables(ctx, db, schema)
	if err != nil {
		return err
	}
	action := "DISABLE"
	if enabled {
		action = "ENABLE"
	}
	for _, t := range tables {
		name := t
		if schema != "" {
			name = schema + "." + t
		}
		if err := db.Exec("ALTER TABLE ? "+action+" TRIGGER ALL", quoted(name)).Error; err != nil {
			return err
		}
	}
	return nil
}

func (postgresDialect) lastInsertID(ctx context.Context, db *gorm.DB, _ string) (any, error) {
	var id int64
	err := db.Raw("SELECT lastval()").Scan(&id).Error
	return id, err
}

func (postgresDialect) listTables(ctx context.Context, db *gorm.DB, schema string) ([]string, error) {
	var tables []string
	err := db.Raw(`SELECT tablename FROM pg_catalog.pg_tables
		WHERE schemaname = COALESCE(NULLIF(?, ''), current_schema())
		ORDER BY tablename`, schema).Scan(&tables).Error
	return tables, err
}
