// Package database provides the GORM-backed pieces the factory layer runs on.
//
// A Component opens a named connection through a registered driver. A
// Gateway performs the raw table operations factories need: schema
// introspection, truncation with key reset, integrity toggling, inserts
// and id read-back. A Mapper resolves model types to table names through
// GORM's schema parser.
//
// # Quick Start
//
//	cfg := database.Config{Name: "db", Driver: "sqlite", DSN: "file:test.db"}
//	db := database.NewComponent(cfg, log)
//	if err := db.Start(ctx); err != nil { ... }
//	gw := database.NewGateway(db.GormDB(), log)
//
// Drivers other than sqlite are registered by the caller:
//
//	database.RegisterDriver("postgres", func(dsn string) gorm.Dialector {
//	    return postgres.Open(dsn)
//	})
//
// The Gateway speaks the sqlite, mysql and postgres SQL dialects, picked
// from the dialector name.
package database
