package database

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/factorygirl/component"
	"github.com/kbukum/factorygirl/logger"
)

func memoryDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

func TestComponent_NameIsConnectionID(t *testing.T) {
	comp := NewComponent(Config{Name: "reporting", DSN: memoryDSN()}, logger.Nop())
	if got := comp.Name(); got != "reporting" {
		t.Errorf("Name() = %q, want reporting", got)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	ctx := context.Background()
	comp := NewComponent(Config{DSN: memoryDSN()}, logger.Nop())

	if comp.GormDB() != nil {
		t.Error("GormDB() should be nil before Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health before Start = %s, want unhealthy", h.Status)
	}

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if comp.GormDB() == nil {
		t.Fatal("GormDB() should not be nil after Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health after Start = %s (%s), want healthy", h.Status, h.Message)
	}

	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("second Stop() failed: %v", err)
	}
}

func TestComponent_UnknownDriver(t *testing.T) {
	comp := NewComponent(Config{Driver: "oracle", DSN: "x"}, logger.Nop())
	err := comp.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestComponent_WithDriverAndAutoMigrate(t *testing.T) {
	ctx := context.Background()
	var opened string
	comp := NewComponent(Config{Driver: "custom", DSN: memoryDSN()}, logger.Nop()).
		WithDriver(func(dsn string) gorm.Dialector {
			opened = dsn
			return sqlite.Open(dsn)
		}).
		WithAutoMigrate(&widget{})

	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer comp.Stop(ctx)

	if opened == "" {
		t.Error("custom driver was not used")
	}
	if !comp.GormDB().Migrator().HasTable("widgets") {
		t.Error("expected widgets table to be migrated")
	}
}

func TestRegisterDriver(t *testing.T) {
	RegisterDriver("sqlite-alias", sqlite.Open)
	found := false
	for _, d := range Drivers() {
		if d == "sqlite-alias" {
			found = true
		}
	}
	if !found {
		t.Fatalf("registered driver missing from %v", Drivers())
	}

	db, err := Open(context.Background(), Config{Driver: "sqlite-alias", DSN: memoryDSN()}, logger.Nop())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(context.Background()); err != nil {
		t.Errorf("PingContext() failed: %v", err)
	}
}

func TestComponent_Describe(t *testing.T) {
	comp := NewComponent(Config{DSN: memoryDSN()}, logger.Nop())
	d := comp.Describe()
	if d.Type != "database" || d.Name != DefaultName {
		t.Errorf("Describe() = %+v", d)
	}
	if !strings.Contains(d.Details, "sqlite pool=1/1") {
		t.Errorf("Details = %q", d.Details)
	}
}
