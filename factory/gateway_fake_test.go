package factory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kbukum/factorygirl/database"
	apperrors "github.com/kbukum/factorygirl/errors"
)

// recordingGateway is an in-memory Gateway that logs every call.
type recordingGateway struct {
	mu      sync.Mutex
	calls   []string
	schemas map[string]*database.TableSchema
	rows    map[string][]map[string]any
	ids     map[string]int64
	execs   []string

	insertErr    error
	truncateErr  error
	integrityErr map[bool]error
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{
		schemas: map[string]*database.TableSchema{
			"users": {Name: "users", PrimaryKey: []string{"id"}, AutoIncrement: true},
		},
		rows: make(map[string][]map[string]any),
		ids:  make(map[string]int64),
	}
}

func (g *recordingGateway) record(format string, args ...any) {
	g.calls = append(g.calls, fmt.Sprintf(format, args...))
}

func (g *recordingGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.calls)
}

func (g *recordingGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

func (g *recordingGateway) TableSchema(_ context.Context, table string) (*database.TableSchema, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("schema %s", table)
	s, ok := g.schemas[table]
	if !ok {
		return nil, apperrors.TableNotFound(table)
	}
	return s, nil
}

func (g *recordingGateway) Truncate(_ context.Context, table string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("truncate %s", table)
	if g.truncateErr != nil {
		return g.truncateErr
	}
	delete(g.rows, table)
	g.ids[table] = 0
	return nil
}

func (g *recordingGateway) SetIntegrityChecking(_ context.Context, enabled bool, schema string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("integrity %t %q", enabled, schema)
	return g.integrityErr[enabled]
}

func (g *recordingGateway) Insert(_ context.Context, table string, attrs map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("insert %s", table)
	if g.insertErr != nil {
		return g.insertErr
	}
	g.ids[table]++
	g.rows[table] = append(g.rows[table], maps.Clone(attrs))
	return nil
}

func (g *recordingGateway) LastInsertID(_ context.Context, table string) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("lastid %s", table)
	return g.ids[table], nil
}

func (g *recordingGateway) ListTables(_ context.Context, schema string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("list %q", schema)
	return slices.Sorted(maps.Keys(g.schemas)), nil
}

func (g *recordingGateway) Exec(_ context.Context, sql string, _ ...any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.record("exec")
	g.execs = append(g.execs, sql)
	return nil
}
