package factory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/factorygirl/database"
	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/logger"
	"github.com/kbukum/factorygirl/sequence"
	"github.com/kbukum/factorygirl/util"
)

// Gateway is the table access factories need. *database.Gateway
// implements it.
type Gateway interface {
	TableSchema(ctx context.Context, table string) (*database.TableSchema, error)
	Truncate(ctx context.Context, table string) error
	SetIntegrityChecking(ctx context.Context, enabled bool, schema string) error
	Insert(ctx context.Context, table string, attrs map[string]any) error
	LastInsertID(ctx context.Context, table string) (any, error)
	ListTables(ctx context.Context, schema string) ([]string, error)
	Exec(ctx context.Context, sql string, args ...any) error
}

// TableMapper resolves a blank model to its table. *database.Mapper
// implements it.
type TableMapper interface {
	TableName(model any) (string, error)
}

var (
	_ Gateway     = (*database.Gateway)(nil)
	_ TableMapper = (*database.Mapper)(nil)
)

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger. The default is the global logger.
func WithLogger(log *logger.Logger) Option {
	return func(f *Factory) { f.log = log }
}

// WithSequence shares a sequence generator with the factory.
func WithSequence(seq *sequence.Generator) Option {
	return func(f *Factory) { f.seq = seq }
}

// WithModels sets the model registry classes are instantiated from.
func WithModels(models *ModelRegistry) Option {
	return func(f *Factory) { f.models = models }
}

// WithHooks sets the hook registry consulted before init script files.
func WithHooks(hooks *Hooks) Option {
	return func(f *Factory) { f.hooks = hooks }
}

// Factory indexes definitions and runs the table lifecycle against a
// Gateway. The definition index is loaded on first use and kept until
// Reload.
type Factory struct {
	cfg    Config
	gw     Gateway
	mapper TableMapper
	seq    *sequence.Generator
	models *ModelRegistry
	hooks  *Hooks
	log    *logger.Logger

	mu         sync.Mutex
	defs       map[string]*Definition
	registered map[string]*Definition
	prepared   bool
}

// New creates a factory. gw may be nil when only Build and Attributes are
// used; a nil mapper uses GORM's default naming strategy.
func New(cfg Config, gw Gateway, mapper TableMapper, opts ...Option) (*Factory, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeConfiguration) {
			return nil, err
		}
		return nil, apperrors.Configuration("invalid factory config").WithCause(err)
	}
	if mapper == nil {
		mapper = database.NewMapper(nil)
	}

	f := &Factory{
		cfg:        cfg,
		gw:         gw,
		mapper:     mapper,
		registered: make(map[string]*Definition),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.seq == nil {
		f.seq = sequence.New()
	}
	if f.models == nil {
		f.models = NewModelRegistry()
	}
	if f.hooks == nil {
		f.hooks = NewHooks()
	}
	if f.log == nil {
		f.log = logger.GetGlobalLogger()
	}
	f.log = f.log.WithComponent("factory")
	return f, nil
}

// Config returns the effective configuration.
func (f *Factory) Config() Config { return f.cfg }

// Sequence returns the generator used for token expansion.
func (f *Factory) Sequence() *sequence.Generator { return f.seq }

// Models returns the model registry.
func (f *Factory) Models() *ModelRegistry { return f.models }

// Hooks returns the hook registry.
func (f *Factory) Hooks() *Hooks { return f.hooks }

// Prepared reports whether the last Prepare succeeded.
func (f *Factory) Prepared() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prepared
}

// Prepare resets every factory table with integrity checking disabled.
// When the master init hook exists it runs instead of the per-table
// resets. Integrity checking is re-enabled on every path and any failure
// leaves the factory unprepared.
func (f *Factory) Prepare(ctx context.Context) error {
	gw, err := f.gateway("Prepare")
	if err != nil {
		return err
	}

	f.setPrepared(false)
	log := f.log.WithFields(map[string]interface{}{logger.FieldRunID: uuid.NewString()})
	start := time.Now()

	if hook, ok := f.hook(f.cfg.InitScript); ok {
		log.Info("Preparing factory tables", map[string]interface{}{"hook": f.cfg.InitScript})
		err = f.WithIntegrityDisabled(ctx, func(ctx context.Context) error {
			return hook(ctx, gw)
		})
	} else {
		var defs []*Definition
		if defs, err = f.Definitions(); err != nil {
			return err
		}
		log.Info("Preparing factory tables", map[string]interface{}{"definitions": len(defs)})
		err = f.WithIntegrityDisabled(ctx, func(ctx context.Context) error {
			for _, table := range tablesOf(defs) {
				if err := f.ResetTable(ctx, table); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err != nil {
		log.Error("Factory preparation failed", logger.ErrorFields("prepare", err))
		return err
	}

	f.setPrepared(true)
	log.Info("Factory tables prepared", logger.DurationFields("prepare", time.Since(start)))
	return nil
}

// ResetTable runs the table's init hook when one exists and truncates the
// table otherwise. It does not toggle integrity checking.
func (f *Factory) ResetTable(ctx context.Context, table string) error {
	gw, err := f.gateway("ResetTable")
	if err != nil {
		return err
	}

	name := table + f.cfg.InitScriptSuffix
	if hook, ok := f.hook(name); ok {
		f.log.Debug("Resetting table with init hook", map[string]interface{}{logger.FieldTable: table, "hook": name})
		return hook(ctx, gw)
	}
	f.log.Debug("Resetting table by truncation", map[string]interface{}{logger.FieldTable: table})
	return gw.Truncate(ctx, table)
}

// TruncateTable deletes every row of table and resets its key sequence.
// It does not toggle integrity checking.
func (f *Factory) TruncateTable(ctx context.Context, table string) error {
	gw, err := f.gateway("TruncateTable")
	if err != nil {
		return err
	}
	return gw.Truncate(ctx, table)
}

// TruncateTables truncates every table of schema, stopping at the first
// failure. It does not toggle integrity checking.
func (f *Factory) TruncateTables(ctx context.Context, schema string) error {
	gw, err := f.gateway("TruncateTables")
	if err != nil {
		return err
	}
	tables, err := gw.ListTables(ctx, schema)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := gw.Truncate(ctx, table); err != nil {
			return err
		}
	}
	f.log.Debug("Schema truncated", map[string]interface{}{logger.FieldSchema: schema, "tables": len(tables)})
	return nil
}

// CheckIntegrity turns integrity checking on or off for every configured
// schema. Every schema is attempted and the failures are joined.
func (f *Factory) CheckIntegrity(ctx context.Context, enabled bool) error {
	gw, err := f.gateway("CheckIntegrity")
	if err != nil {
		return err
	}

	var errs []error
	for _, schema := range f.cfg.Schemas {
		if err := gw.SetIntegrityChecking(ctx, enabled, schema); err != nil {
			errs = append(errs, fmt.Errorf("schema %q: %w", schema, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	f.log.Debug("Integrity checking toggled", map[string]interface{}{"enabled": enabled, "schemas": f.cfg.Schemas})
	return nil
}

// WithIntegrityDisabled runs fn with integrity checking disabled. The
// re-enable always runs, on a context that is not cancelled with ctx, and
// its error is joined with fn's.
func (f *Factory) WithIntegrityDisabled(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if enableErr := f.CheckIntegrity(context.WithoutCancel(ctx), true); enableErr != nil {
			err = errors.Join(err, enableErr)
		}
	}()

	if err := f.CheckIntegrity(ctx, false); err != nil {
		return err
	}
	return fn(ctx)
}

// Build returns a new in-memory model of className populated with the
// resolved attributes. It does not touch the database. An empty alias
// applies no overlay.
func (f *Factory) Build(className string, overrides Attributes, alias string) (Model, error) {
	model, _, _, err := f.build(className, overrides, alias)
	return model, err
}

// Create builds a model and inserts it with integrity checking disabled.
// When the table generates its primary key and the resolved attributes
// leave a key column unset, the generated id is assigned to the first
// such column of the returned model.
func (f *Factory) Create(ctx context.Context, className string, overrides Attributes, alias string) (Model, error) {
	gw, err := f.gateway("Create")
	if err != nil {
		return nil, err
	}
	if !f.Prepared() {
		return nil, apperrors.NotPrepared("Create")
	}

	model, def, attrs, err := f.build(className, overrides, alias)
	if err != nil {
		return nil, err
	}
	schema, err := gw.TableSchema(ctx, def.TableName)
	if err != nil {
		return nil, err
	}

	err = f.WithIntegrityDisabled(ctx, func(ctx context.Context) error {
		if err := gw.Insert(ctx, def.TableName, attrs); err != nil {
			return err
		}
		f.log.Debug("Factory row inserted", map[string]interface{}{logger.FieldClass: className, logger.FieldTable: def.TableName})

		if !schema.AutoIncrement {
			return nil
		}
		key, ok := f.generatedKey(schema, attrs)
		if !ok {
			return nil
		}
		id, err := gw.LastInsertID(ctx, def.TableName)
		if err != nil {
			return err
		}
		if err := model.AssignAttributes(map[string]any{key: id}); err != nil {
			return err
		}
		f.log.Debug("Generated key assigned", map[string]interface{}{logger.FieldClass: className, "key": key, "id": id})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Attributes resolves the attributes Build would assign.
func (f *Factory) Attributes(className string, overrides Attributes, alias string) (Attributes, error) {
	def, err := f.Definition(className)
	if err != nil {
		return nil, err
	}
	return def.Resolve(f.seq, overrides, alias)
}

// Definition returns the definition of className. It fails with
// UNKNOWN_FACTORY when no definition is loaded.
func (f *Factory) Definition(className string) (*Definition, error) {
	defs, err := f.index()
	if err != nil {
		return nil, err
	}
	def, ok := defs[className]
	if !ok {
		return nil, apperrors.UnknownFactory(className)
	}
	return def, nil
}

// Definitions returns every loaded definition ordered by class name.
func (f *Factory) Definitions() ([]*Definition, error) {
	defs, err := f.index()
	if err != nil {
		return nil, err
	}
	out := make([]*Definition, 0, len(defs))
	for _, name := range util.SortedKeys(defs) {
		out = append(out, defs[name])
	}
	return out, nil
}

// Register adds a programmatic definition. It takes precedence over a
// file defining the same class, including after Reload.
func (f *Factory) Register(def *Definition) error {
	if def == nil || def.ClassName == "" || def.TableName == "" {
		return apperrors.Configuration("factory definition requires a class and table name")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.registered[def.ClassName]; ok {
		f.log.Warn("Factory definition replaced", map[string]interface{}{logger.FieldClass: def.ClassName})
	}
	f.registered[def.ClassName] = def
	if f.defs != nil {
		f.defs[def.ClassName] = def
	}
	return nil
}

// Reload drops the cached index and scans the base directory again.
func (f *Factory) Reload() error {
	f.mu.Lock()
	f.defs = nil
	f.mu.Unlock()

	_, err := f.index()
	return err
}

// index returns the definition index, scanning on first use.
func (f *Factory) index() (map[string]*Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.defs != nil {
		return f.defs, nil
	}

	defs, err := f.discover()
	if err != nil {
		return nil, err
	}
	for name, def := range f.registered {
		defs[name] = def
	}
	f.defs = defs
	f.log.Debug("Factory index loaded", map[string]interface{}{logger.FieldPath: f.cfg.BasePath, "definitions": len(defs)})
	return defs, nil
}

func (f *Factory) build(className string, overrides Attributes, alias string) (Model, *Definition, Attributes, error) {
	def, err := f.Definition(className)
	if err != nil {
		return nil, nil, nil, err
	}
	attrs, err := def.Resolve(f.seq, overrides, alias)
	if err != nil {
		return nil, nil, nil, err
	}
	model, err := f.models.New(className)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := model.AssignAttributes(attrs); err != nil {
		return nil, nil, nil, err
	}
	return model, def, attrs, nil
}

// generatedKey returns the first primary key column with no value in
// attrs. Only that column receives the generated id.
func (f *Factory) generatedKey(schema *database.TableSchema, attrs Attributes) (string, bool) {
	var missing []string
	for _, column := range schema.PrimaryKey {
		if v, ok := attrs[column]; !ok || v == nil {
			missing = append(missing, column)
		}
	}
	if len(missing) == 0 {
		return "", false
	}
	if len(missing) > 1 {
		f.log.Warn("Several key columns unset, assigning generated id to the first", map[string]interface{}{
			logger.FieldTable: schema.Name,
			"assigned":        missing[0],
			"unset":           strings.Join(missing[1:], ","),
		})
	}
	return missing[0], true
}

// hook returns the registered hook for name or, failing that, an SQL file
// hook when a file of that name exists in the base directory.
func (f *Factory) hook(name string) (HookFunc, bool) {
	if fn, ok := f.hooks.Lookup(name); ok {
		return fn, true
	}
	path := filepath.Join(f.cfg.BasePath, name)
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return SQLFile(path), true
	}
	return nil, false
}

func (f *Factory) gateway(operation string) (Gateway, error) {
	if f.gw == nil {
		return nil, apperrors.Configuration(operation + " requires a database gateway")
	}
	return f.gw, nil
}

func (f *Factory) setPrepared(v bool) {
	f.mu.Lock()
	f.prepared = v
	f.mu.Unlock()
}

// tablesOf returns the distinct tables of defs in class order.
func tablesOf(defs []*Definition) []string {
	tables := make([]string, 0, len(defs))
	for _, def := range defs {
		tables = append(tables, def.TableName)
	}
	return util.Unique(tables)
}
