package factory

import (
	"context"
	"fmt"
	"os"
	"sync"

	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/util"
)

// HookFunc is a table-reset escape hatch with full access to the gateway.
// The master hook replaces the reset loop of Prepare; a table hook
// replaces truncation of its table.
type HookFunc func(ctx context.Context, gw Gateway) error

// Hooks is a registry of hooks by name. Names follow the file naming
// convention: the configured init script for the master hook and
// <table><init script suffix> for table hooks.
type Hooks struct {
	mu    sync.RWMutex
	hooks map[string]HookFunc
}

// NewHooks creates an empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{hooks: make(map[string]HookFunc)}
}

// Register binds fn to name, replacing any previous hook.
func (h *Hooks) Register(name string, fn HookFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks[name] = fn
}

// Lookup returns the hook registered under name.
func (h *Hooks) Lookup(name string) (HookFunc, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.hooks[name]
	return fn, ok
}

// Names returns registered hook names in sorted order.
func (h *Hooks) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return util.SortedKeys(h.hooks)
}

// SQLFile returns a hook that runs the SQL script at path. The file is
// read when the hook runs, so edits between runs are picked up.
func SQLFile(path string) HookFunc {
	return func(ctx context.Context, gw Gateway) error {
		script, err := os.ReadFile(path)
		if err != nil {
			return apperrors.Configuration(fmt.Sprintf("read init script %s", path)).WithCause(err)
		}
		if err := gw.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("init script %s: %w", path, err)
		}
		return nil
	}
}
