package testutil

import (
	"context"

	"github.com/kbukum/factorygirl/component"
)

// TestComponent extends component.Component with testing-specific lifecycle methods.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state between test cases.
	Reset(ctx context.Context) error

	// Snapshot captures the current state of the component.
	// The returned value can be passed to Restore.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore returns the component to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot interface{}) error
}
