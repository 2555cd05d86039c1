// Package testutil provides an in-memory SQLite database component for tests.
//
// The component implements component.Component and testutil.TestComponent
// and satisfies database.Connection, so factory components can resolve it
// by name like a real connection.
//
//	db := testutil.NewComponent().WithModels(&User{})
//	testutil.T(t).Setup(db)
//
//	MustLoadFixture(t, db.DB(), "users", []map[string]interface{}{
//	    {"name": "Alice"},
//	})
//	AssertRowCount(t, db.DB(), "users", 1)
//
// Reset empties every table and restarts key sequences. Snapshot and
// Restore copy table contents in and out.
package testutil
