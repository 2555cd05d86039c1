// Package testutil adds test lifecycle methods to components.
//
// A TestComponent is a component.Component that can also be reset to its
// initial state and snapshotted. Database and factory components implement
// it so a test can start them once and reset between cases.
//
//	func TestCheckout(t *testing.T) {
//	    db := dbtest.NewComponent()
//	    testutil.T(t).Setup(db)
//	    // stopped automatically when the test ends
//	}
//
// A Manager starts several components in order and resolves them by name,
// so a factory component can find its connection during Start:
//
//	m := testutil.NewManager(ctx)
//	m.Add(db)
//	m.Add(factory.NewComponent(cfg, m))
//	if err := m.StartAll(); err != nil { ... }
//	defer m.Cleanup()
package testutil
