// Package component defines lifecycle-managed infrastructure pieces.
//
// A Component is started and stopped by a Registry in deterministic order.
// Database connections and factory sets are both components, so a factory
// set can look up its connection by name once the registry starts it.
//
// # Interfaces
//
//   - Component: Name/Start/Stop/Health lifecycle
//   - Describable: one-line summary for CLI and startup output
//   - Resolver: name lookup used by dependent components
package component
