package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name" yaml:"name"`
	Status  HealthStatus `json:"status" yaml:"status"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
}

// Component represents a lifecycle-managed infrastructure component.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information for display.
type Description struct {
	// Name is the human-readable display name. Empty means use Component.Name().
	Name string `json:"name" yaml:"name"`
	// Type categorizes the component: "database", "factory", ...
	Type string `json:"type" yaml:"type"`
	// Details is a one-liner such as "sqlite file:test.db pool=1".
	Details string `json:"details" yaml:"details"`
}

// Describable is optionally implemented by Components to self-report
// what they are and how they're configured.
type Describable interface {
	Describe() Description
}

// Resolver looks up a registered component by name. It returns nil when
// no component has that name.
type Resolver interface {
	Get(name string) Component
}
