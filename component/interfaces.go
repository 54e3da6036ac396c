package component

import "context"

// HealthStatus is the state a component reports on /health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in a health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is something the registry starts, stops and checks, e.g. the
// fake posts API.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is a component's line in the startup summary.
type Description struct {
	// Name is the display name; empty means Component.Name().
	Name string
	// Type is a category such as "server".
	Type    string
	Details string
	// Port is 0 when the component does not listen.
	Port int
}

// Describable components appear in Registry.Summary.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route served by a component.
type Route struct {
	Method string
	Path   string
}

// RouteProvider components contribute to Registry.Routes.
type RouteProvider interface {
	Routes() []Route
}
