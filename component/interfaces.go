package component

import "context"

// HealthStatus is the coarse state reported by a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in the /health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// String formats h as name=status(message).
func (h Health) String() string {
	s := h.Name + "=" + string(h.Status)
	if h.Message != "" {
		s += "(" + h.Message + ")"
	}
	return s
}

// Overall folds component statuses into one. Any unhealthy entry wins;
// otherwise any degraded entry makes the result degraded. An empty slice is
// healthy.
func Overall(hs []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range hs {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// Component is a piece of gateway infrastructure with a managed lifecycle:
// the user store, the telemetry exporters, the HTTP listener.
type Component interface {
	// Name is the registry key and must be unique.
	Name() string
	Start(ctx context.Context) error
	// Stop releases resources. ctx carries the shutdown deadline.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is a component's line in the startup summary.
type Description struct {
	// Name overrides Component.Name in the summary when set.
	Name    string
	Type    string
	Details string
	Port    int
}

// Describable components report their configuration to the startup summary.
type Describable interface {
	Describe() Description
}

// Route is one mounted HTTP route.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by components that mount HTTP routes.
type RouteProvider interface {
	Routes() []Route
}
