package lifecycle

import (
	"context"
	"fmt"
)

// HealthStatus represents the health of a component.
type HealthStatus struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message,omitempty"`
}

// ManagedResource is a component main starts in order and stops in reverse order.
type ManagedResource interface {
	// Start runs the component. It may block until the component stops.
	Start(ctx context.Context) error

	// Stop releases the component's resources within ctx's deadline.
	Stop(ctx context.Context) error

	Health(ctx context.Context) HealthStatus
}

// ResourceHealth is the health of one resource, named by its concrete type.
type ResourceHealth struct {
	Name string
	HealthStatus
}

// Report collects the health of every resource and whether all of them are ready.
func Report(ctx context.Context, resources []ManagedResource) ([]ResourceHealth, bool) {
	report := make([]ResourceHealth, 0, len(resources))
	ready := true
	for _, r := range resources {
		status := r.Health(ctx)
		ready = ready && status.Ready
		report = append(report, ResourceHealth{Name: fmt.Sprintf("%T", r), HealthStatus: status})
	}
	return report, ready
}
