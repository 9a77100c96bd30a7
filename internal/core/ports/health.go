package ports

import "context"

// HealthChecker is one dependency reported by GET /health.
// Ping returns nil when healthy; Name is the key in the response
// ("memory", "postgresql", "redis", "bridge").
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}
