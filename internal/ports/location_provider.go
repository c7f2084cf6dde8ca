package ports

import (
	"context"
	"route-sequencer-service/internal/domain"
)

// Contract for resolving route start points.
// A nil coordinate with a nil error means the location is unknown.
type LocationProvider interface {
	// Return the last known position reported by the driver.
	DriverLocation(ctx context.Context, tenantID, driverID string) (*domain.Coordinates, error)
	// Return the tenant's first depot position.
	DepotLocation(ctx context.Context, tenantID string) (*domain.Coordinates, error)
}
