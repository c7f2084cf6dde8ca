package ports

import (
	"context"
	"errors"
	"route-sequencer-service/internal/domain"
)

// OrderStop is an order as the sequencer sees it.
type OrderStop = domain.Stop[domain.OrderPayload]

// Port: a boundary for retrieving orders to sequence.
type OrderRepository interface {
	// Return the tenant's orders with the given ids. Unknown ids are skipped.
	ListOrdersByID(ctx context.Context, tenantID string, orderIDs []string) ([]OrderStop, error)
	// Return the driver's open (pending or in progress) orders.
	ListOpenOrders(ctx context.Context, tenantID, driverID string) ([]OrderStop, error)
	// Return the driver's open orders in loading order (delivery_sequence DESC NULLS LAST).
	LoadingSheet(ctx context.Context, tenantID, driverID string) ([]domain.LoadingSheetEntry, error)
}

// Port: persists chosen delivery orderings.
type SequenceStore interface {
	// Store all assignments atomically; either every row is written or none is.
	SaveSequences(ctx context.Context, tenantID string, assignments []domain.SequenceAssignment) error
}

// ErrNotFound is returned when a referenced record does not exist for the tenant.
var ErrNotFound = errors.New("not found")
