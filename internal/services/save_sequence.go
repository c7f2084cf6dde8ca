package services

import (
	"context"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"
	"route-sequencer-service/internal/ports"
	"strings"
)

// SaveSequence validates and persists a chosen ordering for a tenant's orders.
// Order ids are trimmed before use; they must be non-empty and unique once
// trimmed, and sequences must be positive.
func SaveSequence(
	ctx context.Context,
	tenantID string,
	assignments []domain.SequenceAssignment,
	store ports.SequenceStore,
) (err error) {
	defer obs.Time(ctx, "services.SaveSequence")(&err)

	if strings.TrimSpace(tenantID) == "" {
		return fmt.Errorf("save sequence: %w: tenant is required", ErrInvalidArgument)
	}

	normalized := make([]domain.SequenceAssignment, 0, len(assignments))
	seen := make(map[string]struct{}, len(assignments))
	for i, a := range assignments {
		id := strings.TrimSpace(a.OrderID)
		if id == "" {
			return fmt.Errorf("save sequence: %w: item %d has empty id", ErrInvalidArgument, i+1)
		}
		if a.DeliverySequence < 1 {
			return fmt.Errorf(
				"save sequence: %w: item %d delivery_sequence must be >= 1, got %d",
				ErrInvalidArgument, i+1, a.DeliverySequence,
			)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("save sequence: %w: duplicate id %q", ErrInvalidArgument, id)
		}
		seen[id] = struct{}{}
		normalized = append(normalized, domain.SequenceAssignment{OrderID: id, DeliverySequence: a.DeliverySequence})
	}

	if len(normalized) == 0 {
		return nil
	}

	if err := store.SaveSequences(ctx, tenantID, normalized); err != nil {
		return fmt.Errorf("save sequence: %w", err)
	}
	return nil
}

// DriverLoadingSheet returns the driver's open orders in truck loading order.
func DriverLoadingSheet(
	ctx context.Context,
	tenantID string,
	driverID string,
	repo ports.OrderRepository,
) (_ []domain.LoadingSheetEntry, err error) {
	defer obs.Time(ctx, "services.DriverLoadingSheet")(&err)

	if strings.TrimSpace(driverID) == "" {
		return nil, fmt.Errorf("loading sheet: %w: driver id is required", ErrInvalidArgument)
	}

	entries, err := repo.LoadingSheet(ctx, tenantID, driverID)
	if err != nil {
		return nil, fmt.Errorf("loading sheet: driver %q: %w", driverID, err)
	}
	return entries, nil
}
