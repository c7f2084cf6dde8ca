package services

import (
	"route-sequencer-service/internal/domain"
)

// LoadingOrder returns the route in truck loading order.
// The last stop delivered is loaded first, so this is the route reversed.
func LoadingOrder[T any](route []domain.SequencedStop[T]) []domain.SequencedStop[T] {
	out := make([]domain.SequencedStop[T], 0, len(route))
	for i := len(route) - 1; i >= 0; i-- {
		out = append(out, route[i])
	}
	return out
}

// LoadingSheet builds loading sheet rows for a sequenced order route.
func LoadingSheet(route []domain.SequencedStop[domain.OrderPayload]) []domain.LoadingSheetEntry {
	out := make([]domain.LoadingSheetEntry, 0, len(route))
	for _, s := range LoadingOrder(route) {
		seq := s.DeliverySequence
		out = append(out, domain.LoadingSheetEntry{
			LoadPosition:     len(out) + 1,
			DeliverySequence: &seq,
			OrderID:          s.ID,
			CustomerName:     s.Payload.CustomerName,
			AddressText:      s.Payload.AddressText,
			Status:           s.Payload.Status,
		})
	}
	return out
}
