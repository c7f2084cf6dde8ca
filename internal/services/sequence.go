package services

import (
	"errors"
	"fmt"
	"route-sequencer-service/internal/domain"
)

var (
	// ErrInvalidArgument is the parent of every precondition failure returned by Sequence.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrMissingStart = fmt.Errorf("%w: start location is required", ErrInvalidArgument)
	ErrInvalidStart = fmt.Errorf("%w: start location must have finite coordinates", ErrInvalidArgument)
	ErrMissingStops = fmt.Errorf("%w: stop list is required", ErrInvalidArgument)
)

// SequenceOptions tunes the refinement phase.
type SequenceOptions struct {
	// MaxSwaps caps accepted 2-opt moves. Zero selects DefaultMaxSwaps,
	// a negative value disables the cap.
	MaxSwaps int
}

func (o SequenceOptions) swapBudget() int {
	if o.MaxSwaps == 0 {
		return DefaultMaxSwaps
	}
	return o.MaxSwaps
}

// SequenceStats reports what a Sequence call did.
type SequenceStats struct {
	ValidStops          int
	InvalidStops        int
	ConstructedMeters   float64
	RefinedMeters       float64
	Swaps               int
	SwapBudgetExhausted bool
}

// Sequence orders stops for a single route starting at start.
//
// Routable stops are ordered by a nearest-neighbor walk refined with 2-opt and
// numbered 1..M. Stops without a usable location follow in input order as
// M+1..N. The input slice is not modified and payloads are copied through as is.
// The result depends only on the arguments.
func Sequence[T any](
	start *domain.Coordinates,
	stops []domain.Stop[T],
	opts SequenceOptions,
) ([]domain.SequencedStop[T], SequenceStats, error) {
	if start == nil {
		return nil, SequenceStats{}, ErrMissingStart
	}
	if !start.Valid() {
		return nil, SequenceStats{}, fmt.Errorf("%w: got (%v, %v)", ErrInvalidStart, start.Lat, start.Lon)
	}
	if stops == nil {
		return nil, SequenceStats{}, ErrMissingStops
	}

	valid, invalid := partitionStops(stops)

	constructed := NearestNeighbor(*start, valid)
	refined := ImproveTwoOpt(*start, constructed, opts.swapBudget())

	stats := SequenceStats{
		ValidStops:          len(valid),
		InvalidStops:        len(invalid),
		ConstructedMeters:   PathLength(*start, constructed),
		RefinedMeters:       PathLength(*start, refined.Path),
		Swaps:               refined.Swaps,
		SwapBudgetExhausted: refined.Exhausted,
	}

	out := make([]domain.SequencedStop[T], 0, len(stops))
	for _, s := range refined.Path {
		out = append(out, domain.SequencedStop[T]{Stop: s, DeliverySequence: len(out) + 1})
	}
	for _, s := range invalid {
		out = append(out, domain.SequencedStop[T]{Stop: s, DeliverySequence: len(out) + 1})
	}

	return out, stats, nil
}
