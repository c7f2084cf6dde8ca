package services

import (
	"route-sequencer-service/internal/domain"
)

// partitionStops splits stops into routable and unroutable subsets,
// keeping each subset in input order.
func partitionStops[T any](stops []domain.Stop[T]) (valid, invalid []domain.Stop[T]) {
	valid = make([]domain.Stop[T], 0, len(stops))
	invalid = make([]domain.Stop[T], 0)
	for _, s := range stops {
		if s.Routable() {
			valid = append(valid, s)
			continue
		}
		invalid = append(invalid, s)
	}
	return valid, invalid
}

// NearestNeighbor orders stops using a greedy nearest-neighbor walk from start.
//
// At each step the closest remaining stop is visited next. When two stops are
// equally close the one that appears first in the remaining list wins, so the
// result depends only on input order. Unroutable stops are ignored; callers
// that need them should partition first.
func NearestNeighbor[T any](start domain.Coordinates, stops []domain.Stop[T]) []domain.Stop[T] {
	remaining, _ := partitionStops(stops)
	path := make([]domain.Stop[T], 0, len(remaining))

	current := start
	for len(remaining) > 0 {
		bestIdx := 0
		minDist := HaversineMeters(current, *remaining[0].Location)

		// Select next stop by minimum distance (greedy step). Strict < keeps the first minimum.
		for i := 1; i < len(remaining); i++ {
			d := HaversineMeters(current, *remaining[i].Location)
			if d < minDist {
				minDist = d
				bestIdx = i
			}
		}

		next := remaining[bestIdx]
		path = append(path, next)
		current = *next.Location
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return path
}
