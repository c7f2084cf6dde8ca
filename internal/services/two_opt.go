package services

import (
	"route-sequencer-service/internal/domain"
)

// DefaultMaxSwaps bounds the number of accepted 2-opt moves when the caller
// does not choose a limit.
const DefaultMaxSwaps = 10000

// TwoOptResult describes a refinement run.
type TwoOptResult[T any] struct {
	Path  []domain.Stop[T]
	Swaps int
	// Exhausted is set when the swap budget ran out before a local optimum was reached.
	// Path is still the best path found so far.
	Exhausted bool
}

// ImproveTwoOpt refines an open path that begins at start using first-improvement 2-opt.
//
// The start point is node 0 of the working path and is never moved. For every
// pair i < k the edges (i-1,i) and (k,k+1) are compared with (i-1,k) and (i,k+1);
// when the exchange is strictly shorter the segment [i..k] is reversed and the
// scan restarts from the first pair. When k is the last node the second edge
// does not exist and only the first term is compared.
//
// maxSwaps < 0 removes the budget. Every stop in path must be Routable.
func ImproveTwoOpt[T any](start domain.Coordinates, path []domain.Stop[T], maxSwaps int) TwoOptResult[T] {
	stops := append([]domain.Stop[T](nil), path...)

	// pts[0] is the start; pts[j] is the location of stops[j-1].
	pts := make([]domain.Coordinates, 0, len(stops)+1)
	pts = append(pts, start)
	for _, s := range stops {
		pts = append(pts, *s.Location)
	}
	n := len(pts)

	swaps := 0
scan:
	for {
		for i := 1; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				a, b, c := pts[i-1], pts[i], pts[k]

				current := HaversineMeters(a, b)
				candidate := HaversineMeters(a, c)
				if k+1 < n {
					d := pts[k+1]
					current += HaversineMeters(c, d)
					candidate += HaversineMeters(b, d)
				}

				if candidate < current {
					if maxSwaps >= 0 && swaps >= maxSwaps {
						return TwoOptResult[T]{Path: stops, Swaps: swaps, Exhausted: true}
					}
					reverseSegment(pts, i, k)
					reverseSegment(stops, i-1, k-1)
					swaps++
					continue scan
				}
			}
		}
		break
	}

	return TwoOptResult[T]{Path: stops, Swaps: swaps}
}

func reverseSegment[E any](s []E, i, k int) {
	for i < k {
		s[i], s[k] = s[k], s[i]
		i++
		k--
	}
}
