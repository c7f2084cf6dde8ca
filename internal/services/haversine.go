package services

import (
	"math"
	"route-sequencer-service/internal/domain"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle surface distance between a and b.
// It is symmetric and returns 0 for identical points.
func HaversineMeters(a, b domain.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// PathLength sums the hops start -> path[0] -> ... -> path[n-1].
// Stops without a usable location are skipped.
func PathLength[T any](start domain.Coordinates, path []domain.Stop[T]) float64 {
	total := 0.0
	current := start
	for _, s := range path {
		if !s.Routable() {
			continue
		}
		total += HaversineMeters(current, *s.Location)
		current = *s.Location
	}
	return total
}
