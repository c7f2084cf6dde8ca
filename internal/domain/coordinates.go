package domain

import "math"

// Immutable geographic coordinates in WGS84 degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are finite numbers.
// Range is not checked; the distance math is well defined for any finite pair.
func (c Coordinates) Valid() bool {
	return isFinite(c.Lat) && isFinite(c.Lon)
}

// Return coordinates as [lon, lat] (GeoJSON / PostGIS point order).
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// NewCoordinates builds a coordinate from nullable components.
// It returns nil when either component is absent.
func NewCoordinates(lat, lon *float64) *Coordinates {
	if lat == nil || lon == nil {
		return nil
	}
	return &Coordinates{Lat: *lat, Lon: *lon}
}
