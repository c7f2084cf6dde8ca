package domain

// Start modes selectable by the caller when optimizing a driver's route.
const (
	StartFromDriver = "driver"
	StartFromDepot  = "depot"
)

// DefaultStart is used when neither a depot nor a driver position is known
// (Montevideo city centre).
var DefaultStart = Coordinates{Lat: -34.9011, Lon: -56.1645}

// StartLocation is the point a route is sequenced from, with the
// mode that produced it.
type StartLocation struct {
	Coordinates
	Type string
}

// SequenceAssignment is a persisted ordering for a single order.
type SequenceAssignment struct {
	OrderID          string
	DeliverySequence int
}

// LoadingSheetEntry is one row of a truck loading sheet.
// Rows are listed in reverse delivery order: the last stop is loaded first.
// DeliverySequence is nil for orders that were never sequenced.
type LoadingSheetEntry struct {
	LoadPosition     int
	DeliverySequence *int
	OrderID          string
	CustomerName     string
	AddressText      string
	Status           string
}
