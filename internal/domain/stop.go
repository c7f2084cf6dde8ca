package domain

// Stop is a single delivery point to be sequenced.
// Payload is carried through sequencing untouched; the engine never reads it.
// A nil Location, or one that is not Valid, marks the stop as not routable.
type Stop[T any] struct {
	ID       string
	Location *Coordinates
	Payload  T
}

// Routable reports whether the stop has a usable coordinate.
func (s Stop[T]) Routable() bool {
	return s.Location != nil && s.Location.Valid()
}

// SequencedStop is a Stop with its 1-based visiting position.
type SequencedStop[T any] struct {
	Stop[T]
	DeliverySequence int
}

// OrderPayload is the order data carried alongside a stop by the HTTP service.
type OrderPayload struct {
	CustomerName string
	AddressText  string
	Status       string
}

// Order statuses considered open for routing.
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusDelivered  = "delivered"
)
