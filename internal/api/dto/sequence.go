package dto

type SequenceItem struct {
	ID               string `json:"id"`
	DeliverySequence int    `json:"delivery_sequence"`
}

// Sequences is a pointer so that a missing field can be told apart from an empty list.
type SaveSequenceRequest struct {
	Sequences *[]SequenceItem `json:"sequences"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
