package ports

import "context"

// CachedSequence is a previously computed ordering, stored as order ids.
type CachedSequence struct {
	OrderIDs            []string `json:"order_ids"`
	ConstructedMeters   float64  `json:"constructed_meters"`
	RefinedMeters       float64  `json:"refined_meters"`
	Swaps               int      `json:"swaps"`
	SwapBudgetExhausted bool     `json:"swap_budget_exhausted"`
}

// Optional cache of sequencing results keyed by a digest of the input.
type SequenceCache interface {
	// Return the cached entry; ok is false on a miss.
	Get(ctx context.Context, key string) (entry CachedSequence, ok bool, err error)
	Put(ctx context.Context, key string, entry CachedSequence) error
}

