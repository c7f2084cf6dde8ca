package dto

type OptimizeRequest struct {
	DriverID  string   `json:"driver_id"`
	OrderIDs  []string `json:"order_ids"`
	StartFrom string   `json:"start_from"`
}

type RouteStopResponse struct {
	ID               string   `json:"id"`
	CustomerName     string   `json:"customer_name"`
	AddressText      string   `json:"address_text"`
	Status           string   `json:"status"`
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	DeliverySequence int      `json:"delivery_sequence"`
}

type StartLocationResponse struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Type string  `json:"type"`
}

type SequenceStatsResponse struct {
	ValidStops          int     `json:"valid_stops"`
	InvalidStops        int     `json:"invalid_stops"`
	ConstructedMeters   float64 `json:"constructed_meters"`
	RefinedMeters       float64 `json:"refined_meters"`
	Swaps               int     `json:"swaps"`
	SwapBudgetExhausted bool    `json:"swap_budget_exhausted"`
	CacheHit            bool    `json:"cache_hit"`
}

type OptimizeResponse struct {
	Route         []RouteStopResponse   `json:"route"`
	StartLocation StartLocationResponse `json:"start_location"`
	Stats         SequenceStatsResponse `json:"stats"`
}
