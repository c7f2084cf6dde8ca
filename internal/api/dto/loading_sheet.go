package dto

type LoadingSheetItem struct {
	LoadPosition     int    `json:"load_position"`
	DeliverySequence *int   `json:"delivery_sequence"`
	ID               string `json:"id"`
	CustomerName     string `json:"customer_name"`
	AddressText      string `json:"address_text"`
	Status           string `json:"status"`
}

type LoadingSheetResponse struct {
	DriverID string             `json:"driver_id"`
	Items    []LoadingSheetItem `json:"items"`
}
