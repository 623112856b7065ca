package dto

// UpdateDeliverySettingsRequest payload for toggling delivery and the free
// delivery threshold.
type UpdateDeliverySettingsRequest struct {
	DeliveryEnabled       bool     `json:"delivery_enabled"`
	FreeDeliveryThreshold *float64 `json:"free_delivery_threshold"`
}

// UpsertFeeRequest payload for setting one district fee.
type UpsertFeeRequest struct {
	Fee           float64 `json:"fee"`
	IsAvailable   bool    `json:"is_available"`
	EstimatedDays *int    `json:"estimated_days"`
}

// BulkFeeEntryRequest is one requested district fee of a bulk update.
type BulkFeeEntryRequest struct {
	DistrictID    string  `json:"district_id"`
	Fee           float64 `json:"fee"`
	IsAvailable   bool    `json:"is_available"`
	EstimatedDays *int    `json:"estimated_days"`
}

// BulkSetFeesRequest payload for setting several district fees at once.
type BulkSetFeesRequest struct {
	Entries []BulkFeeEntryRequest `json:"entries"`
}
