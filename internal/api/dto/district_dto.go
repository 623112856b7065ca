package dto

// CreateDistrictRequest payload for new delivery districts.
type CreateDistrictRequest struct {
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	DefaultFee           float64 `json:"default_fee"`
	DefaultEstimatedDays int     `json:"default_estimated_days"`
}

// UpdateDistrictRequest payload for district edits; empty fields are left
// unchanged.
type UpdateDistrictRequest struct {
	Code                 string  `json:"code"`
	Name                 string  `json:"name"`
	DefaultFee           float64 `json:"default_fee"`
	DefaultEstimatedDays int     `json:"default_estimated_days"`
}
