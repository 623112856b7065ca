package dto

// AssignManagerRequest payload for hiring a store manager.
type AssignManagerRequest struct {
	UserID string `json:"user_id"`
}
