package dto

// UpdateStoreSettingsRequest payload for renaming the shop.
type UpdateStoreSettingsRequest struct {
	Name string `json:"name"`
}

// RejectShopRequest payload for admin rejection.
type RejectShopRequest struct {
	Reason string `json:"reason"`
}

// BanRequest payload for banning a shop or user.
type BanRequest struct {
	Reason string `json:"reason"`
}

// SetUserRoleRequest payload for admin role changes.
type SetUserRoleRequest struct {
	Role string `json:"role"`
}
