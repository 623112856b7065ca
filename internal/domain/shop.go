package domain

import "time"

// ShopApprovalStatus enumerates the admin review states for a shop.
type ShopApprovalStatus string

const (
	ShopApprovalPending  ShopApprovalStatus = "PENDING"
	ShopApprovalApproved ShopApprovalStatus = "APPROVED"
	ShopApprovalRejected ShopApprovalStatus = "REJECTED"
)

// Shop models a vendor storefront on the marketplace.
type Shop struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	ApprovalStatus  ShopApprovalStatus
	RejectionReason *string
	Banned          bool
	BanReason       *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Approved reports whether the shop passed admin review.
func (s *Shop) Approved() bool {
	return s.ApprovalStatus == ShopApprovalApproved
}
