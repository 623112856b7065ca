package domain

import "time"

// UserRole enumerates platform account roles.
type UserRole string

const (
	RoleCustomer     UserRole = "CUSTOMER"
	RoleStoreManager UserRole = "STORE_MANAGER"
	RoleSuperAdmin   UserRole = "SUPER_ADMIN"
	RoleSupportAdmin UserRole = "SUPPORT_ADMIN"
	RoleContentAdmin UserRole = "CONTENT_ADMIN"
)

// IsAdmin reports whether the role denotes a platform administrator.
func (r UserRole) IsAdmin() bool {
	switch r {
	case RoleSuperAdmin, RoleSupportAdmin, RoleContentAdmin:
		return true
	}
	return false
}

// User models a platform account (customer, store manager or administrator).
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Banned       bool
	BanReason    *string
	// RoleChangedAt invalidates tokens issued before the last role change.
	RoleChangedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
