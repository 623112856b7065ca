package domain

import "time"

// SubjectType differentiates shop-scoped vs user-scoped tokens.
type SubjectType string

const (
	SubjectTypeShop SubjectType = "SHOP"
	SubjectTypeUser SubjectType = "USER"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	Role      *UserRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}
