package domain

import "time"

// District is a platform-defined geographic delivery zone. Districts are
// never hard-deleted; IsActive=false retires one while historical orders
// keep referencing it.
type District struct {
	ID                   string
	Code                 string
	Name                 string
	IsActive             bool
	DefaultFee           float64
	DefaultEstimatedDays int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
