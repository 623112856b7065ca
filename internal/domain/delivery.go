package domain

import "time"

// DistrictFeeEntry is a vendor's configured delivery fee for one district.
// District code and name are denormalized at write time and are not
// re-synced when the district is later renamed.
type DistrictFeeEntry struct {
	ID            string
	ConfigID      string
	DistrictID    string
	DistrictCode  string
	DistrictName  string
	Fee           float64
	IsAvailable   bool
	EstimatedDays *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VendorDeliveryConfig is a shop's delivery setup. A fee of exactly zero is
// a valid entry (explicit free delivery to that district), distinct from no
// entry at all.
type VendorDeliveryConfig struct {
	ID                    string
	ShopID                string
	DeliveryEnabled       bool
	FreeDeliveryThreshold *float64
	Entries               []DistrictFeeEntry
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// EntryFor returns the fee entry for a district, if configured.
func (c *VendorDeliveryConfig) EntryFor(districtID string) *DistrictFeeEntry {
	for i := range c.Entries {
		if c.Entries[i].DistrictID == districtID {
			return &c.Entries[i]
		}
	}
	return nil
}

// DeliveryQuote is the outcome of a successful delivery fee lookup.
type DeliveryQuote struct {
	Available     bool
	Fee           float64
	OriginalFee   float64
	FreeDelivery  bool
	EstimatedDays int
	DistrictName  string
}

// Unavailable reasons reported by the fee resolver.
const (
	DeliveryReasonNotEnabled        = "not enabled"
	DeliveryReasonDistrictNotServed = "district not served"
)

// BulkFeeFailure records one rejected entry of a bulk fee update.
type BulkFeeFailure struct {
	DistrictID string
	Reason     string
}

// BulkFeeResult aggregates per-item outcomes of a bulk fee update. Bad
// entries never roll back the good ones.
type BulkFeeResult struct {
	Updated  []DistrictFeeEntry
	Failures []BulkFeeFailure
}

// FeeUpdate is one requested district fee in a bulk update.
type FeeUpdate struct {
	DistrictID    string
	Fee           float64
	IsAvailable   bool
	EstimatedDays *int
}
