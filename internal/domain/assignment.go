package domain

import "time"

// AssignmentStatus enumerates the store-manager service lifecycle.
type AssignmentStatus string

const (
	AssignmentInactive  AssignmentStatus = "INACTIVE"
	AssignmentActive    AssignmentStatus = "ACTIVE"
	AssignmentExpired   AssignmentStatus = "EXPIRED"
	AssignmentSuspended AssignmentStatus = "SUSPENDED"
)

// ServiceAssignment links one user to one shop as its store manager.
// At most one open assignment (ClosedAt == nil) exists per shop; closed
// rows form the append-only assignment history.
type ServiceAssignment struct {
	ID               string
	ShopID           string
	UserID           string
	ServiceID        string
	Status           AssignmentStatus
	PeriodStart      time.Time
	PeriodEnd        time.Time
	ActivatedAt      *time.Time
	SuspendedByAdmin bool
	ClosedAt         *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ActiveAt reports whether the assignment grants manager access at t.
// Suspension is sticky: a suspended assignment never validates, whatever
// its subscription window says.
func (a *ServiceAssignment) ActiveAt(t time.Time) bool {
	if a.Status != AssignmentActive || a.SuspendedByAdmin {
		return false
	}
	if a.ClosedAt != nil {
		return false
	}
	return !t.Before(a.PeriodStart) && !t.After(a.PeriodEnd)
}

// WindowExpiredAt reports whether the subscription window has lapsed at t.
func (a *ServiceAssignment) WindowExpiredAt(t time.Time) bool {
	return t.After(a.PeriodEnd)
}

// StatusWithoutSuspension is the status the assignment holds once an admin
// suspension is lifted: INACTIVE while payment was never confirmed, EXPIRED
// once the window has lapsed, ACTIVE otherwise. Suspension never substitutes
// for payment confirmation.
func (a *ServiceAssignment) StatusWithoutSuspension(t time.Time) AssignmentStatus {
	if a.ActivatedAt == nil {
		return AssignmentInactive
	}
	if a.WindowExpiredAt(t) {
		return AssignmentExpired
	}
	return AssignmentActive
}
