package events

import (
	"time"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventShopRegistered      EventType = "shop_registered"
	EventShopApprovalChanged EventType = "shop_approval_changed"
	EventShopBanChanged      EventType = "shop_ban_changed"
	EventManagerAssigned     EventType = "manager_assigned"
	EventManagerSuspended    EventType = "manager_suspended"
	EventDeliveryFeesUpdated EventType = "delivery_fees_updated"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type   domain.SubjectType `json:"type"`
	ShopID *string            `json:"shop_id,omitempty"`
	UserID *string            `json:"user_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ShopID    string      `json:"shop_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ShopRegisteredPayload payload.
type ShopRegisteredPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ShopApprovalChangedPayload payload.
type ShopApprovalChangedPayload struct {
	OldStatus domain.ShopApprovalStatus `json:"old_status"`
	NewStatus domain.ShopApprovalStatus `json:"new_status"`
	Reason    string                    `json:"reason,omitempty"`
}

// ShopBanChangedPayload payload.
type ShopBanChangedPayload struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason,omitempty"`
}

// ManagerAssignedPayload payload.
type ManagerAssignedPayload struct {
	AssignmentID string    `json:"assignment_id"`
	ManagerID    string    `json:"manager_id"`
	PeriodEnd    time.Time `json:"period_end"`
}

// ManagerSuspendedPayload payload.
type ManagerSuspendedPayload struct {
	AssignmentID string `json:"assignment_id"`
	Suspended    bool   `json:"suspended"`
}

// DeliveryFeesUpdatedPayload payload.
type DeliveryFeesUpdatedPayload struct {
	DistrictIDs []string `json:"district_ids"`
}
