package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mall-of-cayman/marketplace-service/internal/auth"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/events"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// ShopService covers the shop dashboard and the admin review workflow.
type ShopService struct {
	shops      repository.ShopRepository
	dispatcher events.Dispatcher
}

// ShopDependencies bundles repositories.
type ShopDependencies struct {
	ShopRepo   repository.ShopRepository
	Dispatcher events.Dispatcher
}

// NewShopService creates the service.
func NewShopService(deps ShopDependencies) *ShopService {
	return &ShopService{shops: deps.ShopRepo, dispatcher: deps.Dispatcher}
}

// Dashboard returns the principal's own shop. Pending and rejected shops can
// still read this; only mutations are gated on approval.
func (s *ShopService) Dashboard(ctx context.Context, principal *auth.Principal) (*domain.Shop, error) {
	if principal == nil || principal.Shop == nil {
		return nil, apperrors.NewUnauthorized("seller principal required")
	}
	return s.shops.GetByID(ctx, principal.Shop.ID)
}

// UpdateStoreSettings renames the shop. Owner-only; the handler chain gates
// capability and approval before this runs.
func (s *ShopService) UpdateStoreSettings(ctx context.Context, shopID, name string) (*domain.Shop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("shop", map[string]any{"shop_id": shopID})
		}
		return nil, apperrors.MapError(err)
	}
	shop.Name = name
	if err := s.shops.Update(ctx, shop); err != nil {
		return nil, apperrors.MapError(err)
	}
	return shop, nil
}

// ListShops returns shops for admin review screens.
func (s *ShopService) ListShops(ctx context.Context, filter repository.ShopFilter) ([]*domain.Shop, error) {
	return s.shops.List(ctx, filter)
}

// Approve marks a shop as approved and clears any rejection reason.
func (s *ShopService) Approve(ctx context.Context, actorID, shopID string) (*domain.Shop, error) {
	return s.setApproval(ctx, actorID, shopID, domain.ShopApprovalApproved, nil)
}

// Reject marks a shop as rejected, storing the reason surfaced to the owner.
func (s *ShopService) Reject(ctx context.Context, actorID, shopID, reason string) (*domain.Shop, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason required", nil)
	}
	return s.setApproval(ctx, actorID, shopID, domain.ShopApprovalRejected, &reason)
}

func (s *ShopService) setApproval(ctx context.Context, actorID, shopID string, status domain.ShopApprovalStatus, reason *string) (*domain.Shop, error) {
	shop, err := s.shops.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("shop", map[string]any{"shop_id": shopID})
		}
		return nil, apperrors.MapError(err)
	}
	oldStatus := shop.ApprovalStatus

	if err := s.shops.SetApproval(ctx, shopID, status, reason); err != nil {
		return nil, apperrors.MapError(err)
	}
	shop.ApprovalStatus = status
	shop.RejectionReason = reason

	s.publish(ctx, actorID, events.EventShopApprovalChanged, shopID, events.ShopApprovalChangedPayload{
		OldStatus: oldStatus,
		NewStatus: status,
		Reason:    derefOr(reason),
	})
	return shop, nil
}

// SetBan bans or unbans a shop. A banned shop fails every authenticated
// operation at resolution time.
func (s *ShopService) SetBan(ctx context.Context, actorID, shopID string, banned bool, reason *string) error {
	if banned && (reason == nil || strings.TrimSpace(*reason) == "") {
		return apperrors.NewValidationError("ban reason required", nil)
	}
	if !banned {
		reason = nil
	}
	if err := s.shops.SetBan(ctx, shopID, banned, reason); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("shop", map[string]any{"shop_id": shopID})
		}
		return apperrors.MapError(err)
	}

	s.publish(ctx, actorID, events.EventShopBanChanged, shopID, events.ShopBanChangedPayload{
		Banned: banned,
		Reason: derefOr(reason),
	})
	return nil
}

// AnnounceRegistration emits the shop_registered event after signup.
func (s *ShopService) AnnounceRegistration(ctx context.Context, shop *domain.Shop) {
	if shop == nil {
		return
	}
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventShopRegistered,
		ShopID:    shop.ID,
		Actor:     events.Actor{Type: domain.SubjectTypeShop, ShopID: &shop.ID},
		Timestamp: time.Now(),
		Payload:   events.ShopRegisteredPayload{Name: shop.Name, Email: shop.Email},
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *ShopService) publish(ctx context.Context, actorID string, eventType events.EventType, shopID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ShopID:    shopID,
		Actor:     events.Actor{Type: domain.SubjectTypeUser, UserID: &actorID},
		Timestamp: time.Now(),
		Payload:   payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
