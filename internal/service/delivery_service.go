package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/events"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// DeliveryService resolves delivery fees at checkout and manages vendor
// delivery configuration.
type DeliveryService struct {
	configs    repository.DeliveryConfigRepository
	districts  repository.DistrictRepository
	dispatcher events.Dispatcher
}

// DeliveryDependencies bundles repositories.
type DeliveryDependencies struct {
	ConfigRepo   repository.DeliveryConfigRepository
	DistrictRepo repository.DistrictRepository
	Dispatcher   events.Dispatcher
}

// NewDeliveryService creates the service.
func NewDeliveryService(deps DeliveryDependencies) *DeliveryService {
	return &DeliveryService{
		configs:    deps.ConfigRepo,
		districts:  deps.DistrictRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Quote resolves the delivery fee for one shop and district at a given order
// subtotal. A fee of zero with FreeDelivery=false means the vendor ships to
// that district for free by explicit configuration.
func (s *DeliveryService) Quote(ctx context.Context, shopID, districtID string, subtotal float64) (*domain.DeliveryQuote, error) {
	cfg, err := s.configs.GetByShop(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDistrictUnavailable(domain.DeliveryReasonNotEnabled)
		}
		return nil, apperrors.MapError(err)
	}
	if !cfg.DeliveryEnabled {
		return nil, apperrors.NewDistrictUnavailable(domain.DeliveryReasonNotEnabled)
	}

	entry := cfg.EntryFor(districtID)
	if entry == nil || !entry.IsAvailable {
		return nil, apperrors.NewDistrictUnavailable(domain.DeliveryReasonDistrictNotServed)
	}

	district, err := s.districts.GetByID(ctx, districtID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewDistrictUnavailable(domain.DeliveryReasonDistrictNotServed)
		}
		return nil, apperrors.MapError(err)
	}
	if !district.IsActive {
		return nil, apperrors.NewDistrictUnavailable(domain.DeliveryReasonDistrictNotServed)
	}

	fee := entry.Fee
	freeDelivery := false
	if cfg.FreeDeliveryThreshold != nil && subtotal >= *cfg.FreeDeliveryThreshold {
		fee = 0
		freeDelivery = true
	}

	estimatedDays := district.DefaultEstimatedDays
	if entry.EstimatedDays != nil {
		estimatedDays = *entry.EstimatedDays
	}

	return &domain.DeliveryQuote{
		Available:     true,
		Fee:           fee,
		OriginalFee:   entry.Fee,
		FreeDelivery:  freeDelivery,
		EstimatedDays: estimatedDays,
		DistrictName:  entry.DistrictName,
	}, nil
}

// Config returns the shop's delivery configuration, creating a disabled one
// on first access.
func (s *DeliveryService) Config(ctx context.Context, shopID string) (*domain.VendorDeliveryConfig, error) {
	return s.configs.EnsureForShop(ctx, shopID)
}

// UpdateSettings toggles delivery and sets the free-delivery threshold.
func (s *DeliveryService) UpdateSettings(ctx context.Context, shopID string, enabled bool, threshold *float64) (*domain.VendorDeliveryConfig, error) {
	if threshold != nil && *threshold < 0 {
		return nil, apperrors.NewInvalidFee("free delivery threshold must not be negative", nil)
	}
	if _, err := s.configs.EnsureForShop(ctx, shopID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.configs.UpdateSettings(ctx, shopID, enabled, threshold); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.configs.GetByShop(ctx, shopID)
}

// UpsertDistrictFee sets or replaces the fee entry for one district.
// District name and code are denormalized into the entry at write time and
// are not re-synced on a later rename.
func (s *DeliveryService) UpsertDistrictFee(ctx context.Context, shopID, districtID string, fee float64, isAvailable bool, estimatedDays *int) (*domain.DistrictFeeEntry, error) {
	entry, err := s.buildEntry(ctx, districtID, fee, isAvailable, estimatedDays)
	if err != nil {
		return nil, err
	}

	cfg, err := s.configs.EnsureForShop(ctx, shopID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.configs.UpsertEntry(ctx, cfg.ID, entry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishFeesUpdated(ctx, shopID, []string{districtID})
	return entry, nil
}

// RemoveDistrictFee deletes the entry for a district. Removing an absent
// entry is a successful no-op.
func (s *DeliveryService) RemoveDistrictFee(ctx context.Context, shopID, districtID string) error {
	cfg, err := s.configs.GetByShop(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if err := s.configs.RemoveEntry(ctx, cfg.ID, districtID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishFeesUpdated(ctx, shopID, []string{districtID})
	return nil
}

// BulkSetFees applies each requested fee independently, reporting per-item
// failures instead of rolling back the whole batch.
func (s *DeliveryService) BulkSetFees(ctx context.Context, shopID string, updates []domain.FeeUpdate) (*domain.BulkFeeResult, error) {
	cfg, err := s.configs.EnsureForShop(ctx, shopID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &domain.BulkFeeResult{}
	changed := []string{}
	for _, update := range updates {
		entry, err := s.buildEntry(ctx, update.DistrictID, update.Fee, update.IsAvailable, update.EstimatedDays)
		if err != nil {
			result.Failures = append(result.Failures, domain.BulkFeeFailure{
				DistrictID: update.DistrictID,
				Reason:     failureReason(err),
			})
			continue
		}
		if err := s.configs.UpsertEntry(ctx, cfg.ID, entry); err != nil {
			result.Failures = append(result.Failures, domain.BulkFeeFailure{
				DistrictID: update.DistrictID,
				Reason:     "write failed",
			})
			continue
		}
		result.Updated = append(result.Updated, *entry)
		changed = append(changed, update.DistrictID)
	}

	if len(changed) > 0 {
		s.publishFeesUpdated(ctx, shopID, changed)
	}
	return result, nil
}

func (s *DeliveryService) buildEntry(ctx context.Context, districtID string, fee float64, isAvailable bool, estimatedDays *int) (*domain.DistrictFeeEntry, error) {
	if fee < 0 {
		return nil, apperrors.NewInvalidFee("fee must not be negative", map[string]any{"district_id": districtID})
	}
	if estimatedDays != nil && *estimatedDays <= 0 {
		return nil, apperrors.NewInvalidFee("estimated days must be positive", map[string]any{"district_id": districtID})
	}

	district, err := s.districts.GetByID(ctx, districtID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("district", map[string]any{"district_id": districtID})
		}
		return nil, apperrors.MapError(err)
	}
	if !district.IsActive {
		return nil, apperrors.NewConflict("district is inactive", map[string]any{"district_id": districtID})
	}

	return &domain.DistrictFeeEntry{
		DistrictID:    district.ID,
		DistrictCode:  district.Code,
		DistrictName:  district.Name,
		Fee:           fee,
		IsAvailable:   isAvailable,
		EstimatedDays: estimatedDays,
	}, nil
}

func failureReason(err error) string {
	if de := apperrors.ToDomainError(err); de != nil {
		switch de.Code {
		case "NOT_FOUND":
			return "invalid district"
		case "CONFLICT":
			return "inactive district"
		case "INVALID_FEE":
			return de.Message
		}
	}
	return "rejected"
}

func (s *DeliveryService) publishFeesUpdated(ctx context.Context, shopID string, districtIDs []string) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventDeliveryFeesUpdated,
		ShopID:    shopID,
		Actor:     events.Actor{Type: domain.SubjectTypeShop, ShopID: &shopID},
		Timestamp: time.Now(),
		Payload:   events.DeliveryFeesUpdatedPayload{DistrictIDs: districtIDs},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
