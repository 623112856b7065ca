package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mall-of-cayman/marketplace-service/internal/config"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/events"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// AssignmentService manages the store-manager service lifecycle.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	shops       repository.ShopRepository
	dispatcher  events.Dispatcher
	serviceID   string
	serviceDays int
	now         func() time.Time
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	AssignmentRepo repository.AssignmentRepository
	UserRepo       repository.UserRepository
	ShopRepo       repository.ShopRepository
	Dispatcher     events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(cfg config.Config, deps AssignmentDependencies) *AssignmentService {
	days := cfg.Auth.ManagerServiceDays
	if days <= 0 {
		days = 30
	}
	return &AssignmentService{
		assignments: deps.AssignmentRepo,
		users:       deps.UserRepo,
		shops:       deps.ShopRepo,
		dispatcher:  deps.Dispatcher,
		serviceID:   cfg.Auth.ManagerServiceID,
		serviceDays: days,
		now:         time.Now,
	}
}

// AssignManager links a user to a shop as its store manager. The new
// assignment starts INACTIVE until payment confirmation. Any previously open
// assignment is closed in the same transaction, never deleted.
func (s *AssignmentService) AssignManager(ctx context.Context, shopID, userID string) (*domain.ServiceAssignment, error) {
	if _, err := s.shops.GetByID(ctx, shopID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("shop", map[string]any{"shop_id": shopID})
		}
		return nil, apperrors.MapError(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if user.Role != domain.RoleStoreManager {
		return nil, apperrors.NewConflict("user does not hold the store manager role", map[string]any{"user_id": userID})
	}
	if user.Banned {
		return nil, apperrors.NewConflict("user is banned", map[string]any{"user_id": userID})
	}

	// One open assignment per user as well: a manager serves one shop.
	if existing, err := s.assignments.GetOpenByUser(ctx, userID); err == nil && existing.ShopID != shopID {
		return nil, apperrors.NewConflict("user already manages another shop", map[string]any{"shop_id": existing.ShopID})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	assignment := &domain.ServiceAssignment{
		ShopID:      shopID,
		UserID:      userID,
		ServiceID:   s.serviceID,
		Status:      domain.AssignmentInactive,
		PeriodStart: now,
		PeriodEnd:   now.AddDate(0, 0, s.serviceDays),
	}
	if err := s.assignments.ReplaceOpen(ctx, assignment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventManagerAssigned, shopID, events.ManagerAssignedPayload{
		AssignmentID: assignment.ID,
		ManagerID:    userID,
		PeriodEnd:    assignment.PeriodEnd,
	})
	return assignment, nil
}

// ConfirmPayment activates an inactive assignment once the external payment
// processor reports success.
func (s *AssignmentService) ConfirmPayment(ctx context.Context, shopID string) (*domain.ServiceAssignment, error) {
	assignment, err := s.openAssignment(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if assignment.SuspendedByAdmin || assignment.Status == domain.AssignmentSuspended {
		return nil, apperrors.NewConflict("assignment is suspended", map[string]any{"assignment_id": assignment.ID})
	}
	if assignment.Status != domain.AssignmentInactive {
		return nil, apperrors.NewConflict("assignment is not awaiting payment", map[string]any{"status": assignment.Status})
	}

	now := s.now()
	if err := s.assignments.Activate(ctx, assignment.ID, now); err != nil {
		return nil, apperrors.MapError(err)
	}
	assignment.Status = domain.AssignmentActive
	assignment.ActivatedAt = &now
	return assignment, nil
}

// Suspend is an admin punishment and is sticky: nothing but an explicit
// Unsuspend brings the assignment back.
func (s *AssignmentService) Suspend(ctx context.Context, shopID string) (*domain.ServiceAssignment, error) {
	assignment, err := s.openAssignment(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if assignment.SuspendedByAdmin {
		return assignment, nil
	}

	// A lapsed window is expired, not suspendable. Flip the record first so
	// the stored status agrees.
	if assignment.Status == domain.AssignmentActive && assignment.WindowExpiredAt(s.now()) {
		if err := s.assignments.SetStatus(ctx, assignment.ID, domain.AssignmentExpired); err != nil {
			return nil, apperrors.MapError(err)
		}
		assignment.Status = domain.AssignmentExpired
	}
	if assignment.Status == domain.AssignmentExpired {
		return nil, apperrors.NewConflict("assignment window has lapsed", map[string]any{"assignment_id": assignment.ID})
	}

	if err := s.assignments.SetSuspended(ctx, assignment.ID, true, domain.AssignmentSuspended); err != nil {
		return nil, apperrors.MapError(err)
	}
	assignment.SuspendedByAdmin = true
	assignment.Status = domain.AssignmentSuspended

	s.publish(ctx, events.EventManagerSuspended, shopID, events.ManagerSuspendedPayload{
		AssignmentID: assignment.ID,
		Suspended:    true,
	})
	return assignment, nil
}

// Unsuspend lifts an admin suspension. The assignment resumes the status it
// would hold had the suspension never happened: INACTIVE while payment was
// never confirmed, EXPIRED when the window lapsed, ACTIVE otherwise.
func (s *AssignmentService) Unsuspend(ctx context.Context, shopID string) (*domain.ServiceAssignment, error) {
	assignment, err := s.openAssignment(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if !assignment.SuspendedByAdmin {
		return assignment, nil
	}

	resumed := assignment.StatusWithoutSuspension(s.now())
	if err := s.assignments.SetSuspended(ctx, assignment.ID, false, resumed); err != nil {
		return nil, apperrors.MapError(err)
	}
	assignment.SuspendedByAdmin = false
	assignment.Status = resumed

	s.publish(ctx, events.EventManagerSuspended, shopID, events.ManagerSuspendedPayload{
		AssignmentID: assignment.ID,
		Suspended:    false,
	})
	return assignment, nil
}

// Current returns the open assignment for a shop, lazily expiring a lapsed
// window.
func (s *AssignmentService) Current(ctx context.Context, shopID string) (*domain.ServiceAssignment, error) {
	assignment, err := s.openAssignment(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if assignment.Status == domain.AssignmentActive && assignment.WindowExpiredAt(s.now()) {
		if err := s.assignments.SetStatus(ctx, assignment.ID, domain.AssignmentExpired); err != nil {
			return nil, apperrors.MapError(err)
		}
		assignment.Status = domain.AssignmentExpired
	}
	return assignment, nil
}

// History lists past and present assignments for a shop, newest first.
func (s *AssignmentService) History(ctx context.Context, shopID string, limit int) ([]domain.ServiceAssignment, error) {
	return s.assignments.ListByShop(ctx, shopID, limit)
}

func (s *AssignmentService) openAssignment(ctx context.Context, shopID string) (*domain.ServiceAssignment, error) {
	assignment, err := s.assignments.GetOpenByShop(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignment", map[string]any{"shop_id": shopID})
		}
		return nil, apperrors.MapError(err)
	}
	return assignment, nil
}

func (s *AssignmentService) publish(ctx context.Context, eventType events.EventType, shopID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ShopID:    shopID,
		Actor:     events.Actor{Type: domain.SubjectTypeShop, ShopID: &shopID},
		Timestamp: time.Now(),
		Payload:   payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}
