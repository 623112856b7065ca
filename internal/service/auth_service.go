package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mall-of-cayman/marketplace-service/internal/auth"
	"github.com/mall-of-cayman/marketplace-service/internal/config"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and account administration.
type AuthService struct {
	shops       repository.ShopRepository
	users       repository.UserRepository
	revocations repository.TokenRevocationRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	ShopRepo    repository.ShopRepository
	UserRepo    repository.UserRepository
	Revocations repository.TokenRevocationRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		shops:       deps.ShopRepo,
		users:       deps.UserRepo,
		revocations: deps.Revocations,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.ShopTokenTTLMinutes, cfg.Auth.UserTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// RegisterShop creates a new vendor shop pending admin approval.
func (s *AuthService) RegisterShop(ctx context.Context, name, email, password string) (*domain.Shop, string, time.Time, error) {
	if _, err := s.shops.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	shop := &domain.Shop{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		ApprovalStatus: domain.ShopApprovalPending,
	}
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateShopToken(shop.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return shop, token, exp, nil
}

// LoginShop authenticates a shop owner. A banned shop may not log in; the
// ban reason is surfaced in the rejection.
func (s *AuthService) LoginShop(ctx context.Context, email, password string) (*domain.Shop, string, time.Time, error) {
	shop, err := s.shops.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredential("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(shop.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredential("invalid credentials")
	}
	if shop.Banned {
		reason := ""
		if shop.BanReason != nil {
			reason = *shop.BanReason
		}
		return nil, "", time.Time{}, apperrors.NewAccountBanned(reason)
	}

	token, exp, err := s.tokenMgr.GenerateShopToken(shop.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return shop, token, exp, nil
}

// RegisterUser creates a customer account.
func (s *AuthService) RegisterUser(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateUserToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// LoginUser authenticates a platform account and issues a role-bearing token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredential("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredential("invalid credentials")
	}
	if user.Banned {
		reason := ""
		if user.BanReason != nil {
			reason = *user.BanReason
		}
		return nil, "", time.Time{}, apperrors.NewAccountBanned(reason)
	}

	token, exp, err := s.tokenMgr.GenerateUserToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.tokenMgr.ParseToken(tokenStr)
	if err != nil {
		// Already unusable; treat as logged out.
		return nil
	}
	if s.revocations == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// SetUserRole changes an account role. The repository stamps
// role_changed_at, which invalidates all previously issued tokens.
func (s *AuthService) SetUserRole(ctx context.Context, userID string, role domain.UserRole) (*domain.User, error) {
	switch role {
	case domain.RoleCustomer, domain.RoleStoreManager, domain.RoleSuperAdmin, domain.RoleSupportAdmin, domain.RoleContentAdmin:
	default:
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}
	if err := s.users.SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return s.users.GetByID(ctx, userID)
}

// SetUserBan bans or unbans a platform account.
func (s *AuthService) SetUserBan(ctx context.Context, userID string, banned bool, reason *string) error {
	if err := s.users.SetBan(ctx, userID, banned, reason); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
