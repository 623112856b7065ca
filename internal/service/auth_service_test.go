package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mall-of-cayman/marketplace-service/internal/config"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

type stubRevocations struct {
	revoked map[string]bool
}

func (r *stubRevocations) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	r.revoked[tokenID] = true
	return nil
}

func (r *stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r.revoked[tokenID], nil
}

func newAuthFixture() (*AuthService, *stubShopRepo, *stubUserRepo, *stubRevocations) {
	shops := &stubShopRepo{shops: map[string]*domain.Shop{}}
	users := &stubUserRepo{users: map[string]*domain.User{}}
	revocations := &stubRevocations{revoked: map[string]bool{}}

	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = 4 // keep the tests fast

	svc := NewAuthService(cfg, AuthDependencies{
		ShopRepo:    shops,
		UserRepo:    users,
		Revocations: revocations,
	})
	return svc, shops, users, revocations
}

func TestRegisterShop_StartsPending(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	shop, token, _, err := svc.RegisterShop(context.Background(), "Reef Goods", "reef@example.test", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, domain.ShopApprovalPending, shop.ApprovalStatus)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeShop, claims.Subject)
	assert.Equal(t, shop.ID, claims.SubjectID)
}

func TestRegisterShop_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	_, _, _, err := svc.RegisterShop(context.Background(), "Reef Goods", "reef@example.test", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.RegisterShop(context.Background(), "Reef Goods Again", "reef@example.test", "hunter22")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLoginShop_WrongPassword(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	_, _, _, err := svc.RegisterShop(context.Background(), "Reef Goods", "reef@example.test", "hunter22")
	require.NoError(t, err)

	_, _, _, err = svc.LoginShop(context.Background(), "reef@example.test", "wrong")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIAL"))

	// Unknown emails produce the same code, not NOT_FOUND.
	_, _, _, err = svc.LoginShop(context.Background(), "nobody@example.test", "hunter22")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIAL"))
}

func TestLoginShop_BannedSurfacesReason(t *testing.T) {
	svc, shops, _, _ := newAuthFixture()
	shop, _, _, err := svc.RegisterShop(context.Background(), "Reef Goods", "reef@example.test", "hunter22")
	require.NoError(t, err)

	reason := "counterfeit listings"
	require.NoError(t, shops.SetBan(context.Background(), shop.ID, true, &reason))

	_, _, _, err = svc.LoginShop(context.Background(), "reef@example.test", "hunter22")
	require.True(t, apperrors.IsCode(err, "ACCOUNT_BANNED"))
	assert.Equal(t, reason, apperrors.ToDomainError(err).Details["reason"])
}

func TestRegisterUser_DefaultsToCustomer(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	user, token, _, err := svc.RegisterUser(context.Background(), "Pat", "pat@example.test", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, user.Role)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.RoleCustomer, *claims.Role)
}

func TestLogout_RevokesTokenID(t *testing.T) {
	svc, _, _, revocations := newAuthFixture()
	_, token, _, err := svc.RegisterUser(context.Background(), "Pat", "pat@example.test", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.True(t, revocations.revoked[claims.ID])
}

func TestLogout_GarbageTokenIsNoOp(t *testing.T) {
	svc, _, _, revocations := newAuthFixture()

	assert.NoError(t, svc.Logout(context.Background(), "garbage"))
	assert.Empty(t, revocations.revoked)
}

func TestSetUserRole_StampsRoleChange(t *testing.T) {
	svc, _, users, _ := newAuthFixture()
	registered, _, _, err := svc.RegisterUser(context.Background(), "Pat", "pat@example.test", "hunter22")
	require.NoError(t, err)

	before := time.Now()
	updated, err := svc.SetUserRole(context.Background(), registered.ID, domain.RoleStoreManager)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStoreManager, updated.Role)
	assert.False(t, users.users[registered.ID].RoleChangedAt.Before(before))
}

func TestSetUserRole_RejectsUnknownRole(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	registered, _, _, err := svc.RegisterUser(context.Background(), "Pat", "pat@example.test", "hunter22")
	require.NoError(t, err)

	_, err = svc.SetUserRole(context.Background(), registered.ID, domain.UserRole("WIZARD"))
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}
