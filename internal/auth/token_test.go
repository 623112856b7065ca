package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
)

func TestTokenManager_ShopTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 720, 60)

	token, expiresAt, err := tm.GenerateShopToken("shop-1")
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "shop-1", claims.SubjectID)
	assert.Equal(t, domain.SubjectTypeShop, claims.Subject)
	assert.Nil(t, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_UserTokenCarriesRole(t *testing.T) {
	tm := NewTokenManager("test-secret", 720, 60)

	token, _, err := tm.GenerateUserToken("user-1", domain.RoleStoreManager)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeUser, claims.Subject)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.RoleStoreManager, *claims.Role)
	require.NotNil(t, claims.IssuedAt)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	tm := NewTokenManager("test-secret", 720, 60)
	other := NewTokenManager("other-secret", 720, 60)

	token, _, err := other.GenerateShopToken("shop-1")
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}
