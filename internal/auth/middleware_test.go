package auth

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// newGuardedApp wires the middleware chain the way the router does, with a
// minimal error handler translating DomainErrors to statuses.
func newGuardedApp(m *Middleware, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	chain := append(handlers, func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		return c.JSON(fiber.Map{"kind": principal.Kind, "shop_id": principal.ShopID()})
	})
	app.Get("/guarded", chain...)
	return app
}

func TestMiddleware_OwnerPassesCapabilityGate(t *testing.T) {
	f := newResolverFixture(t)
	f.addShop("shop-1", domain.ShopApprovalApproved)
	m := NewMiddleware(f.resolver)

	app := newGuardedApp(m,
		m.Require(ModeSellerOrManager),
		m.RequireCapability(CapabilityDeliveryConfig),
		m.RequireApproved(),
	)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-Shop-Token", f.shopToken(t, "shop-1"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddleware_ManagerBlockedOutsideAllowList(t *testing.T) {
	f := newResolverFixture(t)
	f.addShop("shop-1", domain.ShopApprovalApproved)
	f.addUser("manager-1", domain.RoleStoreManager)
	f.assignments.assignments["a1"] = &domain.ServiceAssignment{
		ID:          "a1",
		ShopID:      "shop-1",
		UserID:      "manager-1",
		Status:      domain.AssignmentActive,
		PeriodStart: time.Now().Add(-time.Hour),
		PeriodEnd:   time.Now().Add(24 * time.Hour),
	}
	m := NewMiddleware(f.resolver)

	app := newGuardedApp(m,
		m.Require(ModeSellerOrManager),
		m.RequireCapability(CapabilityDeliveryConfig),
	)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+f.userToken(t, "manager-1", domain.RoleStoreManager))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INSUFFICIENT_CAPABILITY", body["code"])
}

func TestMiddleware_MissingCredentialIs401(t *testing.T) {
	f := newResolverFixture(t)
	m := NewMiddleware(f.resolver)

	app := newGuardedApp(m, m.Require(ModeSellerOrManager))

	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddleware_PendingShopBlockedFromMutations(t *testing.T) {
	f := newResolverFixture(t)
	f.addShop("shop-1", domain.ShopApprovalPending)
	m := NewMiddleware(f.resolver)

	app := newGuardedApp(m,
		m.Require(ModeSellerOrManager),
		m.RequireApproved(),
	)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-Shop-Token", f.shopToken(t, "shop-1"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ACCOUNT_NOT_APPROVED", body["code"])
}

func TestCredentialsFromRequest_HeaderExtraction(t *testing.T) {
	var captured Credentials
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		captured = CredentialsFromRequest(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Shop-Token", "shop-token-value")
	req.Header.Set("Authorization", "Bearer session-token-value")

	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "shop-token-value", captured.ShopToken)
	assert.Equal(t, "session-token-value", captured.SessionToken)
}

func TestCredentialsFromRequest_IgnoresNonBearerAuth(t *testing.T) {
	var captured Credentials
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		captured = CredentialsFromRequest(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, captured.SessionToken)
}
