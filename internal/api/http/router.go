package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mall-of-cayman/marketplace-service/internal/api/http/handlers"
	"github.com/mall-of-cayman/marketplace-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Shops          *handlers.ShopsHandler
	Managers       *handlers.ManagersHandler
	Districts      *handlers.DistrictsHandler
	Delivery       *handlers.DeliveryHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	mw := cfg.AuthMiddleware

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/shops/register", cfg.Auth.RegisterShop)
	authGroup.Post("/shops/login", cfg.Auth.LoginShop)
	authGroup.Post("/users/register", cfg.Auth.RegisterUser)
	authGroup.Post("/users/login", cfg.Auth.LoginUser)
	authGroup.Post("/logout", cfg.Auth.Logout)

	// Public storefront surface.
	app.Get("/districts", cfg.Districts.List)
	app.Get("/delivery/quote", cfg.Delivery.Quote)

	// Seller surface: shop owners always pass, store managers pass only the
	// capabilities on their allow-list. Mutations additionally require an
	// approved shop.
	shop := app.Group("/shop", mw.Require(auth.ModeSellerOrManager))
	shop.Get("/dashboard", cfg.Shops.Dashboard)
	shop.Put("/settings",
		mw.RequireCapability(auth.CapabilityStoreSettings),
		mw.RequireApproved(),
		cfg.Shops.UpdateSettings)

	shop.Get("/manager", mw.RequireCapability(auth.CapabilityManagersControl), cfg.Managers.Current)
	shop.Get("/manager/history", mw.RequireCapability(auth.CapabilityManagersControl), cfg.Managers.History)
	shop.Post("/manager",
		mw.RequireCapability(auth.CapabilityManagersControl),
		mw.RequireApproved(),
		cfg.Managers.Assign)
	shop.Post("/manager/confirm-payment",
		mw.RequireCapability(auth.CapabilityManagersControl),
		mw.RequireApproved(),
		cfg.Managers.ConfirmPayment)

	delivery := shop.Group("/delivery", mw.RequireCapability(auth.CapabilityDeliveryConfig))
	delivery.Get("", cfg.Delivery.Config)
	delivery.Put("/settings", mw.RequireApproved(), cfg.Delivery.UpdateSettings)
	delivery.Put("/districts", mw.RequireApproved(), cfg.Delivery.BulkSetFees)
	delivery.Put("/districts/:districtId", mw.RequireApproved(), cfg.Delivery.UpsertFee)
	delivery.Delete("/districts/:districtId", mw.RequireApproved(), cfg.Delivery.RemoveFee)

	// Admin surface: every route is additionally gated on the capability the
	// admin's role grants.
	admin := app.Group("/admin", mw.Require(auth.ModeAdministrator))
	admin.Get("/shops", mw.RequireCapability(auth.CapabilityShopsReview), cfg.Shops.List)
	admin.Post("/shops/:id/approve", mw.RequireCapability(auth.CapabilityShopsReview), cfg.Shops.Approve)
	admin.Post("/shops/:id/reject", mw.RequireCapability(auth.CapabilityShopsReview), cfg.Shops.Reject)
	admin.Post("/shops/:id/ban", mw.RequireCapability(auth.CapabilityShopsReview), cfg.Shops.Ban)
	admin.Post("/shops/:id/unban", mw.RequireCapability(auth.CapabilityShopsReview), cfg.Shops.Unban)

	admin.Post("/shops/:id/manager/suspend", mw.RequireCapability(auth.CapabilityManagersControl), cfg.Managers.Suspend)
	admin.Post("/shops/:id/manager/unsuspend", mw.RequireCapability(auth.CapabilityManagersControl), cfg.Managers.Unsuspend)

	admin.Post("/users/:id/role", mw.RequireCapability(auth.CapabilityUsersManage), cfg.Shops.SetUserRole)
	admin.Post("/users/:id/ban", mw.RequireCapability(auth.CapabilityUsersManage), cfg.Shops.BanUser)
	admin.Post("/users/:id/unban", mw.RequireCapability(auth.CapabilityUsersManage), cfg.Shops.UnbanUser)

	admin.Get("/districts", mw.RequireCapability(auth.CapabilityDistrictsManage), cfg.Districts.List)
	admin.Post("/districts", mw.RequireCapability(auth.CapabilityDistrictsManage), cfg.Districts.Create)
	admin.Put("/districts/:id", mw.RequireCapability(auth.CapabilityDistrictsManage), cfg.Districts.Update)
	admin.Delete("/districts/:id", mw.RequireCapability(auth.CapabilityDistrictsManage), cfg.Districts.Delete)
}
