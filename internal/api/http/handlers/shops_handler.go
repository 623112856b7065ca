package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mall-of-cayman/marketplace-service/internal/api/dto"
	"github.com/mall-of-cayman/marketplace-service/internal/auth"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/repository"
	"github.com/mall-of-cayman/marketplace-service/internal/service"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// ShopsHandler exposes the seller dashboard and the admin review workflow.
type ShopsHandler struct {
	shops *service.ShopService
	users *service.AuthService
}

// NewShopsHandler constructs handler.
func NewShopsHandler(shopService *service.ShopService, authService *service.AuthService) *ShopsHandler {
	return &ShopsHandler{shops: shopService, users: authService}
}

// Dashboard handles GET /shop/dashboard. Pending and rejected shops may
// still read their own data here.
func (h *ShopsHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	shop, err := h.shops.Dashboard(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shopResponse(shop)})
}

// UpdateSettings handles PUT /shop/settings. Owner-only, gated upstream.
func (h *ShopsHandler) UpdateSettings(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	var req dto.UpdateStoreSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	shop, err := h.shops.UpdateStoreSettings(c.UserContext(), principal.ShopID(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shopResponse(shop)})
}

// List handles GET /admin/shops with an optional approval status filter.
func (h *ShopsHandler) List(c *fiber.Ctx) error {
	filter := repository.ShopFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" {
		approval := domain.ShopApprovalStatus(status)
		filter.ApprovalStatus = &approval
	}

	shops, err := h.shops.ListShops(c.UserContext(), filter)
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(shops))
	for _, shop := range shops {
		out = append(out, shopResponse(shop))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Approve handles POST /admin/shops/:id/approve.
func (h *ShopsHandler) Approve(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	shop, err := h.shops.Approve(c.UserContext(), actorID(principal), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shopResponse(shop)})
}

// Reject handles POST /admin/shops/:id/reject.
func (h *ShopsHandler) Reject(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.RejectShopRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	shop, err := h.shops.Reject(c.UserContext(), actorID(principal), c.Params("id"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shopResponse(shop)})
}

// Ban handles POST /admin/shops/:id/ban.
func (h *ShopsHandler) Ban(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reason := req.Reason
	if err := h.shops.SetBan(c.UserContext(), actorID(principal), c.Params("id"), true, &reason); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"banned": true}})
}

// Unban handles POST /admin/shops/:id/unban.
func (h *ShopsHandler) Unban(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	if err := h.shops.SetBan(c.UserContext(), actorID(principal), c.Params("id"), false, nil); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"banned": false}})
}

// SetUserRole handles POST /admin/users/:id/role.
func (h *ShopsHandler) SetUserRole(c *fiber.Ctx) error {
	var req dto.SetUserRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.SetUserRole(c.UserContext(), c.Params("id"), domain.UserRole(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":   user.ID,
		"role": user.Role,
	}})
}

// BanUser handles POST /admin/users/:id/ban.
func (h *ShopsHandler) BanUser(c *fiber.Ctx) error {
	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reason := req.Reason
	if err := h.users.SetUserBan(c.UserContext(), c.Params("id"), true, &reason); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"banned": true}})
}

// UnbanUser handles POST /admin/users/:id/unban.
func (h *ShopsHandler) UnbanUser(c *fiber.Ctx) error {
	if err := h.users.SetUserBan(c.UserContext(), c.Params("id"), false, nil); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"banned": false}})
}

func shopResponse(shop *domain.Shop) fiber.Map {
	resp := fiber.Map{
		"id":              shop.ID,
		"name":            shop.Name,
		"email":           shop.Email,
		"approval_status": shop.ApprovalStatus,
		"banned":          shop.Banned,
	}
	if shop.RejectionReason != nil {
		resp["rejection_reason"] = *shop.RejectionReason
	}
	if shop.BanReason != nil {
		resp["ban_reason"] = *shop.BanReason
	}
	return resp
}

func actorID(principal *auth.Principal) string {
	if principal == nil || principal.User == nil {
		return ""
	}
	return principal.User.ID
}
