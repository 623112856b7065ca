package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mall-of-cayman/marketplace-service/internal/api/dto"
	"github.com/mall-of-cayman/marketplace-service/internal/auth"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/service"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// ManagersHandler exposes the store-manager assignment lifecycle.
type ManagersHandler struct {
	assignments *service.AssignmentService
}

// NewManagersHandler constructs handler.
func NewManagersHandler(assignmentService *service.AssignmentService) *ManagersHandler {
	return &ManagersHandler{assignments: assignmentService}
}

// Assign handles POST /shop/manager. Owner-only; the new assignment awaits
// payment confirmation before it activates.
func (h *ManagersHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	var req dto.AssignManagerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}

	assignment, err := h.assignments.AssignManager(c.UserContext(), principal.ShopID(), req.UserID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// ConfirmPayment handles POST /shop/manager/confirm-payment.
func (h *ManagersHandler) ConfirmPayment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	assignment, err := h.assignments.ConfirmPayment(c.UserContext(), principal.ShopID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// Current handles GET /shop/manager.
func (h *ManagersHandler) Current(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	assignment, err := h.assignments.Current(c.UserContext(), principal.ShopID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// History handles GET /shop/manager/history.
func (h *ManagersHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	history, err := h.assignments.History(c.UserContext(), principal.ShopID(), c.QueryInt("limit", 50))
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(history))
	for i := range history {
		out = append(out, assignmentResponse(&history[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Suspend handles POST /admin/shops/:id/manager/suspend.
func (h *ManagersHandler) Suspend(c *fiber.Ctx) error {
	assignment, err := h.assignments.Suspend(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// Unsuspend handles POST /admin/shops/:id/manager/unsuspend.
func (h *ManagersHandler) Unsuspend(c *fiber.Ctx) error {
	assignment, err := h.assignments.Unsuspend(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

func assignmentResponse(a *domain.ServiceAssignment) fiber.Map {
	resp := fiber.Map{
		"id":           a.ID,
		"shop_id":      a.ShopID,
		"user_id":      a.UserID,
		"service_id":   a.ServiceID,
		"status":       a.Status,
		"period_start": a.PeriodStart,
		"period_end":   a.PeriodEnd,
		"suspended":    a.SuspendedByAdmin,
	}
	if a.ClosedAt != nil {
		resp["closed_at"] = *a.ClosedAt
	}
	return resp
}
