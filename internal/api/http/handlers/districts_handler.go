package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mall-of-cayman/marketplace-service/internal/api/dto"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/service"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// DistrictsHandler exposes platform delivery district reference data.
type DistrictsHandler struct {
	districts *service.DistrictService
}

// NewDistrictsHandler constructs handler.
func NewDistrictsHandler(districtService *service.DistrictService) *DistrictsHandler {
	return &DistrictsHandler{districts: districtService}
}

// List handles GET /districts. Public; only active districts unless the
// caller asks for all (admin screens pass all=true).
func (h *DistrictsHandler) List(c *fiber.Ctx) error {
	activeOnly := !c.QueryBool("all", false)

	districts, err := h.districts.List(c.UserContext(), activeOnly)
	if err != nil {
		return err
	}

	out := make([]fiber.Map, 0, len(districts))
	for i := range districts {
		out = append(out, districtResponse(&districts[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create handles POST /admin/districts.
func (h *DistrictsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDistrictRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	district, err := h.districts.Create(c.UserContext(), req.Code, req.Name, req.DefaultFee, req.DefaultEstimatedDays)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": districtResponse(district)})
}

// Update handles PUT /admin/districts/:id.
func (h *DistrictsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateDistrictRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	district, err := h.districts.Update(c.UserContext(), c.Params("id"), req.Code, req.Name, req.DefaultFee, req.DefaultEstimatedDays)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": districtResponse(district)})
}

// Delete handles DELETE /admin/districts/:id. Always a soft delete.
func (h *DistrictsHandler) Delete(c *fiber.Ctx) error {
	if err := h.districts.Deactivate(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deactivated": true}})
}

func districtResponse(d *domain.District) fiber.Map {
	return fiber.Map{
		"id":                     d.ID,
		"code":                   d.Code,
		"name":                   d.Name,
		"is_active":              d.IsActive,
		"default_fee":            d.DefaultFee,
		"default_estimated_days": d.DefaultEstimatedDays,
	}
}
