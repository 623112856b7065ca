package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mall-of-cayman/marketplace-service/internal/api/dto"
	"github.com/mall-of-cayman/marketplace-service/internal/auth"
	"github.com/mall-of-cayman/marketplace-service/internal/domain"
	"github.com/mall-of-cayman/marketplace-service/internal/service"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// DeliveryHandler exposes checkout quotes and vendor delivery configuration.
type DeliveryHandler struct {
	delivery *service.DeliveryService
}

// NewDeliveryHandler constructs handler.
func NewDeliveryHandler(deliveryService *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{delivery: deliveryService}
}

// Quote handles GET /delivery/quote. Public: checkout calls this before any
// order exists. An unavailable district is a normal answer, not an error.
func (h *DeliveryHandler) Quote(c *fiber.Ctx) error {
	shopID := c.Query("shop_id")
	districtID := c.Query("district_id")
	if shopID == "" || districtID == "" {
		return apperrors.NewValidationError("shop_id and district_id required", nil)
	}
	subtotal, err := strconv.ParseFloat(c.Query("subtotal", "0"), 64)
	if err != nil || subtotal < 0 {
		return apperrors.NewValidationError("invalid subtotal", nil)
	}

	quote, err := h.delivery.Quote(c.UserContext(), shopID, districtID, subtotal)
	if err != nil {
		if de := apperrors.ToDomainError(err); de.Code == "DISTRICT_UNAVAILABLE" {
			return c.JSON(fiber.Map{"data": fiber.Map{
				"available": false,
				"reason":    de.Details["reason"],
			}})
		}
		return err
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"available":      quote.Available,
		"fee":            quote.Fee,
		"original_fee":   quote.OriginalFee,
		"free_delivery":  quote.FreeDelivery,
		"estimated_days": quote.EstimatedDays,
		"district_name":  quote.DistrictName,
	}})
}

// Config handles GET /shop/delivery.
func (h *DeliveryHandler) Config(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	cfg, err := h.delivery.Config(c.UserContext(), principal.ShopID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configResponse(cfg)})
}

// UpdateSettings handles PUT /shop/delivery/settings.
func (h *DeliveryHandler) UpdateSettings(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	var req dto.UpdateDeliverySettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	cfg, err := h.delivery.UpdateSettings(c.UserContext(), principal.ShopID(), req.DeliveryEnabled, req.FreeDeliveryThreshold)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configResponse(cfg)})
}

// UpsertFee handles PUT /shop/delivery/districts/:districtId.
func (h *DeliveryHandler) UpsertFee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	var req dto.UpsertFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	entry, err := h.delivery.UpsertDistrictFee(c.UserContext(), principal.ShopID(), c.Params("districtId"), req.Fee, req.IsAvailable, req.EstimatedDays)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entryResponse(entry)})
}

// RemoveFee handles DELETE /shop/delivery/districts/:districtId. Removing an
// entry that was never set still succeeds.
func (h *DeliveryHandler) RemoveFee(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	if err := h.delivery.RemoveDistrictFee(c.UserContext(), principal.ShopID(), c.Params("districtId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"removed": true}})
}

// BulkSetFees handles PUT /shop/delivery/districts.
func (h *DeliveryHandler) BulkSetFees(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewMissingCredential("authentication required")
	}

	var req dto.BulkSetFeesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Entries) == 0 {
		return apperrors.NewValidationError("entries required", nil)
	}

	updates := make([]domain.FeeUpdate, 0, len(req.Entries))
	for _, entry := range req.Entries {
		updates = append(updates, domain.FeeUpdate{
			DistrictID:    entry.DistrictID,
			Fee:           entry.Fee,
			IsAvailable:   entry.IsAvailable,
			EstimatedDays: entry.EstimatedDays,
		})
	}

	result, err := h.delivery.BulkSetFees(c.UserContext(), principal.ShopID(), updates)
	if err != nil {
		return err
	}

	updated := make([]fiber.Map, 0, len(result.Updated))
	for i := range result.Updated {
		updated = append(updated, entryResponse(&result.Updated[i]))
	}
	failures := make([]fiber.Map, 0, len(result.Failures))
	for _, failure := range result.Failures {
		failures = append(failures, fiber.Map{
			"district_id": failure.DistrictID,
			"reason":      failure.Reason,
		})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"updated":  updated,
		"failures": failures,
	}})
}

func configResponse(cfg *domain.VendorDeliveryConfig) fiber.Map {
	entries := make([]fiber.Map, 0, len(cfg.Entries))
	for i := range cfg.Entries {
		entries = append(entries, entryResponse(&cfg.Entries[i]))
	}
	resp := fiber.Map{
		"shop_id":          cfg.ShopID,
		"delivery_enabled": cfg.DeliveryEnabled,
		"entries":          entries,
	}
	if cfg.FreeDeliveryThreshold != nil {
		resp["free_delivery_threshold"] = *cfg.FreeDeliveryThreshold
	}
	return resp
}

func entryResponse(entry *domain.DistrictFeeEntry) fiber.Map {
	resp := fiber.Map{
		"district_id":   entry.DistrictID,
		"district_code": entry.DistrictCode,
		"district_name": entry.DistrictName,
		"fee":           entry.Fee,
		"is_available":  entry.IsAvailable,
	}
	if entry.EstimatedDays != nil {
		resp["estimated_days"] = *entry.EstimatedDays
	}
	return resp
}
