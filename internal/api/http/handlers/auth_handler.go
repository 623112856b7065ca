package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mall-of-cayman/marketplace-service/internal/api/dto"
	"github.com/mall-of-cayman/marketplace-service/internal/auth"
	"github.com/mall-of-cayman/marketplace-service/internal/service"
	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

// AuthHandler exposes registration, login and logout endpoints.
type AuthHandler struct {
	auth  *service.AuthService
	shops *service.ShopService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, shopService *service.ShopService) *AuthHandler {
	return &AuthHandler{auth: authService, shops: shopService}
}

// RegisterShop handles POST /auth/shops/register.
func (h *AuthHandler) RegisterShop(c *fiber.Ctx) error {
	var req dto.ShopRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	shop, token, exp, err := h.auth.RegisterShop(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.shops.AnnounceRegistration(c.UserContext(), shop)

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"shop": fiber.Map{
				"id":              shop.ID,
				"name":            shop.Name,
				"email":           shop.Email,
				"approval_status": shop.ApprovalStatus,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// LoginShop handles POST /auth/shops/login.
func (h *AuthHandler) LoginShop(c *fiber.Ctx) error {
	var req dto.ShopLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	shop, token, exp, err := h.auth.LoginShop(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"shop": fiber.Map{
				"id":              shop.ID,
				"name":            shop.Name,
				"email":           shop.Email,
				"approval_status": shop.ApprovalStatus,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// RegisterUser handles POST /auth/users/register.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	user, token, exp, err := h.auth.RegisterUser(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// LoginUser handles POST /auth/users/login.
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/logout. Revokes whichever credential is present.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	creds := auth.CredentialsFromRequest(c)
	if creds.SessionToken == "" && creds.ShopToken == "" {
		return apperrors.NewMissingCredential("no credential to revoke")
	}
	if creds.SessionToken != "" {
		if err := h.auth.Logout(c.UserContext(), creds.SessionToken); err != nil {
			return err
		}
	}
	if creds.ShopToken != "" {
		if err := h.auth.Logout(c.UserContext(), creds.ShopToken); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}
