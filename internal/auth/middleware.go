package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/mall-of-cayman/marketplace-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Middleware attaches resolved principals to requests and enforces
// capability and approval gates for route handlers.
type Middleware struct {
	resolver *Resolver
}

// NewMiddleware constructs middleware around a resolver.
func NewMiddleware(resolver *Resolver) *Middleware {
	return &Middleware{resolver: resolver}
}

// CredentialsFromRequest pulls raw tokens off the request headers.
func CredentialsFromRequest(c *fiber.Ctx) Credentials {
	creds := Credentials{ShopToken: c.Get("X-Shop-Token")}

	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			creds.SessionToken = parts[1]
		}
	}
	return creds
}

// Require resolves the request in the given mode and stores the principal.
func (m *Middleware) Require(mode Mode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.resolver.Resolve(c.UserContext(), CredentialsFromRequest(c), mode)
		if err != nil {
			return err
		}
		if principal != nil {
			c.Locals(principalKey, principal)
		}
		return c.Next()
	}
}

// RequireCapability checks the stored principal against a capability. Runs
// after one of the Require handlers.
func (m *Middleware) RequireCapability(capability Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewMissingCredential("authentication required")
		}
		if !Permits(principal, capability) {
			return apperrors.NewInsufficientCapability(string(capability))
		}
		return c.Next()
	}
}

// RequireApproved blocks mutating seller operations while the shop is
// pending or rejected. Read routes skip this guard.
func (m *Middleware) RequireApproved() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		if err := CheckApproval(principal, true); err != nil {
			return err
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
