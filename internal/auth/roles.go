package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-auth/internal/domain"
	apperrors "github.com/spec-kit/campus-auth/pkg/util"
)

// RequireRole ensures the principal's role meets the minimum permission level.
func RequireRole(min domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Role.HasPermissionFor(min) {
			return apperrors.NewForbidden(fmt.Sprintf("%s role or higher required", min.DisplayName()))
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated, regardless of role.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
