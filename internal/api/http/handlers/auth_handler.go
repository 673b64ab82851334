package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-auth/internal/api/dto"
	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/domain"
	"github.com/spec-kit/campus-auth/internal/service"
	apperrors "github.com/spec-kit/campus-auth/pkg/util"
)

// AuthHandler exposes the multi-role authentication endpoints.
type AuthHandler struct {
	auth     *service.AuthService
	tokens   *auth.TokenManager
	validate *validator.Validate
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		auth:     authService,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// RequestMfa handles POST /auth/mfa/request.
func (h *AuthHandler) RequestMfa(c *fiber.Ctx) error {
	var req dto.MfaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"role": req.Role})
	}

	// The code goes out through the delivery stubs, never over this
	// response in non-development environments.
	if _, err := h.auth.GenerateMfaCode(c.UserContext(), req.Username, role); err != nil {
		return err
	}

	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"data": fiber.Map{"status": "mfa code issued"},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"role": req.Role})
	}

	result, err := h.auth.Authenticate(c.UserContext(), req.Username, req.Password, req.MfaCode, role)
	if err != nil {
		return err
	}

	bearer, err := h.tokens.WrapSession(result.Session)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{
			Token:     bearer,
			Role:      string(result.Role),
			ExpiresAt: result.Session.ExpiresAt,
			Message:   result.Message,
		},
	})
}

// Logout handles POST /auth/logout. Idempotent: reports whether a live
// session was actually removed.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	removed, err := h.auth.InvalidateSession(c.UserContext(), principal.SessionToken)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{"invalidated": removed},
	})
}

// Session handles GET /auth/session: validates the caller's session and
// echoes its identity.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	return c.JSON(fiber.Map{
		"data": dto.SessionResponse{
			Username:    principal.Username,
			Role:        string(principal.Role),
			RoleDisplay: principal.Role.DisplayName(),
		},
	})
}

// Statistics handles GET /auth/stats for monitoring.
func (h *AuthHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.auth.SessionStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
