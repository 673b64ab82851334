package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-auth/internal/domain"
	apperrors "github.com/spec-kit/campus-auth/pkg/util"
)

const principalKey = "auth_principal"

// SessionValidator is the slice of the auth service the middleware needs.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) error
	UserRole(ctx context.Context, token string) (domain.UserRole, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	Username     string
	Role         domain.UserRole
	SessionToken string
}

// Middleware validates bearer tokens and loads principals.
type Middleware struct {
	tokens   *TokenManager
	sessions SessionValidator
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, sessions SessionValidator) *Middleware {
	return &Middleware{tokens: tokens, sessions: sessions}
}

// Handle enforces authentication for protected routes. The bearer JWT is
// unwrapped to its opaque session token, which is then validated against
// the live session registry (touching last activity).
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.UnwrapSession(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if err := m.sessions.ValidateSession(c.UserContext(), claims.SessionToken); err != nil {
		return err
	}
	role, err := m.sessions.UserRole(c.UserContext(), claims.SessionToken)
	if err != nil {
		return err
	}

	c.Locals(principalKey, &Principal{
		Username:     claims.Username,
		Role:         role,
		SessionToken: claims.SessionToken,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
