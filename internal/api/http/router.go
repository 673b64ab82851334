package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-auth/internal/api/http/handlers"
	"github.com/spec-kit/campus-auth/internal/auth"
	"github.com/spec-kit/campus-auth/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/mfa/request", cfg.Auth.RequestMfa)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Post("/logout", cfg.Auth.Logout)
	protected.Get("/session", cfg.Auth.Session)

	staffOnly := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleStaff))
	staffOnly.Get("/stats", cfg.Auth.Statistics)
}
