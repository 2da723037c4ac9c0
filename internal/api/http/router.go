package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cinemax-auth/internal/api/http/handlers"
	"github.com/spec-kit/cinemax-auth/internal/auth"
	apperrors "github.com/spec-kit/cinemax-auth/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Diagnostics    *handlers.DiagnosticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Index)
	app.Get("/api/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register/cliente", cfg.Auth.RegisterCustomer)
	authGroup.Post("/register/trabajador", cfg.Auth.RegisterStaff)

	authGroup.Get("/verify", cfg.AuthMiddleware.Handle, cfg.Auth.Verify)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)
	authGroup.Get("/listar-tablas", cfg.AuthMiddleware.Handle, cfg.Diagnostics.ListTables)

	app.Use(notFound)
}

func notFound(c *fiber.Ctx) error {
	return apperrors.NewNotFound(fmt.Sprintf("Ruta no encontrada: %s %s", c.Method(), c.OriginalURL()))
}
