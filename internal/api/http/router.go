package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/report-portal/internal/api/http/handlers"
	"github.com/spec-kit/report-portal/internal/auth"
	"github.com/spec-kit/report-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireIdentity(), cfg.Auth.ChangePassword)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireIdentity())
	reports.Get("/", cfg.Reports.List)
	reports.Post("/", cfg.Reports.Submit)
	reports.Get("/:id", cfg.Reports.Get)
	reports.Get("/:id/file", cfg.Reports.Download)
}
