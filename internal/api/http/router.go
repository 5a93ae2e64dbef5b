package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/complain-service/internal/api/http/handlers"
	"github.com/ticketdesk/complain-service/internal/auth"
	"github.com/ticketdesk/complain-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health             *handlers.HealthHandler
	Auth               *handlers.AuthHandler
	Complaints         *handlers.ComplaintsHandler
	Dashboard          *handlers.DashboardHandler
	AuthMiddleware     *auth.AuthMiddleware
	Metrics            fiber.Handler
	DashboardAdminOnly bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	app.Post("/login", cfg.Auth.Login)
	app.Post("/register", cfg.Auth.Register)

	authn := cfg.AuthMiddleware.Handle
	app.Get("/me", authn, cfg.Auth.Me)
	app.Post("/logout", authn, cfg.Auth.Logout)

	app.Post("/complain", authn, cfg.Complaints.Create)
	app.Get("/complain", authn, cfg.Complaints.List)
	app.Get("/complain/:code", authn, cfg.Complaints.Show)
	app.Post("/complain-reply/:code", authn, cfg.Complaints.Reply)

	dashboard := []fiber.Handler{authn}
	if cfg.DashboardAdminOnly {
		dashboard = append(dashboard, auth.RequireRole(domain.RoleAdmin))
	}
	app.Get("/dashboard/statistics", append(dashboard, cfg.Dashboard.Statistics)...)
}
