package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/subscription-service/internal/api/http/handlers"
	"github.com/spec-kit/subscription-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Users         *handlers.UsersHandler
	Subscriptions *handlers.SubscriptionsHandler
	Metrics       *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	users := app.Group("/users")
	// registered ahead of the :id routes
	users.Get("/subscriptions/top", cfg.Subscriptions.Top)

	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	users.Post("/:id/subscriptions", cfg.Subscriptions.Add)
	users.Get("/:id/subscriptions", cfg.Subscriptions.List)
	users.Delete("/:userId/subscriptions/:subId", cfg.Subscriptions.Delete)
}
