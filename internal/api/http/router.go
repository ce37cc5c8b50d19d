package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dku-library/ticket-chat/internal/api/http/handlers"
	"github.com/dku-library/ticket-chat/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Chat     *handlers.ChatHandler
	ChatAuth *auth.ChatAuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/ping", cfg.Health.Ping)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	chatGroup := app.Group("/chat")
	chatGroup.Post("/start", cfg.Chat.Start)
	chatGroup.Post("/turn", cfg.ChatAuth.Handle, cfg.Chat.Turn)
}
