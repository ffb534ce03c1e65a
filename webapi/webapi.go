// Package webapi exposes the engine's HTTP surface: the transfer
// webhook, health, and metrics.
package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/remitflow/remitflow/app"
	"github.com/remitflow/remitflow/webapi/webhook"
)

// SetupApp builds the Fiber app with all routes and middleware.
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			a.Logger.Error("unhandled request error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		},
	})

	fiberApp.Use(recover.New())
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
	}))

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	fiberApp.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	fiberApp.Post("/webhooks/transfer", webhook.Handler(
		a.Config.Webhook.Secret, a.Config.Env, a.Poller, a.Logger))

	return fiberApp
}
