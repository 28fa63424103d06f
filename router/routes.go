package router

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/malshatti44/DA-Studio/auth"
	handler "github.com/malshatti44/DA-Studio/handlers"
	"github.com/malshatti44/DA-Studio/middleware"
)

func SetupRoutes(app *fiber.App, h *handler.Handler, sessions *auth.Sessions, gate *auth.Gate, log *slog.Logger) {
	app.Use(middleware.WithLogger(log), middleware.Language())
	app.Get("/healthz", h.Healthz)

	app.Use(logger.New(), middleware.Session(sessions))
	app.Post("/gate", h.SelectKey)
	app.Get("/", middleware.RequireCapability(gate, h.GatePage), h.Index)
	app.Get("/feed.rss", middleware.RequireCapability(gate, h.GateRequired), h.Feed)

	api := app.Group("/api")
	api.Get("/gate", h.GateStatus)

	studio := api.Group("", middleware.RequireCapability(gate, h.GateRequired))
	studio.Get("/state", h.State)
	studio.Put("/details", h.UpdateDetails)
	studio.Post("/product", h.UploadProduct)
	studio.Post("/template", h.UploadTemplate)
	studio.Delete("/template", h.ClearTemplate)
	studio.Post("/produce", h.Produce)
	studio.Delete("/error", h.DismissError)
	studio.Get("/productions", h.Productions)
}
