package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/malshatti44/DA-Studio/auth"
	"github.com/malshatti44/DA-Studio/config"
	handler "github.com/malshatti44/DA-Studio/handlers"
	"github.com/malshatti44/DA-Studio/inject"
	"github.com/malshatti44/DA-Studio/log"
	"github.com/malshatti44/DA-Studio/router"
	"github.com/samber/do"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, settings.LogLevel)
	ctx := log.NewContext(context.Background(), logger)
	injector := inject.Setup(ctx, settings)

	h, err := do.Invoke[*handler.Handler](injector)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Dukkan Studio",
		BodyLimit:    settings.MaxUploadBytes,
		ErrorHandler: handler.ErrorHandler,
	})
	app.Use(recover.New())
	if settings.StorageBackend == "file" {
		app.Static(inject.FilesRoute, settings.StorageDir)
	}
	router.SetupRoutes(app, h, do.MustInvoke[*auth.Sessions](injector), do.MustInvoke[*auth.Gate](injector), logger)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("failed to stop server", "error", err)
		}
	}()

	logger.Info("server is listening", "port", settings.Port)
	if err := app.Listen(":" + settings.Port); err != nil {
		logger.Error("server stopped", "error", err)
	}

	if err := injector.Shutdown(); err != nil {
		logger.Error("failed to release resources", "error", err)
		os.Exit(1)
	}
}
