package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"line-dealer-bot/config"
	"line-dealer-bot/handlers"
	"line-dealer-bot/middleware"
	"line-dealer-bot/services"
	"line-dealer-bot/webhooks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	// Initialize structured logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(logHandler))

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := services.InitMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.DatabaseName)

	if err := services.CreateIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		// Continue anyway - the app can still work without indexes
	}

	// Construct the collaborators once at startup and inject them downstream
	states := services.NewChatStateStore(db)
	vehicles := services.NewVehicleStore(db)
	resolver := services.NewModeResolver(states)
	responder := services.NewResponder(cfg.OpenAIAPIKey, cfg.OpenAIModel, vehicles)

	replier, err := services.NewLineReplier(cfg.LineChannelAccessToken)
	if err != nil {
		slog.Error("Failed to create LINE messaging client", "error", err)
		os.Exit(1)
	}

	dispatcher := webhooks.NewDispatcher(resolver, responder, replier)

	// Start the stale human-session sweep
	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	services.StartRevertScheduler(schedulerCtx, states, cfg.RevertInterval, cfg.HumanModeTimeout)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("Request error", "error", err, "status", code)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path}\n",
	}))

	// Register webhook routes
	webhooks.RegisterRoutes(app, cfg, dispatcher)

	// Register admin routes (protected by the pre-shared token)
	adminHandler := handlers.NewAdminHandler(states, cfg.HumanModeTimeout)
	admin := app.Group("/admin", middleware.RequireAdminToken(cfg.AdminToken))
	admin.Post("/chat-mode", adminHandler.SwitchChatMode)
	admin.Get("/chat-mode/:userID", adminHandler.GetChatMode)
	admin.Post("/chat-mode/revert", adminHandler.RevertStaleSessions)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "line-dealer-bot",
		})
	})

	// Start server
	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for a shutdown signal, stop accepting requests, then drain the
	// in-flight background tasks
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	cancelScheduler()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelDrain()
	if err := dispatcher.Shutdown(drainCtx); err != nil {
		slog.Error("Timed out waiting for background tasks", "error", err)
	}
}
