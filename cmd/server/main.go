package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"library-borrowing/internal/adapters/http/middleware"
	"library-borrowing/internal/adapters/http/routes"
	"library-borrowing/internal/adapters/persistence/models"
	"library-borrowing/internal/adapters/remote"
	"library-borrowing/internal/config"
	"library-borrowing/internal/pkg/cache"

	"github.com/gofiber/fiber/v2"
)

// @title Library Borrowing API
// @version 1.0
// @description Book request and loan lifecycle service for the library system.

// @host api.library.example.org
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Entity cache: one instance for the whole process, torn down with it.
	cacheStore := cache.New(cfg.Cache.TTL)

	// Directory client for the catalog and member stores
	directory := remote.NewDirectory(
		cfg.Services.CatalogURL,
		cfg.Services.MemberURL,
		cfg.Services.UserURL,
		remote.RetryPolicy{
			Attempts: cfg.Remote.Attempts,
			Backoff:  cfg.Remote.Backoff,
			Timeout:  cfg.Remote.Timeout,
		},
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Library Borrowing API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, cache and directory for dependency injection)
	reminderService := routes.Setup(app, db, cacheStore, directory, cfg)

	// Start due-date reminder job (08:30 daily)
	reminderService.Start()
	defer reminderService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
