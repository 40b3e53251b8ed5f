package routes

import (
	"time"

	"library-borrowing/internal/adapters/http/handlers"
	"library-borrowing/internal/adapters/http/middleware"
	"library-borrowing/internal/adapters/persistence/repositories"
	"library-borrowing/internal/config"
	"library-borrowing/internal/core/services"
	"library-borrowing/internal/pkg/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto the app. The cache
// store and directory client are built in main and shared by everything
// that needs them.
func Setup(app *fiber.App, db *gorm.DB, cacheStore *cache.Store, directory services.DirectoryClient, cfg *config.Config) *services.ReminderService {
	// Repositories
	requestRepo := repositories.NewRequestRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	transactor := repositories.NewTransactor(db)

	// Services
	validator := services.NewValidator(directory)
	enricher := services.NewEnricher(directory, cacheStore)
	loanService := services.NewLoanService(loanRepo, transactor, validator, enricher, cacheStore)
	requestService := services.NewRequestService(requestRepo, transactor, loanService, validator, directory, enricher, cacheStore)
	reminderService := services.NewReminderService(loanRepo, enricher)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	requestHandler := handlers.NewRequestHandler(requestService)
	loanHandler := handlers.NewLoanHandler(loanService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupRequestRoutes(apiV1.Group("/requests"), requestHandler, cfg)
	setupLoanRoutes(apiV1.Group("/borrowings"), loanHandler, cfg)

	return reminderService
}

// setupRequestRoutes configures book request routes
func setupRequestRoutes(router fiber.Router, handler *handlers.RequestHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))

	// Member routes
	router.Post("/", handler.Create)
	router.Get("/my", handler.My)

	// Staff routes
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.StaffOnly())

	staffRoutes.Get("/", middleware.CacheControl(30*time.Second), handler.List)
	staffRoutes.Put("/:id/approve", middleware.DecisionRateLimiter(), handler.Approve)
	staffRoutes.Put("/:id/reject", middleware.DecisionRateLimiter(), handler.Reject)
}

// setupLoanRoutes configures borrowing record routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))

	// Member routes
	router.Get("/my", handler.MyLoans)

	// Staff routes
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.StaffOnly())

	staffRoutes.Get("/", middleware.CacheControl(30*time.Second), handler.List)
	staffRoutes.Get("/:id", handler.GetByID)
	staffRoutes.Post("/issue", handler.Issue)
	staffRoutes.Put("/:id/return", handler.Return)
	staffRoutes.Delete("/:id", handler.Delete)
}
