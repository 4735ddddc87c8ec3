package routes

import (
	"time"

	"lendinghub/internal/adapters/http/handlers"
	"lendinghub/internal/adapters/http/middleware"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/config"
	"lendinghub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, store *repositories.Store, lending *services.LendingService, cfg *config.Config) {
	// Initialize services
	authService := services.NewAuthService(store.Users, cfg.JWT)
	borrowerService := services.NewBorrowerService(store, lending.Policy())
	catalogService := services.NewCatalogService(store, lending)
	dashboardService := services.NewDashboardService(store, lending.Clock())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg)
	authHandler := handlers.NewAuthHandler(authService, borrowerService)
	borrowerHandler := handlers.NewBorrowerHandler(borrowerService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	lendingHandler := handlers.NewLendingHandler(lending)
	notificationHandler := handlers.NewNotificationHandler(lending)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	auth := middleware.AuthMiddleware(cfg.JWT.Secret)

	// Auth routes
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Get("/me", auth, authHandler.Me)
	authRoutes.Put("/password", auth, authHandler.ChangePassword)

	// User administration
	userRoutes := apiV1.Group("/users", auth)
	setupUserRoutes(userRoutes, borrowerHandler, lendingHandler)

	// Catalog
	setupCatalogRoutes(apiV1, auth, catalogHandler)

	// Loans
	loanRoutes := apiV1.Group("/loans", auth, middleware.NoCacheHeaders())
	setupLoanRoutes(loanRoutes, lendingHandler)

	// Reservations
	reservationRoutes := apiV1.Group("/reservations", auth, middleware.NoCacheHeaders())
	reservationRoutes.Get("/", lendingHandler.MyReservations)
	reservationRoutes.Post("/", lendingHandler.Reserve)
	reservationRoutes.Delete("/:id", lendingHandler.CancelReservation)

	// Notifications
	notificationRoutes := apiV1.Group("/notifications", auth, middleware.NoCacheHeaders())
	notificationRoutes.Get("/", notificationHandler.List)
	notificationRoutes.Put("/:id/read", notificationHandler.MarkRead)

	// Dashboard
	dashboardRoutes := apiV1.Group("/dashboard", auth, middleware.NoCacheHeaders())
	dashboardRoutes.Get("/", dashboardHandler.GetMyDashboard)
	dashboardRoutes.Get("/me", dashboardHandler.GetBorrowerDashboard)
	dashboardRoutes.Get("/staff", middleware.StaffOnly(), dashboardHandler.GetStaffDashboard)

	// Sweeps (staff)
	sweepRoutes := apiV1.Group("/sweeps", auth, middleware.StaffOnly())
	sweepRoutes.Post("/expiry", lendingHandler.RunExpirySweep)
	sweepRoutes.Post("/reminders", lendingHandler.RunDueReminderSweep)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.BorrowerHandler, lendingHandler *handlers.LendingHandler) {
	// Staff can look borrowers up
	router.Get("/", middleware.StaffOnly(), handler.ListUsers)
	router.Get("/:id", middleware.StaffOnly(), handler.GetBorrower)
	router.Get("/:id/loans", middleware.StaffOnly(), lendingHandler.UserLoans)

	// Admin only
	router.Post("/", middleware.AdminOnly(), handler.CreateUser)
	router.Put("/:id", middleware.AdminOnly(), handler.UpdateBorrower)
}

// setupCatalogRoutes configures category, item and inventory routes
func setupCatalogRoutes(router fiber.Router, auth fiber.Handler, handler *handlers.CatalogHandler) {
	categories := router.Group("/categories", auth)
	categories.Get("/", middleware.CacheControl(5*time.Minute), handler.ListCategories)
	categories.Post("/", middleware.StaffOnly(), handler.CreateCategory)
	categories.Put("/:id", middleware.StaffOnly(), handler.UpdateCategory)

	items := router.Group("/items", auth)
	items.Get("/", handler.ListItems)
	items.Get("/:id", handler.GetItem)
	items.Post("/", middleware.StaffOnly(), handler.CreateItem)
	items.Put("/:id", middleware.StaffOnly(), handler.UpdateItem)

	// Inventory adjustments go through the ledger
	items.Put("/:id/maintenance", middleware.StaffOnly(), handler.SetMaintenance)
	items.Post("/:id/copies", middleware.StaffOnly(), handler.AddCopies)
	items.Post("/:id/write-off", middleware.AdminOnly(), handler.WriteOffCopy)
}

// setupLoanRoutes configures borrowing routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LendingHandler) {
	router.Get("/", handler.MyLoans)
	router.Post("/", handler.Borrow)
	router.Get("/:id", handler.GetLoan)
	router.Post("/:id/renew", handler.Renew)

	// Staff desk
	router.Post("/:id/return", middleware.StaffOnly(), handler.Return)
	router.Post("/:id/lost", middleware.StaffOnly(), handler.MarkLost)
	router.Post("/:id/pay-fine", middleware.StaffOnly(), handler.PayFine)
}
