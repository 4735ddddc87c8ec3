package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"lendinghub/internal/adapters/http/middleware"
	"lendinghub/internal/adapters/http/routes"
	"lendinghub/internal/adapters/persistence/models"
	"lendinghub/internal/adapters/persistence/repositories"
	"lendinghub/internal/config"
	"lendinghub/internal/core/domain"
	"lendinghub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	_ "lendinghub/docs" // Swagger docs
)

// @title LendingHub API
// @version 1.0
// @description Lending inventory service: catalog, loans, reservations and notifications.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var json = jsoniter.ConfigCompatibleWithStandardLibrary

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

	// Seed staff accounts and a starter catalog in dev
	if cfg.IsDev() {
		if err := config.NewSeeder(db, cfg.Policy).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed data: %v", err)
		}
	}

	// Lending core
	store := repositories.NewStore(db)
	lending := services.NewLendingService(store, cfg.Policy, domain.SystemClock{})

	// Periodic sweeps
	if cfg.Sweep.Enabled {
		scheduler := services.NewSweepScheduler(lending, cfg.Sweep)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("❌ Failed to start sweep scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LendingHub API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, store, lending, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s, DB: %s]", cfg.Port, cfg.AppMode, cfg.Database.Driver)
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
