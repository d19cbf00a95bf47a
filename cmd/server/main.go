package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/adapters/http/routes"
	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	_ "libraryhub/docs" // Swagger docs
)

// @title LibraryHub Circulation API
// @version 1.0
// @description Loan lifecycle and fine engine of the LibraryHub library system.

// @contact.name API Support
// @contact.email support@library.example.org

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("❌ Failed to load configuration", "error", err)
		os.Exit(1)
	}
	config.SetupLogger(cfg)

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		slog.Error("❌ Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		slog.Error("❌ Failed to auto migrate", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Database migration completed")

	if cfg.IsDev() {
		if err := config.NewSeeder(db).Run(); err != nil {
			slog.Warn("⚠️ Failed to seed development data", "error", err)
		}
	}

	svc := services.NewContainer(repositories.NewStore(db), services.SystemClock(), cfg.Policy)

	// Overdue sweep schedule
	if cfg.Sweep.Enabled {
		cronService := services.NewCronService(svc.Overdue, cfg.Sweep.Cron)
		if err := cronService.Start(); err != nil {
			slog.Error("❌ Failed to start cron service", "error", err)
			os.Exit(1)
		}
		defer cronService.Stop()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LibraryHub Circulation API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		JSONEncoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:  jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, svc, cfg, config.HealthCheck)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	slog.Info("🚀 Server starting", "port", cfg.Port, "mode", cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("❌ Failed to start server", "error", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		slog.Error("❌ Error during shutdown", "error", err)
	}
	slog.Info("✅ Server stopped gracefully")
}
