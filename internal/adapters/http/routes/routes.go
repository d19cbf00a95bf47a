package routes

import (
	"time"

	"libraryhub/internal/adapters/http/handlers"
	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/config"
	"libraryhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, svc *services.Container, cfg *config.Config, ping func() error) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode, cfg.Policy, ping)
	loanHandler := handlers.NewLoanHandler(svc.Loans, svc.Overdue)
	fineHandler := handlers.NewFineHandler(svc.Fines)
	memberHandler := handlers.NewMemberHandler(svc.Members, svc.Eligibility)
	bookHandler := handlers.NewBookHandler(svc.Availability)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	auth := middleware.AuthMiddleware(cfg)

	// ============================================================
	// Loans
	// ============================================================
	loans := apiV1.Group("/loans", auth, middleware.NoCacheHeaders())
	loans.Post("/checkout", middleware.CheckoutRateLimiter(), loanHandler.Checkout)
	loans.Post("/process-overdue", middleware.StaffOrAdmin(), middleware.SweepRateLimiter(), loanHandler.ProcessOverdue)
	loans.Get("/", middleware.StaffOrAdmin(), loanHandler.List)
	loans.Get("/active", middleware.StaffOrAdmin(), loanHandler.GetActive)
	loans.Get("/overdue", middleware.StaffOrAdmin(), loanHandler.GetOverdue)
	loans.Get("/due-today", middleware.StaffOrAdmin(), loanHandler.GetDueToday)
	loans.Get("/due-in/:days", middleware.StaffOrAdmin(), loanHandler.GetDueInDays)
	loans.Get("/member/:memberId", loanHandler.GetByMember)
	loans.Get("/book/:bookId", middleware.StaffOrAdmin(), loanHandler.GetByBook)
	loans.Get("/:id", loanHandler.GetByID)
	loans.Put("/:id/return", loanHandler.Return)
	loans.Put("/:id/renew", loanHandler.Renew)
	loans.Delete("/:id", middleware.StaffOrAdmin(), loanHandler.Delete)

	// ============================================================
	// Books
	// ============================================================
	books := apiV1.Group("/books", auth)
	books.Get("/:id/availability", middleware.NoCacheHeaders(), bookHandler.Availability)

	// ============================================================
	// Members
	// ============================================================
	members := apiV1.Group("/members", auth)
	members.Get("/:id/eligibility", middleware.NoCacheHeaders(), memberHandler.Eligibility)
	members.Get("/:id/summary", middleware.PrivateCacheHeaders(30*time.Second), memberHandler.Summary)
	members.Put("/:id/deactivate", middleware.AdminOnly(), memberHandler.Deactivate)
	members.Delete("/:id", middleware.AdminOnly(), memberHandler.Delete)

	// ============================================================
	// Fines
	// ============================================================
	fines := apiV1.Group("/fines", auth)
	fines.Get("/", middleware.StaffOrAdmin(), fineHandler.List)
	fines.Get("/unpaid", middleware.StaffOrAdmin(), fineHandler.GetUnpaid)
	fines.Get("/paid", middleware.StaffOrAdmin(), fineHandler.GetPaid)
	fines.Get("/today", middleware.StaffOrAdmin(), fineHandler.GetCreatedToday)
	fines.Get("/member/:memberId", middleware.PrivateCacheHeaders(30*time.Second), fineHandler.GetByMember)
	fines.Get("/member/:memberId/total", middleware.PrivateCacheHeaders(30*time.Second), fineHandler.GetMemberTotals)
	fines.Get("/:id", fineHandler.GetByID)
	fines.Put("/:id/pay", middleware.StaffOrAdmin(), middleware.NoCacheHeaders(), fineHandler.Pay)
}
