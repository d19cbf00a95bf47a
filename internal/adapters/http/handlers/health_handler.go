package handlers

import (
	"log/slog"

	"libraryhub/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler serves liveness, readiness and service info
type HealthHandler struct {
	mode   string
	policy domain.LoanPolicy
	ping   func() error
}

// NewHealthHandler creates a new health handler. ping checks the database.
func NewHealthHandler(mode string, policy domain.LoanPolicy, ping func() error) *HealthHandler {
	return &HealthHandler{mode: mode, policy: policy, ping: ping}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "📚 LibraryHub circulation API v1.0 is running",
		"mode":    h.mode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck reports database reachability; 503 when the database is down
// @Summary Health check
// @Description Check API and database health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	if err := h.ping(); err != nil {
		slog.WarnContext(c.UserContext(), "⚠️ Health check: database unreachable", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "degraded",
			"database": "unhealthy",
		})
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": "healthy",
	})
}

// APIInfo describes the API and the circulation policy in force
// @Summary API v1 Info
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1 [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "LibraryHub circulation API v1.0",
		"version": "1.0.0",
		"policy": fiber.Map{
			"loan_period_days": int(h.policy.LoanPeriod.Hours() / 24),
			"max_active_loans": h.policy.MaxActiveLoans,
			"fine_per_day":     h.policy.FinePerDay.StringFixed(2),
		},
	})
}
