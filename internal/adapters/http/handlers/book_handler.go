package handlers

import (
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles book availability endpoints
type BookHandler struct {
	availabilityService services.AvailabilityTracker
}

// NewBookHandler creates a new book handler
func NewBookHandler(availabilityService services.AvailabilityTracker) *BookHandler {
	return &BookHandler{availabilityService: availabilityService}
}

// Availability returns the copy counters of a book
// @Summary Book availability
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param id path string true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id}/availability [get]
func (h *BookHandler) Availability(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	availability, err := h.availabilityService.Availability(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to get availability")
	}

	return response.Success(c, "", fiber.Map{"availability": availability})
}
