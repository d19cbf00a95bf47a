package handlers

import (
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/pagination"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FineHandler handles fine endpoints
type FineHandler struct {
	fineService services.FineEngine
}

// NewFineHandler creates a new fine handler
func NewFineHandler(fineService services.FineEngine) *FineHandler {
	return &FineHandler{fineService: fineService}
}

// List lists fines
// @Summary List fines
// @Description List all fines with pagination (Staff/Admin)
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /fines [get]
func (h *FineHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	fines, total, err := h.fineService.List(c.UserContext(), params.Offset, params.Limit)
	if err != nil {
		return writeError(c, err, "Failed to list fines")
	}

	return response.Success(c, "", pagination.NewResponse(fines, params, total))
}

// GetUnpaid lists unpaid fines
// @Summary Unpaid fines
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /fines/unpaid [get]
func (h *FineHandler) GetUnpaid(c *fiber.Ctx) error {
	fines, err := h.fineService.GetUnpaid(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to list fines")
	}
	return response.Success(c, "", fiber.Map{"fines": fines})
}

// GetPaid lists paid fines
// @Summary Paid fines
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /fines/paid [get]
func (h *FineHandler) GetPaid(c *fiber.Ctx) error {
	fines, err := h.fineService.GetPaid(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to list fines")
	}
	return response.Success(c, "", fiber.Map{"fines": fines})
}

// GetCreatedToday lists fines created today
// @Summary Fines created today
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /fines/today [get]
func (h *FineHandler) GetCreatedToday(c *fiber.Ctx) error {
	fines, err := h.fineService.GetCreatedToday(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to list fines")
	}
	return response.Success(c, "", fiber.Map{"fines": fines})
}

// GetByMember lists a member's fines
// @Summary Fines of a member
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Param memberId path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /fines/member/{memberId} [get]
func (h *FineHandler) GetByMember(c *fiber.Ctx) error {
	memberID, err := parseUUIDParam(c, "memberId")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}
	if !canAccessMember(c, memberID) {
		return response.Forbidden(c, "You don't have permission to access this resource")
	}

	fines, err := h.fineService.GetByMember(c.UserContext(), memberID)
	if err != nil {
		return writeError(c, err, "Failed to list fines")
	}
	return response.Success(c, "", fiber.Map{"fines": fines})
}

// GetMemberTotals returns total and unpaid fine amounts of a member
// @Summary Fine totals of a member
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Param memberId path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /fines/member/{memberId}/total [get]
func (h *FineHandler) GetMemberTotals(c *fiber.Ctx) error {
	memberID, err := parseUUIDParam(c, "memberId")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}
	if !canAccessMember(c, memberID) {
		return response.Forbidden(c, "You don't have permission to access this resource")
	}

	ctx := c.UserContext()
	total, err := h.fineService.TotalForMember(ctx, memberID)
	if err != nil {
		return writeError(c, err, "Failed to sum fines")
	}
	unpaid, err := h.fineService.UnpaidTotalForMember(ctx, memberID)
	if err != nil {
		return writeError(c, err, "Failed to sum fines")
	}

	return response.Success(c, "", fiber.Map{
		"member_id":        memberID,
		"total":            total.StringFixed(2),
		"unpaid":           unpaid.StringFixed(2),
		"has_unpaid_fines": unpaid.IsPositive(),
	})
}

// GetByID gets a fine
// @Summary Get fine
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fine ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fines/{id} [get]
func (h *FineHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid fine ID")
	}

	fine, err := h.fineService.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to get fine")
	}
	if !canAccessMember(c, fine.MemberID) {
		return response.Forbidden(c, "You don't have permission to access this resource")
	}

	return response.Success(c, "", fiber.Map{"fine": fine})
}

// Pay marks a fine paid
// @Summary Pay fine
// @Description Mark a fine as paid; paying twice is a no-op (Staff/Admin)
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fine ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fines/{id}/pay [put]
func (h *FineHandler) Pay(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid fine ID")
	}

	if err := h.fineService.PayFine(c.UserContext(), id); err != nil {
		return writeError(c, err, "Failed to pay fine")
	}

	fine, err := h.fineService.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to get fine")
	}

	return response.Success(c, "Fine paid successfully", fiber.Map{"fine": fine})
}
