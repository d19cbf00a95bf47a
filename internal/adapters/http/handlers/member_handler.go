package handlers

import (
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member circulation endpoints
type MemberHandler struct {
	memberService      services.MemberAccounts
	eligibilityService services.EligibilityEvaluator
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService services.MemberAccounts, eligibilityService services.EligibilityEvaluator) *MemberHandler {
	return &MemberHandler{
		memberService:      memberService,
		eligibilityService: eligibilityService,
	}
}

// Eligibility reports whether a member may borrow and why not
// @Summary Member eligibility
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/eligibility [get]
func (h *MemberHandler) Eligibility(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}
	if !canAccessMember(c, id) {
		return response.Forbidden(c, "You don't have permission to access this resource")
	}

	eligibility, err := h.eligibilityService.Evaluate(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to evaluate eligibility")
	}

	return response.Success(c, "", fiber.Map{"eligibility": eligibility})
}

// Summary aggregates a member's loans and fines
// @Summary Member circulation summary
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/summary [get]
func (h *MemberHandler) Summary(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}
	if !canAccessMember(c, id) {
		return response.Forbidden(c, "You don't have permission to access this resource")
	}

	summary, err := h.memberService.Summary(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to get member summary")
	}

	return response.Success(c, "", fiber.Map{"summary": summary})
}

// Deactivate turns a member account off
// @Summary Deactivate member
// @Description Deactivate a member account (Admin only)
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{id}/deactivate [put]
func (h *MemberHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Deactivate(c.UserContext(), id); err != nil {
		return writeError(c, err, "Failed to deactivate member")
	}

	return response.Success(c, "Member deactivated successfully", nil)
}

// Delete removes a member who holds no copies
// @Summary Delete member
// @Description Soft delete a member without open loans (Admin only)
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}

	if err := h.memberService.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err, "Failed to delete member")
	}

	return response.Success(c, "Member deleted successfully", nil)
}
