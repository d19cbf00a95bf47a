package handlers

import (
	"strconv"

	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/pagination"
	"libraryhub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService    services.LoanLifecycle
	overdueService services.OverdueSweeper
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService services.LoanLifecycle, overdueService services.OverdueSweeper) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		overdueService: overdueService,
	}
}

// CheckoutRequest represents checkout request.
// MemberID is only honoured for staff; members always borrow for themselves.
type CheckoutRequest struct {
	BookID   string `json:"book_id" validate:"required,uuid"`
	MemberID string `json:"member_id,omitempty" validate:"omitempty,uuid"`
}

// ============================================================
// Transitions
// ============================================================

// Checkout lends a book
// @Summary Checkout book
// @Description Lend one copy of a book to a member
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CheckoutRequest true "Checkout data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /loans/checkout [post]
func (h *LoanHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	callerID, role, ok := middleware.CurrentMember(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	memberID := callerID
	if req.MemberID != "" && middleware.IsStaff(role) {
		memberID = uuid.MustParse(req.MemberID)
	}

	loan, err := h.loanService.Checkout(c.UserContext(), uuid.MustParse(req.BookID), memberID)
	if err != nil {
		return writeError(c, err, "Failed to checkout book")
	}

	return response.Created(c, "Book checked out successfully", fiber.Map{
		"loan": loan,
	})
}

// Return closes a loan
// @Summary Return book
// @Description Return a loan that is Active or Overdue
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/return [put]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, ok, err := h.authorizeLoan(c)
	if !ok {
		return err
	}

	if err := h.loanService.Return(c.UserContext(), id); err != nil {
		return writeError(c, err, "Failed to return book")
	}

	loan, err := h.loanService.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to get loan")
	}

	return response.Success(c, "Book returned successfully", fiber.Map{
		"loan": loan,
	})
}

// Renew renews a loan once
// @Summary Renew loan
// @Description Renew an Active loan that is not past due (once per loan)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/renew [put]
func (h *LoanHandler) Renew(c *fiber.Ctx) error {
	id, ok, err := h.authorizeLoan(c)
	if !ok {
		return err
	}

	loan, err := h.loanService.Renew(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to renew loan")
	}

	return response.Success(c, "Loan renewed successfully", fiber.Map{
		"loan": loan,
	})
}

// Delete removes a loan
// @Summary Delete loan
// @Description Remove a loan, releasing its copy if still out (Staff/Admin)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [delete]
func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	if err := h.loanService.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err, "Failed to delete loan")
	}

	return response.Success(c, "Loan deleted successfully", nil)
}

// ProcessOverdue runs the overdue sweep on demand
// @Summary Process overdue loans
// @Description Fine every Active loan past its due date and mark it Overdue (Staff/Admin)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /loans/process-overdue [post]
func (h *LoanHandler) ProcessOverdue(c *fiber.Ctx) error {
	result, err := h.overdueService.Run(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to process overdue loans")
	}

	return response.Success(c, "Overdue loans processed", fiber.Map{
		"result": result,
	})
}

// ============================================================
// Queries
// ============================================================

// List lists loans
// @Summary List loans
// @Description List all loans with pagination (Staff/Admin)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	loans, total, err := h.loanService.List(c.UserContext(), params.Offset, params.Limit)
	if err != nil {
		return writeError(c, err, "Failed to list loans")
	}

	return response.Success(c, "", pagination.NewResponse(loans, params, total))
}

// GetActive lists Active loans
// @Summary Active loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/active [get]
func (h *LoanHandler) GetActive(c *fiber.Ctx) error {
	loans, err := h.loanService.GetActive(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to list active loans")
	}
	return response.Success(c, "", fiber.Map{"loans": loans})
}

// GetOverdue lists overdue loans
// @Summary Overdue loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/overdue [get]
func (h *LoanHandler) GetOverdue(c *fiber.Ctx) error {
	loans, err := h.loanService.GetOverdue(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to list overdue loans")
	}
	return response.Success(c, "", fiber.Map{"loans": loans})
}

// GetDueToday lists loans due today
// @Summary Loans due today
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /loans/due-today [get]
func (h *LoanHandler) GetDueToday(c *fiber.Ctx) error {
	loans, err := h.loanService.GetDueToday(c.UserContext())
	if err != nil {
		return writeError(c, err, "Failed to list loans due today")
	}
	return response.Success(c, "", fiber.Map{"loans": loans})
}

// GetDueInDays lists loans due in n days
// @Summary Loans due in N days
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param days path int true "Days from today"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /loans/due-in/{days} [get]
func (h *LoanHandler) GetDueInDays(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Params("days"))
	if err != nil {
		return response.BadRequest(c, "Invalid days")
	}

	loans, err := h.loanService.GetDueInDays(c.UserContext(), days)
	if err != nil {
		return writeError(c, err, "Failed to list loans")
	}
	return response.Success(c, "", fiber.Map{"loans": loans})
}

// GetByMember lists a member's loans
// @Summary Loans of a member
// @Description Members may only list their own loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param memberId path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /loans/member/{memberId} [get]
func (h *LoanHandler) GetByMember(c *fiber.Ctx) error {
	memberID, err := parseUUIDParam(c, "memberId")
	if err != nil {
		return response.BadRequest(c, "Invalid member ID")
	}
	if !canAccessMember(c, memberID) {
		return response.Forbidden(c, "You don't have permission to access this resource")
	}

	loans, err := h.loanService.GetByMember(c.UserContext(), memberID)
	if err != nil {
		return writeError(c, err, "Failed to list loans")
	}
	return response.Success(c, "", fiber.Map{"loans": loans})
}

// GetByBook lists a book's loans
// @Summary Loans of a book
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param bookId path string true "Book ID"
// @Success 200 {object} response.Response
// @Router /loans/book/{bookId} [get]
func (h *LoanHandler) GetByBook(c *fiber.Ctx) error {
	bookID, err := parseUUIDParam(c, "bookId")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	loans, err := h.loanService.GetByBook(c.UserContext(), bookID)
	if err != nil {
		return writeError(c, err, "Failed to list loans")
	}
	return response.Success(c, "", fiber.Map{"loans": loans})
}

// GetByID gets a loan
// @Summary Get loan
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetByID(c *fiber.Ctx) error {
	id, ok, err := h.authorizeLoan(c)
	if !ok {
		return err
	}

	loan, err := h.loanService.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "Failed to get loan")
	}
	return response.Success(c, "", fiber.Map{"loan": loan})
}

// authorizeLoan parses the :id param and checks the caller owns the loan or is staff.
// When ok is false the error response has been written.
func (h *LoanHandler) authorizeLoan(c *fiber.Ctx) (id uuid.UUID, ok bool, err error) {
	id, err = parseUUIDParam(c, "id")
	if err != nil {
		return uuid.Nil, false, response.BadRequest(c, "Invalid loan ID")
	}

	_, role, authenticated := middleware.CurrentMember(c)
	if !authenticated {
		return uuid.Nil, false, response.Unauthorized(c, "Unauthorized")
	}
	if middleware.IsStaff(role) {
		return id, true, nil
	}

	loan, err := h.loanService.GetByID(c.UserContext(), id)
	if err != nil {
		return uuid.Nil, false, writeError(c, err, "Failed to get loan")
	}
	if !canAccessMember(c, loan.MemberID) {
		return uuid.Nil, false, response.Forbidden(c, "You don't have permission to access this resource")
	}
	return id, true, nil
}

// canAccessMember reports whether the caller is the member or staff
func canAccessMember(c *fiber.Ctx, memberID uuid.UUID) bool {
	callerID, role, ok := middleware.CurrentMember(c)
	if !ok {
		return false
	}
	return callerID == memberID || middleware.IsStaff(role)
}
