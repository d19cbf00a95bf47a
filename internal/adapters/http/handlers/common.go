package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// validate is shared by all handlers; validator.Validate caches struct metadata
var validate = validator.New()

// parseUUIDParam reads a UUID route parameter
func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

// bindAndValidate parses the JSON body into req and runs its validate tags.
// When ok is false the 400 response has been written and err is its send error.
func bindAndValidate(c *fiber.Ctx, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" "+fe.Tag())
			}
			return false, response.BadRequest(c, "Validation failed: "+strings.Join(fields, ", "))
		}
		return false, response.BadRequest(c, "Validation failed")
	}
	return true, nil
}

// errorCode returns the reason code exposed to API clients for a domain error
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotEligible):
		return string(domain.ReasonOf(err))
	case errors.Is(err, domain.ErrBookNotAvailable):
		return "not_available"
	case errors.Is(err, domain.ErrDuplicateLoan):
		return "duplicate_loan"
	case errors.Is(err, domain.ErrMemberHasActiveLoans):
		return "member_has_active_loans"
	case errors.Is(err, domain.ErrAlreadyRenewed):
		return "already_renewed"
	case errors.Is(err, domain.ErrLoanOverdue):
		return "overdue"
	case errors.Is(err, domain.ErrInvalidLoanStatus):
		return "invalid_state"
	case errors.Is(err, domain.ErrFineAlreadyExists):
		return "fine_exists"
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return "concurrent_update"
	default:
		return ""
	}
}

// writeError maps a service error to the JSON error envelope
func writeError(c *fiber.Ctx, err error, fallback string) error {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return response.BadRequest(c, err.Error())
	case domain.KindNotFound:
		return response.NotFound(c, err.Error())
	case domain.KindPolicy:
		if errors.Is(err, domain.ErrNotEligible) {
			return response.UnprocessableEntity(c, errorCode(err), err.Error())
		}
		return response.ErrorWithCode(c, fiber.StatusConflict, errorCode(err), err.Error())
	case domain.KindState, domain.KindConflict:
		return response.ErrorWithCode(c, fiber.StatusConflict, errorCode(err), err.Error())
	default:
		slog.ErrorContext(c.UserContext(), fallback, "path", c.Path(), "error", err)
		return response.InternalServerError(c, fallback)
	}
}
