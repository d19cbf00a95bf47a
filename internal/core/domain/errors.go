package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors for callers
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindState      ErrorKind = "state"
	KindPolicy     ErrorKind = "policy"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

// Validation errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidID    = fmt.Errorf("%w: malformed identifier", ErrInvalidInput)
)

// Not-found errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrBookNotFound   = fmt.Errorf("%w: book", ErrNotFound)
	ErrMemberNotFound = fmt.Errorf("%w: member", ErrNotFound)
	ErrLoanNotFound   = fmt.Errorf("%w: loan", ErrNotFound)
	ErrFineNotFound   = fmt.Errorf("%w: fine", ErrNotFound)
)

// Policy errors
var (
	ErrBookNotAvailable = errors.New("book is not available for checkout")
	ErrDuplicateLoan    = errors.New("member already has this book checked out")

	ErrNotEligible       = errors.New("member is not eligible for checkout")
	ErrMemberInactive    = fmt.Errorf("%w: member account is inactive", ErrNotEligible)
	ErrMemberNotBorrower = fmt.Errorf("%w: account role cannot borrow", ErrNotEligible)
	ErrLoanLimitReached  = fmt.Errorf("%w: active loan limit reached", ErrNotEligible)
	ErrHasOverdueLoans   = fmt.Errorf("%w: member has overdue books, return them before checking out new books", ErrNotEligible)

	ErrMemberHasActiveLoans = errors.New("member has active loans")
)

// State errors
var (
	ErrInvalidLoanStatus = errors.New("invalid loan status for this action")
	ErrAlreadyRenewed    = errors.New("loan has already been renewed")
	ErrLoanOverdue       = errors.New("cannot renew an overdue loan")
)

// Conflict errors
var (
	ErrFineAlreadyExists = errors.New("fine already exists for this loan")
	ErrConcurrentUpdate  = errors.New("record was modified concurrently")
)

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrBookNotAvailable),
		errors.Is(err, ErrDuplicateLoan),
		errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrMemberHasActiveLoans):
		return KindPolicy
	case errors.Is(err, ErrInvalidLoanStatus),
		errors.Is(err, ErrAlreadyRenewed),
		errors.Is(err, ErrLoanOverdue):
		return KindState
	case errors.Is(err, ErrFineAlreadyExists),
		errors.Is(err, ErrConcurrentUpdate):
		return KindConflict
	default:
		return KindInternal
	}
}

// ReasonOf maps an eligibility error to its reason code.
func ReasonOf(err error) IneligibleReason {
	switch {
	case errors.Is(err, ErrMemberNotFound):
		return ReasonMemberNotFound
	case errors.Is(err, ErrMemberInactive):
		return ReasonMemberInactive
	case errors.Is(err, ErrMemberNotBorrower):
		return ReasonNotBorrower
	case errors.Is(err, ErrLoanLimitReached):
		return ReasonLoanLimit
	case errors.Is(err, ErrHasOverdueLoans):
		return ReasonOverdueItems
	default:
		return ReasonNone
	}
}
