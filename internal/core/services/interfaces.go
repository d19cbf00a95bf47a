package services

import (
	"context"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Note: implementations live in <name>_service.go; handlers depend on these interfaces.

// AvailabilityTracker defines copy availability operations
type AvailabilityTracker interface {
	Reserve(ctx context.Context, bookID uuid.UUID) error
	Release(ctx context.Context, bookID uuid.UUID) error
	IsAvailable(ctx context.Context, bookID uuid.UUID) (bool, error)
	Availability(ctx context.Context, bookID uuid.UUID) (*BookAvailability, error)
}

// EligibilityEvaluator defines checkout eligibility checks
type EligibilityEvaluator interface {
	CanCheckout(ctx context.Context, memberID uuid.UUID) (bool, error)
	Evaluate(ctx context.Context, memberID uuid.UUID) (*domain.Eligibility, error)
	Check(ctx context.Context, memberID uuid.UUID) error
	ActiveLoanCount(ctx context.Context, memberID uuid.UUID) (int64, error)
	HasOverdueLoans(ctx context.Context, memberID uuid.UUID) (bool, error)
}

// LoanLifecycle defines loan transitions and projections
type LoanLifecycle interface {
	Checkout(ctx context.Context, bookID, memberID uuid.UUID) (*models.Loan, error)
	Return(ctx context.Context, loanID uuid.UUID) error
	Renew(ctx context.Context, loanID uuid.UUID) (*models.Loan, error)
	Delete(ctx context.Context, loanID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error)
	GetActive(ctx context.Context) ([]*models.Loan, error)
	GetOverdue(ctx context.Context) ([]*models.Loan, error)
	GetByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Loan, error)
	GetByBook(ctx context.Context, bookID uuid.UUID) ([]*models.Loan, error)
	GetDueToday(ctx context.Context) ([]*models.Loan, error)
	GetDueInDays(ctx context.Context, days int) ([]*models.Loan, error)
}

// FineEngine defines fine calculation, settlement and projections
type FineEngine interface {
	CalculateFineAmount(dueDate, settlementDate time.Time) decimal.Decimal
	CreateFine(ctx context.Context, loanID, memberID uuid.UUID, amount decimal.Decimal, description string) (*models.Fine, error)
	PayFine(ctx context.Context, fineID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Fine, error)
	List(ctx context.Context, offset, limit int) ([]*models.Fine, int64, error)
	GetByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Fine, error)
	GetUnpaid(ctx context.Context) ([]*models.Fine, error)
	GetPaid(ctx context.Context) ([]*models.Fine, error)
	GetCreatedToday(ctx context.Context) ([]*models.Fine, error)
	TotalForMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)
	UnpaidTotalForMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)
	HasUnpaidFines(ctx context.Context, memberID uuid.UUID) (bool, error)
}

// OverdueSweeper defines the on-demand overdue sweep
type OverdueSweeper interface {
	Run(ctx context.Context) (*domain.SweepResult, error)
}

// MemberAccounts defines member account operations
type MemberAccounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, id uuid.UUID) (*domain.MemberSummary, error)
}

var (
	_ AvailabilityTracker  = (*AvailabilityService)(nil)
	_ EligibilityEvaluator = (*EligibilityService)(nil)
	_ LoanLifecycle        = (*LoanService)(nil)
	_ FineEngine           = (*FineService)(nil)
	_ OverdueSweeper       = (*OverdueService)(nil)
	_ MemberAccounts       = (*MemberService)(nil)
)
