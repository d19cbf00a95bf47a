package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FineService computes, records and settles overdue fines
type FineService struct {
	store  repositories.Store
	clock  Clock
	policy domain.LoanPolicy
}

// NewFineService creates a new fine service
func NewFineService(store repositories.Store, clock Clock, policy domain.LoanPolicy) *FineService {
	return &FineService{
		store:  store,
		clock:  clock,
		policy: policy,
	}
}

func (s *FineService) in(tx repositories.Store) *FineService {
	return &FineService{store: tx, clock: s.clock, policy: s.policy}
}

// ============================================================
// Calculation & mutation
// ============================================================

// CalculateFineAmount charges FinePerDay for every whole calendar day
// between the due date and the settlement date. Never negative.
func (s *FineService) CalculateFineAmount(dueDate, settlementDate time.Time) decimal.Decimal {
	days := daysBetween(dueDate, settlementDate)
	if days <= 0 {
		return decimal.Zero
	}
	return s.policy.FinePerDay.Mul(decimal.NewFromInt(days)).Round(2)
}

// CreateFine records the fine of a loan. A loan can carry at most one fine.
func (s *FineService) CreateFine(ctx context.Context, loanID, memberID uuid.UUID, amount decimal.Decimal, description string) (*models.Fine, error) {
	if loanID == uuid.Nil || memberID == uuid.Nil {
		return nil, domain.ErrInvalidID
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: fine amount must not be negative", domain.ErrInvalidInput)
	}

	exists, err := s.store.Fines().ExistsForLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrFineAlreadyExists
	}

	fine := &models.Fine{
		LoanID:      loanID,
		MemberID:    memberID,
		Amount:      amount,
		Description: description,
		CreatedDate: s.clock.Now(),
	}
	if err := s.store.Fines().Create(ctx, fine); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrFineAlreadyExists
		}
		return nil, err
	}

	slog.InfoContext(ctx, "💰 Fine created", "fine_id", fine.ID, "loan_id", loanID, "amount", amount.StringFixed(2))
	return fine, nil
}

// PayFine marks a fine paid. Paying a paid fine is a no-op.
func (s *FineService) PayFine(ctx context.Context, fineID uuid.UUID) error {
	fine, err := s.GetByID(ctx, fineID)
	if err != nil {
		return err
	}
	if fine.IsPaid {
		return nil
	}

	// false here means a concurrent payment won; the end state is the same
	if _, err := s.store.Fines().MarkPaid(ctx, fineID, s.clock.Now()); err != nil {
		return err
	}

	slog.InfoContext(ctx, "✅ Fine paid", "fine_id", fineID)
	return nil
}

// ============================================================
// Projections
// ============================================================

// GetByID gets a fine by ID
func (s *FineService) GetByID(ctx context.Context, id uuid.UUID) (*models.Fine, error) {
	fine, err := s.store.Fines().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrFineNotFound
		}
		return nil, err
	}
	return fine, nil
}

// List lists fines with pagination
func (s *FineService) List(ctx context.Context, offset, limit int) ([]*models.Fine, int64, error) {
	return s.store.Fines().List(ctx, offset, limit)
}

// GetByMember lists a member's fines
func (s *FineService) GetByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Fine, error) {
	return s.store.Fines().ListByMember(ctx, memberID)
}

// GetUnpaid lists all unpaid fines
func (s *FineService) GetUnpaid(ctx context.Context) ([]*models.Fine, error) {
	return s.store.Fines().ListByPaid(ctx, false)
}

// GetPaid lists all paid fines
func (s *FineService) GetPaid(ctx context.Context) ([]*models.Fine, error) {
	return s.store.Fines().ListByPaid(ctx, true)
}

// GetCreatedToday lists fines created since midnight UTC
func (s *FineService) GetCreatedToday(ctx context.Context) ([]*models.Fine, error) {
	today := startOfDay(s.clock.Now())
	return s.store.Fines().ListCreatedBetween(ctx, today, today.AddDate(0, 0, 1))
}

// TotalForMember sums every fine of a member
func (s *FineService) TotalForMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	fines, err := s.store.Fines().ListByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumFines(fines, func(*models.Fine) bool { return true }), nil
}

// UnpaidTotalForMember sums the unpaid fines of a member
func (s *FineService) UnpaidTotalForMember(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	fines, err := s.store.Fines().ListByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumFines(fines, func(f *models.Fine) bool { return !f.IsPaid }), nil
}

// HasUnpaidFines reports whether the member owes anything
func (s *FineService) HasUnpaidFines(ctx context.Context, memberID uuid.UUID) (bool, error) {
	return s.store.Fines().ExistsUnpaidForMember(ctx, memberID)
}

func sumFines(fines []*models.Fine, include func(*models.Fine) bool) decimal.Decimal {
	total := decimal.Zero
	for _, f := range fines {
		if include(f) {
			total = total.Add(f.Amount)
		}
	}
	return total
}
