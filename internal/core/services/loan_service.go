package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanService drives the loan state machine:
// Active -> Returned, Active -> Overdue, Overdue -> Returned.
type LoanService struct {
	store        repositories.Store
	availability *AvailabilityService
	eligibility  *EligibilityService
	clock        Clock
	policy       domain.LoanPolicy
}

// NewLoanService creates a new loan service
func NewLoanService(
	store repositories.Store,
	availability *AvailabilityService,
	eligibility *EligibilityService,
	clock Clock,
	policy domain.LoanPolicy,
) *LoanService {
	return &LoanService{
		store:        store,
		availability: availability,
		eligibility:  eligibility,
		clock:        clock,
		policy:       policy,
	}
}

// ============================================================
// Transitions
// ============================================================

// Checkout lends one copy of a book to a member.
// All checks, the reservation and the insert share one transaction.
func (s *LoanService) Checkout(ctx context.Context, bookID, memberID uuid.UUID) (*models.Loan, error) {
	if bookID == uuid.Nil || memberID == uuid.Nil {
		return nil, domain.ErrInvalidID
	}

	var loan *models.Loan
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		availability := s.availability.in(tx)

		available, err := availability.IsAvailable(ctx, bookID)
		if err != nil {
			return err
		}
		if !available {
			return domain.ErrBookNotAvailable
		}

		if err := s.eligibility.in(tx).Check(ctx, memberID); err != nil {
			return err
		}

		open, err := tx.Loans().ExistsOpen(ctx, bookID, memberID)
		if err != nil {
			return err
		}
		if open {
			return domain.ErrDuplicateLoan
		}

		if err := availability.Reserve(ctx, bookID); err != nil {
			return err
		}

		now := s.clock.Now()
		loan = &models.Loan{
			BookID:       bookID,
			MemberID:     memberID,
			CheckoutDate: now,
			DueDate:      now.Add(s.policy.LoanPeriod),
			Status:       domain.LoanStatusActive,
			OpenLoanKey:  models.OpenLoanKeyFor(bookID, memberID),
		}
		if err := tx.Loans().Create(ctx, loan); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateLoan
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "📚 Book checked out",
		"loan_id", loan.ID, "book_id", bookID, "member_id", memberID, "due_date", loan.DueDate)
	return loan, nil
}

// Return closes a loan that is Active or Overdue and puts the copy back
func (s *LoanService) Return(ctx context.Context, loanID uuid.UUID) error {
	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return s.store.Transaction(ctx, func(tx repositories.Store) error {
			loan, err := getLoan(ctx, tx, loanID)
			if err != nil {
				return err
			}
			if !loan.Status.Returnable() {
				return fmt.Errorf("%w: loan is %s", domain.ErrInvalidLoanStatus, loan.Status)
			}

			ok, err := tx.Loans().TransitionStatus(ctx, loanID, loan.Status, map[string]interface{}{
				"status":        domain.LoanStatusReturned,
				"return_date":   s.clock.Now(),
				"open_loan_key": nil,
			})
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrConcurrentUpdate
			}

			return s.availability.in(tx).Release(ctx, loan.BookID)
		})
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "✅ Book returned", "loan_id", loanID)
	return nil
}

// Renew grants the single renewal of an Active loan that is not past due.
// The new due date counts from now, not from the old due date.
func (s *LoanService) Renew(ctx context.Context, loanID uuid.UUID) (*models.Loan, error) {
	err := retryOnConflict(ctx, func(ctx context.Context) error {
		loan, err := getLoan(ctx, s.store, loanID)
		if err != nil {
			return err
		}
		if loan.Status != domain.LoanStatusActive {
			return fmt.Errorf("%w: loan is %s", domain.ErrInvalidLoanStatus, loan.Status)
		}
		if loan.IsRenewed {
			return domain.ErrAlreadyRenewed
		}

		now := s.clock.Now()
		if loan.IsPastDue(startOfDay(now)) {
			return domain.ErrLoanOverdue
		}

		ok, err := s.store.Loans().MarkRenewed(ctx, loanID, now.Add(s.policy.LoanPeriod))
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrConcurrentUpdate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "🔁 Loan renewed", "loan_id", loanID)
	return s.GetByID(ctx, loanID)
}

// Delete removes a loan. A loan still holding a copy releases it first.
func (s *LoanService) Delete(ctx context.Context, loanID uuid.UUID) error {
	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return s.store.Transaction(ctx, func(tx repositories.Store) error {
			loan, err := getLoan(ctx, tx, loanID)
			if err != nil {
				return err
			}

			if loan.Status.HoldsCopy() {
				ok, err := tx.Loans().TransitionStatus(ctx, loanID, loan.Status, map[string]interface{}{
					"open_loan_key": nil,
				})
				if err != nil {
					return err
				}
				if !ok {
					return domain.ErrConcurrentUpdate
				}
				if err := s.availability.in(tx).Release(ctx, loan.BookID); err != nil {
					return err
				}
			}

			return tx.Loans().Delete(ctx, loanID)
		})
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "🗑️ Loan deleted", "loan_id", loanID)
	return nil
}

// ============================================================
// Projections
// ============================================================

// GetByID gets a loan by ID
func (s *LoanService) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	return getLoan(ctx, s.store, id)
}

// List lists loans with pagination
func (s *LoanService) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	return s.store.Loans().List(ctx, offset, limit)
}

// GetActive lists loans in status Active
func (s *LoanService) GetActive(ctx context.Context) ([]*models.Loan, error) {
	return s.store.Loans().ListByStatus(ctx, domain.LoanStatusActive)
}

// GetOverdue lists loans marked Overdue and Active loans already past due
func (s *LoanService) GetOverdue(ctx context.Context) ([]*models.Loan, error) {
	return s.store.Loans().ListPastDue(ctx, startOfDay(s.clock.Now()))
}

// GetByMember lists a member's loans
func (s *LoanService) GetByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Loan, error) {
	return s.store.Loans().ListByMember(ctx, memberID)
}

// GetByBook lists a book's loans
func (s *LoanService) GetByBook(ctx context.Context, bookID uuid.UUID) ([]*models.Loan, error) {
	return s.store.Loans().ListByBook(ctx, bookID)
}

// GetDueToday lists Active loans due today
func (s *LoanService) GetDueToday(ctx context.Context) ([]*models.Loan, error) {
	return s.GetDueInDays(ctx, 0)
}

// GetDueInDays lists Active loans due on the calendar day days from today
func (s *LoanService) GetDueInDays(ctx context.Context, days int) ([]*models.Loan, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", domain.ErrInvalidInput)
	}
	day := startOfDay(s.clock.Now()).AddDate(0, 0, days)
	return s.store.Loans().ListDueBetween(ctx, day, day.AddDate(0, 0, 1))
}

func getLoan(ctx context.Context, store repositories.Store, id uuid.UUID) (*models.Loan, error) {
	loan, err := store.Loans().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}
