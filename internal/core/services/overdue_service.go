package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverdueService fines Active loans that passed their due date and marks them Overdue
type OverdueService struct {
	store repositories.Store
	fines *FineService
	clock Clock
}

// NewOverdueService creates a new overdue sweep service
func NewOverdueService(store repositories.Store, fines *FineService, clock Clock) *OverdueService {
	return &OverdueService{
		store: store,
		fines: fines,
		clock: clock,
	}
}

// Run performs one sweep. Each loan is handled in its own transaction;
// a failing loan is recorded in the result and the sweep moves on.
// Only a failure to load the candidates aborts the run.
func (s *OverdueService) Run(ctx context.Context) (*domain.SweepResult, error) {
	now := s.clock.Now()
	today := startOfDay(now)

	candidates, err := s.store.Loans().ListFineCandidates(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("load overdue candidates: %w", err)
	}

	result := &domain.SweepResult{
		RunAt:       now,
		Candidates:  len(candidates),
		FinedAmount: decimal.Zero,
		Failures:    make(map[uuid.UUID]string),
	}

	for _, loan := range candidates {
		amount, err := s.process(ctx, loan, today)
		if err != nil {
			result.Failures[loan.ID] = err.Error()
			slog.ErrorContext(ctx, "❌ Overdue sweep failed for loan", "loan_id", loan.ID, "error", err)
			continue
		}
		if amount.IsZero() {
			continue
		}
		result.ProcessedCount++
		result.FinedAmount = result.FinedAmount.Add(amount)
	}

	slog.InfoContext(ctx, "⏰ Overdue sweep finished",
		"candidates", result.Candidates,
		"processed", result.ProcessedCount,
		"failed", len(result.Failures),
		"fined_amount", result.FinedAmount.StringFixed(2))

	return result, nil
}

func (s *OverdueService) process(ctx context.Context, loan *models.Loan, today time.Time) (decimal.Decimal, error) {
	amount := s.fines.CalculateFineAmount(loan.DueDate, today)
	if !amount.IsPositive() {
		return decimal.Zero, nil
	}

	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := s.fines.in(tx).CreateFine(ctx, loan.ID, loan.MemberID, amount, fineDescription(loan)); err != nil {
			return err
		}

		ok, err := tx.Loans().TransitionStatus(ctx, loan.ID, domain.LoanStatusActive, map[string]interface{}{
			"status": domain.LoanStatusOverdue,
		})
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrConcurrentUpdate
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func fineDescription(loan *models.Loan) string {
	if loan.Book != nil && loan.Book.Title != "" {
		return "Overdue fine for " + loan.Book.Title
	}
	return "Overdue fine for loan " + loan.ID.String()
}
