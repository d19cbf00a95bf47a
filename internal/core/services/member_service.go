package services

import (
	"context"
	"errors"
	"log/slog"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberService handles member account state relevant to circulation
type MemberService struct {
	store       repositories.Store
	eligibility *EligibilityService
	fines       *FineService
	clock       Clock
}

// NewMemberService creates a new member service
func NewMemberService(store repositories.Store, eligibility *EligibilityService, fines *FineService, clock Clock) *MemberService {
	return &MemberService{
		store:       store,
		eligibility: eligibility,
		fines:       fines,
		clock:       clock,
	}
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	return getMember(ctx, s.store, id)
}

// Deactivate turns a member account off. Open loans stay as they are.
func (s *MemberService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := getMember(ctx, s.store, id); err != nil {
		return err
	}
	if err := s.store.Members().Deactivate(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "🚫 Member deactivated", "member_id", id)
	return nil
}

// Delete soft deletes a member who holds no copies
func (s *MemberService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		if _, err := getMember(ctx, tx, id); err != nil {
			return err
		}

		for _, status := range []domain.LoanStatus{domain.LoanStatusActive, domain.LoanStatusOverdue} {
			count, err := tx.Loans().CountByMemberAndStatus(ctx, id, status)
			if err != nil {
				return err
			}
			if count > 0 {
				return domain.ErrMemberHasActiveLoans
			}
		}

		return tx.Members().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "🗑️ Member deleted", "member_id", id)
	return nil
}

// Summary aggregates eligibility, loans and fines of a member
func (s *MemberService) Summary(ctx context.Context, id uuid.UUID) (*domain.MemberSummary, error) {
	eligibility, err := s.eligibility.Evaluate(ctx, id)
	if err != nil {
		return nil, err
	}

	loans, err := s.store.Loans().ListByMember(ctx, id)
	if err != nil {
		return nil, err
	}
	today := startOfDay(s.clock.Now())
	overdue := 0
	for _, loan := range loans {
		if loan.Status == domain.LoanStatusOverdue ||
			(loan.Status == domain.LoanStatusActive && loan.IsPastDue(today)) {
			overdue++
		}
	}

	total, err := s.fines.TotalForMember(ctx, id)
	if err != nil {
		return nil, err
	}
	unpaid, err := s.fines.UnpaidTotalForMember(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.MemberSummary{
		MemberID:       id,
		Eligibility:    eligibility,
		TotalLoans:     len(loans),
		OverdueLoans:   overdue,
		TotalFines:     total,
		UnpaidFines:    unpaid,
		HasUnpaidFines: unpaid.IsPositive(),
	}, nil
}

func getMember(ctx context.Context, store repositories.Store, id uuid.UUID) (*models.Member, error) {
	member, err := store.Members().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}
