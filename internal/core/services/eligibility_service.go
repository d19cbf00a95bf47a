package services

import (
	"context"
	"errors"

	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EligibilityService decides whether a member may borrow
type EligibilityService struct {
	store  repositories.Store
	clock  Clock
	policy domain.LoanPolicy
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(store repositories.Store, clock Clock, policy domain.LoanPolicy) *EligibilityService {
	return &EligibilityService{
		store:  store,
		clock:  clock,
		policy: policy,
	}
}

func (s *EligibilityService) in(tx repositories.Store) *EligibilityService {
	return &EligibilityService{store: tx, clock: s.clock, policy: s.policy}
}

// ActiveLoanCount counts the member's loans in status Active
func (s *EligibilityService) ActiveLoanCount(ctx context.Context, memberID uuid.UUID) (int64, error) {
	return s.store.Loans().CountByMemberAndStatus(ctx, memberID, domain.LoanStatusActive)
}

// HasOverdueLoans reports whether the member holds a copy past its due date
func (s *EligibilityService) HasOverdueLoans(ctx context.Context, memberID uuid.UUID) (bool, error) {
	return s.store.Loans().ExistsPastDueForMember(ctx, memberID, startOfDay(s.clock.Now()))
}

// Evaluate runs every checkout check and reports the first failing reason.
// A missing member is returned as domain.ErrMemberNotFound.
func (s *EligibilityService) Evaluate(ctx context.Context, memberID uuid.UUID) (*domain.Eligibility, error) {
	member, err := s.store.Members().GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	count, err := s.ActiveLoanCount(ctx, memberID)
	if err != nil {
		return nil, err
	}
	overdue, err := s.HasOverdueLoans(ctx, memberID)
	if err != nil {
		return nil, err
	}

	result := &domain.Eligibility{
		MemberID:        memberID,
		ActiveLoanCount: count,
		HasOverdueLoans: overdue,
	}

	switch {
	case !member.IsActive:
		result.Reason = domain.ReasonMemberInactive
	case member.Role != domain.RoleMember:
		result.Reason = domain.ReasonNotBorrower
	case count >= int64(s.policy.MaxActiveLoans):
		result.Reason = domain.ReasonLoanLimit
	case overdue:
		result.Reason = domain.ReasonOverdueItems
	}
	result.Eligible = result.Reason == domain.ReasonNone

	return result, nil
}

// Check returns nil when the member may borrow, otherwise the
// domain.ErrNotEligible cause matching the failing check.
func (s *EligibilityService) Check(ctx context.Context, memberID uuid.UUID) error {
	result, err := s.Evaluate(ctx, memberID)
	if err != nil {
		return err
	}

	switch result.Reason {
	case domain.ReasonNone:
		return nil
	case domain.ReasonMemberInactive:
		return domain.ErrMemberInactive
	case domain.ReasonNotBorrower:
		return domain.ErrMemberNotBorrower
	case domain.ReasonLoanLimit:
		return domain.ErrLoanLimitReached
	case domain.ReasonOverdueItems:
		return domain.ErrHasOverdueLoans
	default:
		return domain.ErrNotEligible
	}
}

// CanCheckout reports whether all checkout checks pass. An unknown member cannot borrow.
func (s *EligibilityService) CanCheckout(ctx context.Context, memberID uuid.UUID) (bool, error) {
	err := s.Check(ctx, memberID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotEligible), errors.Is(err, domain.ErrMemberNotFound):
		return false, nil
	default:
		return false, err
	}
}
