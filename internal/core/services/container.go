package services

import (
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
)

// Container wires the circulation services over one Store
type Container struct {
	Availability *AvailabilityService
	Eligibility  *EligibilityService
	Fines        *FineService
	Loans        *LoanService
	Overdue      *OverdueService
	Members      *MemberService
}

// NewContainer builds every circulation service
func NewContainer(store repositories.Store, clock Clock, policy domain.LoanPolicy) *Container {
	availability := NewAvailabilityService(store)
	eligibility := NewEligibilityService(store, clock, policy)
	fines := NewFineService(store, clock, policy)

	return &Container{
		Availability: availability,
		Eligibility:  eligibility,
		Fines:        fines,
		Loans:        NewLoanService(store, availability, eligibility, clock, policy),
		Overdue:      NewOverdueService(store, fines, clock),
		Members:      NewMemberService(store, eligibility, fines, clock),
	}
}
