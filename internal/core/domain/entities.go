package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role represents a member account role
type Role string

const (
	RoleMember Role = "Member"
	RoleStaff  Role = "Staff"
	RoleAdmin  Role = "Admin"
	RoleGuest  Role = "Guest"
)

// LoanStatus represents the state of a loan
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "Active"
	LoanStatusReturned LoanStatus = "Returned"
	LoanStatusOverdue  LoanStatus = "Overdue"
)

// HoldsCopy reports whether a loan in this status still has a copy checked out.
func (s LoanStatus) HoldsCopy() bool {
	return s == LoanStatusActive || s == LoanStatusOverdue
}

// Returnable reports whether Return is a valid transition from this status.
func (s LoanStatus) Returnable() bool {
	return s.HoldsCopy()
}

// Default circulation policy
const (
	DefaultLoanPeriodDays = 10
	DefaultMaxActiveLoans = 5
	DefaultFinePerDay     = "0.50"
)

// LoanPolicy holds the circulation rules applied by the loan and fine services
type LoanPolicy struct {
	LoanPeriod     time.Duration
	MaxActiveLoans int
	FinePerDay     decimal.Decimal
}

// DefaultLoanPolicy returns the standard library policy:
// 10-day loans, 5 concurrent loans, 0.50 per overdue day.
func DefaultLoanPolicy() LoanPolicy {
	return LoanPolicy{
		LoanPeriod:     DefaultLoanPeriodDays * 24 * time.Hour,
		MaxActiveLoans: DefaultMaxActiveLoans,
		FinePerDay:     decimal.RequireFromString(DefaultFinePerDay),
	}
}

// IneligibleReason explains why a member may not borrow
type IneligibleReason string

const (
	ReasonNone           IneligibleReason = ""
	ReasonMemberNotFound IneligibleReason = "member_not_found"
	ReasonMemberInactive IneligibleReason = "member_inactive"
	ReasonNotBorrower    IneligibleReason = "not_borrower"
	ReasonLoanLimit      IneligibleReason = "loan_limit_reached"
	ReasonOverdueItems   IneligibleReason = "overdue_items"
)

// Eligibility is the evaluated checkout eligibility of a member
type Eligibility struct {
	MemberID        uuid.UUID        `json:"member_id"`
	Eligible        bool             `json:"eligible"`
	Reason          IneligibleReason `json:"reason,omitempty"`
	ActiveLoanCount int64            `json:"active_loan_count"`
	HasOverdueLoans bool             `json:"has_overdue_loans"`
}

// SweepResult is the outcome of one overdue sweep
type SweepResult struct {
	RunAt          time.Time            `json:"run_at"`
	Candidates     int                  `json:"candidates"`
	ProcessedCount int                  `json:"processed_count"`
	FinedAmount    decimal.Decimal      `json:"fined_amount"`
	Failures       map[uuid.UUID]string `json:"failures"`
}

// MemberSummary aggregates a member's circulation and fine state
type MemberSummary struct {
	MemberID       uuid.UUID       `json:"member_id"`
	Eligibility    *Eligibility    `json:"eligibility"`
	TotalLoans     int             `json:"total_loans"`
	OverdueLoans   int             `json:"overdue_loans"`
	TotalFines     decimal.Decimal `json:"total_fines"`
	UnpaidFines    decimal.Decimal `json:"unpaid_fines"`
	HasUnpaidFines bool            `json:"has_unpaid_fines"`
}
