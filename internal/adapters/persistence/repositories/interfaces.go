package repositories

import (
	"context"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
)

// BookRepository defines book repository interface
// Availability counters are only changed through the conditional
// Decrement/Increment methods.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	List(ctx context.Context, offset, limit int) ([]*models.Book, int64, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	DecrementAvailable(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementAvailable(ctx context.Context, id uuid.UUID) (bool, error)
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error)
	ListByStatus(ctx context.Context, status domain.LoanStatus) ([]*models.Loan, error)
	ListPastDue(ctx context.Context, today time.Time) ([]*models.Loan, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Loan, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Loan, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*models.Loan, error)
	ListFineCandidates(ctx context.Context, today time.Time) ([]*models.Loan, error)
	CountByMemberAndStatus(ctx context.Context, memberID uuid.UUID, status domain.LoanStatus) (int64, error)
	ExistsPastDueForMember(ctx context.Context, memberID uuid.UUID, today time.Time) (bool, error)
	ExistsOpen(ctx context.Context, bookID, memberID uuid.UUID) (bool, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from domain.LoanStatus, updates map[string]interface{}) (bool, error)
	MarkRenewed(ctx context.Context, id uuid.UUID, dueDate time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FineRepository defines fine repository interface
// Fines are never deleted.
type FineRepository interface {
	Create(ctx context.Context, fine *models.Fine) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Fine, error)
	ExistsForLoan(ctx context.Context, loanID uuid.UUID) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*models.Fine, int64, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Fine, error)
	ListByPaid(ctx context.Context, paid bool) ([]*models.Fine, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Fine, error)
	ExistsUnpaidForMember(ctx context.Context, memberID uuid.UUID) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
}

// Store groups the repositories of one persistence scope.
// Transaction runs fn against a Store bound to a single database
// transaction; fn's error rolls it back.
type Store interface {
	Books() BookRepository
	Members() MemberRepository
	Loans() LoanRepository
	Fines() FineRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
