package repositories

import (
	"context"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// loanRepository implements LoanRepository interface
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create creates a new loan
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID with relations
func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		Preload("Fine").
		Where("id = ?", id).
		First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists all loans with pagination
func (r *loanRepository) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Loan{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Fine").
		Order("checkout_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListByStatus lists loans in a status
func (r *loanRepository) ListByStatus(ctx context.Context, status domain.LoanStatus) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		Where("status = ?", status).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// ListPastDue lists loans already marked Overdue plus Active loans due before today
func (r *loanRepository) ListPastDue(ctx context.Context, today time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		Preload("Fine").
		Where("status = ? OR (status = ? AND due_date < ?)", domain.LoanStatusOverdue, domain.LoanStatusActive, today).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// ListDueBetween lists Active loans with from <= due_date < to
func (r *loanRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Member").
		Where("status = ? AND due_date >= ? AND due_date < ?", domain.LoanStatusActive, from, to).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// ListByMember lists loans of a member
func (r *loanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Preload("Fine").
		Where("member_id = ?", memberID).
		Order("checkout_date DESC").
		Find(&loans).Error
	return loans, err
}

// ListByBook lists loans of a book
func (r *loanRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("book_id = ?", bookID).
		Order("checkout_date DESC").
		Find(&loans).Error
	return loans, err
}

// ListFineCandidates lists Active loans due before today that have no fine yet
func (r *loanRepository) ListFineCandidates(ctx context.Context, today time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("status = ? AND due_date < ?", domain.LoanStatusActive, today).
		Where("NOT EXISTS (SELECT 1 FROM fines WHERE fines.loan_id = loans.id)").
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// CountByMemberAndStatus counts a member's loans in a status
func (r *loanRepository) CountByMemberAndStatus(ctx context.Context, memberID uuid.UUID, status domain.LoanStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("member_id = ? AND status = ?", memberID, status).
		Count(&count).Error
	return count, err
}

// ExistsPastDueForMember checks for an Overdue loan, or an Active loan due before today
func (r *loanRepository) ExistsPastDueForMember(ctx context.Context, memberID uuid.UUID, today time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("member_id = ?", memberID).
		Where("status = ? OR (status = ? AND due_date < ?)", domain.LoanStatusOverdue, domain.LoanStatusActive, today).
		Count(&count).Error
	return count > 0, err
}

// ExistsOpen checks if the member still holds a copy of the book
func (r *loanRepository) ExistsOpen(ctx context.Context, bookID, memberID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("open_loan_key = ?", *models.OpenLoanKeyFor(bookID, memberID)).
		Count(&count).Error
	return count > 0, err
}

// TransitionStatus applies updates only while the loan is still in status from.
// false means the loan is gone or another writer changed its status first.
func (r *loanRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from domain.LoanStatus, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkRenewed records the single permitted renewal of an Active loan
func (r *loanRepository) MarkRenewed(ctx context.Context, id uuid.UUID, dueDate time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND status = ? AND is_renewed = ?", id, domain.LoanStatusActive, false).
		Updates(map[string]interface{}{
			"is_renewed":    true,
			"renewal_count": gorm.Expr("renewal_count + 1"),
			"due_date":      dueDate,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete soft deletes a loan and frees its open-loan key
func (r *loanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", id).
		Update("open_loan_key", nil).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Loan{}, "id = ?", id).Error
}
