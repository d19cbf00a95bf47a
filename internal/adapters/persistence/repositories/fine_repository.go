package repositories

import (
	"context"
	"time"

	"libraryhub/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fineRepository implements FineRepository interface
type fineRepository struct {
	db *gorm.DB
}

// NewFineRepository creates a new fine repository
func NewFineRepository(db *gorm.DB) FineRepository {
	return &fineRepository{db: db}
}

// Create creates a new fine
func (r *fineRepository) Create(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Create(fine).Error
}

// GetByID gets a fine by ID
func (r *fineRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Fine, error) {
	var fine models.Fine
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("id = ?", id).
		First(&fine).Error
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

// ExistsForLoan checks if a loan already has a fine
func (r *fineRepository) ExistsForLoan(ctx context.Context, loanID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Fine{}).
		Where("loan_id = ?", loanID).
		Count(&count).Error
	return count > 0, err
}

// List lists fines with pagination
func (r *fineRepository) List(ctx context.Context, offset, limit int) ([]*models.Fine, int64, error) {
	var fines []*models.Fine
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Fine{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Member").
		Order("created_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&fines).Error

	return fines, total, err
}

// ListByMember lists fines of a member
func (r *fineRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*models.Fine, error) {
	var fines []*models.Fine
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_date DESC").
		Find(&fines).Error
	return fines, err
}

// ListByPaid lists paid or unpaid fines
func (r *fineRepository) ListByPaid(ctx context.Context, paid bool) ([]*models.Fine, error) {
	var fines []*models.Fine
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("is_paid = ?", paid).
		Order("created_date DESC").
		Find(&fines).Error
	return fines, err
}

// ListCreatedBetween lists fines with from <= created_date < to
func (r *fineRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*models.Fine, error) {
	var fines []*models.Fine
	err := r.db.WithContext(ctx).
		Preload("Member").
		Where("created_date >= ? AND created_date < ?", from, to).
		Order("created_date DESC").
		Find(&fines).Error
	return fines, err
}

// ExistsUnpaidForMember checks if a member has any unpaid fine
func (r *fineRepository) ExistsUnpaidForMember(ctx context.Context, memberID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Fine{}).
		Where("member_id = ? AND is_paid = ?", memberID, false).
		Count(&count).Error
	return count > 0, err
}

// MarkPaid flags an unpaid fine as paid. false means it was not unpaid.
func (r *fineRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Fine{}).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{
			"is_paid":   true,
			"paid_date": paidAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
