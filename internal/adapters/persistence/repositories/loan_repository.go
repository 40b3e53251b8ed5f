package repositories

import (
	"context"
	"time"

	"library-borrowing/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLoanRepository handles loan data access
type GormLoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// Create creates a new loan
func (r *GormLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *GormLoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := dbFromContext(ctx, r.db).WithContext(ctx).First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetByIDForUpdate gets a loan by ID holding a row lock
func (r *GormLoanRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *GormLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(loan).Error
}

// Delete soft deletes a loan. No existence check; deleting an absent
// record is a no-op and the call site decides whether that matters.
func (r *GormLoanRepository) Delete(ctx context.Context, id uint) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Delete(&models.Loan{}, id).Error
}

// List lists all loans with pagination
func (r *GormLoanRepository) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var loans []*models.Loan
	var total int64

	db.Model(&models.Loan{}).Count(&total)

	err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListByMember lists loans held by a member
func (r *GormLoanRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListOpenDueBefore lists unreturned loans due on or before the deadline
func (r *GormLoanRepository) ListOpenDueBefore(ctx context.Context, deadline time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("return_date IS NULL AND due_date <= ?", deadline).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}
