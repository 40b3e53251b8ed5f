package repositories

import (
	"context"

	"library-borrowing/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRequestRepository handles book request data access
type GormRequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new book request repository
func NewRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// Create creates a new book request
func (r *GormRequestRepository) Create(ctx context.Context, request *models.BookRequest) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Create(request).Error
}

// GetByID gets a book request by ID
func (r *GormRequestRepository) GetByID(ctx context.Context, id uint) (*models.BookRequest, error) {
	var request models.BookRequest
	err := dbFromContext(ctx, r.db).WithContext(ctx).First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetByIDForUpdate gets a book request by ID holding a row lock
func (r *GormRequestRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.BookRequest, error) {
	var request models.BookRequest
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Update updates a book request
func (r *GormRequestRepository) Update(ctx context.Context, request *models.BookRequest) error {
	return dbFromContext(ctx, r.db).WithContext(ctx).Save(request).Error
}

// List lists all book requests with pagination
func (r *GormRequestRepository) List(ctx context.Context, offset, limit int) ([]*models.BookRequest, int64, error) {
	db := dbFromContext(ctx, r.db).WithContext(ctx)

	var requests []*models.BookRequest
	var total int64

	db.Model(&models.BookRequest{}).Count(&total)

	err := db.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error

	return requests, total, err
}

// ListByRequester lists book requests submitted by a requester
func (r *GormRequestRepository) ListByRequester(ctx context.Context, requesterID uint) ([]*models.BookRequest, error) {
	var requests []*models.BookRequest
	err := dbFromContext(ctx, r.db).WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
