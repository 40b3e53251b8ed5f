package repositories

import (
	"context"
	"time"

	"library-borrowing/internal/adapters/persistence/models"
)

// RequestRepository defines book request repository interface
type RequestRepository interface {
	Create(ctx context.Context, request *models.BookRequest) error
	GetByID(ctx context.Context, id uint) (*models.BookRequest, error)
	// GetByIDForUpdate takes a row lock; only valid inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.BookRequest, error)
	Update(ctx context.Context, request *models.BookRequest) error
	List(ctx context.Context, offset, limit int) ([]*models.BookRequest, int64, error)
	ListByRequester(ctx context.Context, requesterID uint) ([]*models.BookRequest, error)
}

// LoanRepository defines loan repository interface
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	// GetByIDForUpdate takes a row lock; only valid inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error)
	ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error)
	// ListOpenDueBefore returns unreturned loans due on or before the deadline.
	ListOpenDueBefore(ctx context.Context, deadline time.Time) ([]*models.Loan, error)
}

// Transactor runs a function inside a local all-or-nothing transaction.
// Repository calls made with the returned context join that transaction.
// A nested call joins the already-open transaction instead of opening a
// second one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
