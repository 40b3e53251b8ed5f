package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"library-borrowing/internal/adapters/persistence/models"
	"library-borrowing/internal/adapters/persistence/repositories"
	"library-borrowing/internal/core/domain"
	"library-borrowing/internal/pkg/cache"

	"gorm.io/gorm"
)

// DefaultLoanDays is the default loan window when the caller does not
// supply a due date.
const DefaultLoanDays = 14

// LoanService owns borrowing records and their lifecycle:
// Active {return_date unset} → Returned {return_date set}, exactly once.
type LoanService struct {
	loanRepo   repositories.LoanRepository
	transactor repositories.Transactor
	validator  *Validator
	enricher   *Enricher
	cache      *cache.Store

	now func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	transactor repositories.Transactor,
	validator *Validator,
	enricher *Enricher,
	cacheStore *cache.Store,
) *LoanService {
	return &LoanService{
		loanRepo:   loanRepo,
		transactor: transactor,
		validator:  validator,
		enricher:   enricher,
		cache:      cacheStore,
		now:        time.Now,
	}
}

// IssueInput represents issue input. Zero IssueDate means today; zero
// DueDate means IssueDate plus the default loan window.
type IssueInput struct {
	MemberID  uint      `json:"member_id" validate:"required"`
	BookID    uint      `json:"book_id" validate:"required"`
	IssueDate time.Time `json:"issue_date,omitempty"`
	DueDate   time.Time `json:"due_date,omitempty"`
}

// Issue validates member and book against their owning stores and persists
// a new active loan. The book check hard-fails on any lookup failure; the
// member check hard-fails only when the member is known to be absent and
// proceeds with a logged warning when the member service is unreachable.
// Existence is checked at issuance time only; the remote stores may change
// afterwards (no foreign key across stores).
func (s *LoanService) Issue(ctx context.Context, input *IssueInput) (*models.Loan, error) {
	if input.MemberID == 0 {
		return nil, fmt.Errorf("%w: member id is required", domain.ErrInvalidInput)
	}
	if input.BookID == 0 {
		return nil, fmt.Errorf("%w: book id is required", domain.ErrInvalidInput)
	}

	issueDate := dateOnly(input.IssueDate)
	if input.IssueDate.IsZero() {
		issueDate = dateOnly(s.now())
	}
	dueDate := dateOnly(input.DueDate)
	if input.DueDate.IsZero() {
		dueDate = issueDate.AddDate(0, 0, DefaultLoanDays)
	}
	if dueDate.Before(issueDate) {
		return nil, fmt.Errorf("%w: due date before issue date", domain.ErrInvalidInput)
	}

	// Member first, soft on unavailability; book second, hard either way.
	if err := s.validator.EnsureMemberExists(ctx, input.MemberID, true); err != nil {
		return nil, err
	}
	if err := s.validator.EnsureBookExists(ctx, input.BookID); err != nil {
		return nil, err
	}

	loan := &models.Loan{
		MemberID:  input.MemberID,
		BookID:    input.BookID,
		IssueDate: issueDate,
		DueDate:   dueDate,
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.loanRepo.Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	// Aggregate listings depend on every record.
	s.cache.EvictRegion(CacheRegionLoansAll)

	return loan, nil
}

// Return marks a loan returned. The row lock plus the already-returned
// guard serialize concurrent returns: the second caller observes the set
// return date and fails instead of double-processing. Zero returnDate
// means today.
func (s *LoanService) Return(ctx context.Context, id uint, returnDate time.Time) (*models.Loan, error) {
	if returnDate.IsZero() {
		returnDate = s.now()
	}
	returnDate = dateOnly(returnDate)

	var returned *models.Loan
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		loan, err := s.loanRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		if loan.IsReturned() {
			return domain.ErrLoanAlreadyReturned
		}

		loan.ReturnDate = &returnDate
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			return err
		}

		returned = loan
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Evict(CacheRegionLoans, strconv.FormatUint(uint64(id), 10))
	s.cache.EvictRegion(CacheRegionLoansAll)

	return returned, nil
}

// Delete removes a loan unconditionally. Absence is not an error here; the
// call site decides whether it should be.
func (s *LoanService) Delete(ctx context.Context, id uint) error {
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.loanRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.cache.Evict(CacheRegionLoans, strconv.FormatUint(uint64(id), 10))
	s.cache.EvictRegion(CacheRegionLoansAll)

	return nil
}

// GetByID gets a loan by ID, read-through cached
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	v, err := s.cache.GetOrLoad(CacheRegionLoans, strconv.FormatUint(uint64(id), 10), func() (interface{}, error) {
		loan, err := s.loanRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrLoanNotFound
			}
			return nil, err
		}
		return loan, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Loan), nil
}

// loanPage is the cached shape of one listing page.
type loanPage struct {
	Loans []*models.Loan
	Total int64
}

// List lists loans with pagination, enriched with member names and book
// titles for display. The page fetch is cached in the aggregate region;
// enrichment runs per call on top of the entity snapshot caches.
func (s *LoanService) List(ctx context.Context, offset, limit int) ([]*models.LoanResponse, int64, error) {
	key := fmt.Sprintf("page:%d:%d", offset, limit)
	v, err := s.cache.GetOrLoad(CacheRegionLoansAll, key, func() (interface{}, error) {
		loans, total, err := s.loanRepo.List(ctx, offset, limit)
		if err != nil {
			return nil, err
		}
		return &loanPage{Loans: loans, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	page := v.(*loanPage)
	return s.enrich(ctx, page.Loans), page.Total, nil
}

// ListByMember lists a member's loans, enriched
func (s *LoanService) ListByMember(ctx context.Context, memberID uint) ([]*models.LoanResponse, error) {
	loans, err := s.loanRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, loans), nil
}

func (s *LoanService) enrich(ctx context.Context, loans []*models.Loan) []*models.LoanResponse {
	responses := make([]*models.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		resp := loan.ToResponse()
		resp.MemberName = s.enricher.MemberName(ctx, loan.MemberID)
		resp.BookTitle = s.enricher.BookTitle(ctx, loan.BookID)
		responses = append(responses, resp)
	}
	return responses
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
