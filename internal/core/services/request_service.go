package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-borrowing/internal/adapters/persistence/models"
	"library-borrowing/internal/adapters/persistence/repositories"
	"library-borrowing/internal/core/domain"
	"library-borrowing/internal/pkg/cache"

	"gorm.io/gorm"
)

// RequestService owns the book request lifecycle: Pending → Approved (side
// effect: exactly one loan issued) or Pending → Rejected. Both transitions
// are terminal.
type RequestService struct {
	requestRepo repositories.RequestRepository
	transactor  repositories.Transactor
	loanLedger  *LoanService
	validator   *Validator
	directory   DirectoryClient
	enricher    *Enricher
	cache       *cache.Store

	now func() time.Time
}

// NewRequestService creates a new request service
func NewRequestService(
	requestRepo repositories.RequestRepository,
	transactor repositories.Transactor,
	loanLedger *LoanService,
	validator *Validator,
	directory DirectoryClient,
	enricher *Enricher,
	cacheStore *cache.Store,
) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		transactor:  transactor,
		loanLedger:  loanLedger,
		validator:   validator,
		directory:   directory,
		enricher:    enricher,
		cache:       cacheStore,
		now:         time.Now,
	}
}

// Create validates the book against the catalog service and persists a new
// pending request. Both a missing book and an unreachable catalog fail the
// creation; a request for a book nobody can see is worthless.
func (s *RequestService) Create(ctx context.Context, requesterID, bookID uint) (*models.BookRequest, error) {
	if requesterID == 0 {
		return nil, fmt.Errorf("%w: requester id is required", domain.ErrInvalidInput)
	}
	if bookID == 0 {
		return nil, fmt.Errorf("%w: book id is required", domain.ErrInvalidInput)
	}

	if err := s.validator.EnsureBookExists(ctx, bookID); err != nil {
		return nil, err
	}

	request := &models.BookRequest{
		RequesterID: requesterID,
		BookID:      bookID,
		RequestDate: dateOnly(s.now()),
		Status:      string(domain.RequestPending),
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.requestRepo.Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.cache.EvictRegion(CacheRegionRequestsAll)

	return request, nil
}

// Approve resolves the requester's member profile, then flips the request
// to Approved and issues the loan inside one local transaction. Any
// resolution failure aborts before the request is touched. A ledger
// failure rolls the status flip back, so a failed issuance never leaves an
// Approved-but-unlinked request; the row lock re-checks the Pending guard
// so concurrent approvals cannot double-issue.
func (s *RequestService) Approve(ctx context.Context, requestID uint) (*models.BookRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := EnsurePending(request); err != nil {
		return nil, err
	}

	memberID, err := s.directory.ResolveMemberForUser(ctx, request.RequesterID)
	if err != nil {
		return nil, err
	}

	var approved *models.BookRequest
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.requestRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRequestNotFound
			}
			return err
		}
		if err := EnsurePending(current); err != nil {
			return err
		}

		current.Status = string(domain.RequestApproved)
		if err := s.requestRepo.Update(ctx, current); err != nil {
			return err
		}

		if _, err := s.loanLedger.Issue(ctx, &IssueInput{
			MemberID:  memberID,
			BookID:    current.BookID,
			IssueDate: dateOnly(s.now()),
		}); err != nil {
			return err
		}

		approved = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.EvictRegion(CacheRegionRequestsAll)

	return approved, nil
}

// Reject flips a pending request to Rejected. No remote calls, no side
// effects beyond the status.
func (s *RequestService) Reject(ctx context.Context, requestID uint) (*models.BookRequest, error) {
	var rejected *models.BookRequest
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.requestRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRequestNotFound
			}
			return err
		}
		if err := EnsurePending(current); err != nil {
			return err
		}

		current.Status = string(domain.RequestRejected)
		if err := s.requestRepo.Update(ctx, current); err != nil {
			return err
		}

		rejected = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.EvictRegion(CacheRegionRequestsAll)

	return rejected, nil
}

// GetByID gets a book request by ID
func (s *RequestService) GetByID(ctx context.Context, requestID uint) (*models.BookRequest, error) {
	return s.getRequest(ctx, requestID)
}

// requestPage is the cached shape of one listing page.
type requestPage struct {
	Requests []*models.BookRequest
	Total    int64
}

// List lists requests with pagination, enriched with requester names and
// book titles for display
func (s *RequestService) List(ctx context.Context, offset, limit int) ([]*models.BookRequestResponse, int64, error) {
	key := fmt.Sprintf("page:%d:%d", offset, limit)
	v, err := s.cache.GetOrLoad(CacheRegionRequestsAll, key, func() (interface{}, error) {
		requests, total, err := s.requestRepo.List(ctx, offset, limit)
		if err != nil {
			return nil, err
		}
		return &requestPage{Requests: requests, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	page := v.(*requestPage)
	return s.enrich(ctx, page.Requests), page.Total, nil
}

// ListByRequester lists a requester's own requests, enriched
func (s *RequestService) ListByRequester(ctx context.Context, requesterID uint) ([]*models.BookRequestResponse, error) {
	requests, err := s.requestRepo.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, requests), nil
}

func (s *RequestService) enrich(ctx context.Context, requests []*models.BookRequest) []*models.BookRequestResponse {
	responses := make([]*models.BookRequestResponse, 0, len(requests))
	for _, request := range requests {
		resp := request.ToResponse()
		resp.RequesterName = s.enricher.UserName(ctx, request.RequesterID)
		resp.BookTitle = s.enricher.BookTitle(ctx, request.BookID)
		responses = append(responses, resp)
	}
	return responses
}

func (s *RequestService) getRequest(ctx context.Context, requestID uint) (*models.BookRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}
