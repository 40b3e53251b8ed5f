package services

import (
	"context"

	"library-borrowing/internal/core/domain"
)

// Note: RequestService implementation is in request_service.go
// Note: LoanService implementation is in loan_service.go

// DirectoryClient defines the cross-store lookup interface consumed by the
// borrowing workflows. Implementations classify failures: a missing entity
// yields the matching NotFound-class domain error, anything else yields
// domain.ErrRemoteUnavailable.
type DirectoryClient interface {
	GetBook(ctx context.Context, id uint) (*domain.Book, error)
	GetMember(ctx context.Context, id uint) (*domain.Member, error)
	GetUser(ctx context.Context, id uint) (*domain.User, error)
	ResolveMemberForUser(ctx context.Context, userID uint) (uint, error)
}

// Cache region names. Aggregate regions are evicted wholesale on any loan
// mutation because "all loans" listings depend on every record.
const (
	CacheRegionLoans       = "loans"
	CacheRegionLoansAll    = "loans_all"
	CacheRegionRequestsAll = "requests_all"
	CacheRegionBooks       = "books"
	CacheRegionMembers     = "members"
	CacheRegionUsers       = "users"
)
