package services

import (
	"context"
	"errors"
	"strconv"

	"library-borrowing/internal/core/domain"
	"library-borrowing/internal/pkg/cache"
)

// Enricher fills display names on listings from the catalog and member
// stores, read-through cached. Lookups here never abort the caller: a
// missing entity yields an "Unknown ..." placeholder and an unreachable
// store yields "Service Unavailable". Failed lookups are not cached.
type Enricher struct {
	directory DirectoryClient
	cache     *cache.Store
}

// NewEnricher creates a new enricher
func NewEnricher(directory DirectoryClient, cacheStore *cache.Store) *Enricher {
	return &Enricher{directory: directory, cache: cacheStore}
}

// BookTitle resolves a book title for display
func (e *Enricher) BookTitle(ctx context.Context, bookID uint) string {
	v, err := e.cache.GetOrLoad(CacheRegionBooks, strconv.FormatUint(uint64(bookID), 10), func() (interface{}, error) {
		return e.directory.GetBook(ctx, bookID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return domain.PlaceholderUnknownBook
		}
		return domain.PlaceholderUnavailable
	}
	return v.(*domain.Book).Title
}

// MemberName resolves a member name for display
func (e *Enricher) MemberName(ctx context.Context, memberID uint) string {
	v, err := e.cache.GetOrLoad(CacheRegionMembers, strconv.FormatUint(uint64(memberID), 10), func() (interface{}, error) {
		return e.directory.GetMember(ctx, memberID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return domain.PlaceholderUnknownMember
		}
		return domain.PlaceholderUnavailable
	}
	return v.(*domain.Member).Name
}

// UserName resolves a requester display name for request listings
func (e *Enricher) UserName(ctx context.Context, userID uint) string {
	v, err := e.cache.GetOrLoad(CacheRegionUsers, strconv.FormatUint(uint64(userID), 10), func() (interface{}, error) {
		return e.directory.GetUser(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotLinked) {
			return domain.PlaceholderUnknownUser
		}
		return domain.PlaceholderUnavailable
	}
	return v.(*domain.User).Name
}
