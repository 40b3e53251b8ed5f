package services

import (
	"context"
	"errors"
	"log"

	"library-borrowing/internal/adapters/persistence/models"
	"library-borrowing/internal/core/domain"
)

// Validator centralizes the existence and state checks shared by the
// request workflow and the loan ledger. The NotFound/Unavailable
// classification lives in the directory client; call sites only choose the
// policy (hard-fail vs soft-fail) through these helpers.
type Validator struct {
	directory DirectoryClient
}

// NewValidator creates a new validator
func NewValidator(directory DirectoryClient) *Validator {
	return &Validator{directory: directory}
}

// EnsureBookExists verifies the book in the catalog service. Both a missing
// book and an unreachable catalog abort the caller (hard-fail).
func (v *Validator) EnsureBookExists(ctx context.Context, bookID uint) error {
	_, err := v.directory.GetBook(ctx, bookID)
	return err
}

// EnsureMemberExists verifies the member in the member service. A missing
// member always aborts. With soft set, an unreachable member service is
// logged and the caller proceeds; existence will have been checked on the
// next authoritative read.
//
// The soft path reproduces long-standing issuance behavior. It is asymmetric
// with the book check on purpose; see DESIGN.md before changing it.
func (v *Validator) EnsureMemberExists(ctx context.Context, memberID uint, soft bool) error {
	_, err := v.directory.GetMember(ctx, memberID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrMemberNotFound):
		return err
	case soft && errors.Is(err, domain.ErrRemoteUnavailable):
		log.Printf("⚠️ Could not verify member %d via member service: %v (proceeding)", memberID, err)
		return nil
	default:
		return err
	}
}

// EnsurePending verifies a request is still open for a decision.
func EnsurePending(request *models.BookRequest) error {
	if !request.IsPending() {
		return domain.ErrRequestNotPending
	}
	return nil
}
