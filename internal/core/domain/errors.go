package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
)

// RequestErrors
var (
	ErrRequestNotFound   = errors.New("book request not found")
	ErrRequestNotPending = errors.New("request is not in pending state")
)

// LoanErrors
var (
	ErrLoanNotFound        = errors.New("borrowing record not found")
	ErrLoanAlreadyReturned = errors.New("book already returned")
)

// Remote validation errors. The NotFound-class errors are hard validation
// failures; ErrRemoteUnavailable is a soft failure whose handling is decided
// at the call site.
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrProfileNotLinked  = errors.New("user has no linked member profile")
	ErrRemoteUnavailable = errors.New("remote service unavailable")
)
