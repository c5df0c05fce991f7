// Package handlers defines the error codes returned in ErrorResponse.Code.
//
// Codes are lowercase snake_case. Generic codes mirror HTTP status
// semantics; the domain codes below them are what clients branch on to show
// the right notice (slow down, locked out, re-enter code).
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeSlowDown             = "slow_down"
	ErrCodeLockedOut            = "locked_out"
	ErrCodeInvalidCode          = "invalid_code"
	ErrCodeInvalidGuest         = "invalid_guest"
	ErrCodeDirectoryUnavailable = "directory_unavailable"
	ErrCodeCreateFailed         = "create_failed"
)
