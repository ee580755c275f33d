// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants are mapped to HTTP responses via the fail() helper
// in this package. They give clients a stable, machine-readable error
// taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - Generic codes (bad_request, unauthorized, conflict) mirror common HTTP
//     status semantics.
//   - Domain-specific codes (already_availed, duplicate_email) are reserved
//     for business-rule violations that a status code alone cannot convey.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeAlreadyAvailed   = "already_availed"
	ErrCodeNotAvailed       = "not_availed"
	ErrCodeDuplicateEmail   = "duplicate_email"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
