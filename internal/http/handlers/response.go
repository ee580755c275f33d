// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints: a structured error envelope, consistent JSON serialization, and
// helpers for common HTTP patterns. Every failure path returns an
// ErrorResponse with a stable code; fail() centralizes formatting and makes
// sure 5xx responses are logged with request context.
//
// Example error response:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "already_availed",
//	  "message": "Coupon is already availed"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/couponhub/go-coupon-backend/internal/http/middleware"
	"github.com/couponhub/go-coupon-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
//
// Fields:
//   - RequestID: optional correlation ID, echoed from X-Request-ID, used to
//     correlate server logs with client-side errors.
//   - Code: a stable, machine-readable string (see errors.go constants).
//   - Message: a human-readable description, safe for display to users.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"coupon not found"`
}

// DetailResponse is the envelope for success responses that carry only a
// human-readable confirmation, mirroring the shape clients already consume
// for errors.
type DetailResponse struct {
	Detail string `json:"detail" example:"Coupon added to availed coupons successfully"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	// Log 5xx (server-side) with request-scoped logger
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) call Fail to return consistent
// error envelopes without depending on unexported helpers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// detail writes a success response carrying only a confirmation message.
func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, DetailResponse{Detail: msg})
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// failService translates service-level sentinel errors into the standard
// error envelope. Unrecognized errors become a generic 500 with no internal
// detail leaked beyond the server-side log line written by fail().
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCouponNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "coupon not found")
	case errors.Is(err, services.ErrProfileNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user profile not found")
	case errors.Is(err, services.ErrAlreadyAvailed):
		fail(c, http.StatusBadRequest, ErrCodeAlreadyAvailed, "Coupon is already availed")
	case errors.Is(err, services.ErrNotAvailed):
		fail(c, http.StatusBadRequest, ErrCodeNotAvailed, "Coupon is not availed")
	case errors.Is(err, services.ErrExpiredCoupon):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "validity date is in the past")
	case errors.Is(err, services.ErrDuplicateEmail):
		fail(c, http.StatusBadRequest, ErrCodeDuplicateEmail, "email already registered")
	case errors.Is(err, services.ErrDuplicateUserID):
		fail(c, http.StatusBadRequest, ErrCodeConflict, "user id already taken")
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
	case errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message must carry content or an image")
	default:
		// The underlying error goes to the log only; clients get a generic body.
		middleware.LoggerFrom(c).Error().Err(err).Msg("unexpected service error")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
