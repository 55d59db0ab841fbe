// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for sitegraph.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and the two presentation layers: GraphQL error entries and plain HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable kind, a numeric wire code and a
    client-safe message.
  - GraphQL: AppError implements graphql-go's ExtendedError, so resolvers can return it
    unchanged and the code lands in the "extensions" object of the error entry.
  - HTTP: HTTPStatus maps the same error onto a status code for REST routes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// # Wire Codes

// Numeric codes carried in the GraphQL "extensions.code" field.
//
// Clients match on these strings, including the non-standard 498/499 values.
const (
	CodeUnauthenticated = 499
	CodeInvalidToken    = 498
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeValidation      = 400
	CodeLocked          = 423
	CodeQueryTooLarge   = 413
	CodeRateLimited     = 429
	CodeInternal        = 500
)

// AppError is the canonical error type for the sitegraph API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., driver messages).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// WireCode is the numeric code published in GraphQL extensions.
	WireCode int `json:"-"`
	// HTTPStatus is the HTTP response status code for REST routes.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the input field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// Extensions implements gqlerrors.ExtendedError.
func (e *AppError) Extensions() map[string]interface{} {
	extensions := map[string]interface{}{
		"code": strconv.Itoa(e.WireCode),
		"kind": e.Code,
	}
	if len(e.Details) > 0 {
		extensions["details"] = e.Details
	}
	return extensions
}

// # Authentication & Authorization

// Unauthenticated creates a 499 [AppError] for a missing identity or tenant.
func Unauthenticated(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHENTICATED",
		Message:    msg,
		WireCode:   CodeUnauthenticated,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken creates a 498 [AppError] for a missing, invalid or expired credential.
func InvalidToken(msg string) *AppError {
	return &AppError{
		Code:       "INVALID_TOKEN",
		Message:    msg,
		WireCode:   CodeInvalidToken,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		WireCode:   CodeUnauthorized,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		WireCode:   CodeForbidden,
		HTTPStatus: http.StatusForbidden,
	}
}

// Locked creates a 423 [AppError] for a suspended account.
func Locked(reason string) *AppError {
	msg := "Account is locked"
	if reason != "" {
		msg = msg + ": " + reason
	}
	return &AppError{
		Code:       "LOCKED",
		Message:    msg,
		WireCode:   CodeLocked,
		HTTPStatus: http.StatusLocked,
	}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("User") // Returns "Not Found: User"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    "Not Found: " + resource,
		WireCode:   CodeNotFound,
		HTTPStatus: http.StatusNotFound,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       "CONFLICT",
		Message:    msg,
		WireCode:   CodeConflict,
		HTTPStatus: http.StatusConflict,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		WireCode:   CodeValidation,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// QueryTooLarge creates a 413 [AppError] for oversized GraphQL documents.
func QueryTooLarge(limit int) *AppError {
	return &AppError{
		Code:       "QUERY_TOO_LARGE",
		Message:    fmt.Sprintf("Query too large (limit %d characters)", limit),
		WireCode:   CodeQueryTooLarge,
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
}

// PersistedQueryNotFound tells an APQ client to resend the full document.
func PersistedQueryNotFound() *AppError {
	return &AppError{
		Code:       "PERSISTED_QUERY_NOT_FOUND",
		Message:    "PersistedQueryNotFound",
		WireCode:   CodeValidation,
		HTTPStatus: http.StatusOK,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		WireCode:   CodeRateLimited,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		WireCode:   CodeInternal,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Normalize returns err as an [*AppError], wrapping anything else as Internal.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}
	if ae := As(err); ae != nil {
		return ae
	}
	return Internal(err)
}
