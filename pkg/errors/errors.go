package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common failure classes seen by the client.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrSessionExpired = errors.New("session expired")
	ErrPaymentFailed  = errors.New("payment failed")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrInternal       = errors.New("internal error")
)

// APIError represents a structured error returned by the storefront API,
// normalized so no raw transport error escapes to the caller.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NotFound creates an error for a missing resource.
func NotFound(resource string) *APIError {
	return &APIError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates an error for rejected input.
func InvalidInput(message string) *APIError {
	return &APIError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Validation creates an invalid-input error carrying per-field detail, so
// callers can render field-level messages (e.g. on a registration form).
func Validation(message string, fields map[string]string) *APIError {
	return &APIError{
		Code:    "VALIDATION_FAILED",
		Message: message,
		Status:  http.StatusBadRequest,
		Fields:  fields,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates an error for a rejected credential.
func Unauthorized(message string) *APIError {
	return &APIError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// SessionExpired creates an error for an expiry the token refresh path could
// not recover from. The caller is expected to treat the session as logged out.
func SessionExpired() *APIError {
	return &APIError{
		Code:    "SESSION_EXPIRED",
		Message: "your session has expired, please sign in again",
		Status:  http.StatusUnauthorized,
		Err:     ErrSessionExpired,
	}
}

// Forbidden creates an error for an authenticated but disallowed action.
func Forbidden(message string) *APIError {
	return &APIError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// PaymentFailed creates an error for a payment that could not be captured.
func PaymentFailed(message string) *APIError {
	return &APIError{
		Code:    "PAYMENT_FAILED",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrPaymentFailed,
	}
}

// Internal creates an error for an unexpected failure.
func Internal(err error) *APIError {
	return &APIError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// UserMessage returns the most specific human-readable message available for
// err, falling back to the given generic message. Stores use this when
// surfacing mutation failures through the notification channel.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// FieldErrors returns the per-field validation detail carried by err, or nil.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

// HTTPStatus returns the HTTP status code associated with the given error.
func HTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPaymentFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
