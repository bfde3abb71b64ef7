package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/steve-ongera/amazon/pkg/errors"
)

// ParseResponseError reads the body of a non-2xx response from the storefront
// API and translates it into an APIError. The backend emits three body shapes:
//
//	{"error": "Insufficient stock"}             action endpoints
//	{"detail": "Not found."}                    generic DRF errors
//	{"email": ["This field is required."]}      serializer field errors
//
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("api returned status %d (failed to read body: %w)", resp.StatusCode, err)
	}

	message, fields := decodeErrorBody(bodyBytes)
	return mapStatusError(resp.StatusCode, message, fields, bodyBytes)
}

func decodeErrorBody(body []byte) (message string, fields map[string]string) {
	var generic map[string]json.RawMessage
	if json.Unmarshal(body, &generic) != nil {
		return "", nil
	}

	for _, key := range []string{"error", "detail", "message"} {
		if raw, ok := generic[key]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s, nil
			}
		}
	}

	// Serializer errors: every value is a list of messages keyed by field.
	fields = make(map[string]string, len(generic))
	for key, raw := range generic {
		var msgs []string
		if json.Unmarshal(raw, &msgs) == nil && len(msgs) > 0 {
			fields[key] = strings.Join(msgs, "; ")
		}
	}
	if len(fields) == 0 {
		return "", nil
	}
	return "validation failed", fields
}

func mapStatusError(status int, message string, fields map[string]string, body []byte) error {
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusNotFound:
		if message != "" {
			return &apperrors.APIError{
				Code:    "NOT_FOUND",
				Message: message,
				Status:  http.StatusNotFound,
				Err:     apperrors.ErrNotFound,
			}
		}
		return apperrors.NotFound("resource")
	case status == http.StatusBadRequest:
		if len(fields) > 0 {
			return apperrors.Validation(message, fields)
		}
		return apperrors.InvalidInput(message)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(message)
	case status == http.StatusConflict:
		return &apperrors.APIError{
			Code:    "CONFLICT",
			Message: message,
			Status:  http.StatusConflict,
			Err:     apperrors.ErrConflict,
		}
	case status == http.StatusUnprocessableEntity:
		return apperrors.PaymentFailed(message)
	case status == http.StatusServiceUnavailable:
		return &apperrors.APIError{
			Code:    "SERVICE_UNAVAILABLE",
			Message: message,
			Status:  http.StatusServiceUnavailable,
			Err:     apperrors.ErrServiceUnavail,
		}
	case status >= 500:
		return fmt.Errorf("api server error (%d): %s", status, message)
	default:
		return &apperrors.APIError{
			Code:    "API_ERROR",
			Message: message,
			Status:  status,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors are never retried by the transport.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
