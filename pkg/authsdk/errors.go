package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in ErrorResponse.Code.
const (
	ErrorCodeValidation    = "validation_error"
	ErrorCodeUnauthorized  = "unauthorized"
	ErrorCodeForbidden     = "forbidden"
	ErrorCodeNotFound      = "not_found"
	ErrorCodeConflict      = "conflict"
	ErrorCodeRateLimited   = "rate_limit_exceeded"
	ErrorCodeConfiguration = "configuration_error"
	ErrorCodeUnavailable   = "unavailable"
	ErrorCodeInternal      = "internal_error"
	ErrorCodeInvalidBody   = "invalid_request"
)

// APIError is a non-2xx response decoded into a Go error.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	Code    string
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// ErrNoRefreshToken is returned when a session needs to refresh but never
// received a refresh token cookie.
var ErrNoRefreshToken = errors.New("authsdk: access token expired and no refresh token available")

// IsCode reports whether err is an APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// StatusCode returns the HTTP status of an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// parseErrorResponse turns an error body into an *APIError. Bodies that are
// not an ErrorResponse fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       errResp.Code,
			Message:    errResp.Message,
			Details:    errResp.Details,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeInternal,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
