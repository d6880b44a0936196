package solidtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for any response outside the 2xx range, including a
// 429 that is still rate limited after the transport gave up retrying.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	// Message is the API's "message" field when the body carries one.
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("solidtime: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("solidtime: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Body:       body,
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

// IsRateLimited reports whether err is a 429 that outlived the retries.
func IsRateLimited(err error) bool {
	return IsStatus(err, http.StatusTooManyRequests)
}

// IsUnauthorized reports whether the token was rejected.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
