package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/primarycell/assessment/internal/model"
)

// ErrNoToken is returned when the token endpoint answers without a token
var ErrNoToken = errors.New("csrf token endpoint returned no token")

// APIError is a non-2xx response. Problem is the decoded RFC 9457 body, or a
// synthesized one when the body was not a problem document.
type APIError struct {
	StatusCode int
	Problem    *model.ProblemDetails
	// body is kept for CSRF classification of non-problem responses
	body string
}

func (e *APIError) Error() string {
	if e.Problem != nil && e.Problem.Detail != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Problem.Title, e.Problem.Detail)
	}
	if e.Problem != nil && e.Problem.Title != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Problem.Title)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsCSRF reports whether the error is a 403 caused by CSRF validation
func (e *APIError) IsCSRF() bool {
	if e == nil || e.StatusCode != http.StatusForbidden {
		return false
	}
	if e.Problem.IsCSRF() {
		return true
	}
	return strings.Contains(strings.ToLower(e.body), "csrf")
}

// retryable reports whether the status is worth another attempt
func (e *APIError) retryable() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= http.StatusInternalServerError:
		return true
	}
	return false
}

// IsCSRFError reports whether err wraps a CSRF rejection
func IsCSRFError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsCSRF()
}

// StatusCode returns the HTTP status of an APIError in err's chain, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
