package remote

import (
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"
)

// ErrAuthentication means the server rejected the credential. The reconciler
// translates it into guest-store semantics instead of crashing the caller.
var ErrAuthentication = errors.New("authentication rejected by server")

// APIError carries a non-2xx response the protocol does not tolerate.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.StatusCode)
}

// IsTransient reports whether err is worth retrying later: connectivity
// failures, an open circuit breaker, or a server-side 5xx.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	// Anything that never produced a status line is a transport failure.
	return !errors.Is(err, ErrAuthentication)
}

// IsValidation reports whether the server rejected the request itself.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
