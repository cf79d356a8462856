// Package upstream describes failures of the external providers the service
// fronts, so handlers can relay a provider's status code unchanged.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredential is returned before any network call when a provider's
// API key is not configured.
var ErrMissingCredential = errors.New("provider credential not configured")

// Error is a non-success response from a provider.
type Error struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Body)
}

// StatusCode maps err to the HTTP status a handler should answer with:
// the provider's own status for *Error, 500 for everything else.
func StatusCode(err error) int {
	var upErr *Error
	if errors.As(err, &upErr) && upErr.StatusCode >= 400 {
		return upErr.StatusCode
	}
	return http.StatusInternalServerError
}
