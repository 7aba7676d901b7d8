package apiclient

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors for the request pipeline
var (
	ErrRefreshFailed = goerr.New("token refresh failed")
	ErrNoAccessToken = goerr.New("no access token in refresh response")
)

// StatusError is a non-2xx HTTP response surfaced to the caller. The body is
// kept verbatim; error responses are never unwrapped.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// IsStatus reports whether err carries the given HTTP status code
func IsStatus(err error, code int) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == code
	}
	return false
}
