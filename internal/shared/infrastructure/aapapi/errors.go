package aapapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned when a client is constructed without the
// settings it needs to reach its API surface.
var ErrNotConfigured = errors.New("endpoint not configured")

// HTTPError represents a non-2xx response from an AAP API.
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: %s", e.Status, e.URL, e.Body)
	}
	return fmt.Sprintf("%s %s", e.Status, e.URL)
}

// IsNotFound reports whether err is an HTTP 404 from an AAP API.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
