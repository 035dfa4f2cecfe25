package integrations

import (
	"errors"
	"net/http"
	"time"
)

// Repository indexes are larger than typical API responses.
const httpTimeout = 60 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist on the server.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrTooLarge is returned when a response body exceeds the client's limit.
	ErrTooLarge = errors.New("response too large")
)

// NewHTTPClient creates an HTTP client with a standard timeout for repository requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
