package integrations

import (
	"errors"
	"net/http"
	"time"

	"github.com/matzehuels/banktags/pkg/buildinfo"
	"github.com/matzehuels/banktags/pkg/httputil"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when the remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with the standard request timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NewCache creates a file-based cache with the given TTL in the default cache directory.
// See [httputil.NewCache] for details on cache location and behavior.
func NewCache(ttl time.Duration) (*httputil.Cache, error) {
	return httputil.NewCache("", ttl)
}

// DefaultHeaders returns the headers sent with every request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent": buildinfo.UserAgent(),
		"Accept":     "application/json",
	}
}
