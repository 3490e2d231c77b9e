package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
var (
	// ErrCatalogNotFound is returned when a catalog document does not exist.
	ErrCatalogNotFound = errors.New("catalog document not found")

	// ErrRateLimitExceeded is returned when the catalog host rejects a request
	// for exceeding its rate limit.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrResponseTooLarge is returned when a document exceeds the configured
	// maximum size.
	ErrResponseTooLarge = errors.New("catalog response too large")

	// ErrInvalidGameID is returned when a per-game document is requested
	// without a game id.
	ErrInvalidGameID = errors.New("invalid game id")

	// ErrNoFetcher is returned by a Holder that was created without a Fetcher.
	ErrNoFetcher = errors.New("no catalog fetcher configured")
)

// APIError represents an unexpected HTTP response from the catalog host.
type APIError struct {
	StatusCode int
	Status     string
	URL        string
}

// Error returns the error message.
func (e *APIError) Error() string {
	return fmt.Sprintf("catalog request %s failed: %s (status %d)", e.URL, e.Status, e.StatusCode)
}

// NewAPIError creates a new APIError.
func NewAPIError(statusCode int, status, url string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Status:     status,
		URL:        url,
	}
}
