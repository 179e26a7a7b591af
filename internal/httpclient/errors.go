package httpclient

import "fmt"

// UpstreamError represents a non-success status returned by an upstream
// service, carrying the raw body for diagnostics.
type UpstreamError struct {
	StatusCode int
	Body       []byte
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d from %s", e.StatusCode, e.URL)
}
