package bankclient

import (
	"fmt"
	"time"
)

// RequestError is returned on any non-2xx response from the banking API.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("banking api error: %s %s -> %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// TimeoutError is returned when the round trip exceeded the configured
// client timeout.
type TimeoutError struct {
	Method  string
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("banking api timeout after %s: %s %s", e.Timeout, e.Method, e.URL)
}
