package transport

import (
	"context"
	"fmt"
)

// Request describes a single fetch.
type Request struct {
	URL string
}

// Response carries the raw body of a successful fetch.
type Response struct {
	StatusCode int
	RequestID  string
	Data       []byte
}

// Requester performs a request and returns its body.
type Requester interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
}
