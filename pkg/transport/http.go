package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "forum-miniapp-store/1.0"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// HTTPRequester implements the Requester interface over net/http.
type HTTPRequester struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPRequester creates a new HTTPRequester with the given timeout.
func NewHTTPRequester(timeout time.Duration, userAgent string) *HTTPRequester {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPRequester{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Make sure we conform to the interface
var _ Requester = (*HTTPRequester)(nil)

// Do issues a GET request for req.URL.
func (r *HTTPRequester) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", r.UserAgent)
	httpReq.Header.Set("X-Request-Id", requestID)

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		RequestID:  requestID,
		Data:       data,
	}, nil
}
