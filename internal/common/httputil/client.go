// internal/common/httputil/client.go
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StatusError is returned when the remote side answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Client is the outbound HTTP client for upstream APIs. Deadlines come from
// the request context; the client itself has no timeout.
type Client struct {
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

func NewClient(maxRetries int) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		httpClient:  &http.Client{},
		maxRetries:  maxRetries,
		baseBackoff: 100 * time.Millisecond,
	}
}

// RequestFunc builds a fresh request for each attempt so bodies can be resent.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// DoWithRetry sends the request, retrying transport errors, 429 and 5xx
// answers with exponential backoff. A successful response is returned with
// its body open. Context expiry is returned as ctx.Err() so callers can
// detect timeouts with errors.Is.
func (c *Client) DoWithRetry(ctx context.Context, newReq RequestFunc) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		statusErr := readStatusError(resp)
		if !retryableStatus(resp.StatusCode) {
			return nil, statusErr
		}
		lastErr = statusErr
	}

	return nil, lastErr
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func readStatusError(resp *http.Response) *StatusError {
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
}
