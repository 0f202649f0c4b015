package device

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Defaults match the device firmware expectations: a hard 5s deadline per
// attempt, two retries with a flat 1s pause in between, no backoff.
const (
	DefaultTimeout    = 5 * time.Second
	DefaultRetries    = 2
	DefaultRetryDelay = time.Second
)

// HTTPDoer defines the http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client issues device HTTP requests with a per-attempt timeout and a bounded
// retry budget. A non-2xx response is a completed request, not a transport
// failure, so it is returned to the caller without consuming retries.
type Client struct {
	doer       HTTPDoer
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient builds a resilient device client.
func NewClient(doer HTTPDoer, timeout time.Duration, retries int, retryDelay time.Duration, logger *zap.Logger) *Client {
	if doer == nil {
		doer = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries < 0 {
		retries = DefaultRetries
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &Client{
		doer:       doer,
		timeout:    timeout,
		retries:    retries,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// Do executes the request, retrying transport failures. The last error is
// surfaced after the budget is exhausted, typed TIMEOUT_ERROR when the
// per-attempt deadline was hit and NETWORK_ERROR otherwise.
func (c *Client) Do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, nil, newAPIError(CodeNetworkError, "request cancelled", 0, ctx.Err())
			case <-time.After(c.retryDelay):
			}
			c.logger.Debug("retrying device request",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
			)
		}

		status, respBody, err := c.attempt(ctx, method, url, body)
		if err == nil {
			return status, respBody, nil
		}
		lastErr = err
	}

	return 0, nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		return 0, nil, newAPIError(CodeNetworkError, "build request", 0, err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return 0, nil, newAPIError(CodeTimeoutError, "request timed out", 0, err)
		}
		return 0, nil, newAPIError(CodeNetworkError, "request failed", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, newAPIError(CodeNetworkError, "read response", resp.StatusCode, err)
	}
	return resp.StatusCode, respBody, nil
}
