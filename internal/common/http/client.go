// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	httpClient *http.Client
	maxRetries int
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithRetries builds a client that retries transient failures with
// linear backoff. Retries apply only to PostJSON; plain Do stays single-shot.
func NewClientWithRetries(timeout time.Duration, maxRetries int) *Client {
	c := NewClient(timeout)
	c.maxRetries = maxRetries
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// PostJSON posts a JSON payload, retrying on transport errors and 5xx
// responses. The response body is drained and closed.
func (c *Client) PostJSON(ctx context.Context, url string, payload []byte) error {
	var lastErr error
	attempts := c.maxRetries + 1

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		if resp.StatusCode < 500 {
			return lastErr
		}
	}

	return lastErr
}
