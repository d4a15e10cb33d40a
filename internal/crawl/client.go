package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
)

// maxBodyBytes caps how much of any response body is read.
const maxBodyBytes = 2 << 20

// Client is the outbound HTTP client shared by a job's requests. A
// rate limiter enforces the fixed inter-request delay and transient
// failures are retried with backoff before surfacing.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	retry     seekerrors.RetryConfig
}

// NewClient creates a client whose requests are spaced at least delay
// apart.
func NewClient(delay time.Duration, userAgent string) *Client {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: userAgent,
		retry: seekerrors.RetryConfig{
			MaxRetries:   2,
			InitialDelay: 300 * time.Millisecond,
			MaxDelay:     3 * time.Second,
			Multiplier:   2.0,
			Jitter:       true,
		},
	}
}

// GetJSON fetches url and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return seekerrors.AdapterFetch(fmt.Sprintf("malformed response from %s", url), err)
	}
	return nil
}

// GetText fetches url and returns the raw response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.get(ctx, url, "")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url, accept string) ([]byte, error) {
	return seekerrors.RetryWithResult(ctx, c.retry, func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, seekerrors.AdapterFetch(fmt.Sprintf("bad url %s", url), err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, seekerrors.AdapterFetch(fmt.Sprintf("request to %s failed", url), err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, seekerrors.AdapterFetch(
				fmt.Sprintf("%s returned status %d", url, resp.StatusCode), nil)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, seekerrors.AdapterFetch(fmt.Sprintf("reading %s failed", url), err)
		}
		return body, nil
	})
}
