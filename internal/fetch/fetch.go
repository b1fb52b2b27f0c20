// Package fetch provides the bounded HTTP fetch capability the crawler and
// loaders consume: per-request timeout, custom User-Agent, redirect follow,
// and a response-size ceiling.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds one content fetch. Robots fetches use their own
// shorter timeout in the robots package.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the crawler to origin servers.
const DefaultUserAgent = "CorporaBot/1.0 (+https://github.com/contextkit/corpora)"

// maxResponseBodyBytes limits the size of fetched responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// Response is the outcome of one successful HTTP exchange. A non-2xx status
// is reported here, not as an error; transport failures are errors.
type Response struct {
	// Body is the raw response body, capped at maxResponseBodyBytes.
	Body []byte
	// StatusCode is the final HTTP status after redirects.
	StatusCode int
	// ContentType is the declared Content-Type header, unnormalized.
	ContentType string
	// FinalURL is the URL after redirect following.
	FinalURL string
}

// OK reports whether the response status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Client performs HTTP GET requests with a fixed timeout and User-Agent.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a fetch client. Zero timeout selects DefaultTimeout;
// empty userAgent selects DefaultUserAgent.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// UserAgent returns the configured User-Agent string.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get fetches a URL, following redirects. The returned error covers request
// construction and transport failures only; HTTP error statuses are returned
// in the Response for the caller to classify.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json,application/pdf,text/*;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseBodyBytes)

	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
	}, nil
}
