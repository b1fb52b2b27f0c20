// Package cachesvc is a thin JSON client for the upstream context-cache
// service. It registers corpus text and returns a handle recording the
// upstream cache id and token count.
package cachesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds one request to the cache service.
const DefaultTimeout = 60 * time.Second

// maxErrorBodyBytes caps how much of an error response we read back.
const maxErrorBodyBytes = 4 * 1024

// Options tunes a cache registration.
type Options struct {
	// TTL is how long the upstream cache should live. Zero means the
	// service default.
	TTL time.Duration `json:"ttl,omitempty"`

	// SystemInstruction is an optional instruction stored alongside the
	// cached corpus.
	SystemInstruction string `json:"system_instruction,omitempty"`
}

// Handle identifies a registered cache.
type Handle struct {
	ID         string `json:"id"`
	TokenCount int    `json:"token_count"`
}

// UpstreamError reports a non-success response from the cache service.
type UpstreamError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("cache service returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to one cache service endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the service at baseURL. The API key may be empty
// for unauthenticated deployments.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

type createRequest struct {
	Text              string `json:"text"`
	Alias             string `json:"alias,omitempty"`
	TTLSeconds        int    `json:"ttl_seconds,omitempty"`
	SystemInstruction string `json:"system_instruction,omitempty"`
}

// Create registers text with the cache service and returns its handle.
func (c *Client) Create(ctx context.Context, text, alias string, opts Options) (*Handle, error) {
	payload := createRequest{
		Text:              text,
		Alias:             alias,
		TTLSeconds:        int(opts.TTL.Seconds()),
		SystemInstruction: opts.SystemInstruction,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/caches", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var handle Handle
	if err := json.NewDecoder(resp.Body).Decode(&handle); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &handle, nil
}

// Delete removes an upstream cache by id.
func (c *Client) Delete(ctx context.Context, cacheID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/v1/caches/"+cacheID, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return checkStatus(resp)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	return &UpstreamError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
}
