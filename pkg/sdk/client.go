package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 3 * time.Minute

// Citation is a bibliographic reference to resolve.
type Citation struct {
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	CanonicalAuthor string `json:"canonical_author,omitempty"`
	Note            string `json:"note,omitempty"`
}

// Result is the outcome of a resolution.
type Result struct {
	MatchType string         `json:"match_type"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Reasoning string         `json:"reasoning,omitempty"`
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Client is an HTTP client for the bookgraph service.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the request timeout. Default: 3 minutes, sized for
// resolutions that run the full retry ladder.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resolve resolves a single citation.
func (c *Client) Resolve(ctx context.Context, citation Citation) (Result, error) {
	var result Result
	if err := c.post(ctx, "/v1/resolve", citation, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}

// ResolveBatch resolves citations concurrently on the server side. Results
// come back in request order.
func (c *Client) ResolveBatch(ctx context.Context, citations []Citation) ([]Result, error) {
	req := struct {
		Citations []Citation `json:"citations"`
	}{Citations: citations}

	var resp struct {
		Results []Result `json:"results"`
	}
	if err := c.post(ctx, "/v1/resolve/batch", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return Health{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	// /health reports its payload on 200 and 503 alike.
	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("decode health response: %w", err)
	}
	return h, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.NewDecoder(resp.Body).Decode(&body) == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	if apiErr.Code == "" {
		apiErr.Code = "unknown"
	}
	return apiErr
}
