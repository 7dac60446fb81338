package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stock-research-agent/internal/logger"
)

// Client is a thin HTTP client shared by the external data integrations
// (Yahoo endpoints, LLM chat completions).
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
}

// ClientOption configures the API client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL sets the base URL prepended to all request URLs.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeader sets a default header applied to every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// NewClient creates a new API client with the given options.
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// ParseJSON decodes the response body into v.
func (r *Response) ParseJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, body any, headers map[string]string) (*Response, error) {
	if c.baseURL != "" {
		url = c.baseURL + url
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debug(ctx, "HTTP response",
		"method", method,
		"url", url,
		"status", httpResp.StatusCode,
		"duration", time.Since(start),
		"bodySize", len(respBody))

	if httpResp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, string(respBody))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}, nil
}

// GET performs a GET request.
func (c *Client) GET(ctx context.Context, url string, headers ...map[string]string) (*Response, error) {
	var h map[string]string
	if len(headers) > 0 {
		h = headers[0]
	}
	return c.do(ctx, http.MethodGet, url, nil, h)
}

// POST performs a POST request with a JSON-encoded body.
func (c *Client) POST(ctx context.Context, url string, body any, headers ...map[string]string) (*Response, error) {
	var h map[string]string
	if len(headers) > 0 {
		h = headers[0]
	}
	return c.do(ctx, http.MethodPost, url, body, h)
}

// GETWithRetry performs a GET with exponential backoff on failure.
func (c *Client) GETWithRetry(ctx context.Context, url string, maxAttempts int, headers ...map[string]string) (*Response, error) {
	var lastErr error
	wait := 1 * time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.GET(ctx, url, headers...)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		logger.Warn(ctx, "Request failed, retrying", "attempt", attempt, "error", err)

		if attempt < maxAttempts {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			wait *= 2
			if wait > 5*time.Second {
				wait = 5 * time.Second
			}
		}
	}
	return nil, fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}

// YahooHeaders returns the headers the public Yahoo Finance endpoints expect.
func YahooHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}
}
