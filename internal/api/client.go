// Package api implements the HTTP client for the folioChat portfolio backend.
// All methods return *StatusError for non-2xx responses so callers can
// classify failures (quota, not-found, tier limit) without string matching.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"foliochat/internal/logging"

	"github.com/google/uuid"
)

// Config holds client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for the given server.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// Client talks to the portfolio backend.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	lastRequest time.Time
}

// NewClient creates a client with default configuration.
func NewClient(baseURL string) *Client {
	return NewClientWithConfig(DefaultConfig(baseURL))
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config Config) *Client {
	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// SetToken installs the bearer token used for authenticated endpoints.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token, empty if not logged in.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// throttle enforces minimum spacing between requests.
func (c *Client) throttle() {
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out. A fresh request ID is attached to every call for
// log correlation.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	// Auto-apply timeout if context has no deadline (centralized timeout handling)
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	c.throttle()

	requestID := uuid.NewString()
	rlog := logging.WithRequestID(logging.CategoryAPI, requestID)
	timer := logging.StartTimer(logging.CategoryAPI, method+" "+path)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rlog.Debug("%s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		rlog.Error("%s %s transport error: %v", method, path, err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	timer.StopWithThreshold(5 * time.Second)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := newStatusError(resp.StatusCode, respBody)
		rlog.Warn("%s %s -> %d: %s", method, path, statusErr.StatusCode, statusErr.Detail)
		return statusErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	rlog.Debug("%s %s -> %d", method, path, resp.StatusCode)
	return nil
}

// unmarshalResponse decodes a success body.
func unmarshalResponse(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
