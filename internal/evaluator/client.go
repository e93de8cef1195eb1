// Package evaluator posts evaluation requests to a DMN evaluation service and
// decodes its response envelope.
package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/roach88/tckrunner/internal/dto"
)

// TransportError reports a request that produced no decodable response:
// connection failures, timeouts and malformed response bodies.
type TransportError struct {
	// Endpoint is the URL the request was posted to.
	Endpoint string

	// Status is the HTTP status code, or 0 when no response was received.
	Status int

	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client evaluates invocables through the service's HTTP endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client posting to endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Evaluate posts req and decodes the response envelope.
// The HTTP status is not interpreted: any response whose body decodes as an
// envelope is returned, so service errors reach the caller as ResultDTO.Errors.
// All other failures are returned as *TransportError.
func (c *Client) Evaluate(ctx context.Context, req *dto.EvaluateRequest) (*dto.ResultDTO, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("posting evaluation request", "invocable", req.Invocable, "inputs", len(req.Input))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var result dto.ResultDTO
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	c.logger.Debug("received evaluation response", "invocable", req.Invocable, "status", resp.StatusCode)
	return &result, nil
}
