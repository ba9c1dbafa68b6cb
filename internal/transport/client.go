// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Configuration constants for the account API client.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 1 * 1024 * 1024

	// RequestIDHeader carries a fresh UUID per request for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	userAgent = "accountctl/0.1.0"
)

// ErrMalformedResponse indicates a 2xx response whose body was not an envelope.
var ErrMalformedResponse = errors.New("malformed response")

// =============================================================================
// REQUEST / RESPONSE
// =============================================================================

// Request is one call to the account API.
type Request struct {
	Method string
	// Path is relative to the base URL, e.g. "auth/login".
	Path  string
	Query url.Values
	Body  any
}

// Response is a decoded 2xx envelope.
type Response struct {
	HTTPStatus int
	// StatusCode is the envelope status, or HTTPStatus when the envelope omits it.
	StatusCode int
	Message    string
	Data       json.RawMessage
}

// OK reports whether the envelope signals success.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode == http.StatusOK
}

// DecodeData unmarshals the envelope's data field into v.
func (r *Response) DecodeData(v any) error {
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return fmt.Errorf("%w: empty data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Error is a structured failure returned by the account API.
type Error struct {
	HTTPStatus int
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("account api error (HTTP %d, status %d): %s", e.HTTPStatus, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("account api error (HTTP %d, status %d)", e.HTTPStatus, e.StatusCode)
}

// StatusOf returns the envelope status code carried by err, or 0 when err is
// not a structured API failure.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// MessageOf returns the server message carried by err, if any.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the account API.
type Client struct {
	base           *url.URL
	httpClient     *http.Client
	tokens         func() string
	onUnauthorized func()
	limiter        *rate.Limiter
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource sets the function consulted for the bearer token on every request.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.tokens = fn }
}

// WithUnauthorizedHandler sets the function invoked on any HTTP 401 response.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithRateLimit caps outgoing requests. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		base:       base,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tokens:     func() string { return "" },
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Do sends req and decodes the envelope.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("account api request failed",
			"method", httpReq.Method, "path", httpReq.URL.Path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", httpReq.Method, req.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("account api response",
		"method", httpReq.Method, "path", httpReq.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedResponse, MaxResponseSize)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{HTTPStatus: resp.StatusCode, StatusCode: resp.StatusCode}
		if decodeErr == nil {
			if env.StatusCode != 0 {
				apiErr.StatusCode = env.StatusCode
			}
			apiErr.Message = env.Message
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	out := &Response{
		HTTPStatus: resp.StatusCode,
		StatusCode: env.StatusCode,
		Message:    env.Message,
		Data:       env.Data,
	}
	if out.StatusCode == 0 {
		out.StatusCode = resp.StatusCode
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}
