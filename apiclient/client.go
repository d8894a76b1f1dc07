// Package apiclient is the console's only door to the REST API. Every request reads the current session token
// from an injected TokenSource and, when one is present, sends it as a bearer credential.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"retailadmin/logger"
)

// TokenSource yields the bearer token for outgoing requests, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Client issues single best-effort JSON requests against the API base URL.
// There is no retry, no caching and no client-side timeout beyond ctx.
type Client struct {
	baseURL    string
	uploadPath string
	httpClient *http.Client
	tokens     TokenSource
	log        *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithUploadPath overrides the upload endpoint path (default "/upload").
func WithUploadPath(p string) Option {
	return func(c *Client) { c.uploadPath = p }
}

// New creates a client for baseURL (e.g. "http://localhost:5000/api") reading tokens from tokens.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		uploadPath: "/upload",
		httpClient: &http.Client{},
		tokens:     tokens,
		log:        logger.Get(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues GET path?params and decodes the body into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, params, nil, out)
}

// Post issues POST path with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues PUT path with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues DELETE path.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, params url.Values, body, out interface{}) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &HTTPError{Message: fmt.Sprintf("encode request body: %v", err), Err: err}
		}
		reader = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, params, reader, contentType, out)
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, body io.Reader, contentType string, out interface{}) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &HTTPError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	if token, ok := c.tokens.Token(); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("API request failed", zap.Error(err))
		return &HTTPError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	log.Debug("API request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	if err != nil {
		return &HTTPError{Status: resp.StatusCode, Message: fmt.Sprintf("read response body: %v", err), Err: err}
	}

	if resp.StatusCode >= 400 {
		return newHTTPError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return &HTTPError{Status: resp.StatusCode, Message: fmt.Sprintf("invalid response body: %v", err), Err: err}
	}
	return nil
}
