// Package apiclient is the single egress point for backend calls.
// It attaches the bearer token, paces requests and normalizes failures.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	// RequestIDHeader carries a per-call id for backend log correlation
	RequestIDHeader = "X-Request-ID"

	tracerName      = "github.com/swadbest/shopctl/internal/apiclient"
	maxErrorBodyLen = 64 << 10
)

// DefaultPublicPaths are never sent a bearer token. They may be invoked from a
// payment-provider redirect or by third parties.
var DefaultPublicPaths = []string{
	"/api/payments/verify",
	"/api/payments/webhook",
}

// TokenSource supplies the current access token at call time
type TokenSource interface {
	AccessToken() string
}

// Config holds gateway settings
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RateLimit   float64 // requests per second, 0 disables pacing
	Burst       int
	PublicPaths []string
	UserAgent   string
}

// Client sends JSON requests to the storefront backend
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	limiter        *rate.Limiter
	publicPaths    []string
	userAgent      string
	onUnauthorized func()
	logger         *slog.Logger
	tracer         trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUnauthorizedHandler sets the hook run when a token-bearing call gets a 401
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a gateway client. tokens may be nil for anonymous use.
func New(cfg Config, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	publicPaths := cfg.PublicPaths
	if publicPaths == nil {
		publicPaths = DefaultPublicPaths
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		tokens:      tokens,
		publicPaths: publicPaths,
		userAgent:   cfg.UserAgent,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Get issues a GET and decodes the response into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch issues a PATCH with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete issues a DELETE
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// Do sends r and decodes a 2xx JSON body into out (when out is non-nil).
// Any other outcome is returned as *Error.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, r.Method+" "+r.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.Path),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			apiErr := newNetworkError(r.Method, r.Path, requestID, err)
			span.SetStatus(codes.Error, apiErr.Message)
			return apiErr
		}
	}

	req, err := c.newHTTPRequest(ctx, r)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	req.Header.Set(RequestIDHeader, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	sentToken := c.authorize(req, r.Path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := newNetworkError(r.Method, r.Path, requestID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, apiErr.Message)
		c.logger.Debug("request failed", "method", r.Method, "path", r.Path, "request_id", requestID, "error", err)
		return apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("request completed",
		"method", r.Method,
		"path", r.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		apiErr := newStatusError(r.Method, r.Path, resp.StatusCode, body, requestID)
		span.SetStatus(codes.Error, apiErr.Message)
		if apiErr.Kind == KindAuth && sentToken && c.onUnauthorized != nil {
			c.logger.Warn("session rejected by backend, signing out", "path", r.Path)
			c.onUnauthorized()
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return &Error{
			Kind:      KindServer,
			Status:    resp.StatusCode,
			Message:   "unexpected response from the store",
			Method:    r.Method,
			Path:      r.Path,
			RequestID: requestID,
			Err:       err,
		}
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, r Request) (*http.Request, error) {
	target := c.BuildURL(r.Path)
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		raw, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// authorize applies the token policy and reports whether the session token was attached:
// an explicit Authorization header wins, public paths stay anonymous, otherwise the
// current token is attached when one is held.
func (c *Client) authorize(req *http.Request, path string) bool {
	if req.Header.Get("Authorization") != "" {
		return false
	}
	if c.IsPublicPath(path) {
		return false
	}
	if c.tokens == nil {
		return false
	}
	token := c.tokens.AccessToken()
	if token == "" {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return true
}

// IsPublicPath reports whether path is on the unauthenticated allow-list
func (c *Client) IsPublicPath(path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	for _, p := range c.publicPaths {
		p = strings.TrimRight(p, "/")
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// BuildURL joins the base URL and path
func (c *Client) BuildURL(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}
