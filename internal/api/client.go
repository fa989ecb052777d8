package api

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

	"github.com/geocoder89/fitspark/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 8 << 20

// Observer receives one observation per backend call.
type Observer interface {
	ObserveUpstream(method, route string, status int, err error, elapsed time.Duration)
}

// Client is the single choke point for backend API calls. It attaches the
// bearer credential, encodes and decodes JSON, and maps failures onto the
// error types in this package. It never retries and sets no timeout of its
// own; the caller's context bounds every call.
type Client struct {
	base    *url.URL
	http    *http.Client
	metrics Observer
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.metrics = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		base: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request describes one call. Token may be empty for anonymous calls.
type Request struct {
	Route Route
	ID    string
	Query url.Values
	Body  any
	Token string
}

// Do sends req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()
	status, err := c.do(ctx, req, out)

	if c.metrics != nil {
		c.metrics.ObserveUpstream(req.Route.Method, req.Route.Path, status, err, time.Since(start))
	}
	c.logger.DebugContext(ctx, "api_request",
		"method", req.Route.Method,
		"route", req.Route.Path,
		"status", status,
		"latency_ms", time.Since(start).Milliseconds(),
		"error", errString(err),
	)
	return err
}

func (c *Client) do(ctx context.Context, req Request, out any) (int, error) {
	target, err := c.resolve(req)
	if err != nil {
		return 0, err
	}

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return 0, fmt.Errorf("encode %s body: %w", req.Route, err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Route.Method, target, body)
	if err != nil {
		return 0, &TransportError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if id := observability.RequestIDFrom(ctx); id != "" {
		httpReq.Header.Set("X-Request-Id", id)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, &TransportError{Op: req.Route.String(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &TransportError{Op: "read response", Err: err}
	}

	if err := statusError(resp.StatusCode, raw); err != nil {
		return resp.StatusCode, err
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, &TransportError{Op: "decode response", Err: err}
	}
	return resp.StatusCode, nil
}

func (c *Client) resolve(req Request) (string, error) {
	if strings.Contains(req.Route.Path, "{id}") {
		switch strings.TrimSpace(req.ID) {
		case "", ".", "..":
			return "", ErrNotFound
		}
	}

	ref, err := url.Parse(req.Route.Expand(req.ID))
	if err != nil {
		return "", &TransportError{Op: "build url", Err: err}
	}

	u := c.base.ResolveReference(ref)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String(), nil
}

func statusError(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 400 && status < 500:
		return &ValidationError{Status: status, Message: bodyMessage(body)}
	default:
		return &UpstreamError{Status: status, Message: bodyMessage(body)}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsTerminal reports whether err ends the current navigation: the credential
// is gone and only a fresh login helps.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
