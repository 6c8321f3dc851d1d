// Package api is the HTTP client for the Feelio backend. Every operation is a
// single request; nothing is cached and nothing is retried, so callers always
// see the backend's current state.
package api

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/feelio/internal/logger"
)

const tracerName = "github.com/abhisek/feelio/internal/api"

// maxErrorBody bounds how much of an error reply is read.
const maxErrorBody = 64 << 10

// Client talks to the backend.
type Client struct {
	base   *url.URL
	http   *http.Client
	log    *logger.Logger
	tracer trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero means no client-side limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{},
		log:    logger.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// call describes one backend request.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	out    any
}

func (c *Client) do(ctx context.Context, cl call) error {
	ctx, span := c.tracer.Start(ctx, "feelio.api "+cl.op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", cl.method),
			attribute.String("http.route", cl.path),
		),
	)
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, cl)
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("backend call failed",
			"op", cl.op, "method", cl.method, "path", cl.path,
			"status", status, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return err
	}
	c.log.Debug("backend call",
		"op", cl.op, "method", cl.method, "path", cl.path,
		"status", status, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) roundTrip(ctx context.Context, cl call) (int, error) {
	u := c.base.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return 0, fmt.Errorf("%s: encode request: %w", cl.op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return 0, fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %w", cl.op, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.StatusCode, &StatusError{
			Op:      cl.op,
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}

	if cl.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return resp.StatusCode, fmt.Errorf("%s: %w: decode reply: %w", cl.op, ErrTransport, err)
	}
	return resp.StatusCode, nil
}

// readErrorMessage extracts {"error": "..."} or {"message": "..."}.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		return body.Message
	}
	return ""
}
