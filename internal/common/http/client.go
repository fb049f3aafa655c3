package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 10 << 20

// Relay rewrites an outbound target URL, e.g. through a CORS relay.
type Relay interface {
	Rewrite(target string) string
}

// DirectRelay sends requests to the target unchanged.
type DirectRelay struct{}

func (DirectRelay) Rewrite(target string) string { return target }

// PrefixRelay prepends Prefix to the query-escaped target, the convention
// used by corsproxy-style relays.
type PrefixRelay struct {
	Prefix string
}

func (r PrefixRelay) Rewrite(target string) string {
	return r.Prefix + url.QueryEscape(target)
}

// NewRelay returns a PrefixRelay for a non-empty prefix and DirectRelay otherwise.
func NewRelay(prefix string) Relay {
	if strings.TrimSpace(prefix) == "" {
		return DirectRelay{}
	}
	return PrefixRelay{Prefix: prefix}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) ContentType() string {
	return strings.ToLower(r.Header.Get("Content-Type"))
}

type Client struct {
	httpClient *http.Client
	relay      Relay
	userAgent  string
	timeout    time.Duration
	tracer     trace.Tracer
}

type Option func(*Client)

func WithRelay(r Relay) Option {
	return func(c *Client) {
		if r != nil {
			c.relay = r
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient replaces the underlying client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient builds a client whose calls are each bounded by timeout on top
// of the caller's context. A zero timeout leaves only the context deadline.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		relay:      DirectRelay{},
		timeout:    timeout,
		tracer:     otel.Tracer("consumer-portal/http"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout returns a copy sharing the transport and relay with a
// different per-call timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	cp := *c
	cp.timeout = timeout
	return &cp
}

func (c *Client) Relay() Relay {
	return c.relay
}

// Get fetches target through the relay and reads the whole body. Non-2xx
// statuses are returned as a Response, not an error.
func (c *Client) Get(ctx context.Context, target string, headers map[string]string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "http.get", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	if u, err := url.Parse(target); err == nil {
		span.SetAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("server.address", u.Host),
			attribute.String("url.path", u.Path),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.relay.Rewrite(target), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("get %s: %w", req.URL.Host, ctxErr)
		}
		return nil, fmt.Errorf("get %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, fmt.Errorf("read body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, resp.Status)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
