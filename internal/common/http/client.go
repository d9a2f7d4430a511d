package http

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"hubspot-connector/internal/circuitbreaker"
)

// DefaultMaxBodySize bounds how much of an upstream body is buffered
const DefaultMaxBodySize int64 = 10 << 20

// ErrBodyTooLarge is returned when a response body exceeds the buffer limit
var ErrBodyTooLarge = stderrors.New("response body too large")

// ClientConfig holds HTTP client configuration
type ClientConfig struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	Transport           http.RoundTripper
}

// DefaultClientConfig returns default HTTP client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:             30 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// ClientOption is a function that modifies ClientConfig
type ClientOption func(*ClientConfig)

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithTransport sets a custom transport
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(c *ClientConfig) {
		c.Transport = transport
	}
}

// NewTransport builds the pooled transport used when no custom one is given
func NewTransport(cfg ClientConfig) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
}

// NewHTTPClient creates a new HTTP client with the given options
func NewHTTPClient(opts ...ClientOption) *http.Client {
	cfg := DefaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewTransport(cfg)
	}

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}

// Response is a fully buffered HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the status is exactly 200
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Client sends requests and buffers their bodies. When a circuit breaker is
// set, transport failures are counted by it; HTTP statuses never are.
type Client struct {
	httpClient  *http.Client
	breaker     *circuitbreaker.GoBreakerAdapter
	maxBodySize int64
}

// NewClient wraps httpClient. breaker may be nil.
func NewClient(httpClient *http.Client, breaker *circuitbreaker.GoBreakerAdapter) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{
		httpClient:  httpClient,
		breaker:     breaker,
		maxBodySize: DefaultMaxBodySize,
	}
}

// Do sends req and returns the buffered response. A non-2xx status is not an error.
func (c *Client) Do(ctx context.Context, req *http.Request) (*Response, error) {
	start := time.Now()
	req = req.WithContext(ctx)

	var resp *http.Response
	send := func() error {
		var err error
		resp, err = c.httpClient.Do(req)
		return err
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, send)
	} else {
		err = send()
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%s %s: %w (limit %d bytes)", req.Method, req.URL.Redacted(), ErrBodyTooLarge, c.maxBodySize)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Duration:   time.Since(start),
	}, nil
}
