package httpclient

import (
	"context"
	"net/http"
	"time"
)

// Client performs plain GET requests over a transport it owns.
type Client struct {
	// httpClient executes the requests.
	httpClient *http.Client
	// transport is released on Close.
	transport *http.Transport
	// strictStatus turns non-2xx responses into *StatusError.
	strictStatus bool
}

// Option configures client behaviour.
type Option func(*Client)

// WithTimeout bounds every exchange, body included. Zero keeps the default of no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithStrictStatus controls whether non-2xx responses are failures.
func WithStrictStatus(strict bool) Option {
	return func(c *Client) {
		c.strictStatus = strict
	}
}

// New creates a client with its own transport cloned from http.DefaultTransport.
func New(opts ...Option) *Client {
	var transport *http.Transport
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = base.Clone()
	} else {
		transport = new(http.Transport)
	}

	c := &Client{
		httpClient:   &http.Client{Transport: transport},
		transport:    transport,
		strictStatus: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close releases idle connections held by the transport.
func (c *Client) Close() error {
	if c == nil || c.transport == nil {
		return nil
	}

	c.transport.CloseIdleConnections()

	return nil
}

// Get issues a GET request. On success the caller owns the response body.
// A returned error is always a *RequestError, *TransportError or *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &RequestError{URL: rawURL, Err: err}
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	if c.strictStatus && (response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices) {
		_ = response.Body.Close()

		return nil, &StatusError{URL: rawURL, Status: response.Status, StatusCode: response.StatusCode}
	}

	return response, nil
}
