package http

import (
	"maps"

	"github.com/rs/zerolog"
)

// Client stamps shared defaults onto fresh requests. It never reuses a
// Request, so it is safe for concurrent use by multiple goroutines.
type Client struct {
	transport       Transport
	timeout         int
	verifyTLS       bool
	followRedirects bool
	headers         map[string]string
	logger          zerolog.Logger
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// NewClient creates a new client with the given options.
//
// Example:
//
//	client := http.NewClient(
//	    http.WithTimeout(30),
//	    http.WithHeader("Authorization", "Bearer token"),
//	)
//
//	resp, err := client.Request("GET", "https://api.example.com/users").Send(ctx)
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		timeout:         DefaultTimeoutSeconds,
		verifyTLS:       true,
		followRedirects: true,
		headers:         make(map[string]string),
		logger:          zerolog.Nop(),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// WithTransport sets the transport used by every request of this client.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

// WithTimeout sets the default timeout in seconds.
func WithTimeout(seconds int) ClientOption {
	return func(c *Client) {
		c.timeout = seconds
	}
}

// WithVerifyTLS sets the default TLS verification flag.
func WithVerifyTLS(verify bool) ClientOption {
	return func(c *Client) {
		c.verifyTLS = verify
	}
}

// WithFollowRedirects sets the default redirect flag.
func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirects = follow
	}
}

// WithHeader adds a default header to all requests made by this client.
// Headers set on individual requests override these defaults.
func WithHeader(name, value string) ClientOption {
	return func(c *Client) {
		c.headers[name] = value
	}
}

// WithLogger sets the logger handed to every request.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Request starts a new request for method and url, seeded with the
// client's defaults.
func (c *Client) Request(method, url string) *Request {
	return NewRequest().
		SetMethod(method).
		SetURL(url).
		SetHeaders(maps.Clone(c.headers)).
		SetTimeout(c.timeout).
		SetVerifyTLS(c.verifyTLS).
		SetFollowRedirects(c.followRedirects).
		SetTransport(c.transport).
		SetLogger(c.logger)
}
