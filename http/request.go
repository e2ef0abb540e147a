package http

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"
)

// DefaultTimeoutSeconds is the timeout applied when none is set.
const DefaultTimeoutSeconds = 10

// Request accumulates the configuration of a single HTTP transaction through
// chained setters. Setters never validate; Execute does. A Request performs
// one logical request and is not safe for concurrent use.
type Request struct {
	method          string
	url             string
	headers         map[string]string
	query           map[string]string
	body            any
	files           map[string]string
	timeout         int
	verifyTLS       bool
	followRedirects bool
	transport       Transport
	logger          zerolog.Logger
}

// NewRequest creates a request with the default timeout, TLS verification
// and redirect following enabled.
//
// Example:
//
//	resp, err := http.NewRequest().
//	    SetMethod("GET").
//	    SetURL("https://api.example.com/users").
//	    SetQuery(map[string]string{"limit": "10"}).
//	    Send(ctx)
func NewRequest() *Request {
	return &Request{
		headers:         make(map[string]string),
		query:           make(map[string]string),
		files:           make(map[string]string),
		timeout:         DefaultTimeoutSeconds,
		verifyTLS:       true,
		followRedirects: true,
		logger:          zerolog.Nop(),
	}
}

// SetMethod sets the HTTP method. It is upper-cased; unrecognized methods
// are sent as GET.
func (r *Request) SetMethod(method string) *Request {
	r.method = strings.ToUpper(strings.TrimSpace(method))
	return r
}

// SetURL sets the absolute target URL.
func (r *Request) SetURL(url string) *Request {
	r.url = url
	return r
}

// SetHeaders replaces the request headers. Names are sent as given.
func (r *Request) SetHeaders(headers map[string]string) *Request {
	r.headers = maps.Clone(headers)
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	return r
}

// WithHeader adds a single header to the request.
func (r *Request) WithHeader(name, value string) *Request {
	r.headers[name] = value
	return r
}

// SetQuery replaces the query parameters appended to the URL.
func (r *Request) SetQuery(query map[string]string) *Request {
	r.query = maps.Clone(query)
	if r.query == nil {
		r.query = make(map[string]string)
	}
	return r
}

// WithQueryParam adds a single query parameter.
func (r *Request) WithQueryParam(name, value string) *Request {
	r.query[name] = value
	return r
}

// SetBody sets the request payload. It is encoded according to the
// Content-Type header when the request executes.
func (r *Request) SetBody(body any) *Request {
	r.body = body
	return r
}

// SetFiles replaces the multipart file attachments, keyed by form field.
func (r *Request) SetFiles(files map[string]string) *Request {
	r.files = maps.Clone(files)
	if r.files == nil {
		r.files = make(map[string]string)
	}
	return r
}

// WithFile attaches a single file under field.
func (r *Request) WithFile(field, path string) *Request {
	r.files[field] = path
	return r
}

// SetTimeout sets the wall-clock bound for the whole round trip, in seconds.
// Non-positive values restore the default.
func (r *Request) SetTimeout(seconds int) *Request {
	r.timeout = seconds
	return r
}

// SetVerifyTLS enables or disables TLS certificate verification.
func (r *Request) SetVerifyTLS(verify bool) *Request {
	r.verifyTLS = verify
	return r
}

// SetFollowRedirects controls whether redirects are followed.
func (r *Request) SetFollowRedirects(follow bool) *Request {
	r.followRedirects = follow
	return r
}

// SetTransport replaces the transport used to perform the exchange.
func (r *Request) SetTransport(t Transport) *Request {
	r.transport = t
	return r
}

// SetLogger sets the logger used for debug events.
func (r *Request) SetLogger(logger zerolog.Logger) *Request {
	r.logger = logger
	return r
}

// Method returns the method that will be sent.
func (r *Request) Method() string {
	return normalizeMethod(r.method)
}

// URL returns the target URL including the encoded query string.
func (r *Request) URL() string {
	return r.targetURL()
}

// Headers returns a copy of the request headers.
func (r *Request) Headers() map[string]string {
	return maps.Clone(r.headers)
}

// Body returns the unencoded request payload.
func (r *Request) Body() any {
	return r.body
}

// Execute performs the transaction. Configuration, content type and file
// errors are reported before any network I/O; transport failures are
// returned as *TransportError. Nothing is retried.
func (r *Request) Execute(ctx context.Context) (*Result, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	target := r.targetURL()
	contentType := r.contentType()

	payload, err := encodeBody(r.body, r.files, contentType)
	if err != nil {
		return nil, err
	}

	method := normalizeMethod(r.method)
	treq := &TransportRequest{
		URL:             target,
		Method:          method,
		Header:          r.headerLines(payload),
		VerifyTLS:       r.verifyTLS,
		Timeout:         r.timeoutDuration(),
		FollowRedirects: r.followRedirects,
	}
	if payload != nil && carriesBody(method) {
		treq.Body = payload.data
	}

	r.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("body_bytes", len(treq.Body)).
		Dur("timeout", treq.Timeout).
		Msg("dispatching request")

	tresp, err := r.transportOrDefault().RoundTrip(ctx, treq)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, &TransportError{Message: err.Error(), Err: err}
	}
	if tresp == nil {
		return nil, &TransportError{Message: "transport returned no response"}
	}

	result := newResult(tresp)

	r.logger.Debug().
		Int("status", result.Status).
		Int("header_blocks", len(result.Blocks)).
		Int("body_bytes", len(result.Body)).
		Dur("total", result.Timing.TotalTime).
		Msg("transaction complete")

	return result, nil
}

// Send executes the request and wraps the result in a Response.
func (r *Request) Send(ctx context.Context) (*Response, error) {
	result, err := r.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return NewResponse(result), nil
}

func (r *Request) validate() error {
	if r.method == "" || r.url == "" {
		return &ConfigurationError{Message: "URL and HTTP method must be set before calling Execute"}
	}
	for name, value := range r.headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return &ConfigurationError{Message: "invalid header name: " + name}
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return &ConfigurationError{Message: "invalid value for header " + name}
		}
	}
	return nil
}

func (r *Request) targetURL() string {
	if len(r.query) == 0 {
		return r.url
	}
	values := make(url.Values, len(r.query))
	for k, v := range r.query {
		values.Set(k, v)
	}
	sep := "?"
	if strings.Contains(r.url, "?") {
		sep = "&"
	}
	return r.url + sep + values.Encode()
}

// contentType looks up Content-Type by exact name first, then
// case-insensitively.
func (r *Request) contentType() string {
	if v, ok := r.headers["Content-Type"]; ok {
		return v
	}
	for name, v := range r.headers {
		if strings.EqualFold(name, "Content-Type") {
			return v
		}
	}
	return ""
}

// headerLines renders the headers as "Name: Value" lines in name order. A
// payload that carries its own content type (multipart boundary) replaces
// the caller's Content-Type value.
func (r *Request) headerLines(payload *encodedBody) []string {
	lines := make([]string, 0, len(r.headers))
	for _, name := range sortedKeys(r.headers) {
		value := r.headers[name]
		if payload != nil && payload.contentType != "" && strings.EqualFold(name, "Content-Type") {
			value = payload.contentType
		}
		lines = append(lines, name+": "+value)
	}
	return lines
}

func (r *Request) timeoutDuration() time.Duration {
	if r.timeout <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(r.timeout) * time.Second
}

func (r *Request) transportOrDefault() Transport {
	if r.transport != nil {
		return r.transport
	}
	return DefaultTransport
}

func normalizeMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead:
		return method
	default:
		return http.MethodGet
	}
}

// carriesBody reports whether the encoded payload is attached for method.
// GET and HEAD never send one.
func carriesBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
