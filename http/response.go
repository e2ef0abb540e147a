package http

import (
	"encoding/json"
	"maps"
	"slices"
)

// Response is a read-only view over one Result.
type Response struct {
	result *Result
}

// NewResponse wraps result. A nil result yields an empty response.
func NewResponse(result *Result) *Response {
	if result == nil {
		result = &Result{Headers: Header{}, Meta: map[string]any{}}
	}
	return &Response{result: result}
}

// Body returns the raw body exactly as received.
func (r *Response) Body() []byte {
	return r.result.Body
}

// BodyString returns the raw body as a string.
func (r *Response) BodyString() string {
	return string(r.result.Body)
}

// Headers returns the final response's header block. It includes the
// Version and Status Code entries of the status line.
func (r *Response) Headers() Header {
	return maps.Clone(r.result.Headers)
}

// Header returns a single response header, matched case-insensitively.
func (r *Response) Header(name string) string {
	return r.result.Headers.Get(name)
}

// HeaderBlocks returns every header block of the exchange, including those
// of informational responses and redirect hops.
func (r *Response) HeaderBlocks() []Header {
	blocks := make([]Header, 0, len(r.result.Blocks))
	for _, b := range r.result.Blocks {
		blocks = append(blocks, maps.Clone(b))
	}
	return blocks
}

// Status returns the numeric status code, or 0 if none was reported.
func (r *Response) Status() int {
	return r.result.Status
}

// Timing returns the phase timings of the transaction.
func (r *Response) Timing() TimingInfo {
	return r.result.Timing
}

// Info returns the full transaction result: body, headers, status and the
// transport metadata under "info".
func (r *Response) Info() map[string]any {
	return map[string]any{
		"body":    slices.Clone(r.result.Body),
		"headers": maps.Clone(r.result.Headers),
		"status":  r.result.Status,
		"info":    maps.Clone(r.result.Meta),
	}
}

// JSON decodes the body as JSON. Objects decode to map[string]any and
// numbers to float64. On failure it returns a *JSONDecodeError carrying the
// status code and the start of the body.
func (r *Response) JSON() (any, error) {
	var v any
	if err := json.Unmarshal(r.result.Body, &v); err != nil {
		return nil, newJSONDecodeError(err, r.result.Status, r.result.Body)
	}
	return v, nil
}

// DecodeJSON unmarshals the body into v, reporting failures the same way
// JSON does.
//
// Example:
//
//	var users []User
//	if err := resp.DecodeJSON(&users); err != nil {
//	    log.Fatal(err)
//	}
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.result.Body, v); err != nil {
		return newJSONDecodeError(err, r.result.Status, r.result.Body)
	}
	return nil
}

// IsSuccess returns true if the response status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.result.Status >= 200 && r.result.Status < 300
}

// IsRedirect returns true if the response status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.result.Status >= 300 && r.result.Status < 400
}

// IsClientError returns true if the response status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.result.Status >= 400 && r.result.Status < 500
}

// IsServerError returns true if the response status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.result.Status >= 500 && r.result.Status < 600
}
