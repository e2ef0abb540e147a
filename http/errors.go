package http

import "fmt"

// previewLimit bounds how much of a response body is echoed in a JSONDecodeError.
const previewLimit = 200

// ConfigurationError reports a request that cannot be executed as configured,
// such as a missing method or URL.
type ConfigurationError struct {
	Message string
}

// Error returns the error message
func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// UnsupportedContentTypeError reports a request body whose Content-Type header
// is missing or not one of the encodings this package knows how to produce.
type UnsupportedContentTypeError struct {
	ContentType string
}

// Error returns the error message
func (e *UnsupportedContentTypeError) Error() string {
	if e.ContentType == "" {
		return "Content-Type header must be set when sending a request body"
	}
	return fmt.Sprintf("unsupported Content-Type: %s", e.ContentType)
}

// EncodingError reports a body that could not be serialized for its content type.
type EncodingError struct {
	ContentType string
	Err         error
}

// Error returns the error message
func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s encode error: %v", e.ContentType, e.Err)
}

// Unwrap returns the underlying serialization error
func (e *EncodingError) Unwrap() error {
	return e.Err
}

// FileNotFoundError reports a multipart file field whose path does not exist.
type FileNotFoundError struct {
	Field string
	Path  string
}

// Error returns the error message
func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("multipart/form-data error: file not found for field '%s': %s", e.Field, e.Path)
}

// TransportError reports an exchange that could not complete. Message holds
// the transport's diagnostic text verbatim.
type TransportError struct {
	Message string
	Err     error
}

// Error returns the error message
func (e *TransportError) Error() string {
	return "transport error: " + e.Message
}

// Unwrap returns the underlying transport error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// JSONDecodeError reports a response body that is not valid JSON. Preview
// holds at most the first 200 bytes of the body.
type JSONDecodeError struct {
	Err     error
	Status  int
	Preview string
}

// Error returns the error message
func (e *JSONDecodeError) Error() string {
	return fmt.Sprintf("JSON decode error: %v Status: %d %s", e.Err, e.Status, e.Preview)
}

// Unwrap returns the underlying decode error
func (e *JSONDecodeError) Unwrap() error {
	return e.Err
}

func newJSONDecodeError(err error, status int, body []byte) *JSONDecodeError {
	if len(body) > previewLimit {
		body = body[:previewLimit]
	}
	return &JSONDecodeError{Err: err, Status: status, Preview: string(body)}
}
