// Package http builds and executes a single HTTP request through a fluent
// builder and exposes the outcome as an inspectable, read-only response.
//
// This package provides:
//   - A chainable Request builder (method, URL, headers, query, body, files)
//   - Body encoding keyed on Content-Type (JSON, form, multipart)
//   - A pluggable Transport with a net/http implementation
//   - Parsing of multi-block raw header sections (1xx, redirect hops)
//   - Response accessors for status, headers, body, JSON and JSONPath
//
// Basic Usage:
//
//	resp, err := http.NewRequest().
//	    SetMethod("POST").
//	    SetURL("https://api.example.com/users").
//	    SetHeaders(map[string]string{"Content-Type": "application/json"}).
//	    SetBody(map[string]any{"name": "Jane"}).
//	    Send(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d\n", resp.Status())
//	data, err := resp.JSON()
//
// Multipart Upload Example:
//
//	resp, err := http.NewRequest().
//	    SetMethod("POST").
//	    SetURL("https://api.example.com/upload").
//	    SetHeaders(map[string]string{"Content-Type": "multipart/form-data"}).
//	    SetBody(map[string]string{"title": "report"}).
//	    SetFiles(map[string]string{"document": "/tmp/report.pdf"}).
//	    Send(ctx)
//
// Errors:
//
// Execute reports *ConfigurationError, *UnsupportedContentTypeError,
// *EncodingError and *FileNotFoundError before any network I/O, and
// *TransportError when the exchange fails. Response.JSON reports
// *JSONDecodeError. Use errors.As to tell them apart. Nothing is retried.
//
// Thread Safety:
//
// A Request is meant for exactly one transaction and must not be shared
// between goroutines. Client and Response are safe for concurrent use.
package http
