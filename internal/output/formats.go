package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	http "github.com/curless/curless/http"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", name)
	}
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(req *http.Request) string
	FormatResponse(resp *http.Response) string
}

// RequestData represents the structured data of an HTTP request
type RequestData struct {
	Method    string            `json:"method" yaml:"method"`
	URL       string            `json:"url" yaml:"url"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      any               `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for an HTTP request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of an HTTP response. Blocks
// lists the status lines of informational and redirect responses.
type ResponseData struct {
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Status     string            `json:"status" yaml:"status"`
	Version    string            `json:"version,omitempty" yaml:"version,omitempty"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Blocks     []string          `json:"intermediate,omitempty" yaml:"intermediate,omitempty"`
	Body       any               `json:"body,omitempty" yaml:"body,omitempty"`
	Info       map[string]any    `json:"info,omitempty" yaml:"info,omitempty"`
	Timing     TimingData        `json:"timing" yaml:"timing"`
	Timestamp  string            `json:"timestamp" yaml:"timestamp"`
}

func newRequestData(req *http.Request) RequestData {
	return RequestData{
		Method:    req.Method(),
		URL:       req.URL(),
		Headers:   req.Headers(),
		Body:      req.Body(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func newResponseData(resp *http.Response, verbose bool) ResponseData {
	headers := resp.Headers()
	timing := resp.Timing()

	data := ResponseData{
		StatusCode: resp.Status(),
		Status:     statusLine(resp),
		Version:    headers[http.VersionKey],
		Headers:    fieldHeaders(headers),
		Body:       structuredBody(resp),
		Timing: TimingData{
			DNSLookup:       timing.DNSLookupMillis(),
			TCPConnection:   timing.TCPConnectMillis(),
			TLSHandshake:    timing.TLSHandshakeMillis(),
			TimeToFirstByte: timing.TimeToFirstByteMillis(),
			ContentTransfer: timing.ContentTransferMillis(),
			Total:           timing.TotalMillis(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	blocks := resp.HeaderBlocks()
	for i := 0; i+1 < len(blocks); i++ {
		data.Blocks = append(data.Blocks, strings.TrimSpace(blocks[i][http.VersionKey]+" "+blocks[i][http.StatusCodeKey]))
	}

	if verbose {
		data.Info, _ = resp.Info()["info"].(map[string]any)
	}

	return data
}

// structuredBody returns the decoded JSON body, or the raw text when the
// body is not JSON.
func structuredBody(resp *http.Response) any {
	if len(resp.Body()) == 0 {
		return nil
	}
	if v, err := resp.JSON(); err == nil {
		return v
	}
	return resp.BodyString()
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(req *http.Request) string {
	return f.marshal(newRequestData(req), "request")
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *http.Response) string {
	return f.marshal(newResponseData(resp, f.Verbose), "response")
}

func (f *JSONFormatter) marshal(v any, what string) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`, what, err)
	}

	return string(output)
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(req *http.Request) string {
	output, err := yaml.Marshal(newRequestData(req))
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal request: %s", err)
	}
	return string(output)
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *http.Response) string {
	output, err := yaml.Marshal(newResponseData(resp, f.Verbose))
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal response: %s", err)
	}
	return string(output)
}

// GetFormatter returns a formatter for the specified format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}

// FormatValues renders named string values, such as extracted JSONPath
// results, in the given format.
func FormatValues(format OutputFormat, title string, values map[string]string) string {
	switch format {
	case FormatJSON:
		output, err := json.MarshalIndent(map[string]any{title: values}, "", "  ")
		if err != nil {
			return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`, title, err)
		}
		return string(output)
	case FormatYAML:
		output, err := yaml.Marshal(map[string]any{title: values})
		if err != nil {
			return fmt.Sprintf("error: Failed to marshal %s: %s", title, err)
		}
		return string(output)
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "%s:\n", title)
	for _, name := range sortedNames(values) {
		fmt.Fprintf(&buf, "  %s = %s\n", name, values[name])
	}
	return buf.String()
}

func sortedNames(values map[string]string) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
