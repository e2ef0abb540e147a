package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	http "github.com/curless/curless/http"
)

// Formatter is responsible for formatting HTTP requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool
	scheme  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  NewColorScheme(noColor),
	}
}

// FormatRequest formats an HTTP request for display
func (f *Formatter) FormatRequest(req *http.Request) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s\n", f.scheme.Method.Sprint(req.Method()), f.scheme.URL.Sprint(req.URL()))

	headers := req.Headers()
	if f.Verbose || len(headers) > 0 {
		buf.WriteString("  Headers:\n")
		f.writeHeaders(&buf, headers)
	}

	if body := req.Body(); body != nil {
		buf.WriteString("  Body: ")
		switch b := body.(type) {
		case string:
			buf.WriteString(formatJSONString(b))
		case []byte:
			buf.WriteString(formatJSONString(string(b)))
		default:
			jsonBody, err := json.Marshal(b)
			if err != nil {
				fmt.Fprintf(&buf, "%v", b)
			} else {
				buf.WriteString(formatJSONString(string(jsonBody)))
			}
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats an HTTP response for display
func (f *Formatter) FormatResponse(resp *http.Response) string {
	var buf strings.Builder

	timing := resp.Timing()
	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms)\n",
		f.scheme.Status(resp.Status()).Sprint(statusLine(resp)),
		timing.TotalMillis())

	if f.Verbose {
		buf.WriteString("  Timing:\n")
		fmt.Fprintf(&buf, "    DNS Lookup:      %dms\n", timing.DNSLookupMillis())
		fmt.Fprintf(&buf, "    TCP Connection:  %dms\n", timing.TCPConnectMillis())
		fmt.Fprintf(&buf, "    TLS Handshake:   %dms\n", timing.TLSHandshakeMillis())
		fmt.Fprintf(&buf, "    Time to First Byte: %dms\n", timing.TimeToFirstByteMillis())
		fmt.Fprintf(&buf, "    Content Transfer:  %dms\n", timing.ContentTransferMillis())
		fmt.Fprintf(&buf, "    Total:           %dms\n", timing.TotalMillis())

		// informational and redirect blocks precede the final one
		blocks := resp.HeaderBlocks()
		for i := 0; i+1 < len(blocks); i++ {
			fmt.Fprintf(&buf, "  %s\n", f.scheme.BlockTitle.Sprintf("Block %d: %s %s",
				i+1, blocks[i][http.VersionKey], blocks[i][http.StatusCodeKey]))
			f.writeHeaders(&buf, fieldHeaders(blocks[i]))
		}

		buf.WriteString("  Headers:\n")
		f.writeHeaders(&buf, fieldHeaders(resp.Headers()))
	}

	if body := resp.BodyString(); body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(body))
		buf.WriteString("\n")
	}

	return buf.String()
}

func (f *Formatter) writeHeaders(buf *strings.Builder, headers map[string]string) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(buf, "    %s: %s\n", f.scheme.HeaderKey.Sprint(name), f.scheme.HeaderValue.Sprint(headers[name]))
	}
}

// statusLine is the reason-bearing status, e.g. "200 OK".
func statusLine(resp *http.Response) string {
	if line := resp.Headers()[http.StatusCodeKey]; line != "" {
		return line
	}
	return strconv.Itoa(resp.Status())
}

// fieldHeaders drops the status-line entries from a header block.
func fieldHeaders(h http.Header) map[string]string {
	fields := make(map[string]string, len(h))
	for name, value := range h {
		if name == http.VersionKey || name == http.StatusCodeKey {
			continue
		}
		fields[name] = value
	}
	return fields
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
