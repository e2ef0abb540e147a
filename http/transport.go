package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/textproto"
	"sort"
	"strings"
	"time"
)

// defaultMaxRedirects matches the net/http client policy.
const defaultMaxRedirects = 10

// TransportRequest is everything a Transport needs to perform one exchange.
// Header holds lines rendered as "Name: Value".
type TransportRequest struct {
	URL             string
	Method          string
	Header          []string
	Body            []byte
	VerifyTLS       bool
	Timeout         time.Duration
	FollowRedirects bool
}

// TransportResponse is the raw outcome of one exchange. Raw holds the header
// section (possibly several header blocks) followed by the body; HeaderSize
// is the length of the header section.
type TransportResponse struct {
	Raw        []byte
	HeaderSize int
	StatusCode int
	Meta       map[string]any
	Timing     TimingInfo
}

// Transport performs a single HTTP exchange. Implementations must release
// every resource they acquire before RoundTrip returns.
type Transport interface {
	RoundTrip(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// NetTransport is the default Transport, backed by net/http. Each call uses
// its own connection which is closed before RoundTrip returns.
type NetTransport struct {
	// TLSConfig is cloned for every call; InsecureSkipVerify follows the request.
	TLSConfig *tls.Config

	// MaxRedirects caps followed redirects. Zero means 10.
	MaxRedirects int
}

// DefaultTransport is used by requests that have no Transport of their own.
var DefaultTransport Transport = &NetTransport{}

// RoundTrip executes the exchange and reports every header block it saw
// (informational responses, redirect hops and the final response) as raw
// header text ahead of the body.
func (t *NetTransport) RoundTrip(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}

	for _, line := range req.Header {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if strings.EqualFold(name, "Host") {
			httpReq.Host = value
			continue
		}
		// names go on the wire as given
		httpReq.Header[name] = append(httpReq.Header[name], value)
	}

	transport := &http.Transport{
		TLSClientConfig:   t.tlsConfig(req.VerifyTLS),
		DisableKeepAlives: true,
	}
	defer transport.CloseIdleConnections()

	capture := &headerCapture{}
	client := &http.Client{
		Transport:     transport,
		Timeout:       req.Timeout,
		CheckRedirect: capture.checkRedirect(req.FollowRedirects, t.maxRedirects()),
	}

	timing := TimingInfo{
		StartTime: time.Now(),
	}

	var dnsStart, connectStart, tlsHandshakeStart time.Time
	var dnsDone, connectDone bool
	var primaryIP string
	// end of the last completed phase, for time to first byte
	lastPhaseEnd := timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(info httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			dnsEnd := time.Now()
			timing.DNSLookupTime = dnsEnd.Sub(dnsStart)
			dnsDone = true
			lastPhaseEnd = dnsEnd
		},
		ConnectStart: func(network, addr string) {
			if dnsDone || connectStart.IsZero() {
				connectStart = time.Now()
			}
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				connectEnd := time.Now()
				timing.TCPConnectTime = connectEnd.Sub(connectStart)
				connectDone = true
				lastPhaseEnd = connectEnd
			}
		},
		GotConn: func(info httptrace.GotConnInfo) {
			if host, _, err := net.SplitHostPort(info.Conn.RemoteAddr().String()); err == nil {
				primaryIP = host
			}
		},
		TLSHandshakeStart: func() {
			if connectDone {
				tlsHandshakeStart = time.Now()
			}
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil && !tlsHandshakeStart.IsZero() {
				tlsHandshakeEnd := time.Now()
				timing.TLSHandshakeTime = tlsHandshakeEnd.Sub(tlsHandshakeStart)
				lastPhaseEnd = tlsHandshakeEnd
			}
		},
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
		Got1xxResponse: func(code int, header textproto.MIMEHeader) error {
			capture.writeBlock(httpReq.Proto, fmt.Sprintf("%d %s", code, http.StatusText(code)), http.Header(header))
			return nil
		},
	}

	httpReq = httpReq.WithContext(httptrace.WithClientTrace(ctx, trace))

	httpResp, err := client.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			httpResp.Body.Close()
		}
		return nil, &TransportError{Message: err.Error(), Err: err}
	}
	defer httpResp.Body.Close()

	contentTransferStart := time.Now()
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Message: err.Error(), Err: err}
	}
	timing.ContentTransferTime = time.Since(contentTransferStart)
	timing.TotalTime = time.Since(timing.StartTime)

	capture.writeBlock(httpResp.Proto, httpResp.Status, httpResp.Header)
	headerSize := capture.buf.Len()
	raw := append(capture.buf.Bytes(), body...)

	meta := map[string]any{
		"url":                httpResp.Request.URL.String(),
		"http_code":          httpResp.StatusCode,
		"content_type":       httpResp.Header.Get("Content-Type"),
		"header_size":        headerSize,
		"size_download":      len(body),
		"redirect_count":     capture.redirects,
		"primary_ip":         primaryIP,
		"http_version":       httpResp.Proto,
		"namelookup_time":    timing.DNSLookupTime.Seconds(),
		"connect_time":       timing.TCPConnectTime.Seconds(),
		"appconnect_time":    timing.TLSHandshakeTime.Seconds(),
		"starttransfer_time": timing.TimeToFirstByte.Seconds(),
		"total_time":         timing.TotalTime.Seconds(),
	}

	return &TransportResponse{
		Raw:        raw,
		HeaderSize: headerSize,
		StatusCode: httpResp.StatusCode,
		Meta:       meta,
		Timing:     timing,
	}, nil
}

func (t *NetTransport) tlsConfig(verify bool) *tls.Config {
	var cfg *tls.Config
	if t.TLSConfig != nil {
		cfg = t.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}
	cfg.InsecureSkipVerify = !verify
	return cfg
}

func (t *NetTransport) maxRedirects() int {
	if t.MaxRedirects > 0 {
		return t.MaxRedirects
	}
	return defaultMaxRedirects
}

// headerCapture accumulates header blocks in the order they arrive.
type headerCapture struct {
	buf       bytes.Buffer
	redirects int
}

func (c *headerCapture) writeBlock(proto, status string, header http.Header) {
	c.buf.WriteString(proto)
	c.buf.WriteByte(' ')
	c.buf.WriteString(status)
	c.buf.WriteString("\r\n")

	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range header[name] {
			c.buf.WriteString(name)
			c.buf.WriteString(": ")
			c.buf.WriteString(value)
			c.buf.WriteString("\r\n")
		}
	}
	c.buf.WriteString("\r\n")
}

// checkRedirect records each followed hop. With follow disabled the redirect
// response itself becomes the final response.
func (c *headerCapture) checkRedirect(follow bool, max int) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !follow {
			return http.ErrUseLastResponse
		}
		if len(via) >= max {
			return fmt.Errorf("stopped after %d redirects", max)
		}
		if req.Response != nil {
			c.writeBlock(req.Response.Proto, req.Response.Status, req.Response.Header)
		}
		c.redirects++
		return nil
	}
}
