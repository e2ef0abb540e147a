package http

import "time"

// TimingInfo stores detailed timing information for one transaction.
// All durations represent the time spent in each phase of the request.
type TimingInfo struct {
	// StartTime is when the request started
	StartTime time.Time

	// DNSLookupTime is the time spent looking up the DNS address
	DNSLookupTime time.Duration

	// TCPConnectTime is the time spent establishing a TCP connection
	TCPConnectTime time.Duration

	// TLSHandshakeTime is the time spent performing the TLS handshake (for HTTPS)
	TLSHandshakeTime time.Duration

	// TimeToFirstByte (TTFB) is the time from connection established to receiving the first byte
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the response body
	ContentTransferTime time.Duration

	// TotalTime is the total time from request start to completion
	TotalTime time.Duration
}

// DNSLookupMillis returns the DNS lookup time in milliseconds.
func (t TimingInfo) DNSLookupMillis() int64 {
	return t.DNSLookupTime.Milliseconds()
}

// TCPConnectMillis returns the TCP connection time in milliseconds.
func (t TimingInfo) TCPConnectMillis() int64 {
	return t.TCPConnectTime.Milliseconds()
}

// TLSHandshakeMillis returns the TLS handshake time in milliseconds.
func (t TimingInfo) TLSHandshakeMillis() int64 {
	return t.TLSHandshakeTime.Milliseconds()
}

// TimeToFirstByteMillis returns the time to first byte in milliseconds.
func (t TimingInfo) TimeToFirstByteMillis() int64 {
	return t.TimeToFirstByte.Milliseconds()
}

// ContentTransferMillis returns the content transfer time in milliseconds.
func (t TimingInfo) ContentTransferMillis() int64 {
	return t.ContentTransferTime.Milliseconds()
}

// TotalMillis returns the total time in milliseconds.
func (t TimingInfo) TotalMillis() int64 {
	return t.TotalTime.Milliseconds()
}
