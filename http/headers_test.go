package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderBlocks(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []Header
	}{
		{
			name:     "Empty header section",
			raw:      "",
			expected: nil,
		},
		{
			name: "Single block",
			raw:  "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nX-Id:  42 \r\n\r\n",
			expected: []Header{
				{VersionKey: "HTTP/1.1", StatusCodeKey: "200 OK", "Content-Type": "application/json", "X-Id": "42"},
			},
		},
		{
			name: "Continue followed by final response",
			raw: "HTTP/1.1 100 Continue\r\nX-Stage: early\r\n\r\n" +
				"HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n\r\n",
			expected: []Header{
				{VersionKey: "HTTP/1.1", StatusCodeKey: "100 Continue", "X-Stage": "early"},
				{VersionKey: "HTTP/1.1", StatusCodeKey: "200 OK", "Content-Type": "text/plain"},
			},
		},
		{
			name: "Status line without blank separator starts a new block",
			raw:  "HTTP/1.1 301 Moved Permanently\r\nLocation: /new\r\nHTTP/2 200\r\nServer: test\r\n",
			expected: []Header{
				{VersionKey: "HTTP/1.1", StatusCodeKey: "301 Moved Permanently", "Location": "/new"},
				{VersionKey: "HTTP/2", StatusCodeKey: "200", "Server": "test"},
			},
		},
		{
			name: "Malformed lines are ignored",
			raw:  "garbage before\r\nHTTP/1.1 204 No Content\r\nnot a header\r\nDate: Mon, 01 Jan 2024 10:00:00 GMT\r\n\r\n",
			expected: []Header{
				{VersionKey: "HTTP/1.1", StatusCodeKey: "204 No Content", "Date": "Mon, 01 Jan 2024 10:00:00 GMT"},
			},
		},
		{
			name: "Bare line feeds",
			raw:  "HTTP/1.0 404 Not Found\nContent-Length: 0\n\n",
			expected: []Header{
				{VersionKey: "HTTP/1.0", StatusCodeKey: "404 Not Found", "Content-Length": "0"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseHeaderBlocks(tt.raw))
		})
	}
}

func TestLastHeaderBlock(t *testing.T) {
	blocks := ParseHeaderBlocks("HTTP/1.1 100 Continue\r\nA: 1\r\n\r\nHTTP/1.1 200 OK\r\nB: 2\r\n\r\n")
	require.Len(t, blocks, 2)

	last := LastHeaderBlock(blocks)
	assert.Equal(t, "2", last["B"])
	assert.NotContains(t, last, "A")

	empty := LastHeaderBlock(nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestHeader_Get(t *testing.T) {
	h := Header{"Content-Type": "application/json", "x-custom": "yes"}

	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "application/json", h.Get("content-type"))
	assert.Equal(t, "yes", h.Get("X-Custom"))
	assert.Equal(t, "", h.Get("Missing"))
	assert.True(t, h.Has("CONTENT-TYPE"))
	assert.False(t, h.Has("Missing"))
}

func TestHeader_StatusCode(t *testing.T) {
	assert.Equal(t, 200, Header{StatusCodeKey: "200 OK"}.StatusCode())
	assert.Equal(t, 204, Header{StatusCodeKey: "204"}.StatusCode())
	assert.Equal(t, 0, Header{StatusCodeKey: "OK"}.StatusCode())
	assert.Equal(t, 0, Header{}.StatusCode())
}
