package http

import (
	"strconv"
	"strings"
)

const (
	// VersionKey holds the HTTP version token of a header block's status line.
	VersionKey = "Version"
	// StatusCodeKey holds the remainder of a header block's status line, e.g. "200 OK".
	StatusCodeKey = "Status Code"
)

// Header is one parsed header block: the status line entries plus every
// "Name: Value" line that followed it. Names keep the case they arrived with;
// use Get for case-insensitive lookup.
type Header map[string]string

// Get returns the value stored under name, matching case-insensitively when
// there is no exact match.
func (h Header) Get(name string) string {
	if v, ok := h[name]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Has reports whether the block contains name, case-insensitively.
func (h Header) Has(name string) bool {
	if _, ok := h[name]; ok {
		return true
	}
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// StatusCode returns the numeric code from the block's status line, or 0.
func (h Header) StatusCode() int {
	status := strings.TrimSpace(h[StatusCodeKey])
	if i := strings.IndexByte(status, ' '); i >= 0 {
		status = status[:i]
	}
	code, err := strconv.Atoi(status)
	if err != nil {
		return 0
	}
	return code
}

// ParseHeaderBlocks splits the raw header section of an exchange into blocks.
// A line starting with "HTTP/" opens a new block, a blank line closes the
// current one, and "Name: Value" lines are added to the open block. Lines
// without a colon, or outside any block, are ignored.
func ParseHeaderBlocks(raw string) []Header {
	var blocks []Header
	var current Header

	flush := func() {
		if current != nil {
			blocks = append(blocks, current)
			current = nil
		}
	}

	for _, line := range strings.Split(raw, "\r\n") {
		// bare LF line endings are tolerated
		for _, l := range strings.Split(line, "\n") {
			l = strings.TrimSpace(l)
			switch {
			case l == "":
				flush()
			case strings.HasPrefix(l, "HTTP/"):
				flush()
				version, status, _ := strings.Cut(l, " ")
				current = Header{
					VersionKey:    strings.TrimSpace(version),
					StatusCodeKey: strings.TrimSpace(status),
				}
			default:
				name, value, ok := strings.Cut(l, ":")
				if !ok || current == nil {
					continue
				}
				current[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}
		}
	}
	flush()

	return blocks
}

// LastHeaderBlock returns the final block, which belongs to the final
// response. It returns an empty Header when there are no blocks.
func LastHeaderBlock(blocks []Header) Header {
	if len(blocks) == 0 {
		return Header{}
	}
	return blocks[len(blocks)-1]
}
