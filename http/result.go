package http

// Result is the raw outcome of one transaction: the body exactly as
// received, the final response's header block, the status code and the
// transport's metadata.
type Result struct {
	Body []byte
	// Headers is the last header block, which belongs to the final response
	Headers Header
	// Blocks holds every header block in arrival order
	Blocks []Header
	Status int
	Meta   map[string]any
	Timing TimingInfo
}

// newResult splits the raw transport output at the reported header length
// and parses the header section.
func newResult(tresp *TransportResponse) *Result {
	raw := tresp.Raw
	size := tresp.HeaderSize
	if size < 0 {
		size = 0
	}
	if size > len(raw) {
		size = len(raw)
	}

	blocks := ParseHeaderBlocks(string(raw[:size]))
	headers := LastHeaderBlock(blocks)

	status := tresp.StatusCode
	if status == 0 {
		status = headers.StatusCode()
	}

	meta := tresp.Meta
	if meta == nil {
		meta = make(map[string]any)
	}

	return &Result{
		Body:    raw[size:],
		Headers: headers,
		Blocks:  blocks,
		Status:  status,
		Meta:    meta,
		Timing:  tresp.Timing,
	}
}
