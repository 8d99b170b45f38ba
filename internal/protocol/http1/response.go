package http1

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Header is a single response header. Headers keep insertion order on the
// wire; duplicate names are a caller error, not enforced here.
type Header struct {
	Name  string
	Value string
}

// Response is a complete HTTP response ready for serialization. It is
// built fresh per request and never mutated after serialization; the
// connection handler that creates it is its sole owner.
type Response struct {
	StatusLine string
	Headers    []Header
	Body       []byte
}

// NewResponse builds a response for the given status line and body.
// Content-Type and Content-Length are always set; callers may append
// further headers with AddHeader before serializing.
func NewResponse(statusLine, contentType string, body []byte) *Response {
	return &Response{
		StatusLine: statusLine,
		Headers: []Header{
			{Name: "Content-Type", Value: contentType},
			{Name: "Content-Length", Value: strconv.Itoa(len(body))},
		},
		Body: body,
	}
}

// AddHeader appends a header, preserving insertion order.
func (r *Response) AddHeader(name, value string) {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// Serialize renders the response to wire format: status line, headers in
// insertion order, a blank line, then the body bytes verbatim.
func (r *Response) Serialize() []byte {
	var buf bytes.Buffer
	buf.Grow(len(r.StatusLine) + 64*len(r.Headers) + len(r.Body) + 4)

	buf.WriteString(r.StatusLine)
	buf.WriteString("\r\n")
	for _, h := range r.Headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.Name, h.Value)
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)

	return buf.Bytes()
}

// WriteTo serializes the response and writes it to w in a single Write.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Serialize())
	return int64(n), err
}
