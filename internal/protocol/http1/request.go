package http1

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxHeaderBytes bounds how many header bytes ReadRequest will
// buffer before giving up on a slow or malicious peer.
const DefaultMaxHeaderBytes = 8 << 10 // 8KB

// headerTerminator marks the end of the HTTP request header block.
var headerTerminator = []byte("\r\n\r\n")

var (
	// ErrConnectionClosed indicates the peer closed the connection before
	// a complete header block was received.
	ErrConnectionClosed = errors.New("connection closed before end of headers")

	// ErrHeaderTooLarge indicates the header block exceeded the configured
	// size bound before the terminator was seen.
	ErrHeaderTooLarge = errors.New("request headers too large")

	// ErrMalformed indicates the request line could not be parsed.
	ErrMalformed = errors.New("malformed request line")
)

// Request is a parsed HTTP request line. It is immutable once parsed and
// discarded when the connection handler finishes.
type Request struct {
	Method  string
	Path    string
	Version string
}

// ReadRequest reads from r until the header terminator is observed, then
// parses the request line. maxHeaderBytes bounds the number of bytes
// buffered; values <= 0 fall back to DefaultMaxHeaderBytes.
//
// Only the request line is interpreted. Header fields after it are read
// off the wire (so the peer's send completes) but not parsed.
func ReadRequest(r io.Reader, maxHeaderBytes int) (*Request, error) {
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = DefaultMaxHeaderBytes
	}

	raw, err := readHeaderBlock(r, maxHeaderBytes)
	if err != nil {
		return nil, err
	}

	return parseRequestLine(raw)
}

// readHeaderBlock accumulates bytes until "\r\n\r\n" appears or the bound
// is exceeded. Reads are incremental so a request split across TCP
// segments is reassembled.
func readHeaderBlock(r io.Reader, maxHeaderBytes int) ([]byte, error) {
	var buffer []byte
	chunk := make([]byte, 512)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buffer = append(buffer, chunk[:n]...)

			if idx := bytes.Index(buffer, headerTerminator); idx >= 0 {
				return buffer[:idx+len(headerTerminator)], nil
			}
			if len(buffer) > maxHeaderBytes {
				return nil, fmt.Errorf("%w: %d bytes buffered", ErrHeaderTooLarge, len(buffer))
			}
		}
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, ErrConnectionClosed
			}
			return nil, err
		}
	}
}

// parseRequestLine extracts METHOD SP PATH SP VERSION from the first line
// of the header block. Splitting is on single spaces: exactly three
// tokens or the request is malformed.
func parseRequestLine(raw []byte) (*Request, error) {
	line, _, ok := strings.Cut(string(raw), "\r\n")
	if !ok || line == "" {
		return nil, fmt.Errorf("%w: empty request line", ErrMalformed)
	}

	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 tokens, got %d", ErrMalformed, len(parts))
	}

	method, target, version := parts[0], parts[1], parts[2]
	if method == "" || version == "" {
		return nil, fmt.Errorf("%w: empty method or version", ErrMalformed)
	}

	// Drop the query string; only the path component is resolved.
	path, _, _ := strings.Cut(target, "?")
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: path %q does not start with /", ErrMalformed, path)
	}

	return &Request{
		Method:  method,
		Path:    path,
		Version: version,
	}, nil
}
