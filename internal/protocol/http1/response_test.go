package http1

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseSerialize(t *testing.T) {
	t.Run("FramesStatusHeadersAndBody", func(t *testing.T) {
		body := []byte("<h1>hello</h1>")
		resp := NewResponse(StatusOK, "text/html", body)

		wire := string(resp.Serialize())

		assert.True(t, strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n"))
		assert.Contains(t, wire, "Content-Type: text/html\r\n")
		assert.Contains(t, wire, "Content-Length: 14\r\n")
		assert.True(t, strings.HasSuffix(wire, "\r\n\r\n"+string(body)))
	})

	t.Run("EmptyBodyHasZeroContentLength", func(t *testing.T) {
		resp := NewResponse(StatusNotFound, "text/html", nil)

		wire := string(resp.Serialize())

		assert.Contains(t, wire, "Content-Length: 0\r\n")
		assert.True(t, strings.HasSuffix(wire, "\r\n\r\n"))
	})

	t.Run("PreservesHeaderOrder", func(t *testing.T) {
		resp := NewResponse(StatusOK, "text/plain", []byte("x"))
		resp.AddHeader("Connection", "close")
		resp.AddHeader("X-Custom", "1")

		wire := string(resp.Serialize())

		ctIdx := strings.Index(wire, "Content-Type:")
		clIdx := strings.Index(wire, "Content-Length:")
		connIdx := strings.Index(wire, "Connection:")
		customIdx := strings.Index(wire, "X-Custom:")

		require.True(t, ctIdx >= 0 && clIdx >= 0 && connIdx >= 0 && customIdx >= 0)
		assert.Less(t, ctIdx, clIdx)
		assert.Less(t, clIdx, connIdx)
		assert.Less(t, connIdx, customIdx)
	})

	t.Run("BinaryBodyPassesThroughVerbatim", func(t *testing.T) {
		body := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff}
		resp := NewResponse(StatusOK, "image/png", body)

		wire := resp.Serialize()

		assert.True(t, bytes.HasSuffix(wire, body))
	})
}

func TestResponseWriteTo(t *testing.T) {
	resp := NewResponse(StatusOK, "text/plain", []byte("payload"))

	var buf bytes.Buffer
	n, err := resp.WriteTo(&buf)
	require.NoError(t, err)

	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, resp.Serialize(), buf.Bytes())
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		statusLine string
		want       int
	}{
		{StatusOK, 200},
		{StatusBadRequest, 400},
		{StatusNotFound, 404},
		{StatusInternalServerError, 500},
		{StatusNotImplemented, 501},
		{StatusServiceUnavailable, 503},
	}

	for _, tt := range tests {
		t.Run(tt.statusLine, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.statusLine))
		})
	}
}
